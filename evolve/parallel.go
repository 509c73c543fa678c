package evolve

import (
	"math/rand"
	"runtime"
	"sync"
)

// evaluateIsolated fans genome evaluation out across share-nothing
// workers, one private physics world per agent. Bounded at logical CPU
// count minus one; no ordering or relative-time correspondence holds
// between agents, which is fine because isolated agents never interact.
func (s *Session) evaluateIsolated(runs []*run) {
	workers := runtime.NumCPU() - 1
	if workers < 1 {
		workers = 1
	}
	if workers > len(runs) {
		workers = len(runs)
	}

	jobs := make(chan *run)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		// Seeds drawn up front: the session rng is not goroutine-safe.
		seed := s.rng.Int63()
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for r := range jobs {
				if r.done {
					continue // network build already failed
				}
				s.evaluateOne(r, rng)
			}
		}(seed)
	}

	for _, r := range runs {
		jobs <- r
	}
	close(jobs)
	wg.Wait()
}
