package evolve

import (
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/baldhumanity/neat-go/neat"
	"github.com/baldhumanity/neat-go/neat/nn"

	"github.com/pthm-cable/scorch/arena"
	"github.com/pthm-cable/scorch/config"
)

// Display is the presentation boundary. IsOpen is polled at the top of
// each shared-path tick; Draw returning false is an immediate stop
// request for the whole session.
type Display interface {
	IsOpen() bool
	Draw(frame *arena.Frame, status Status) bool
}

// Status is the per-tick overlay state handed to the display.
type Status struct {
	Generation  int
	Tick        int
	Alive       int
	Total       int
	LaserX      float64
	BestFitness float64      // best across previous generations
	Best        *neat.Genome // best-scoring genome so far, nil before one exists
}

// Metrics accumulates per-agent signals while the agent is non-terminal.
// Only Ticks is reduced into fitness; displacement and stability are
// tracked as diagnostics and alternate scoring signals.
type Metrics struct {
	Ticks            int
	PeakDisplacement float64 // max |x - start x|
	Stability        float64 // per-tick sum of head uprightness
}

// Result is one agent's outcome, exposed for telemetry after Evaluate.
type Result struct {
	ID        int
	Fitness   float64
	Metrics   Metrics
	Completed bool // false if the display was closed while still alive
}

// run is the transient per-generation record binding one genome to one
// embodied agent. Created at generation start, dropped at generation end.
type run struct {
	id      int
	genome  *neat.Genome
	ctrl    *Controller
	dummy   *arena.Dummy
	metrics Metrics
	done    bool // terminal observed; fitness may be assigned
}

// Session evaluates generations of genomes. It exclusively owns the
// shared world for the duration of each visualized generation; isolated
// evaluations build private worlds per agent instead.
type Session struct {
	world   *arena.World
	display Display
	rng     *rand.Rand

	generation  int
	bestFitness float64
	bestGenome  *neat.Genome
	stopped     bool

	lastResults []Result
	lastMode    string
	lastWall    time.Duration
}

// NewSession creates an evaluation session. A nil rng gets a time-seeded
// one; the shared world is created lazily on the first visualized
// generation.
func NewSession(rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{rng: rng}
}

// Attach associates an optional display. Without one (or once it closes)
// generations are evaluated on the isolated parallel path.
func (s *Session) Attach(d Display) { s.display = d }

// Stopped reports whether the display requested a stop; once true the
// session evaluates nothing further.
func (s *Session) Stopped() bool { return s.stopped }

// Generation returns the number of generations evaluated so far.
func (s *Session) Generation() int { return s.generation }

// BestFitness returns the best fitness seen across all generations.
func (s *Session) BestFitness() float64 { return s.bestFitness }

// LastResults returns the per-agent outcomes of the latest generation.
func (s *Session) LastResults() []Result { return s.lastResults }

// LastMode returns "shared" or "isolated" for the latest generation.
func (s *Session) LastMode() string { return s.lastMode }

// LastWall returns the wall-clock duration of the latest generation.
func (s *Session) LastWall() time.Duration { return s.lastWall }

// Evaluate runs one full generation and writes fitness back onto every
// genome in place. Satisfies the neat.Population.RunGeneration callback.
// A display-requested stop is not an error: genomes not terminal by then
// keep their initialized fitness of 0 and Evaluate returns nil.
func (s *Session) Evaluate(genomes map[int]*neat.Genome) error {
	if s.stopped {
		return nil
	}
	s.generation++
	start := time.Now()

	ids := make([]int, 0, len(genomes))
	for id := range genomes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	runs := make([]*run, 0, len(ids))
	for _, id := range ids {
		g := genomes[id]
		g.Fitness = 0

		r := &run{id: id, genome: g}
		net, err := nn.CreateFeedForwardNetwork(g)
		if err != nil {
			// Treated as a controller fault at tick 0: fitness stays 0.
			slog.Warn("network build failed", "genome", id, "error", err)
			r.done = true
		} else {
			r.ctrl = NewController(net)
		}
		runs = append(runs, r)
	}

	if s.display != nil && s.display.IsOpen() {
		s.lastMode = "shared"
		s.evaluateShared(runs)
	} else {
		s.lastMode = "isolated"
		s.evaluateIsolated(runs)
	}

	// Fitness reduction: survival tick count, terminal agents only.
	s.lastResults = s.lastResults[:0]
	for _, r := range runs {
		if r.done {
			r.genome.Fitness = float64(r.metrics.Ticks)
			if r.genome.Fitness > s.bestFitness {
				s.bestFitness = r.genome.Fitness
				s.bestGenome = r.genome
			}
		}
		s.lastResults = append(s.lastResults, Result{
			ID:        r.id,
			Fitness:   r.genome.Fitness,
			Metrics:   r.metrics,
			Completed: r.done,
		})
	}
	s.lastWall = time.Since(start)

	return nil
}

// evaluateShared runs every agent together in the one shared, drawn
// world. Within a tick every agent acts on sensor data from the same
// simulated instant: all controllers run before the single physics step.
func (s *Session) evaluateShared(runs []*run) {
	cfg := config.Cfg()

	if s.world == nil {
		s.world = arena.NewWorld(s.rng)
	}
	w := s.world
	w.ClearTransient(true)
	w.ResetLaser()

	for _, r := range runs {
		if r.done {
			continue
		}
		r.dummy = w.AddDummy(s.spawnPos())
	}

	tick := 0
	for {
		if !s.display.IsOpen() {
			s.stopped = true
			break
		}

		alive := 0
		for _, r := range runs {
			if r.done {
				continue
			}
			if r.dummy.Hit() {
				r.done = true
				continue
			}
			r.ctrl.Tick(w, r.dummy)
			if r.dummy.Hit() { // controller fault this tick
				r.done = true
				continue
			}
			alive++
			r.metrics.Ticks++
			s.accumulate(r)
		}
		if alive == 0 {
			break
		}

		w.Step(cfg.Physics.DT)
		w.CleanupDebris()
		tick++

		cont := s.display.Draw(w.Frame(), Status{
			Generation:  s.generation,
			Tick:        tick,
			Alive:       alive,
			Total:       len(runs),
			LaserX:      w.LaserX(),
			BestFitness: s.bestFitness,
			Best:        s.bestGenome,
		})
		if !cont {
			s.stopped = true
			break
		}
	}

	// Agents whose strike landed on the final step
	for _, r := range runs {
		if !r.done && r.dummy != nil && r.dummy.Hit() {
			r.done = true
		}
	}

	w.ClearTransient(true)
}

// evaluateOne runs a single agent against a private world holding only
// itself, the ground and the laser. The tick ceiling guarantees forward
// progress for genomes that never trigger a terminal condition.
func (s *Session) evaluateOne(r *run, rng *rand.Rand) {
	cfg := config.Cfg()
	ceiling := cfg.Evolution.MaxTicksPerAgent

	w := arena.NewWorld(rng)
	jitter := rng.Float64() * cfg.Dummy.SpawnJitterY
	r.dummy = w.AddDummy(arena.Vec2{X: cfg.Dummy.StartX, Y: cfg.Dummy.StartY + jitter})

	for r.metrics.Ticks < ceiling {
		if r.dummy.Hit() {
			break
		}
		r.ctrl.Tick(w, r.dummy)
		if r.dummy.Hit() {
			break
		}
		r.metrics.Ticks++
		s.accumulate(r)

		w.Step(cfg.Physics.DT)
		w.CleanupDebris()
	}
	r.done = true
}

// spawnPos is the nominal start with small vertical jitter, so agents
// never begin in perfectly synchronized states.
func (s *Session) spawnPos() arena.Vec2 {
	cfg := config.Cfg().Dummy
	return arena.Vec2{X: cfg.StartX, Y: cfg.StartY + s.rng.Float64()*cfg.SpawnJitterY}
}

// accumulate updates the non-fitness metrics for one alive agent.
func (s *Session) accumulate(r *run) {
	pos := r.dummy.Position()
	if disp := math.Abs(pos.X - r.dummy.StartX()); disp > r.metrics.PeakDisplacement {
		r.metrics.PeakDisplacement = disp
	}
	// 1 at perfectly upright head, 0 at fully inverted
	r.metrics.Stability += 1 - math.Abs(r.dummy.HeadAngle())/math.Pi
}
