package evolve

import (
	"errors"
	"math/rand"
	"os"
	"testing"

	"github.com/baldhumanity/neat-go/neat"

	"github.com/pthm-cable/scorch/arena"
	"github.com/pthm-cable/scorch/config"
)

func TestMain(m *testing.M) {
	config.MustInit("")
	os.Exit(m.Run())
}

// stubNet is a canned Activator standing in for an evolved network.
type stubNet struct {
	out   []float64
	err   error
	calls int
}

func (n *stubNet) Activate(inputs []float64) ([]float64, error) {
	n.calls++
	if n.err != nil {
		return nil, n.err
	}
	if n.out != nil {
		return n.out, nil
	}
	return make([]float64, arena.MotorCount), nil
}

// fakeDisplay drives the shared path without a window. Draw returns
// false on call number stopAfter (0 = never).
type fakeDisplay struct {
	open      bool
	stopAfter int
	draws     int
	last      Status
}

func (f *fakeDisplay) IsOpen() bool { return f.open }

func (f *fakeDisplay) Draw(frame *arena.Frame, st Status) bool {
	f.draws++
	f.last = st
	return f.stopAfter == 0 || f.draws < f.stopAfter
}

// overrideLaser moves the hazard for the duration of one test.
func overrideLaser(t *testing.T, startX, speed float64) {
	t.Helper()
	cfg := config.Cfg()
	oldX, oldSpeed := cfg.Laser.StartX, cfg.Laser.Speed
	cfg.Laser.StartX, cfg.Laser.Speed = startX, speed
	t.Cleanup(func() { cfg.Laser.StartX, cfg.Laser.Speed = oldX, oldSpeed })
}

func newTestSession(seed int64) *Session {
	return NewSession(rand.New(rand.NewSource(seed)))
}

func TestControllerFaultAtFirstTick(t *testing.T) {
	s := newTestSession(1)
	r := &run{id: 1, ctrl: NewController(&stubNet{err: errors.New("boom")})}

	s.evaluateOne(r, rand.New(rand.NewSource(1)))

	if !r.done {
		t.Error("run not done after controller fault")
	}
	if r.metrics.Ticks != 0 {
		t.Errorf("ticks = %d after fault on first activation, want 0", r.metrics.Ticks)
	}
}

func TestMalformedMotorVectorTerminates(t *testing.T) {
	s := newTestSession(2)
	r := &run{id: 1, ctrl: NewController(&stubNet{out: make([]float64, 4)})}

	s.evaluateOne(r, rand.New(rand.NewSource(2)))

	if !r.done {
		t.Error("run not done after malformed motor vector")
	}
	if r.metrics.Ticks != 0 {
		t.Errorf("ticks = %d, want 0", r.metrics.Ticks)
	}
}

func TestIsolatedTickCeiling(t *testing.T) {
	// Hazard parked far away and frozen so nothing ever terminates
	overrideLaser(t, -1e6, 0)
	cfg := config.Cfg()
	oldCeiling := cfg.Evolution.MaxTicksPerAgent
	cfg.Evolution.MaxTicksPerAgent = 50
	defer func() { cfg.Evolution.MaxTicksPerAgent = oldCeiling }()

	s := newTestSession(3)
	r := &run{id: 1, ctrl: NewController(&stubNet{})}

	s.evaluateOne(r, rand.New(rand.NewSource(3)))

	if !r.done {
		t.Error("run not done at tick ceiling")
	}
	if r.metrics.Ticks != 50 {
		t.Errorf("ticks = %d, want ceiling 50", r.metrics.Ticks)
	}
	if r.metrics.Stability <= 0 {
		t.Errorf("stability = %v, want > 0 while alive", r.metrics.Stability)
	}
}

func TestIsolatedSurvivalTicksConsistent(t *testing.T) {
	cfg := config.Cfg()
	overrideLaser(t, cfg.Dummy.StartX-60, cfg.Laser.Speed)

	s := newTestSession(4)
	nets := make([]*stubNet, 3)
	runs := make([]*run, 3)
	for i := range runs {
		nets[i] = &stubNet{}
		runs[i] = &run{id: i + 1, ctrl: NewController(nets[i])}
	}

	s.evaluateIsolated(runs)

	minTicks, maxTicks := runs[0].metrics.Ticks, runs[0].metrics.Ticks
	for _, r := range runs {
		if !r.done {
			t.Fatalf("run %d not done", r.id)
		}
		if r.metrics.Ticks == 0 {
			t.Fatalf("run %d: 0 ticks, want survival until the strike", r.id)
		}
		if r.metrics.Ticks < minTicks {
			minTicks = r.metrics.Ticks
		}
		if r.metrics.Ticks > maxTicks {
			maxTicks = r.metrics.Ticks
		}
	}
	// Identical passive bodies against the same sweep, spawn jitter only
	if maxTicks-minTicks > 120 {
		t.Errorf("tick spread = %d (%d..%d), want near-identical outcomes",
			maxTicks-minTicks, minTicks, maxTicks)
	}
	for i, n := range nets {
		if n.calls == 0 {
			t.Errorf("net %d never activated", i+1)
		}
	}
}

func TestIsolatedSkipsFailedBuilds(t *testing.T) {
	s := newTestSession(5)
	net := &stubNet{}
	runs := []*run{
		{id: 1, done: true}, // network build failed before evaluation
		{id: 2, ctrl: NewController(net)},
	}
	cfg := config.Cfg()
	oldCeiling := cfg.Evolution.MaxTicksPerAgent
	cfg.Evolution.MaxTicksPerAgent = 10
	defer func() { cfg.Evolution.MaxTicksPerAgent = oldCeiling }()
	overrideLaser(t, -1e6, 0)

	s.evaluateIsolated(runs)

	if runs[0].metrics.Ticks != 0 {
		t.Errorf("skipped run accumulated %d ticks, want 0", runs[0].metrics.Ticks)
	}
	if runs[1].metrics.Ticks != 10 {
		t.Errorf("live run ticks = %d, want 10", runs[1].metrics.Ticks)
	}
}

func TestSharedRunsToTermination(t *testing.T) {
	cfg := config.Cfg()
	overrideLaser(t, cfg.Dummy.StartX-60, cfg.Laser.Speed)

	s := newTestSession(6)
	fd := &fakeDisplay{open: true}
	s.Attach(fd)

	runs := []*run{
		{id: 1, ctrl: NewController(&stubNet{})},
		{id: 2, ctrl: NewController(&stubNet{})},
	}
	s.evaluateShared(runs)

	if s.Stopped() {
		t.Error("session stopped without a display stop request")
	}
	for _, r := range runs {
		if !r.done {
			t.Errorf("run %d not done after full shared generation", r.id)
		}
		if r.metrics.Ticks == 0 {
			t.Errorf("run %d: 0 ticks", r.id)
		}
	}
	if fd.last.Total != len(runs) {
		t.Errorf("status total = %d, want %d", fd.last.Total, len(runs))
	}
	if fd.draws == 0 {
		t.Error("display never drawn")
	}
}

func TestSharedDisplayStopLeavesRunsUnfinished(t *testing.T) {
	s := newTestSession(7)
	fd := &fakeDisplay{open: true, stopAfter: 10}
	s.Attach(fd)

	runs := []*run{
		{id: 1, ctrl: NewController(&stubNet{})},
		{id: 2, ctrl: NewController(&stubNet{})},
	}
	s.evaluateShared(runs)

	if !s.Stopped() {
		t.Fatal("session not stopped after display stop request")
	}
	for _, r := range runs {
		// Still-alive agents stay unfinished so their fitness remains 0
		if r.done {
			t.Errorf("run %d marked done after early stop", r.id)
		}
		if r.metrics.Ticks != 10 {
			t.Errorf("run %d ticks = %d, want 10 before the stop", r.id, r.metrics.Ticks)
		}
	}
}

// newTestPopulation builds a real NEAT population of the given size.
func newTestPopulation(t *testing.T, size int) *neat.Population {
	t.Helper()
	neatConfig, err := neat.LoadConfig("../configs/scorch-neat")
	if err != nil {
		t.Fatalf("loading NEAT config: %v", err)
	}
	neatConfig.Neat.PopSize = size
	pop, err := neat.NewPopulation(neatConfig)
	if err != nil {
		t.Fatalf("creating population: %v", err)
	}
	return pop
}

func TestEvaluateAssignsSurvivalFitness(t *testing.T) {
	cfg := config.Cfg()
	overrideLaser(t, cfg.Dummy.StartX-60, cfg.Laser.Speed)

	pop := newTestPopulation(t, 6)
	s := newTestSession(10)

	if err := s.Evaluate(pop.Population); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if s.LastMode() != "isolated" {
		t.Errorf("mode = %q, want isolated without a display", s.LastMode())
	}
	results := s.LastResults()
	if len(results) != 6 {
		t.Fatalf("got %d results, want 6", len(results))
	}

	var best float64
	for _, r := range results {
		g, ok := pop.Population[r.ID]
		if !ok {
			t.Fatalf("result id %d has no genome", r.ID)
		}
		if !r.Completed {
			t.Errorf("genome %d not completed", r.ID)
		}
		if g.Fitness != float64(r.Metrics.Ticks) {
			t.Errorf("genome %d fitness = %v, want survival ticks %d", r.ID, g.Fitness, r.Metrics.Ticks)
		}
		if g.Fitness != r.Fitness {
			t.Errorf("genome %d: result fitness %v disagrees with genome %v", r.ID, r.Fitness, g.Fitness)
		}
		if g.Fitness <= 0 {
			t.Errorf("genome %d fitness = %v, want at least one survived tick", r.ID, g.Fitness)
		}
		if g.Fitness > best {
			best = g.Fitness
		}
	}
	if s.BestFitness() != best {
		t.Errorf("session best = %v, want %v", s.BestFitness(), best)
	}
	if s.Generation() != 1 {
		t.Errorf("generation = %d, want 1", s.Generation())
	}
}

func TestEvaluateDisplayStopKeepsFitnessZero(t *testing.T) {
	pop := newTestPopulation(t, 4)
	s := newTestSession(11)
	s.Attach(&fakeDisplay{open: true, stopAfter: 5})

	// A display stop mid-generation is not an error
	if err := s.Evaluate(pop.Population); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if !s.Stopped() {
		t.Fatal("session not stopped")
	}
	if s.LastMode() != "shared" {
		t.Errorf("mode = %q, want shared with an open display", s.LastMode())
	}
	for key, g := range pop.Population {
		if g.Fitness != 0 {
			t.Errorf("genome %d fitness = %v after early stop, want 0", key, g.Fitness)
		}
	}
	for _, r := range s.LastResults() {
		if r.Completed {
			t.Errorf("genome %d reported completed after early stop", r.ID)
		}
	}

	// A stopped session evaluates nothing further
	gen := s.Generation()
	if err := s.Evaluate(pop.Population); err != nil {
		t.Fatalf("Evaluate on stopped session: %v", err)
	}
	if s.Generation() != gen {
		t.Errorf("stopped session advanced to generation %d", s.Generation())
	}
}

func TestControllerNoOpOnTerminalAgent(t *testing.T) {
	w := arena.NewWorld(rand.New(rand.NewSource(8)))
	cfg := config.Cfg().Dummy
	d := w.AddDummy(arena.Vec2{X: cfg.StartX, Y: cfg.StartY})
	w.KillAgent(d)

	net := &stubNet{}
	NewController(net).Tick(w, d)

	if net.calls != 0 {
		t.Errorf("network activated %d times on terminal agent, want 0", net.calls)
	}
}

func TestControllerFaultKillsAgent(t *testing.T) {
	w := arena.NewWorld(rand.New(rand.NewSource(9)))
	cfg := config.Cfg().Dummy
	d := w.AddDummy(arena.Vec2{X: cfg.StartX, Y: cfg.StartY})

	NewController(&stubNet{err: errors.New("nan in activation")}).Tick(w, d)

	if !d.Hit() {
		t.Error("agent alive after activation fault, want kill sequence")
	}
	if w.AgentCount() != 0 {
		t.Errorf("agent count = %d, want 0", w.AgentCount())
	}
}
