// Package evolve contains the generation-evaluation core: per-agent
// controller adapters, the shared-world visualized path, the isolated
// parallel path, and the fitness-assignment protocol back onto genomes.
package evolve

import (
	"log/slog"

	"github.com/pthm-cable/scorch/arena"
)

// Activator is the slice of the neuroevolution library the controller
// needs: one activation of sensors into motor commands.
// *nn.FeedForwardNetwork satisfies it.
type Activator interface {
	Activate(inputs []float64) ([]float64, error)
}

// Controller binds one genome's activatable network to one agent body.
type Controller struct {
	net Activator
}

// NewController wraps an activatable network.
func NewController(net Activator) *Controller {
	return &Controller{net: net}
}

// Tick pulls sensors, activates the network and pushes motor rates.
// No-op on a terminal agent. Any fault - activation error or a malformed
// motor vector - is converted into a normal termination of this one
// agent: kill sequence, never a crashed generation.
func (c *Controller) Tick(w *arena.World, d *arena.Dummy) {
	if d.Hit() {
		return
	}

	out, err := c.net.Activate(d.SensorData())
	if err != nil {
		slog.Warn("controller activation failed, terminating agent",
			"agent", d.ID(), "error", err)
		w.KillAgent(d)
		return
	}

	if err := d.SetMotorRates(out); err != nil {
		slog.Warn("malformed motor vector, terminating agent",
			"agent", d.ID(), "error", err)
		w.KillAgent(d)
	}
}
