// Package renderer draws arena frames with raylib and implements the
// evolve.Display boundary for visualized generations.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/scorch/arena"
	"github.com/pthm-cable/scorch/camera"
	"github.com/pthm-cable/scorch/config"
	"github.com/pthm-cable/scorch/evolve"
	"github.com/pthm-cable/scorch/ui"
)

// Display renders the shared world. It assumes the raylib window was
// initialized by the caller and stays open for the display's lifetime.
type Display struct {
	cam      *camera.Camera
	hud      *ui.HUD
	controls *ui.ControlsPanel
	network  *ui.NetworkPanel
	state    ui.ControlState
}

// NewDisplay creates a display over the already-open raylib window.
func NewDisplay() *Display {
	cfg := config.Cfg()
	cam := camera.New(
		float64(cfg.Screen.Width), float64(cfg.Screen.Height),
		cfg.Dummy.StartX, cfg.Laser.Height/4,
	)
	return &Display{
		cam:      cam,
		hud:      ui.NewHUD(),
		controls: ui.NewControlsPanel(int32(cfg.Screen.Width)-210, 10, 200),
		network:  ui.NewNetworkPanel(10, 110, 320, int32(cfg.Screen.Height)-160),
		state:    ui.ControlState{Zoom: 1.0, FollowLaser: true},
	}
}

// IsOpen reports whether the window is still open.
func (d *Display) IsOpen() bool {
	return !rl.WindowShouldClose()
}

// Draw renders one frame and returns false if the user requested a stop.
// While paused it keeps redrawing the same frame so the window stays
// responsive without advancing the simulation.
func (d *Display) Draw(frame *arena.Frame, status evolve.Status) bool {
	for {
		if rl.WindowShouldClose() {
			return false
		}
		d.handleInput()
		d.drawFrame(frame, status)
		if !d.state.Paused {
			return true
		}
	}
}

func (d *Display) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		d.state.Paused = !d.state.Paused
	}
	if rl.IsKeyPressed(rl.KeyF) {
		d.state.FollowLaser = !d.state.FollowLaser
	}
	if rl.IsKeyPressed(rl.KeyN) {
		d.state.ShowNetwork = !d.state.ShowNetwork
	}
	wheel := rl.GetMouseWheelMove()
	if wheel != 0 {
		d.state.Zoom += wheel * 0.1
	}
}

func (d *Display) drawFrame(frame *arena.Frame, status evolve.Status) {
	d.cam.SetZoom(float64(d.state.Zoom))
	d.state.Zoom = float32(d.cam.Zoom)
	d.cam.Follow(d.followTarget(frame), d.cam.Y)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 18, G: 24, B: 38, A: 255})

	d.drawGround(frame)
	d.drawDebris(frame)
	d.drawAgents(frame)
	d.drawLaser(frame)

	d.hud.Draw(ui.HUDData{
		Generation:  status.Generation,
		Tick:        status.Tick,
		Alive:       status.Alive,
		Total:       status.Total,
		BestFitness: status.BestFitness,
		LaserX:      status.LaserX,
		FPS:         rl.GetFPS(),
		Paused:      d.state.Paused,
	})
	d.controls.Draw(&d.state)
	if d.state.ShowNetwork {
		d.network.Draw(status.Best)
	}

	rl.EndDrawing()
}

// followTarget picks the camera x: the laser front, or the rightmost
// agent part when pack-following is selected.
func (d *Display) followTarget(frame *arena.Frame) float64 {
	if d.state.FollowLaser || len(frame.Parts) == 0 {
		return frame.LaserX + d.cam.ViewportW/(4*d.cam.Zoom)
	}
	rightmost := frame.Parts[0].V[0].X
	for _, p := range frame.Parts {
		for _, v := range p.V {
			if v.X > rightmost {
				rightmost = v.X
			}
		}
	}
	return rightmost
}

func (d *Display) drawGround(frame *arena.Frame) {
	x1, y := d.cam.WorldToScreen(-frame.GroundHalfSpan, frame.GroundY)
	x2, _ := d.cam.WorldToScreen(frame.GroundHalfSpan, frame.GroundY)
	rl.DrawLineEx(
		rl.Vector2{X: float32(x1), Y: float32(y)},
		rl.Vector2{X: float32(x2), Y: float32(y)},
		3, rl.Color{R: 90, G: 140, B: 90, A: 255},
	)
}

func (d *Display) drawLaser(frame *arena.Frame) {
	sx, _ := d.cam.WorldToScreen(frame.LaserX, 0)
	w := float32(frame.LaserWidth * d.cam.Zoom)
	if w < 2 {
		w = 2
	}
	rl.DrawRectangle(int32(float32(sx)-w/2), 0, int32(w), int32(d.cam.ViewportH),
		rl.Color{R: 255, G: 40, B: 40, A: 160})
	rl.DrawLine(int32(sx), 0, int32(sx), int32(d.cam.ViewportH), rl.Red)
}

func (d *Display) drawAgents(frame *arena.Frame) {
	for _, part := range frame.Parts {
		var pts [4]rl.Vector2
		// Reverse the winding: the Y flip turns Box2D's CCW into CW
		for i := 0; i < 4; i++ {
			sx, sy := d.cam.WorldToScreen(part.V[3-i].X, part.V[3-i].Y)
			pts[i] = rl.Vector2{X: float32(sx), Y: float32(sy)}
		}
		col := rl.Color{R: part.Color.R, G: part.Color.G, B: part.Color.B, A: part.Color.A}
		rl.DrawTriangle(pts[0], pts[1], pts[2], col)
		rl.DrawTriangle(pts[0], pts[2], pts[3], col)
	}
}

func (d *Display) drawDebris(frame *arena.Frame) {
	for _, dot := range frame.Debris {
		if !d.cam.IsVisible(dot.Pos.X, dot.Pos.Y, dot.Radius) {
			continue
		}
		sx, sy := d.cam.WorldToScreen(dot.Pos.X, dot.Pos.Y)
		rl.DrawCircle(int32(sx), int32(sy), float32(dot.Radius*d.cam.Zoom),
			rl.Color{R: 255, G: 170, B: 60, A: 220})
	}
}
