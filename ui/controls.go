package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlState holds the user-adjustable view settings the panel edits.
type ControlState struct {
	Zoom        float32
	FollowLaser bool
	Paused      bool
	ShowNetwork bool
}

// ControlsPanel renders the camera/run controls in a side panel.
type ControlsPanel struct {
	x, y  int32
	width int32
}

// NewControlsPanel creates a controls panel at the given position.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{x: x, y: y, width: width}
}

// Draw renders the panel and applies any edits to st.
func (c *ControlsPanel) Draw(st *ControlState) {
	panelH := int32(136)
	rl.DrawRectangle(c.x, c.y, c.width, panelH, rl.Color{R: 0, G: 0, B: 0, A: 170})
	rl.DrawRectangleLines(c.x, c.y, c.width, panelH, rl.Gray)

	rl.DrawText("View", c.x+10, c.y+8, 16, rl.White)

	st.Zoom = gui.SliderBar(
		rl.Rectangle{X: float32(c.x) + 50, Y: float32(c.y) + 32, Width: float32(c.width) - 90, Height: 16},
		"Zoom", "", st.Zoom, 0.25, 4.0,
	)

	if gui.Button(rl.Rectangle{X: float32(c.x) + 10, Y: float32(c.y) + 56, Width: float32(c.width) - 20, Height: 20},
		followLabel(st.FollowLaser)) {
		st.FollowLaser = !st.FollowLaser
	}

	if gui.Button(rl.Rectangle{X: float32(c.x) + 10, Y: float32(c.y) + 82, Width: float32(c.width) - 20, Height: 20},
		pauseLabel(st.Paused)) {
		st.Paused = !st.Paused
	}

	if gui.Button(rl.Rectangle{X: float32(c.x) + 10, Y: float32(c.y) + 108, Width: float32(c.width) - 20, Height: 20},
		networkLabel(st.ShowNetwork)) {
		st.ShowNetwork = !st.ShowNetwork
	}
}

func followLabel(laser bool) string {
	if laser {
		return "Following: laser"
	}
	return "Following: pack"
}

func pauseLabel(paused bool) string {
	if paused {
		return "Resume"
	}
	return "Pause"
}

func networkLabel(shown bool) string {
	if shown {
		return "Network: shown"
	}
	return "Network: hidden"
}
