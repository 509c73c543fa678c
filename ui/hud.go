// Package ui renders the HUD text overlay and the raygui control panel.
package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Generation  int
	Tick        int
	Alive       int
	Total       int
	BestFitness float64
	LaserX      float64
	FPS         int32
	Paused      bool
}

// HUD renders the main heads-up display.
type HUD struct{}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText("Scorch", 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Gen: %d | Alive: %d/%d | Best: %.0f", data.Generation, data.Alive, data.Total, data.BestFitness),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Laser x: %.0f | FPS: %d", data.Tick, data.LaserX, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running  [SPACE pause, F follow, wheel zoom]"
	if data.Paused {
		statusText = "PAUSED  [SPACE to resume]"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}
