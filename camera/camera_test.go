package camera

import (
	"math"
	"testing"
)

func TestWorldToScreenRoundTrip(t *testing.T) {
	cam := New(1200, 800, 250, 100)
	cam.SetZoom(2.0)

	tests := []struct {
		name   string
		wx, wy float64
	}{
		{"camera center", 250, 100},
		{"right of center", 400, 100},
		{"above center", 250, 300},
		{"negative world", -500, -50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := cam.WorldToScreen(tt.wx, tt.wy)
			wx, wy := cam.ScreenToWorld(sx, sy)
			if math.Abs(wx-tt.wx) > 1e-9 || math.Abs(wy-tt.wy) > 1e-9 {
				t.Errorf("round trip (%v, %v) -> (%v, %v)", tt.wx, tt.wy, wx, wy)
			}
		})
	}
}

func TestWorldToScreenAxisFlip(t *testing.T) {
	cam := New(1200, 800, 0, 0)

	_, syCenter := cam.WorldToScreen(0, 0)
	_, syAbove := cam.WorldToScreen(0, 100)

	if syCenter != 400 {
		t.Errorf("camera center maps to sy = %v, want 400", syCenter)
	}
	// World Y-up, screen Y-down
	if syAbove >= syCenter {
		t.Errorf("point above camera maps to sy = %v, want < %v", syAbove, syCenter)
	}
}

func TestSetZoomClamps(t *testing.T) {
	cam := New(800, 600, 0, 0)

	tests := []struct {
		in, want float64
	}{
		{0.1, 0.25},
		{0.25, 0.25},
		{1.5, 1.5},
		{4.0, 4.0},
		{10, 4.0},
	}
	for _, tt := range tests {
		cam.SetZoom(tt.in)
		if cam.Zoom != tt.want {
			t.Errorf("SetZoom(%v): zoom = %v, want %v", tt.in, cam.Zoom, tt.want)
		}
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(800, 600, 0, 0)

	if !cam.IsVisible(0, 0, 1) {
		t.Error("camera center not visible")
	}
	if !cam.IsVisible(405, 0, 10) {
		t.Error("circle overlapping the right edge not visible")
	}
	if cam.IsVisible(5000, 0, 10) {
		t.Error("far offscreen circle reported visible")
	}

	cam.SetZoom(2.0)
	if cam.IsVisible(390, 0, 1) {
		t.Error("point outside the zoomed-in viewport reported visible")
	}
}

func TestFollowEases(t *testing.T) {
	cam := New(800, 600, 0, 0)
	cam.FollowLerp = 0.5

	cam.Follow(100, 40)
	if cam.X != 50 || cam.Y != 20 {
		t.Errorf("after one step camera = (%v, %v), want (50, 20)", cam.X, cam.Y)
	}

	cam.FollowLerp = 1
	cam.Follow(100, 40)
	if cam.X != 100 || cam.Y != 40 {
		t.Errorf("lerp 1 did not snap: (%v, %v)", cam.X, cam.Y)
	}
}
