package ui

import (
	"fmt"
	"math"
	"sort"

	"github.com/baldhumanity/neat-go/neat"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Input labels for the network topology panel.
// Order matches the sensor vector: 6 joint angles, 7 segment
// orientations, 6 joint velocities, 6 motor loads, 4 contact flags.
var InputLabels = []string{
	"Ang ShR", "Ang ShL", "Ang HipR", "Ang HipL", "Ang KneeR", "Ang KneeL",
	"Ori Trunk", "Ori ArmR", "Ori ArmL", "Ori ULegR", "Ori ULegL", "Ori LLegR", "Ori LLegL",
	"Vel ShR", "Vel ShL", "Vel HipR", "Vel HipL", "Vel KneeR", "Vel KneeL",
	"Load ShR", "Load ShL", "Load HipR", "Load HipL", "Load KneeR", "Load KneeL",
	"Ct FootR", "Ct FootL", "Ct HandR", "Ct HandL",
}

// Output labels for the network topology panel, one per motor.
var OutputLabels = []string{"ShoulderR", "ShoulderL", "HipR", "HipL", "KneeR", "KneeL"}

// Node and edge colors. Inputs green, hidden orange, outputs steel blue;
// positive weights red, negative blue.
var (
	colorInputNode  = rl.Color{R: 50, G: 150, B: 50, A: 255}
	colorHiddenNode = rl.Color{R: 255, G: 165, B: 0, A: 255}
	colorOutputNode = rl.Color{R: 70, G: 130, B: 180, A: 255}
	colorNodeBorder = rl.Color{R: 100, G: 100, B: 100, A: 255}
	colorEdgePos    = rl.Color{R: 200, G: 80, B: 80, A: 100}
	colorEdgeNeg    = rl.Color{R: 80, G: 80, B: 200, A: 100}
	colorLabelDim   = rl.Color{R: 120, G: 120, B: 120, A: 255}
)

// nodeClass partitions genome nodes into layout columns.
type nodeClass uint8

const (
	nodeInput nodeClass = iota
	nodeHidden
	nodeOutput
)

// nodePoint is one laid-out genome node.
type nodePoint struct {
	Key   int
	Class nodeClass
	Pos   rl.Vector2
}

// NetworkPanel renders a genome's network topology: input, hidden and
// output node columns with the enabled connections between them.
type NetworkPanel struct {
	x, y          int32
	width, height int32
}

// NewNetworkPanel creates a topology panel at the given position.
func NewNetworkPanel(x, y, width, height int32) *NetworkPanel {
	return &NetworkPanel{x: x, y: y, width: width, height: height}
}

// Draw renders the genome's topology, or a placeholder before any genome
// has been scored.
func (p *NetworkPanel) Draw(g *neat.Genome) {
	rl.DrawRectangle(p.x, p.y, p.width, p.height, rl.Color{R: 0, G: 0, B: 0, A: 170})
	rl.DrawRectangleLines(p.x, p.y, p.width, p.height, rl.Gray)

	if g == nil || g.Config == nil {
		rl.DrawText("No genome yet", p.x+10, p.y+10, 14, colorLabelDim)
		return
	}

	title := fmt.Sprintf("Best genome %d  fit %.0f", g.Key, g.Fitness)
	rl.DrawText(title, p.x+10, p.y+8, 14, rl.White)

	nodes := layoutNodes(g,
		float32(p.x), float32(p.y)+28,
		float32(p.width), float32(p.height)-36,
	)

	// Edges first so nodes draw over them
	for key, conn := range g.Connections {
		if !conn.Enabled {
			continue
		}
		from, okF := nodes[key.InNodeID]
		to, okT := nodes[key.OutNodeID]
		if !okF || !okT {
			continue
		}
		drawEdge(from.Pos, to.Pos, conn.Weight)
	}

	const radius = float32(5)
	for _, n := range nodes {
		rl.DrawCircleV(n.Pos, radius, classColor(n.Class))
		rl.DrawCircleLinesV(n.Pos, radius, colorNodeBorder)
	}

	// Input labels on the left, output labels on the right, hidden keys inline
	for i, key := range g.Config.InputKeys {
		n, ok := nodes[key]
		if !ok || i >= len(InputLabels) {
			continue
		}
		w := rl.MeasureText(InputLabels[i], 10)
		rl.DrawText(InputLabels[i], int32(n.Pos.X-radius)-w-4, int32(n.Pos.Y)-5, 10, colorLabelDim)
	}
	for i, key := range g.Config.OutputKeys {
		n, ok := nodes[key]
		if !ok || i >= len(OutputLabels) {
			continue
		}
		rl.DrawText(OutputLabels[i], int32(n.Pos.X+radius)+6, int32(n.Pos.Y)-5, 10, colorLabelDim)
	}
	for _, n := range nodes {
		if n.Class == nodeHidden {
			rl.DrawText(fmt.Sprintf("%d", n.Key), int32(n.Pos.X+radius)+4, int32(n.Pos.Y)-5, 10, colorLabelDim)
		}
	}
}

// layoutNodes places the genome's nodes in three columns: inputs, hidden,
// outputs. Hidden nodes are sorted by key so the layout is stable across
// frames.
func layoutNodes(g *neat.Genome, x, y, width, height float32) map[int]nodePoint {
	outputs := make(map[int]bool, len(g.Config.OutputKeys))
	for _, key := range g.Config.OutputKeys {
		outputs[key] = true
	}
	var hidden []int
	for key := range g.Nodes {
		if !outputs[key] {
			hidden = append(hidden, key)
		}
	}
	sort.Ints(hidden)

	colWidth := width / 3
	nodes := make(map[int]nodePoint, len(g.Config.InputKeys)+len(hidden)+len(g.Config.OutputKeys))

	placeColumn := func(keys []int, class nodeClass, colX float32) {
		if len(keys) == 0 {
			return
		}
		spacing := height / float32(len(keys))
		top := y + spacing/2
		for i, key := range keys {
			nodes[key] = nodePoint{
				Key:   key,
				Class: class,
				Pos:   rl.Vector2{X: colX, Y: top + float32(i)*spacing},
			}
		}
	}

	placeColumn(g.Config.InputKeys, nodeInput, x+colWidth/2)
	placeColumn(hidden, nodeHidden, x+colWidth+colWidth/2)
	placeColumn(g.Config.OutputKeys, nodeOutput, x+2*colWidth+colWidth/2)

	return nodes
}

// drawEdge renders one connection, thickness and alpha scaled by weight.
func drawEdge(from, to rl.Vector2, weight float64) {
	mag := float32(math.Abs(weight))

	thickness := mag * 1.5
	if thickness > 3 {
		thickness = 3
	}
	if thickness < 0.5 {
		thickness = 0.5
	}

	color := colorEdgePos
	if weight < 0 {
		color = colorEdgeNeg
	}
	alpha := 40 + mag*40
	if alpha > 150 {
		alpha = 150
	}
	color.A = uint8(alpha)

	rl.DrawLineEx(from, to, thickness, color)
}

func classColor(class nodeClass) rl.Color {
	switch class {
	case nodeInput:
		return colorInputNode
	case nodeHidden:
		return colorHiddenNode
	}
	return colorOutputNode
}
