// Package telemetry aggregates per-generation evaluation outcomes into
// stats records, CSV output and a hall of fame of best genomes.
package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Sample is one agent's outcome within a generation.
type Sample struct {
	ID               int
	Fitness          float64
	Ticks            int
	PeakDisplacement float64
	Stability        float64
	Completed        bool
}

// GenerationStats is one row summarizing a generation's evaluation.
type GenerationStats struct {
	Generation int    `csv:"generation"`
	Population int    `csv:"population"`
	Mode       string `csv:"mode"`

	BestFitness float64 `csv:"best_fitness"`
	BestGenome  int     `csv:"best_genome"`
	MeanFitness float64 `csv:"mean_fitness"`
	StdFitness  float64 `csv:"std_fitness"`
	P50Fitness  float64 `csv:"p50_fitness"`
	P90Fitness  float64 `csv:"p90_fitness"`

	// Diagnostics signals: tracked by the evaluator, never scored
	MeanDisplacement float64 `csv:"mean_displacement"`
	MeanStability    float64 `csv:"mean_stability"`

	Incomplete int     `csv:"incomplete"`
	WallSec    float64 `csv:"wall_sec"`
}

// Summarize reduces a generation's samples into one stats record.
func Summarize(generation int, mode string, wallSec float64, samples []Sample) GenerationStats {
	gs := GenerationStats{
		Generation: generation,
		Population: len(samples),
		Mode:       mode,
		WallSec:    wallSec,
	}
	if len(samples) == 0 {
		return gs
	}

	fitness := make([]float64, 0, len(samples))
	var dispSum, stabSum float64
	best := 0
	for i, s := range samples {
		fitness = append(fitness, s.Fitness)
		dispSum += s.PeakDisplacement
		if s.Ticks > 0 {
			stabSum += s.Stability / float64(s.Ticks)
		}
		if !s.Completed {
			gs.Incomplete++
		}
		if s.Fitness > samples[best].Fitness {
			best = i
		}
	}
	gs.BestFitness = samples[best].Fitness
	gs.BestGenome = samples[best].ID

	n := float64(len(samples))
	gs.MeanFitness = stat.Mean(fitness, nil)
	if len(samples) > 1 {
		// Sample stddev is undefined for one sample; keep the CSV NaN-free
		gs.StdFitness = stat.StdDev(fitness, nil)
	}
	gs.MeanDisplacement = dispSum / n
	gs.MeanStability = stabSum / n

	sort.Float64s(fitness)
	gs.P50Fitness = stat.Quantile(0.5, stat.Empirical, fitness, nil)
	gs.P90Fitness = stat.Quantile(0.9, stat.Empirical, fitness, nil)

	return gs
}
