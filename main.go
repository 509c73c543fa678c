package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/baldhumanity/neat-go/neat"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/scorch/config"
	"github.com/pthm-cable/scorch/evolve"
	"github.com/pthm-cable/scorch/renderer"
	"github.com/pthm-cable/scorch/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics (parallel isolated evaluation)")
	neatPath := flag.String("neat-config", "", "Path to NEAT config (empty = use config default)")
	generations := flag.Int("generations", 0, "Generations to run (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	checkpoint := flag.String("checkpoint", "", "Checkpoint file to resume from")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	neatConfigPath := cfg.Evolution.NEATConfig
	if *neatPath != "" {
		neatConfigPath = *neatPath
	}
	maxGenerations := cfg.Evolution.Generations
	if *generations > 0 {
		maxGenerations = *generations
	}

	neatConfig, err := neat.LoadConfig(neatConfigPath)
	if err != nil {
		slog.Error("failed to load NEAT config", "path", neatConfigPath, "error", err)
		os.Exit(1)
	}

	var pop *neat.Population
	if *checkpoint != "" {
		pop, err = neat.LoadCheckpoint(*checkpoint, neatConfigPath)
		if err != nil {
			slog.Error("failed to load checkpoint", "path", *checkpoint, "error", err)
			os.Exit(1)
		}
		slog.Info("resumed from checkpoint", "path", *checkpoint, "generation", pop.Generation)
	} else {
		pop, err = neat.NewPopulation(neatConfig)
		if err != nil {
			slog.Error("failed to create population", "error", err)
			os.Exit(1)
		}
	}

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to set up output directory", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Warn("failed to snapshot config", "error", err)
	}
	hof := telemetry.NewHallOfFame(cfg.Telemetry.HallOfFameSize)

	session := evolve.NewSession(rand.New(rand.NewSource(rngSeed)))

	if *headless {
		slog.Info("starting headless run",
			"seed", rngSeed,
			"generations", maxGenerations,
			"neat_config", neatConfigPath,
		)
		runEvolution(session, pop, maxGenerations, out, hof)
		return
	}

	// Graphical mode
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Scorch")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	session.Attach(renderer.NewDisplay())

	slog.Info("starting visualized run",
		"seed", rngSeed,
		"generations", maxGenerations,
		"neat_config", neatConfigPath,
	)
	runEvolution(session, pop, maxGenerations, out, hof)
}

// runEvolution drives the generation loop: evaluate, log, checkpoint,
// stop on display close or fitness threshold.
func runEvolution(session *evolve.Session, pop *neat.Population, maxGenerations int, out *telemetry.OutputManager, hof *telemetry.HallOfFame) {
	cfg := config.Cfg()

	for g := 0; g < maxGenerations; g++ {
		winner, err := pop.RunGeneration(session.Evaluate)
		if err != nil {
			slog.Error("generation failed", "generation", pop.Generation, "error", err)
			break
		}

		stats := summarizeGeneration(session)
		if err := out.WriteGeneration(stats); err != nil {
			slog.Warn("failed to write generation stats", "error", err)
		}
		hof.Consider(telemetry.HallEntry{
			Generation: stats.Generation,
			GenomeKey:  stats.BestGenome,
			Fitness:    stats.BestFitness,
			Ticks:      int(stats.BestFitness),
		})

		slog.Info("generation complete",
			"generation", stats.Generation,
			"mode", stats.Mode,
			"best", stats.BestFitness,
			"mean", stats.MeanFitness,
			"std", stats.StdFitness,
			"wall_sec", stats.WallSec,
		)

		if session.Stopped() {
			slog.Info("display closed, ending run", "generation", stats.Generation)
			break
		}
		if winner != nil {
			slog.Info("fitness threshold met", "genome", winner.Key, "fitness", winner.Fitness)
			pop.BestGenome = winner
			break
		}

		interval := cfg.Evolution.CheckpointInterval
		if interval > 0 && pop.Generation%interval == 0 {
			path := fmt.Sprintf("%s_gen%d.gz", cfg.Evolution.CheckpointPrefix, pop.Generation)
			if err := pop.SaveCheckpoint(path); err != nil {
				slog.Warn("failed to save checkpoint", "path", path, "error", err)
			}
		}
	}

	finalPath := fmt.Sprintf("%s_final.gz", cfg.Evolution.CheckpointPrefix)
	if err := pop.SaveCheckpoint(finalPath); err != nil {
		slog.Warn("failed to save final checkpoint", "path", finalPath, "error", err)
	}

	if err := out.WriteHallOfFame(hof); err != nil {
		slog.Warn("failed to write hall of fame", "error", err)
	}

	if best := pop.BestGenome; best != nil {
		slog.Info("run complete",
			"generations", session.Generation(),
			"best_genome", best.Key,
			"best_fitness", best.Fitness,
			"nodes", len(best.Nodes),
			"connections", len(best.Connections),
		)
	} else {
		slog.Info("run complete", "generations", session.Generation())
	}
}

// summarizeGeneration converts the session's latest results into a
// telemetry record.
func summarizeGeneration(session *evolve.Session) telemetry.GenerationStats {
	results := session.LastResults()
	samples := make([]telemetry.Sample, 0, len(results))
	for _, r := range results {
		samples = append(samples, telemetry.Sample{
			ID:               r.ID,
			Fitness:          r.Fitness,
			Ticks:            r.Metrics.Ticks,
			PeakDisplacement: r.Metrics.PeakDisplacement,
			Stability:        r.Metrics.Stability,
			Completed:        r.Completed,
		})
	}
	return telemetry.Summarize(session.Generation(), session.LastMode(), session.LastWall().Seconds(), samples)
}
