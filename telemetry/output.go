package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/scorch/config"
)

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir             string
	generationsFile *os.File

	// Track if headers have been written
	generationsHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	generationsPath := filepath.Join(dir, "generations.csv")
	f, err := os.Create(generationsPath)
	if err != nil {
		return nil, fmt.Errorf("creating generations.csv: %w", err)
	}
	om.generationsFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteGeneration appends one generation record to generations.csv.
func (om *OutputManager) WriteGeneration(stats GenerationStats) error {
	if om == nil {
		return nil
	}

	records := []GenerationStats{stats}

	if !om.generationsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.generationsFile); err != nil {
			return fmt.Errorf("writing generation stats: %w", err)
		}
		om.generationsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.generationsFile); err != nil {
			return fmt.Errorf("writing generation stats: %w", err)
		}
	}

	return nil
}

// WriteHallOfFame saves the hall of fame as JSON next to the CSV logs.
func (om *OutputManager) WriteHallOfFame(hof *HallOfFame) error {
	if om == nil {
		return nil
	}
	return hof.Save(filepath.Join(om.dir, "hall_of_fame.json"))
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return om.generationsFile.Close()
}
