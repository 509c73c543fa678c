package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// HallEntry records one standout genome across the whole run.
type HallEntry struct {
	Generation int     `json:"generation"`
	GenomeKey  int     `json:"genome_key"`
	Fitness    float64 `json:"fitness"`
	Ticks      int     `json:"ticks"`
}

// HallOfFame keeps the best genomes seen so far, ordered by fitness.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates a hall of fame with the given capacity.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{maxSize: maxSize}
}

// Consider offers an entry for admission. Returns true if it made the cut.
func (hof *HallOfFame) Consider(e HallEntry) bool {
	if len(hof.entries) == hof.maxSize && e.Fitness <= hof.entries[len(hof.entries)-1].Fitness {
		return false
	}

	hof.entries = append(hof.entries, e)
	sort.Slice(hof.entries, func(i, j int) bool {
		return hof.entries[i].Fitness > hof.entries[j].Fitness
	})
	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
		// The offered entry may be the one that just fell off
		for _, kept := range hof.entries {
			if kept == e {
				return true
			}
		}
		return false
	}
	return true
}

// Entries returns the current hall, best first.
func (hof *HallOfFame) Entries() []HallEntry {
	out := make([]HallEntry, len(hof.entries))
	copy(out, hof.entries)
	return out
}

// Best returns the top entry, ok=false when the hall is empty.
func (hof *HallOfFame) Best() (HallEntry, bool) {
	if len(hof.entries) == 0 {
		return HallEntry{}, false
	}
	return hof.entries[0], true
}

// Save writes the hall as JSON.
func (hof *HallOfFame) Save(path string) error {
	data, err := json.MarshalIndent(hof.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	return nil
}
