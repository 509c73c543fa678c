package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestHallOfFameConsider(t *testing.T) {
	hof := NewHallOfFame(2)

	if !hof.Consider(HallEntry{Generation: 1, GenomeKey: 10, Fitness: 100}) {
		t.Error("first entry rejected")
	}
	if !hof.Consider(HallEntry{Generation: 2, GenomeKey: 20, Fitness: 300}) {
		t.Error("second entry rejected")
	}
	// Worse than everything in a full hall
	if hof.Consider(HallEntry{Generation: 3, GenomeKey: 30, Fitness: 50}) {
		t.Error("weak entry admitted to a full hall")
	}
	// Displaces the current weakest
	if !hof.Consider(HallEntry{Generation: 4, GenomeKey: 40, Fitness: 200}) {
		t.Error("displacing entry rejected")
	}

	entries := hof.Entries()
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].GenomeKey != 20 || entries[1].GenomeKey != 40 {
		t.Errorf("hall order = [%d, %d], want [20, 40]", entries[0].GenomeKey, entries[1].GenomeKey)
	}

	best, ok := hof.Best()
	if !ok || best.Fitness != 300 {
		t.Errorf("best = (%+v, %v), want fitness 300", best, ok)
	}
}

func TestHallOfFameEmptyBest(t *testing.T) {
	hof := NewHallOfFame(3)
	if _, ok := hof.Best(); ok {
		t.Error("empty hall reported a best entry")
	}
}

func TestHallOfFameSave(t *testing.T) {
	hof := NewHallOfFame(3)
	hof.Consider(HallEntry{Generation: 1, GenomeKey: 5, Fitness: 120, Ticks: 120})
	hof.Consider(HallEntry{Generation: 2, GenomeKey: 8, Fitness: 90, Ticks: 90})

	path := filepath.Join(t.TempDir(), "hall_of_fame.json")
	if err := hof.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var loaded []HallEntry
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(loaded) != 2 || loaded[0].GenomeKey != 5 || loaded[1].GenomeKey != 8 {
		t.Errorf("loaded = %+v, want [key 5, key 8]", loaded)
	}
}
