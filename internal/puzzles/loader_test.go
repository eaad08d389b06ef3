package puzzles

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"killersudoku-api/internal/core"
)

func poolPuzzles() []core.Puzzle {
	single := func(offset int) core.Puzzle {
		var p core.Puzzle
		for i := 0; i < 81; i++ {
			p.Cages = append(p.Cages, core.Cage{Sum: (i+offset)%9 + 1, CellIndices: []int{i}})
		}
		return p
	}
	return []core.Puzzle{single(0), single(3)}
}

func TestLoaderCount(t *testing.T) {
	l := NewLoaderFromPuzzles(poolPuzzles())
	if l.Count() != 2 {
		t.Errorf("Count = %d, want 2", l.Count())
	}
}

func TestGetPuzzleOutOfRange(t *testing.T) {
	l := NewLoaderFromPuzzles(poolPuzzles())
	if _, err := l.GetPuzzle(2); err == nil {
		t.Error("out-of-range index accepted")
	}
	if _, err := l.GetPuzzle(-1); err == nil {
		t.Error("negative index accepted")
	}
}

func TestGetPuzzleBySeedDeterministic(t *testing.T) {
	l := NewLoaderFromPuzzles(poolPuzzles())
	_, i1, err := l.GetPuzzleBySeed("some-seed")
	if err != nil {
		t.Fatalf("GetPuzzleBySeed: %v", err)
	}
	_, i2, err := l.GetPuzzleBySeed("some-seed")
	if err != nil {
		t.Fatalf("GetPuzzleBySeed: %v", err)
	}
	if i1 != i2 {
		t.Errorf("same seed mapped to %d then %d", i1, i2)
	}
}

func TestGetPuzzleBySeedEmpty(t *testing.T) {
	l := NewLoaderFromPuzzles(nil)
	if _, _, err := l.GetPuzzleBySeed("x"); err == nil {
		t.Error("empty pool accepted")
	}
}

func TestGetDailyPuzzle(t *testing.T) {
	l := NewLoaderFromPuzzles(poolPuzzles())
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, i1, err := l.GetDailyPuzzle(day)
	if err != nil {
		t.Fatalf("GetDailyPuzzle: %v", err)
	}
	_, i2, err := l.GetDailyPuzzle(day.Add(3 * time.Hour))
	if err != nil {
		t.Fatalf("GetDailyPuzzle: %v", err)
	}
	if i1 != i2 {
		t.Errorf("same day mapped to %d then %d", i1, i2)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.json")
	file := PuzzleFile{Version: 1, Count: 2, Puzzles: poolPuzzles()}
	data, err := json.Marshal(file)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Count() != 2 {
		t.Errorf("Count = %d, want 2", l.Count())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("missing file accepted")
	}
}
