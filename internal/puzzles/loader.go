package puzzles

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"sync"
	"time"

	"killersudoku-api/internal/core"
	"killersudoku-api/pkg/constants"
)

// PuzzleFile is the top-level structure of a pre-generated pool file.
type PuzzleFile struct {
	Version int           `json:"version"`
	Count   int           `json:"count"`
	Puzzles []core.Puzzle `json:"puzzles"`
}

// Loader manages pre-generated puzzles.
type Loader struct {
	puzzles []core.Puzzle
	mu      sync.RWMutex
}

var (
	globalLoader *Loader
	loadOnce     sync.Once
	loadErr      error
)

// Load reads a puzzle pool from a JSON file.
func Load(path string) (*Loader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle file: %w", err)
	}

	var file PuzzleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse puzzle file: %w", err)
	}

	return &Loader{puzzles: file.Puzzles}, nil
}

// LoadGlobal loads puzzles into the global loader (singleton).
func LoadGlobal(path string) error {
	loadOnce.Do(func() {
		globalLoader, loadErr = Load(path)
	})
	return loadErr
}

// Global returns the global loader instance.
func Global() *Loader {
	return globalLoader
}

// SetGlobal sets the global loader instance (for testing).
func SetGlobal(l *Loader) {
	globalLoader = l
}

// NewLoaderFromPuzzles creates a loader from puzzle data (for testing).
func NewLoaderFromPuzzles(puzzles []core.Puzzle) *Loader {
	return &Loader{puzzles: puzzles}
}

// Count returns the number of puzzles.
func (l *Loader) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.puzzles)
}

// GetPuzzle returns a puzzle by index.
func (l *Loader) GetPuzzle(index int) (core.Puzzle, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.puzzles) {
		return core.Puzzle{}, fmt.Errorf("puzzle index %d out of range (0-%d)", index, len(l.puzzles)-1)
	}
	return l.puzzles[index], nil
}

// GetPuzzleBySeed returns a puzzle for a given seed string.
// Uses FNV hash to deterministically map seed to puzzle index.
func (l *Loader) GetPuzzleBySeed(seed string) (core.Puzzle, int, error) {
	l.mu.RLock()
	count := len(l.puzzles)
	l.mu.RUnlock()

	if count == 0 {
		return core.Puzzle{}, 0, fmt.Errorf("no puzzles loaded")
	}

	h := fnv.New64a()
	h.Write([]byte(seed))
	index := int(h.Sum64() % uint64(count)) //nolint:gosec // count is bounded by slice length

	p, err := l.GetPuzzle(index)
	return p, index, err
}

// GetDailyPuzzle returns the puzzle for a given UTC date.
func (l *Loader) GetDailyPuzzle(date time.Time) (core.Puzzle, int, error) {
	dateStr := date.UTC().Format(constants.DateFormat)
	return l.GetPuzzleBySeed("daily:" + dateStr)
}
