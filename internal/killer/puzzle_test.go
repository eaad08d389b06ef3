package killer

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"killersudoku-api/internal/core"
	"killersudoku-api/pkg/constants"
)

func loadFixture(t *testing.T) core.Puzzle {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "puzzle_0.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var p core.Puzzle
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return p
}

func TestNewPuzzleIntrinsicCages(t *testing.T) {
	p := NewPuzzle()
	cages := p.Cages()
	if len(cages) != constants.IntrinsicCages {
		t.Fatalf("intrinsic cage count = %d, want %d", len(cages), constants.IntrinsicCages)
	}
	for _, cg := range cages {
		if cg.Sum != constants.LineSum {
			t.Errorf("intrinsic cage %v sum = %d, want 45", cg.Cells, cg.Sum)
		}
		if !cg.Unique {
			t.Errorf("intrinsic cage %v not unique", cg.Cells)
		}
		if len(cg.Cells) != 9 {
			t.Errorf("intrinsic cage %v has %d cells", cg.Cells, len(cg.Cells))
		}
	}
}

func TestInitCagesFixture(t *testing.T) {
	model := loadFixture(t)
	p := NewPuzzle()
	user := make([]Cage, len(model.Cages))
	for i, cg := range model.Cages {
		user[i] = NewUniqueCage(cg.CellIndices, cg.Sum)
	}
	if err := p.InitCages(user); err != nil {
		t.Fatalf("InitCages: %v", err)
	}
	if got := len(p.Cages()); got <= constants.IntrinsicCages+len(user) {
		t.Errorf("no cages derived: %d cages total", got)
	}
}

func TestInitCagesRejectsUnbalanced(t *testing.T) {
	p := NewPuzzle()
	// A single cage cannot partition the board.
	err := p.InitCages([]Cage{NewUniqueCage([]int{0, 1, 2}, 6)})
	var malformedErr *MalformedPuzzleError
	if !errors.As(err, &malformedErr) {
		t.Fatalf("err = %v, want MalformedPuzzleError", err)
	}
}

func TestInitCagesRejectsBadIndex(t *testing.T) {
	p := NewPuzzle()
	err := p.InitCages([]Cage{{Cells: []int{81}, Sum: 5}})
	var malformedErr *MalformedPuzzleError
	if !errors.As(err, &malformedErr) {
		t.Fatalf("err = %v, want MalformedPuzzleError", err)
	}
}

func TestFromModelRejectsOverlap(t *testing.T) {
	model := loadFixture(t)
	// Add a cage overlapping the first one: cells 0 and 1 now sit in 5 cages.
	model.Cages = append(model.Cages, core.Cage{Sum: 11, CellIndices: []int{0, 1}})
	if _, err := FromModel(model); err == nil {
		t.Fatal("overlapping cages accepted")
	}
}

func TestPropagateMonotonic(t *testing.T) {
	model := loadFixture(t)
	p, err := FromModel(model)
	if err != nil {
		t.Fatalf("FromModel: %v", err)
	}
	before := p.DegreesOfFreedom()
	if err := p.Propagate(); err != nil {
		t.Fatalf("Propagate: %v", err)
	}
	after := p.DegreesOfFreedom()
	if after > before {
		t.Errorf("degrees of freedom grew: %d -> %d", before, after)
	}
	if after < constants.TotalCells {
		t.Errorf("degrees of freedom fell below 81: %d", after)
	}
}

func TestCloneIndependence(t *testing.T) {
	model := loadFixture(t)
	p, err := FromModel(model)
	if err != nil {
		t.Fatalf("FromModel: %v", err)
	}
	clone := p.Clone()
	if _, err := clone.Board[0].Restrict(DigitSet(1) << 5); err != nil {
		t.Fatalf("Restrict: %v", err)
	}
	if clone.Board[0].Count() != 1 {
		t.Fatalf("clone cell not restricted: %v", clone.Board[0].Values())
	}
	if p.Board[0].Count() == 1 {
		t.Error("clone restriction leaked into the original")
	}
}

func TestSolvabilityDistribution(t *testing.T) {
	p := NewPuzzle()
	dist := p.SolvabilityDistribution()
	if dist[9] != constants.TotalCells {
		t.Errorf("fresh board distribution = %v, want all cells at 9", dist)
	}
}
