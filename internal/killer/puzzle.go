package killer

import (
	"golang.org/x/exp/slices"

	"killersudoku-api/internal/core"
	"killersudoku-api/pkg/constants"
)

// Puzzle owns the 81 cell domains and the live cage set. The cage set
// is kept sorted by (cells, sum, uniqueness) and free of duplicates, so
// propagation visits cages in a deterministic order.
type Puzzle struct {
	Board [constants.TotalCells]Cell
	cages []Cage
}

// NewPuzzle returns a board of unrestricted cells carrying the 27
// intrinsic sum-45 uniqueness cages (rows, columns, boxes).
func NewPuzzle() *Puzzle {
	p := &Puzzle{}
	for i := range p.Board {
		p.Board[i] = NewCell()
	}
	for _, cg := range intrinsicCages() {
		p.insertCage(cg)
	}
	return p
}

func intrinsicCages() []Cage {
	out := make([]Cage, 0, constants.IntrinsicCages)
	for i := 0; i < 9; i++ {
		row := make([]int, 9)
		col := make([]int, 9)
		for j := 0; j < 9; j++ {
			row[j] = i*9 + j
			col[j] = j*9 + i
		}
		out = append(out, NewUniqueCage(row, constants.LineSum))
		out = append(out, NewUniqueCage(col, constants.LineSum))
	}
	for bi := 0; bi < 3; bi++ {
		for bj := 0; bj < 3; bj++ {
			box := make([]int, 0, 9)
			for ii := 0; ii < 3; ii++ {
				for jj := 0; jj < 3; jj++ {
					box = append(box, (bi*3+ii)*9+(bj*3+jj))
				}
			}
			out = append(out, NewUniqueCage(box, constants.LineSum))
		}
	}
	return out
}

// insertCage adds a cage to the ordered set, ignoring exact duplicates.
func (p *Puzzle) insertCage(cg Cage) {
	i, found := slices.BinarySearchFunc(p.cages, cg, compareCages)
	if found {
		return
	}
	p.cages = slices.Insert(p.cages, i, cg)
}

// removeCage drops a cage from the set if present.
func (p *Puzzle) removeCage(cg Cage) {
	i, found := slices.BinarySearchFunc(p.cages, cg, compareCages)
	if found {
		p.cages = slices.Delete(p.cages, i, i+1)
	}
}

// Cages returns a snapshot of the live cage set.
func (p *Puzzle) Cages() []Cage {
	return slices.Clone(p.cages)
}

// InitCages installs the user cages and derives the helper cages.
// User cages must partition the board: together with the intrinsic row,
// column and box cages, every cell must sit in exactly 4 cages.
func (p *Puzzle) InitCages(user []Cage) error {
	for _, cg := range user {
		if len(cg.Cells) == 0 {
			return malformed("empty cage")
		}
		if len(cg.Cells) > 9 {
			return malformed("cage %v has %d cells; distinct digits cap cages at 9", cg.Cells, len(cg.Cells))
		}
		for _, idx := range cg.Cells {
			if idx < 0 || idx >= constants.TotalCells {
				return malformed("cell index %d out of range", idx)
			}
		}
	}
	cages := make([]Cage, len(user))
	for i, cg := range user {
		cages[i] = NewUniqueCage(cg.Cells, cg.Sum)
		if len(cages[i].Cells) != len(cg.Cells) {
			return malformed("duplicate cell index in cage %v", cg.Cells)
		}
	}
	for _, cg := range cages {
		p.insertCage(cg)
	}

	var counts [constants.TotalCells]int
	for _, cg := range p.cages {
		for _, idx := range cg.Cells {
			counts[idx]++
		}
	}
	for idx, n := range counts {
		if n != constants.CagesPerCell {
			return malformed("cell %d belongs to %d cages, want %d", idx, n, constants.CagesPerCell)
		}
	}

	p.deriveCages(cages)
	return nil
}

// deriveCages tightens propagation around each row, column and box
// parent. Every user cage fully inside the parent is subtracted from
// it; cages that spill over are merged into an excess region. Small
// residual parents become uniqueness cages; small excess regions become
// sum cages that are unique only when their cells share a row or column,
// since in general they need not share a line.
func (p *Puzzle) deriveCages(user []Cage) {
	var derived []Cage
	for _, parent := range intrinsicCages() {
		work := parent
		excess := emptyCage()
		for _, child := range user {
			inter, parentDiff, childDiff := work.IntersectionAndDifference(child)
			if len(childDiff) == 0 {
				work = Cage{Cells: parentDiff, Sum: work.Sum - child.Sum, Unique: true}
			} else if len(inter) > 0 {
				excess = excess.Merge(child)
			}
		}
		_, excessDiff, parentDiff := excess.IntersectionAndDifference(work)
		if len(parentDiff) != 0 {
			// The residual parent must lie inside the excess region;
			// the user cages partition the board, so anything else is
			// a programmer error.
			panic("cage derivation: residual parent cells outside excess region")
		}
		if len(excessDiff) > 0 && len(excessDiff) <= constants.MaxExcessSize {
			derived = append(derived, NewCage(excessDiff, excess.Sum-work.Sum))
		}
		if len(work.Cells) > 0 && len(work.Cells) <= constants.MaxResidualSize {
			derived = append(derived, NewUniqueCage(work.Cells, work.Sum))
		}
	}
	for _, cg := range derived {
		p.insertCage(cg)
	}
}

// Clone returns an independent copy for a search branch. Cage cell
// lists are shared between clones; they are replaced wholesale, never
// mutated in place.
func (p *Puzzle) Clone() *Puzzle {
	out := &Puzzle{Board: p.Board}
	out.cages = slices.Clone(p.cages)
	return out
}

// Propagate runs the reducer pipeline to a fixed point: one uniform
// pass over the uniqueness cages, then alternating partition and
// pairwise passes until nothing changes. Terminates because every
// reported change either lowers the board's total degrees of freedom or
// splits a cage into two strictly smaller ones.
func (p *Puzzle) Propagate() error {
	for _, cg := range p.Cages() {
		if !cg.Unique {
			continue
		}
		if _, err := cg.restrictUniform(p); err != nil {
			return err
		}
	}
	for {
		changed, err := p.partitionPass()
		if err != nil {
			return err
		}
		ch, err := p.pairPass()
		if err != nil {
			return err
		}
		if !changed && !ch {
			return nil
		}
	}
}

// partitionPass runs partition detection over a snapshot of the cage
// set. Splits are collected into side buffers and applied after the
// iteration, so the set is never mutated while being walked.
func (p *Puzzle) partitionPass() (bool, error) {
	changed := false
	var remove, add []Cage
	for _, cg := range p.Cages() {
		sub, rest, found, err := cg.findPartition(p)
		if err != nil {
			return changed, err
		}
		if !found {
			continue
		}
		changed = true
		remove = append(remove, cg)
		add = append(add, sub, rest)
	}
	for _, cg := range remove {
		p.removeCage(cg)
	}
	for _, cg := range add {
		if len(cg.Cells) == 0 {
			continue
		}
		p.insertCage(cg)
	}
	// The remainder cages carry fresh sums; propagate them immediately.
	for i := 1; i < len(add); i += 2 {
		rest := add[i]
		if len(rest.Cells) == 0 || !rest.Unique {
			continue
		}
		if _, err := rest.restrictUniform(p); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// pairPass runs the two-cell and remainder reducers over every cage.
func (p *Puzzle) pairPass() (bool, error) {
	changed := false
	for _, cg := range p.Cages() {
		if cg.Unique && len(cg.Cells) == 2 {
			ch, err := cg.restrictPairSum(p)
			if err != nil {
				return changed, err
			}
			changed = changed || ch
		}
		ch, err := cg.restrictRemainder(p)
		if err != nil {
			return changed, err
		}
		changed = changed || ch
	}
	return changed, nil
}

// IsSolved reports whether every cell is down to a single digit.
func (p *Puzzle) IsSolved() bool {
	for i := range p.Board {
		if _, ok := p.Board[i].Solution(); !ok {
			return false
		}
	}
	return true
}

// Grid returns the solved digits, 0 for undecided cells.
func (p *Puzzle) Grid() []int {
	out := make([]int, constants.TotalCells)
	for i := range p.Board {
		if d, ok := p.Board[i].Solution(); ok {
			out[i] = d
		}
	}
	return out
}

// DegreesOfFreedom is the sum of all cell domain sizes; it decreases
// monotonically under propagation and bounds termination.
func (p *Puzzle) DegreesOfFreedom() int {
	total := 0
	for i := range p.Board {
		total += p.Board[i].Count()
	}
	return total
}

// SolvabilityDistribution aggregates, over all cells, the size of the
// smallest cage containing each cell. A cheap proxy for how sharply the
// cage set pins the board down.
func (p *Puzzle) SolvabilityDistribution() map[int]int {
	minSize := make([]int, constants.TotalCells)
	for i := range minSize {
		minSize[i] = 9
	}
	for _, cg := range p.cages {
		for _, idx := range cg.Cells {
			if len(cg.Cells) < minSize[idx] {
				minSize[idx] = len(cg.Cells)
			}
		}
	}
	dist := make(map[int]int)
	for _, size := range minSize {
		dist[size]++
	}
	return dist
}

// FromModel builds a solver puzzle from the wire representation. Known
// cell values restrict their cells immediately.
func FromModel(m core.Puzzle) (*Puzzle, error) {
	p := NewPuzzle()
	user := make([]Cage, len(m.Cages))
	for i, cg := range m.Cages {
		user[i] = NewUniqueCage(cg.CellIndices, cg.Sum)
	}
	if err := p.InitCages(user); err != nil {
		return nil, err
	}
	if len(m.CellValues) > 0 {
		if len(m.CellValues) != constants.TotalCells {
			return nil, malformed("cell_values has %d entries, want %d", len(m.CellValues), constants.TotalCells)
		}
		for idx, v := range m.CellValues {
			if v == 0 {
				continue
			}
			if v < 1 || v > 9 {
				return nil, malformed("cell value %d at index %d out of range", v, idx)
			}
			if _, err := p.Board[idx].Restrict(DigitSet(1) << v); err != nil {
				return nil, malformed("cell value %d at index %d contradicts the cages", v, idx)
			}
		}
	}
	return p, nil
}
