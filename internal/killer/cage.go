package killer

import (
	"fmt"
	"math/bits"

	"golang.org/x/exp/slices"
)

// Cage is a set of cell indices whose digits must add to Sum. When
// Unique is set the digits must also be pairwise distinct. Cages are
// value-typed: reducers receive the board explicitly and never hold a
// back-reference to the puzzle.
type Cage struct {
	Cells  []int
	Sum    int
	Unique bool
}

// NewCage builds a cage over the given cells. Uniqueness is set
// automatically when all cells share a row or a column, since the
// Sudoku line rule already forces distinct digits there.
func NewCage(cells []int, sum int) Cage {
	sorted := slices.Clone(cells)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return Cage{Cells: sorted, Sum: sum, Unique: sharesLine(sorted)}
}

// NewUniqueCage builds a cage with uniqueness explicitly declared.
func NewUniqueCage(cells []int, sum int) Cage {
	cg := NewCage(cells, sum)
	cg.Unique = true
	return cg
}

// emptyCage is the neutral element for Merge.
func emptyCage() Cage {
	return Cage{}
}

func (cg Cage) isEmpty() bool {
	return len(cg.Cells) == 0
}

// sharesLine reports whether every cell lies in one row or one column.
func sharesLine(cells []int) bool {
	if len(cells) == 0 {
		return false
	}
	sameRow, sameCol := true, true
	r0, c0 := cells[0]/9, cells[0]%9
	for _, idx := range cells[1:] {
		if idx/9 != r0 {
			sameRow = false
		}
		if idx%9 != c0 {
			sameCol = false
		}
	}
	return sameRow || sameCol
}

// Merge combines two cages: a sort-merge of the index lists and the sum
// of the targets. Uniqueness survives only when it is provable from the
// merged cell positions.
func (cg Cage) Merge(other Cage) Cage {
	if cg.isEmpty() {
		return Cage{Cells: slices.Clone(other.Cells), Sum: other.Sum, Unique: other.Unique}
	}
	if other.isEmpty() {
		return Cage{Cells: slices.Clone(cg.Cells), Sum: cg.Sum, Unique: cg.Unique}
	}
	merged := make([]int, 0, len(cg.Cells)+len(other.Cells))
	i, j := 0, 0
	for i < len(cg.Cells) && j < len(other.Cells) {
		switch {
		case cg.Cells[i] < other.Cells[j]:
			merged = append(merged, cg.Cells[i])
			i++
		case cg.Cells[i] > other.Cells[j]:
			merged = append(merged, other.Cells[j])
			j++
		default:
			merged = append(merged, cg.Cells[i])
			i++
			j++
		}
	}
	merged = append(merged, cg.Cells[i:]...)
	merged = append(merged, other.Cells[j:]...)
	return Cage{Cells: merged, Sum: cg.Sum + other.Sum, Unique: sharesLine(merged)}
}

// IntersectionAndDifference splits two sorted index lists in one pass,
// returning (cg∩other, cg\other, other\cg), each sorted.
func (cg Cage) IntersectionAndDifference(other Cage) (inter, aDiff, bDiff []int) {
	i, j := 0, 0
	for i < len(cg.Cells) && j < len(other.Cells) {
		switch {
		case cg.Cells[i] < other.Cells[j]:
			aDiff = append(aDiff, cg.Cells[i])
			i++
		case cg.Cells[i] > other.Cells[j]:
			bDiff = append(bDiff, other.Cells[j])
			j++
		default:
			inter = append(inter, cg.Cells[i])
			i++
			j++
		}
	}
	aDiff = append(aDiff, cg.Cells[i:]...)
	bDiff = append(bDiff, other.Cells[j:]...)
	return inter, aDiff, bDiff
}

// PossibleSums returns the mask of sums reachable by the cage's cells,
// by bit-shifted convolution over each member's domain.
func (cg Cage) PossibleSums(p *Puzzle) SumSet {
	acc := SumSet(1)
	for _, idx := range cg.Cells {
		acc = p.Board[idx].FoldPossibleSums(acc)
	}
	return acc
}

func (cg Cage) String() string {
	return fmt.Sprintf("%v=%d", cg.Cells, cg.Sum)
}

// compareCages orders cages by (cells, sum, uniqueness); the puzzle's
// cage set relies on this for deterministic iteration.
func compareCages(a, b Cage) int {
	if c := slices.Compare(a.Cells, b.Cells); c != 0 {
		return c
	}
	if a.Sum != b.Sum {
		if a.Sum < b.Sum {
			return -1
		}
		return 1
	}
	switch {
	case a.Unique == b.Unique:
		return 0
	case !a.Unique:
		return -1
	default:
		return 1
	}
}

// restrictUniform replaces every member cell's domain with its
// intersection with the union of all |cells|-subsets of {1..9} summing
// to the target. Only meaningful for uniqueness cages.
func (cg Cage) restrictUniform(p *Puzzle) (bool, error) {
	union := CombinationsUnion(len(cg.Cells), cg.Sum)
	changed := false
	for _, idx := range cg.Cells {
		ch, err := p.Board[idx].Restrict(union)
		if err != nil {
			return changed, err
		}
		changed = changed || ch
	}
	return changed, nil
}

// complementToSum maps a domain mask to the set of digits d such that
// sum-d lies in the mask, via a single bit reversal.
func complementToSum(m DigitSet, sum int) DigitSet {
	if sum < 1 || sum > 63 {
		return 0
	}
	rev := bits.Reverse64(uint64(m)) >> (64 - sum - 1)
	return DigitSet(rev) & AllDigits()
}

// restrictPairSum is the two-cell uniqueness reducer: each cell keeps
// only digits whose complement to the target survives in its peer.
// Both directions are linear in the mask, so one symmetric pass reaches
// the fixed point; the loop guards against rounding that reasoning.
func (cg Cage) restrictPairSum(p *Puzzle) (bool, error) {
	a, b := cg.Cells[0], cg.Cells[1]
	changed := false
	for {
		ch1, err := p.Board[a].Restrict(complementToSum(p.Board[b].Values(), cg.Sum))
		if err != nil {
			return changed, err
		}
		ch2, err := p.Board[b].Restrict(complementToSum(p.Board[a].Values(), cg.Sum))
		if err != nil {
			return changed, err
		}
		if !ch1 && !ch2 {
			return changed, nil
		}
		changed = true
	}
}

// restrictRemainder subtracts solved member cells from the cage and
// sharpens whatever is left: one unsolved cell is pinned to the
// remaining sum, two unsolved cells restrict each other pairwise, and
// three or more are left to the uniform and partition reducers.
func (cg Cage) restrictRemainder(p *Puzzle) (bool, error) {
	var solvedMask DigitSet
	solvedSum := 0
	var unsolved []int
	for _, idx := range cg.Cells {
		if d, ok := p.Board[idx].Solution(); ok {
			if cg.Unique && solvedMask.Has(d) {
				return false, ErrContradiction
			}
			solvedMask = solvedMask.Set(d)
			solvedSum += d
		} else {
			unsolved = append(unsolved, idx)
		}
	}
	remaining := cg.Sum - solvedSum
	if remaining < 0 {
		return false, ErrContradiction
	}
	numbers := AllDigits()
	if cg.Unique {
		numbers = numbers.Subtract(solvedMask)
	}

	switch len(unsolved) {
	case 0:
		if remaining != 0 {
			return false, ErrContradiction
		}
		return false, nil
	case 1:
		var mask DigitSet
		if remaining >= 1 && remaining <= 9 {
			mask = DigitSet(1) << remaining
		}
		return p.Board[unsolved[0]].Restrict(mask & numbers)
	case 2:
		a, b := unsolved[0], unsolved[1]
		changed := false
		if cg.Unique {
			for _, idx := range []int{a, b} {
				ch, err := p.Board[idx].Restrict(numbers)
				if err != nil {
					return changed, err
				}
				changed = changed || ch
			}
		}
		sums := SumSet(1) << remaining
		for {
			na := p.Board[a].pairwiseRestriction(p.Board[b], sums, cg.Unique)
			ch1, err := p.Board[a].Restrict(na.Values())
			if err != nil {
				return changed, err
			}
			nb := p.Board[b].pairwiseRestriction(p.Board[a], sums, cg.Unique)
			ch2, err := p.Board[b].Restrict(nb.Values())
			if err != nil {
				return changed, err
			}
			if !ch1 && !ch2 {
				return changed, nil
			}
			changed = true
		}
	default:
		return false, nil
	}
}

// findPartition looks for a sub-cage hidden inside a uniqueness cage.
// The values criterion finds the smallest cell subset whose domains
// cover exactly as many digits as there are cells; the cells criterion
// is its dual over digits, and is exact only when the cage's combined
// domain has exactly one digit per cell, so it is gated on that. The
// first hit at the smallest subset size wins.
//
// On success the member domains are already restricted; the returned
// sub and rest cages must replace the original in the cage set.
func (cg Cage) findPartition(p *Puzzle) (sub, rest Cage, found bool, err error) {
	n := len(cg.Cells)
	if !cg.Unique || n < 2 {
		return Cage{}, Cage{}, false, nil
	}

	subCells, digits, ok := cg.valuesCriterion(p)
	if !ok {
		subCells, digits, ok = cg.cellsCriterion(p)
	}
	if !ok {
		return Cage{}, Cage{}, false, nil
	}

	complement := AllDigits().Subtract(digits)
	var restCells []int
	for _, idx := range cg.Cells {
		if slices.Contains(subCells, idx) {
			if _, err := p.Board[idx].Restrict(digits); err != nil {
				return Cage{}, Cage{}, false, err
			}
		} else {
			restCells = append(restCells, idx)
			if _, err := p.Board[idx].Restrict(complement); err != nil {
				return Cage{}, Cage{}, false, err
			}
		}
	}

	subSum := digits.Sum()
	sub = Cage{Cells: subCells, Sum: subSum, Unique: true}
	rest = Cage{Cells: restCells, Sum: cg.Sum - subSum, Unique: true}
	return sub, rest, true, nil
}

// valuesCriterion searches cell subsets in ascending size for one whose
// domain union has exactly as many digits as cells. Cells are visited
// in ascending domain size so that pruning on the running union bites
// early: a partial union already wider than the target size is dead.
func (cg Cage) valuesCriterion(p *Puzzle) ([]int, DigitSet, bool) {
	n := len(cg.Cells)
	order := slices.Clone(cg.Cells)
	slices.SortStableFunc(order, func(a, b int) int {
		return p.Board[a].Count() - p.Board[b].Count()
	})

	var chosen []int
	var dfs func(start, r int, union DigitSet) (DigitSet, bool)
	dfs = func(start, r int, union DigitSet) (DigitSet, bool) {
		if len(chosen) == r {
			if union.Count() == r {
				return union, true
			}
			return 0, false
		}
		for i := start; i < n; i++ {
			next := union.Union(p.Board[order[i]].Values())
			if next.Count() > r {
				continue
			}
			chosen = append(chosen, order[i])
			if u, ok := dfs(i+1, r, next); ok {
				return u, true
			}
			chosen = chosen[:len(chosen)-1]
		}
		return 0, false
	}

	for r := 1; r < n; r++ {
		chosen = chosen[:0]
		if union, ok := dfs(0, r, 0); ok {
			cells := slices.Clone(chosen)
			slices.Sort(cells)
			return cells, union, true
		}
	}
	return nil, 0, false
}

// cellsCriterion searches digit subsets whose host cells number exactly
// the subset size. Sound only when the cage's combined domain has
// exactly one digit per cell (then every digit must actually be used).
func (cg Cage) cellsCriterion(p *Puzzle) ([]int, DigitSet, bool) {
	n := len(cg.Cells)
	var unionAll DigitSet
	for _, idx := range cg.Cells {
		unionAll = unionAll.Union(p.Board[idx].Values())
	}
	if unionAll.Count() != n {
		return nil, 0, false
	}

	digits := unionAll.Digits()
	// hosts[k] is a position mask over the cage's cells for digit k.
	hosts := make(map[int]uint16, len(digits))
	for _, d := range digits {
		var m uint16
		for pos, idx := range cg.Cells {
			if p.Board[idx].Allows(d) {
				m |= 1 << pos
			}
		}
		hosts[d] = m
	}
	slices.SortStableFunc(digits, func(a, b int) int {
		return bits.OnesCount16(hosts[a]) - bits.OnesCount16(hosts[b])
	})

	var chosen []int
	var dfs func(start, r int, hostUnion uint16) (uint16, bool)
	dfs = func(start, r int, hostUnion uint16) (uint16, bool) {
		if len(chosen) == r {
			if bits.OnesCount16(hostUnion) == r {
				return hostUnion, true
			}
			return 0, false
		}
		for i := start; i < len(digits); i++ {
			next := hostUnion | hosts[digits[i]]
			if bits.OnesCount16(next) > r {
				continue
			}
			chosen = append(chosen, digits[i])
			if u, ok := dfs(i+1, r, next); ok {
				return u, true
			}
			chosen = chosen[:len(chosen)-1]
		}
		return 0, false
	}

	for r := 1; r < n; r++ {
		chosen = chosen[:0]
		if hostUnion, ok := dfs(0, r, 0); ok {
			var cells []int
			for pos, idx := range cg.Cells {
				if hostUnion&(1<<pos) != 0 {
					cells = append(cells, idx)
				}
			}
			return cells, NewDigitSet(chosen), true
		}
	}
	return nil, 0, false
}
