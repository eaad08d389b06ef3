// Package generator builds Killer Sudoku puzzles by starting from a
// randomized full solution carved into 81 singleton cages, then
// repeatedly merging adjacent cages as long as the solver still proves
// the puzzle unique.
package generator

import (
	"math/rand"

	"golang.org/x/exp/slices"

	"killersudoku-api/internal/core"
	"killersudoku-api/internal/killer"
	"killersudoku-api/pkg/constants"
)

// cage tracks a region of the working puzzle together with the cages it
// touches edge-to-edge; merges only happen across that adjacency.
type cage struct {
	cells    map[int]struct{}
	adjacent map[int]struct{}
}

// Generator holds a full solution grid and the evolving cage cover.
type Generator struct {
	numbers [constants.TotalCells]int
	cages   map[int]*cage
	rng     *rand.Rand
	solver  *killer.Solver
}

// NewCanonical initializes the generator with the canonical shifted
// Latin-square solution and one cage per cell.
func NewCanonical(seed int64) *Generator {
	g := &Generator{
		cages:  make(map[int]*cage, constants.TotalCells),
		rng:    rand.New(rand.NewSource(seed)),
		solver: killer.DefaultSolver(),
	}
	for row := 0; row < 9; row++ {
		offset := row*3 + row/3
		for col := 0; col < 9; col++ {
			g.numbers[row*9+col] = (col+offset)%9 + 1
		}
	}
	for i := 0; i < constants.TotalCells; i++ {
		g.cages[i] = &cage{
			cells:    map[int]struct{}{i: {}},
			adjacent: make(map[int]struct{}),
		}
	}
	link := func(a, b int) {
		g.cages[a].adjacent[b] = struct{}{}
		g.cages[b].adjacent[a] = struct{}{}
	}
	for row := 0; row < 9; row++ {
		for col := 0; col < 8; col++ {
			link(row*9+col, row*9+col+1)
			link(col*9+row, (col+1)*9+row)
		}
	}
	return g
}

// NewRandom randomizes the canonical solution: a digit permutation plus
// row permutations within each band keep the grid a valid solution.
func NewRandom(seed int64) *Generator {
	g := NewCanonical(seed)
	for round := 0; round < 4; round++ {
		g.renumber()
		g.shuffleBands()
	}
	return g
}

// Numbers returns the underlying solution grid.
func (g *Generator) Numbers() []int {
	out := make([]int, constants.TotalCells)
	copy(out, g.numbers[:])
	return out
}

// renumber applies a random digit permutation to the whole grid.
func (g *Generator) renumber() {
	perm := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	g.rng.Shuffle(len(perm), func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})
	for i, v := range g.numbers {
		g.numbers[i] = perm[v-1]
	}
}

// shuffleBands permutes the three rows inside each horizontal band.
func (g *Generator) shuffleBands() {
	var next [constants.TotalCells]int
	for band := 0; band < 3; band++ {
		order := []int{0, 1, 2}
		g.rng.Shuffle(3, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		for r := 0; r < 3; r++ {
			src := (band*3 + order[r]) * 9
			dst := (band*3 + r) * 9
			copy(next[dst:dst+9], g.numbers[src:src+9])
		}
	}
	g.numbers = next
}

func (g *Generator) cageValues(id int) killer.DigitSet {
	var d killer.DigitSet
	for idx := range g.cages[id].cells {
		d = d.Set(g.numbers[idx])
	}
	return d
}

// MergeAllowed is the merge validity predicate: the combined cage must
// keep all digit values distinct and stay small enough to solve by
// combination reasoning.
func (g *Generator) MergeAllowed(a, b int) bool {
	av, bv := g.cageValues(a), g.cageValues(b)
	if av.Intersect(bv) != 0 {
		return false
	}
	return av.Union(bv).Count() <= constants.MaxMergedCage
}

// tryMergeCages merges b into a when the predicate allows it. An
// impossible merge is scrubbed from both adjacency tables so it is
// never weighed again.
func (g *Generator) tryMergeCages(a, b int) bool {
	if !g.MergeAllowed(a, b) {
		delete(g.cages[a].adjacent, b)
		delete(g.cages[b].adjacent, a)
		return false
	}
	for adj := range g.cages[b].adjacent {
		if adj != a {
			g.cages[a].adjacent[adj] = struct{}{}
		}
	}
	for idx := range g.cages[b].cells {
		g.cages[a].cells[idx] = struct{}{}
	}
	delete(g.cages, b)
	for id, cg := range g.cages {
		if _, ok := cg.adjacent[b]; ok {
			delete(cg.adjacent, b)
			if id != a {
				cg.adjacent[a] = struct{}{}
			}
		}
	}
	delete(g.cages[a].adjacent, a)
	return true
}

// tryMergeRandomCages picks one adjacent pair, weighted toward small
// cages (1/(combined size − 1)), and attempts the merge. Returns
// (false, false) when no adjacency is left anywhere.
func (g *Generator) tryMergeRandomCages() (merged, possible bool) {
	type pair struct{ a, b int }
	ids := make([]int, 0, len(g.cages))
	for id := range g.cages {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var pairs []pair
	var weights []int
	seen := make(map[pair]int)
	for _, a := range ids {
		adj := make([]int, 0, len(g.cages[a].adjacent))
		for b := range g.cages[a].adjacent {
			adj = append(adj, b)
		}
		slices.Sort(adj)
		for _, b := range adj {
			key := pair{a, b}
			if a > b {
				key = pair{b, a}
			}
			n := len(g.cages[a].cells) + len(g.cages[b].cells)
			w := 1024 / (n - 1)
			if i, ok := seen[key]; ok {
				weights[i] += w
			} else {
				seen[key] = len(pairs)
				pairs = append(pairs, key)
				weights = append(weights, w)
			}
		}
	}
	if len(pairs) == 0 {
		return false, false
	}

	total := 0
	for _, w := range weights {
		total += w
	}
	pick := g.rng.Intn(total)
	cum := 0
	for i, w := range weights {
		cum += w
		if cum > pick {
			return g.tryMergeCages(pairs[i].a, pairs[i].b), true
		}
	}
	return false, true
}

// mergeRandomCages retries weighted picks until a merge lands or no
// merge is possible anywhere.
func (g *Generator) mergeRandomCages() bool {
	for {
		merged, possible := g.tryMergeRandomCages()
		if !possible {
			return false
		}
		if merged {
			return true
		}
	}
}

func (g *Generator) clone() *Generator {
	out := &Generator{
		numbers: g.numbers,
		cages:   make(map[int]*cage, len(g.cages)),
		rng:     g.rng,
		solver:  g.solver,
	}
	for id, cg := range g.cages {
		cells := make(map[int]struct{}, len(cg.cells))
		for k := range cg.cells {
			cells[k] = struct{}{}
		}
		adjacent := make(map[int]struct{}, len(cg.adjacent))
		for k := range cg.adjacent {
			adjacent[k] = struct{}{}
		}
		out.cages[id] = &cage{cells: cells, adjacent: adjacent}
	}
	return out
}

// EliminateCage removes one cage boundary: merge a random adjacent
// pair, keep the merge only if the puzzle still has exactly one
// solution. Scrubbed adjacency state is carried back across failed
// attempts so hopeless pairs are not retried.
func (g *Generator) EliminateCage() bool {
	for {
		trial := g.clone()
		if !trial.mergeRandomCages() {
			return false
		}
		unique, err := trial.isUnique()
		if err != nil {
			// Undecidable within the search budget counts as failure.
			unique = false
		}
		if unique {
			*g = *trial
			return true
		}
		for id, cg := range g.cages {
			if other, ok := trial.cages[id]; ok {
				cg.adjacent = other.adjacent
			} else {
				cg.adjacent = make(map[int]struct{})
			}
		}
	}
}

func (g *Generator) isUnique() (bool, error) {
	p, err := killer.FromModel(core.Puzzle{Cages: g.Serialize().Cages})
	if err != nil {
		return false, err
	}
	sols, err := g.solver.Solve(p)
	if err != nil {
		return false, err
	}
	return len(sols) == 1, nil
}

// Generate runs the merge loop to exhaustion and returns the puzzle.
func Generate(seed int64) core.Puzzle {
	g := NewRandom(seed)
	for g.EliminateCage() {
	}
	return g.Serialize()
}

// Serialize emits the wire form: the solution grid plus one cage entry
// per region, sums computed from the grid.
func (g *Generator) Serialize() core.Puzzle {
	ids := make([]int, 0, len(g.cages))
	for id := range g.cages {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := core.Puzzle{CellValues: g.Numbers()}
	for _, id := range ids {
		cells := make([]int, 0, len(g.cages[id].cells))
		for idx := range g.cages[id].cells {
			cells = append(cells, idx)
		}
		slices.Sort(cells)
		sum := 0
		for _, idx := range cells {
			sum += g.numbers[idx]
		}
		out.Cages = append(out.Cages, core.Cage{Sum: sum, CellIndices: cells})
	}
	return out
}
