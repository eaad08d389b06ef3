package killer

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"killersudoku-api/pkg/constants"
)

// Solver enumerates all completions of a puzzle by propagation plus
// speculative search. Workers bounds the number of parallel top-level
// branches; deeper branches run sequentially so the total goroutine
// count stays small.
type Solver struct {
	Workers int
}

// Solve enumerates every solution of the puzzle. The input is left
// untouched; each branch owns a full clone. Solutions are ordered by
// the digits tried at each guess cell, ascending, so the result list is
// deterministic for a fixed input. Returns ErrRecursionExhausted when
// the search needs more than MaxSearchDepth nested guesses.
func Solve(p *Puzzle) ([]*Puzzle, error) {
	return DefaultSolver().Solve(p)
}

// DefaultSolver uses one worker per CPU.
func DefaultSolver() *Solver {
	return &Solver{Workers: runtime.GOMAXPROCS(0)}
}

func (s *Solver) Solve(p *Puzzle) ([]*Puzzle, error) {
	return s.solve(p.Clone(), 0)
}

func (s *Solver) solve(p *Puzzle, depth int) ([]*Puzzle, error) {
	if err := p.Propagate(); err != nil {
		// Contradictions are local to the branch: it simply yields no
		// solutions.
		return nil, nil
	}
	if p.IsSolved() {
		return []*Puzzle{p}, nil
	}
	if depth >= constants.MaxSearchDepth {
		return nil, ErrRecursionExhausted
	}

	guess := s.chooseGuessCell(p)
	digits := p.Board[guess].Values().Digits()
	branches := make([][]*Puzzle, len(digits))

	run := func(i int) func() error {
		digit := digits[i]
		return func() error {
			child := p.Clone()
			if _, err := child.Board[guess].Restrict(DigitSet(1) << digit); err != nil {
				return nil
			}
			sols, err := s.solve(child, depth+1)
			if err != nil {
				return err
			}
			branches[i] = sols
			return nil
		}
	}

	if depth == 0 && s.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(s.Workers)
		for i := range digits {
			g.Go(run(i))
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range digits {
			if err := run(i)(); err != nil {
				return nil, err
			}
		}
	}

	var out []*Puzzle
	for _, sols := range branches {
		out = append(out, sols...)
	}
	return out, nil
}

// chooseGuessCell picks the unsolved cell with the highest ratio of
// uniqueness-cage peers to domain size; forks on constrained cells
// prune fastest. Ties break toward the lowest cell index.
func (s *Solver) chooseGuessCell(p *Puzzle) int {
	var peerCount [constants.TotalCells]int
	for _, cg := range p.cages {
		if !cg.Unique {
			continue
		}
		for _, idx := range cg.Cells {
			peerCount[idx] += len(cg.Cells) - 1
		}
	}

	best := -1
	for idx := range p.Board {
		n := p.Board[idx].Count()
		if n < 2 {
			continue
		}
		if best < 0 {
			best = idx
			continue
		}
		// Compare peers/count without division.
		if peerCount[idx]*p.Board[best].Count() > peerCount[best]*n {
			best = idx
		}
	}
	return best
}
