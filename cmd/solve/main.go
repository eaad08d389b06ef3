// Command solve reads a puzzle JSON file, enumerates its solutions and
// prints them. Exit codes: 0 unique solution, 1 multiple solutions,
// 2 contradiction (no solutions), 3 search depth exhausted.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"killersudoku-api/internal/core"
	"killersudoku-api/internal/killer"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <puzzle.json>\n", os.Args[0])
		os.Exit(2)
	}

	model, err := core.ReadPuzzleFile(os.Args[1])
	if err != nil {
		log.Fatalf("%v", err)
	}

	p, err := killer.FromModel(model)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("Cell solvability distribution: %v", p.SolvabilityDistribution())

	sols, err := killer.Solve(p)
	if err != nil {
		if errors.Is(err, killer.ErrRecursionExhausted) {
			log.Printf("Search depth exhausted; puzzle undecided")
			os.Exit(3)
		}
		log.Fatalf("%v", err)
	}

	for i, s := range sols {
		fmt.Printf("Solution %d:\n", i+1)
		printGrid(s.Grid())
	}

	switch len(sols) {
	case 0:
		log.Printf("No solutions: the puzzle is inconsistent")
		os.Exit(2)
	case 1:
		os.Exit(0)
	default:
		log.Printf("%d solutions found", len(sols))
		os.Exit(1)
	}
}

func printGrid(grid []int) {
	for r := 0; r < 9; r++ {
		for c := 0; c < 9; c++ {
			fmt.Printf("%d ", grid[r*9+c])
			if c == 2 || c == 5 {
				fmt.Print(" ")
			}
		}
		fmt.Println()
		if r == 2 || r == 5 {
			fmt.Println()
		}
	}
}
