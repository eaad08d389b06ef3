// Command render draws a puzzle JSON file as an SVG.
package main

import (
	"fmt"
	"log"
	"os"

	"killersudoku-api/internal/core"
	"killersudoku-api/internal/render"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <puzzle.json> <out.svg>\n", os.Args[0])
		os.Exit(2)
	}

	model, err := core.ReadPuzzleFile(os.Args[1])
	if err != nil {
		log.Fatalf("%v", err)
	}

	svg, err := render.SVG(model)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := os.WriteFile(os.Args[2], svg, 0o644); err != nil {
		log.Fatalf("%v", err)
	}
}
