// Package render draws a Killer Sudoku puzzle as an SVG: the 9×9 grid
// with thick box borders, pale cage fills assigned by graph coloring,
// and each cage's sum printed in its anchor cell.
package render

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/graph/coloring"
	"gonum.org/v1/gonum/graph/simple"

	"killersudoku-api/internal/core"
	"killersudoku-api/pkg/constants"
)

// palette holds pale fills; neighboring cages always get different
// entries, so sums stay readable against the cage boundaries.
var palette = [constants.PaletteSize]string{
	"#fde2e2", "#e2f0fd", "#e2fde8", "#fdf6e2", "#efe2fd",
	"#e2fdf9", "#fde2f4", "#ecfde2", "#e8e8f8",
}

const (
	cell   = constants.SVGCellSize
	margin = 10
)

// SVG renders the puzzle. Cell values, when present and non-zero, are
// drawn in the cell centers.
func SVG(p core.Puzzle) ([]byte, error) {
	cageOf := make([]int, constants.TotalCells)
	for i := range cageOf {
		cageOf[i] = -1
	}
	for id, cg := range p.Cages {
		for _, idx := range cg.CellIndices {
			if idx < 0 || idx >= constants.TotalCells {
				return nil, fmt.Errorf("cage %d: cell index %d out of range", id, idx)
			}
			if cageOf[idx] != -1 {
				return nil, fmt.Errorf("cell %d belongs to more than one cage", idx)
			}
			cageOf[idx] = id
		}
	}
	for idx, id := range cageOf {
		if id == -1 {
			return nil, fmt.Errorf("cell %d belongs to no cage", idx)
		}
	}

	colors, err := colorCages(p, cageOf)
	if err != nil {
		return nil, err
	}

	size := 9*cell + 2*margin
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", size, size, size, size)
	sb.WriteString(`<rect width="100%" height="100%" fill="white"/>` + "\n")

	// Cage fills.
	for idx := 0; idx < constants.TotalCells; idx++ {
		row, col := idx/9, idx%9
		fill := palette[colors[int64(cageOf[idx])]%constants.PaletteSize]
		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`+"\n",
			margin+col*cell, margin+row*cell, cell, cell, fill)
	}

	// Thin cell grid, thick box borders.
	for i := 0; i <= 9; i++ {
		width := 1
		if i%constants.BoxSize == 0 {
			width = 4
		}
		pos := margin + i*cell
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="black" stroke-width="%d"/>`+"\n",
			pos, margin, pos, margin+9*cell, width)
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="black" stroke-width="%d"/>`+"\n",
			margin, pos, margin+9*cell, pos, width)
	}

	// Cage sums in the anchor cells.
	for _, cg := range p.Cages {
		anchor := anchorCell(cg.CellIndices)
		row, col := anchor/9, anchor%9
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-family="sans-serif" font-size="14" fill="#333">%d</text>`+"\n",
			margin+col*cell+4, margin+row*cell+16, cg.Sum)
	}

	// Known cell values.
	if len(p.CellValues) == constants.TotalCells {
		for idx, v := range p.CellValues {
			if v == 0 {
				continue
			}
			row, col := idx/9, idx%9
			fmt.Fprintf(&sb, `<text x="%d" y="%d" font-family="sans-serif" font-size="36" text-anchor="middle" fill="black">%d</text>`+"\n",
				margin+col*cell+cell/2, margin+row*cell+cell/2+12, v)
		}
	}

	sb.WriteString("</svg>\n")
	return []byte(sb.String()), nil
}

// colorCages assigns palette slots by coloring the cage adjacency
// graph: cages are adjacent when any two of their cells touch by a
// king move.
func colorCages(p core.Puzzle, cageOf []int) (map[int64]int, error) {
	g := simple.NewUndirectedGraph()
	for id := range p.Cages {
		g.AddNode(simple.Node(id))
	}
	for idx := 0; idx < constants.TotalCells; idx++ {
		row, col := idx/9, idx%9
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				r, c := row+dr, col+dc
				if (dr == 0 && dc == 0) || r < 0 || r > 8 || c < 0 || c > 8 {
					continue
				}
				a, b := cageOf[idx], cageOf[r*9+c]
				if a != b {
					g.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
				}
			}
		}
	}
	_, colors, err := coloring.DsaturExact(nil, g)
	if err != nil {
		return nil, fmt.Errorf("cage coloring: %w", err)
	}
	return colors, nil
}

// anchorCell is the cage cell with the smallest column, then row.
func anchorCell(cells []int) int {
	best := cells[0]
	for _, idx := range cells[1:] {
		bc, br := best%9, best/9
		ic, ir := idx%9, idx/9
		if ic < bc || (ic == bc && ir < br) {
			best = idx
		}
	}
	return best
}
