package core

import (
	"encoding/json"
	"fmt"
	"os"
)

// Cage is the wire form of a killer cage: a target sum over row-major
// cell indices 0..80.
type Cage struct {
	Sum         int   `json:"sum"`
	CellIndices []int `json:"cell_indices"`
}

// Puzzle is the persisted puzzle format. CellValues is optional; 0
// means unknown. Cages must partition the 81 cells.
type Puzzle struct {
	CellValues []int  `json:"cell_values,omitempty"`
	Cages      []Cage `json:"cages"`
}

// ReadPuzzleFile loads a puzzle from a JSON file.
func ReadPuzzleFile(path string) (Puzzle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Puzzle{}, fmt.Errorf("failed to read puzzle file: %w", err)
	}
	return ParsePuzzle(data)
}

// ParsePuzzle decodes a puzzle from JSON bytes.
func ParsePuzzle(data []byte) (Puzzle, error) {
	var p Puzzle
	if err := json.Unmarshal(data, &p); err != nil {
		return Puzzle{}, fmt.Errorf("failed to parse puzzle: %w", err)
	}
	return p, nil
}

// WritePuzzleFile saves a puzzle as indented JSON.
func WritePuzzleFile(path string, p Puzzle) error {
	data, err := json.MarshalIndent(p, "", " ")
	if err != nil {
		return fmt.Errorf("failed to encode puzzle: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write puzzle file: %w", err)
	}
	return nil
}
