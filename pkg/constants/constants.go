package constants

// Grid constants
const (
	GridSize   = 9
	BoxSize    = 3
	TotalCells = 81
	LineSum    = 45
)

// Cage constants
const (
	IntrinsicCages  = 27 // 9 rows + 9 columns + 9 boxes
	CagesPerCell    = 4  // row + column + box + one user cage
	MaxResidualSize = 8  // largest derived residual-parent cage
	MaxExcessSize   = 4  // largest derived excess cage
	MaxMergedCage   = 7  // generator refuses merges beyond this size
)

// Solver limits
const (
	MaxSearchDepth     = 10
	SolutionCountLimit = 2
)

// Render
const (
	SVGCellSize = 80
	PaletteSize = 9
)

// Solve verdicts
const (
	VerdictUnique        = "unique"
	VerdictMultiple      = "multiple"
	VerdictContradiction = "contradiction"
)

// API version
const APIVersion = "0.1.0"

// Default ports
const DefaultPort = "8080"

// Date format
const DateFormat = "2006-01-02"
