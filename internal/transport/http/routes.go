package http

import (
	"errors"
	"hash/fnv"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"killersudoku-api/internal/core"
	"killersudoku-api/internal/generator"
	"killersudoku-api/internal/killer"
	"killersudoku-api/internal/puzzles"
	"killersudoku-api/internal/render"
	"killersudoku-api/pkg/config"
	"killersudoku-api/pkg/constants"
)

var cfg *config.Config

func RegisterRoutes(r *gin.Engine, c *config.Config) {
	cfg = c

	r.GET("/health", healthHandler)

	api := r.Group("/api")
	{
		api.GET("/daily", dailyHandler)
		api.GET("/puzzle/:seed", puzzleHandler)
		api.GET("/generate", generateHandler)
		api.POST("/solve", solveHandler)
		api.POST("/render", renderHandler)
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": constants.APIVersion,
	})
}

// SolveResponse reports the outcome of a solve request. At most the
// first four solutions are returned, as 81-digit grids in the order the
// solver found them; SolutionCount is the full count.
type SolveResponse struct {
	Verdict       string  `json:"verdict"`
	SolutionCount int     `json:"solution_count"`
	Solutions     [][]int `json:"solutions,omitempty"`
}

func solveHandler(c *gin.Context) {
	var model core.Puzzle
	if err := c.ShouldBindJSON(&model); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json", "detail": err.Error()})
		return
	}

	p, err := killer.FromModel(model)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed_puzzle", "detail": err.Error()})
		return
	}

	solver := killer.DefaultSolver()
	if cfg != nil && cfg.SolveWorkers > 0 {
		solver = &killer.Solver{Workers: cfg.SolveWorkers}
	}
	sols, err := solver.Solve(p)
	if err != nil {
		if errors.Is(err, killer.ErrRecursionExhausted) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "recursion_exhausted"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "solve_failed"})
		return
	}

	resp := SolveResponse{SolutionCount: len(sols)}
	switch len(sols) {
	case 0:
		resp.Verdict = constants.VerdictContradiction
	case 1:
		resp.Verdict = constants.VerdictUnique
	default:
		resp.Verdict = constants.VerdictMultiple
	}
	// Cap the payload; callers mostly care about the verdict.
	for i, s := range sols {
		if i == 4 {
			break
		}
		resp.Solutions = append(resp.Solutions, s.Grid())
	}
	c.JSON(http.StatusOK, resp)
}

func renderHandler(c *gin.Context) {
	var model core.Puzzle
	if err := c.ShouldBindJSON(&model); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json", "detail": err.Error()})
		return
	}
	svg, err := render.SVG(model)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed_puzzle", "detail": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

func generateHandler(c *gin.Context) {
	seed := time.Now().UnixNano()
	if s := c.Query("seed"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_seed"})
			return
		}
		seed = n
	}
	c.JSON(http.StatusOK, generator.Generate(seed))
}

// TodayUTC returns today's UTC date string.
func TodayUTC() string {
	return time.Now().UTC().Format(constants.DateFormat)
}

func dailyHandler(c *gin.Context) {
	dateUTC := TodayUTC()

	// Serve from the pre-generated pool when it is loaded; fall back to
	// deterministic on-demand generation from the date otherwise.
	if loader := puzzles.Global(); loader != nil {
		if p, index, err := loader.GetDailyPuzzle(time.Now()); err == nil {
			c.JSON(http.StatusOK, gin.H{
				"date_utc":     dateUTC,
				"puzzle_index": index,
				"puzzle":       stripped(p),
			})
			return
		}
	}

	h := fnv.New64a()
	h.Write([]byte("daily:" + dateUTC))
	p := generator.Generate(int64(h.Sum64())) //nolint:gosec // wraparound is fine for a seed
	c.JSON(http.StatusOK, gin.H{
		"date_utc": dateUTC,
		"puzzle":   stripped(p),
	})
}

func puzzleHandler(c *gin.Context) {
	seed := c.Param("seed")

	if loader := puzzles.Global(); loader != nil {
		if p, index, err := loader.GetPuzzleBySeed(seed); err == nil {
			c.JSON(http.StatusOK, gin.H{"puzzle_index": index, "puzzle": stripped(p)})
			return
		}
	}

	h := fnv.New64a()
	h.Write([]byte(seed))
	p := generator.Generate(int64(h.Sum64())) //nolint:gosec // wraparound is fine for a seed
	c.JSON(http.StatusOK, gin.H{"puzzle": stripped(p)})
}

// stripped removes the solution grid before a puzzle leaves the server.
func stripped(p core.Puzzle) core.Puzzle {
	return core.Puzzle{Cages: p.Cages}
}
