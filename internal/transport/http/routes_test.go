package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"killersudoku-api/internal/core"
	"killersudoku-api/internal/puzzles"
	"killersudoku-api/pkg/config"
)

// canonicalGrid is the shifted Latin-square solution used as a quick,
// trivially unique test puzzle when carved into singleton cages.
func canonicalGrid() []int {
	grid := make([]int, 81)
	for row := 0; row < 9; row++ {
		offset := row*3 + row/3
		for col := 0; col < 9; col++ {
			grid[row*9+col] = (col+offset)%9 + 1
		}
	}
	return grid
}

func singletonPuzzle() core.Puzzle {
	grid := canonicalGrid()
	var p core.Puzzle
	for i, v := range grid {
		p.Cages = append(p.Cages, core.Cage{Sum: v, CellIndices: []int{i}})
	}
	return p
}

func init() {
	puzzles.SetGlobal(puzzles.NewLoaderFromPuzzles([]core.Puzzle{singletonPuzzle()}))
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := &config.Config{Port: "8080"}
	RegisterRoutes(r, cfg)
	return r
}

func TestHealthHandler(t *testing.T) {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("status = %v, want ok", response["status"])
	}
}

func TestSolveHandlerUnique(t *testing.T) {
	router := setupRouter()

	body, _ := json.Marshal(singletonPuzzle())
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/solve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp SolveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Verdict != "unique" {
		t.Errorf("verdict = %q, want unique", resp.Verdict)
	}
	if resp.SolutionCount != 1 || len(resp.Solutions) != 1 {
		t.Fatalf("solution count = %d (%d grids), want 1", resp.SolutionCount, len(resp.Solutions))
	}
	want := canonicalGrid()
	for i, v := range resp.Solutions[0] {
		if v != want[i] {
			t.Fatalf("solution cell %d = %d, want %d", i, v, want[i])
		}
	}
}

func TestSolveHandlerContradiction(t *testing.T) {
	router := setupRouter()

	p := singletonPuzzle()
	// Two cells in the first row forced to the same digit.
	p.Cages[1].Sum = p.Cages[0].Sum
	body, _ := json.Marshal(p)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/solve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp SolveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Verdict != "contradiction" || resp.SolutionCount != 0 {
		t.Errorf("verdict = %q count %d, want contradiction/0", resp.Verdict, resp.SolutionCount)
	}
}

func TestSolveHandlerMalformed(t *testing.T) {
	router := setupRouter()

	p := singletonPuzzle()
	p.Cages = p.Cages[:80] // one cell uncovered
	body, _ := json.Marshal(p)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/solve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestSolveHandlerInvalidJSON(t *testing.T) {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/solve", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestRenderHandler(t *testing.T) {
	router := setupRouter()

	body, _ := json.Marshal(singletonPuzzle())
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/render", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !strings.Contains(w.Body.String(), "<svg") {
		t.Error("response body is not SVG")
	}
}

func TestDailyHandler(t *testing.T) {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/daily", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["date_utc"] == "" {
		t.Error("missing date_utc")
	}
	if _, ok := resp["puzzle"]; !ok {
		t.Error("missing puzzle")
	}
}

func TestPuzzleHandlerFromPool(t *testing.T) {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/puzzle/my-seed", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Puzzle core.Puzzle `json:"puzzle"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(resp.Puzzle.Cages) == 0 {
		t.Error("puzzle has no cages")
	}
	if len(resp.Puzzle.CellValues) != 0 {
		t.Error("solution grid leaked to the client")
	}
}

func TestGenerateHandlerInvalidSeed(t *testing.T) {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/generate?seed=abc", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGenerateHandler(t *testing.T) {
	if testing.Short() {
		t.Skip("full generation is slow")
	}
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/generate?seed=5", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var p core.Puzzle
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	covered := make([]int, 81)
	for _, cg := range p.Cages {
		for _, idx := range cg.CellIndices {
			covered[idx]++
		}
	}
	for idx, n := range covered {
		if n != 1 {
			t.Fatalf("cell %d covered %d times", idx, n)
		}
	}
}
