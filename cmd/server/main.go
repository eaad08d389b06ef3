package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"killersudoku-api/internal/puzzles"
	httpTransport "killersudoku-api/internal/transport/http"
	"killersudoku-api/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	workers := cfg.SolveWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log.Printf("Solver runs up to %d parallel branches per request", workers)

	// Serving a daily puzzle from a pre-generated pool is much cheaper
	// than running the merge-and-verify generator per request; fall back
	// to on-demand generation only when no pool file is available.
	if err := puzzles.LoadGlobal(cfg.PuzzlesFile); err != nil {
		log.Printf("Warning: no puzzle pool at %s: %v", cfg.PuzzlesFile, err)
		log.Println("Daily and seeded puzzles will be generated on demand")
	} else {
		log.Printf("Loaded %d pre-generated puzzles from %s", puzzles.Global().Count(), cfg.PuzzlesFile)
	}

	r := gin.Default()

	httpTransport.RegisterRoutes(r, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: r,
		// Solve and generate requests can legitimately run for a while;
		// only bound the read side.
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting killer sudoku API on port %s", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
