// Command generate produces Killer Sudoku puzzles. With -n 1 (the
// default) it writes a single puzzle JSON; with larger counts it writes
// a pool file consumable by the server's puzzle loader.
package main

import (
	"encoding/json"
	"flag"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"killersudoku-api/internal/core"
	"killersudoku-api/internal/generator"
	"killersudoku-api/internal/puzzles"
)

func main() {
	count := flag.Int("n", 1, "Number of puzzles to generate")
	output := flag.String("o", "puzzle.json", "Output file path")
	workers := flag.Int("w", 0, "Number of worker goroutines (default: num CPUs)")
	startSeed := flag.Int64("seed", 1, "Starting seed value")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *workers <= 0 {
		*workers = runtime.NumCPU()
	}

	if *count == 1 {
		p := generator.Generate(*startSeed)
		if err := core.WritePuzzleFile(*output, p); err != nil {
			log.WithError(err).Fatal("write failed")
		}
		log.WithFields(logrus.Fields{
			"seed":  *startSeed,
			"cages": len(p.Cages),
			"out":   *output,
		}).Info("puzzle written")
		return
	}

	log.WithFields(logrus.Fields{"count": *count, "workers": *workers}).Info("generating puzzles")
	start := time.Now()

	out := make([]core.Puzzle, *count)
	var generated int64

	work := make(chan int, *count)
	for i := 0; i < *count; i++ {
		work <- i
	}
	close(work)

	// Progress reporter
	done := make(chan bool)
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				g := atomic.LoadInt64(&generated)
				elapsed := time.Since(start)
				log.WithFields(logrus.Fields{
					"done": g,
					"of":   *count,
					"rate": float64(g) / elapsed.Seconds(),
				}).Info("progress")
			case <-done:
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				out[idx] = generator.Generate(*startSeed + int64(idx))
				atomic.AddInt64(&generated, 1)
			}
		}()
	}

	wg.Wait()
	done <- true

	elapsed := time.Since(start)
	log.WithFields(logrus.Fields{
		"count":   *count,
		"elapsed": elapsed.String(),
	}).Info("generation complete")

	file := puzzles.PuzzleFile{Version: 1, Count: *count, Puzzles: out}
	data, err := json.Marshal(file)
	if err != nil {
		log.WithError(err).Fatal("encode failed")
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.WithError(err).Fatal("write failed")
	}
	log.WithField("out", *output).Info("pool written")
}
