package main

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/svdmax/internal/svdmax"
)

func benchmarkCmd() *cli.Command {
	var (
		warmupRuns int64
		benchRuns  int64
		overlapK   int64
	)

	flags := append([]cli.Flag{}, weightFlags()...)
	flags = append(flags, paramFlags()...)
	flags = append(flags, loggingFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "warmup",
			Usage:       "number of warmup runs",
			Value:       3,
			Destination: &warmupRuns,
		},
		&cli.Int64Flag{
			Name:        "runs",
			Usage:       "number of benchmark runs",
			Value:       20,
			Destination: &benchRuns,
		},
		&cli.Int64Flag{
			Name:        "overlap-k",
			Usage:       "top-k size for the exact/approx overlap metric",
			Value:       10,
			Destination: &overlapK,
		},
	)

	return &cli.Command{
		Name:  "benchmark",
		Usage: "Compare the approximate projection against the exact dense path",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyConfig(cmd, loadConfig(), nil)
			log := buildLogger()

			ev, err := buildEvaluator(log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: configure: %v", err), 1)
			}
			info := ev.Projection().Info()

			fmt.Println("=== svdmax Benchmark ===")
			fmt.Printf("Vocab:       %d\n", info.Vocab)
			fmt.Printf("Dim:         %d\n", info.Dim)
			fmt.Printf("PreviewRank: %d\n", info.PreviewRank)
			fmt.Printf("Budget:      %d\n", info.Budget)
			fmt.Printf("CPUs:        %d (GOMAXPROCS %d)\n", runtime.NumCPU(), runtime.GOMAXPROCS(0))
			fmt.Println()

			rng := rand.New(rand.NewSource(seed + 1))
			hidden := make([]float32, info.Dim)

			nextHidden := func() {
				for i := range hidden {
					hidden[i] = (rng.Float32() - 0.5) * 2
				}
			}

			sc := &svdmax.Scratch{}
			for i := int64(0); i < warmupRuns; i++ {
				nextHidden()
				if _, err := ev.Evaluate(svdmax.ModeApprox, hidden, sc); err != nil {
					return cli.Exit(fmt.Sprintf("error: warmup: %v", err), 1)
				}
			}

			var (
				exactTotal  time.Duration
				approxTotal time.Duration
				overlapSum  float64
			)
			k := int(overlapK)
			exactCopy := make([]float32, info.Vocab)

			for i := int64(0); i < benchRuns; i++ {
				nextHidden()

				start := time.Now()
				exact, err := ev.Evaluate(svdmax.ModeExact, hidden, nil)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: exact run %d: %v", i+1, err), 1)
				}
				exactTotal += time.Since(start)
				copy(exactCopy, exact)

				start = time.Now()
				approx, err := ev.Evaluate(svdmax.ModeApprox, hidden, sc)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: approx run %d: %v", i+1, err), 1)
				}
				approxTotal += time.Since(start)

				overlapSum += topKOverlap(exactCopy, approx, k)
			}

			n := float64(benchRuns)
			exactAvg := exactTotal / time.Duration(benchRuns)
			approxAvg := approxTotal / time.Duration(benchRuns)

			fmt.Println("=== Results ===")
			fmt.Printf("%-16s %12s\n", "Path", "Avg latency")
			fmt.Printf("%-16s %12s\n", "exact dense", exactAvg.Round(time.Microsecond))
			fmt.Printf("%-16s %12s\n", "approx", approxAvg.Round(time.Microsecond))
			if approxAvg > 0 {
				fmt.Printf("\nSpeedup:      %.2fx\n", float64(exactAvg)/float64(approxAvg))
			}
			fmt.Printf("Top-%d overlap: %.1f%%\n", k, 100*overlapSum/n)

			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)
			fmt.Printf("\nMemory: %.1f MB alloc, %.1f MB sys\n",
				float64(mem.Alloc)/(1024*1024),
				float64(mem.Sys)/(1024*1024))

			return nil
		},
	}
}

// topKOverlap returns the fraction of the exact top-k indices also present
// in the approximate top-k.
func topKOverlap(exact, approx []float32, k int) float64 {
	et := svdmax.TopK(exact, k)
	at := svdmax.TopK(approx, k)
	inApprox := make(map[int]struct{}, len(at))
	for _, v := range at {
		inApprox[v] = struct{}{}
	}
	hits := 0
	for _, v := range et {
		if _, ok := inApprox[v]; ok {
			hits++
		}
	}
	if len(et) == 0 {
		return 0
	}
	return float64(hits) / float64(len(et))
}
