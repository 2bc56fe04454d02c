// Package bench measures solve time across chain sizes to show the cubic
// growth of the interval DP.
package bench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/raphaelgruber/chainburst/internal/generate"
	"github.com/raphaelgruber/chainburst/internal/solver"
)

// Defaults mirror the reference benchmark run.
const (
	DefaultTrials = 5
	DefaultSeed   = 123
)

// DefaultSizes returns 100, 200, ..., 1200.
func DefaultSizes() []int {
	sizes := make([]int, 0, 12)
	for n := 100; n <= 1200; n += 100 {
		sizes = append(sizes, n)
	}
	return sizes
}

// Config controls a benchmark run.
type Config struct {
	Sizes        []int
	Trials       int
	MaxPotential int64
	Seed         uint64
	TieBreak     solver.TieBreak
}

// DefaultConfig returns the reference benchmark configuration.
func DefaultConfig() Config {
	return Config{
		Sizes:        DefaultSizes(),
		Trials:       DefaultTrials,
		MaxPotential: generate.DefaultMaxPotential,
		Seed:         DefaultSeed,
	}
}

// Result is the timing summary for one chain size.
type Result struct {
	N      int
	NCubed float64
	Mean   time.Duration
	StdDev time.Duration
	Energy uint64
}

// Run benchmarks every size in cfg. onResult, if non-nil, is called after
// each size completes. Cancellation is checked between trials; the results
// gathered so far are returned with the context error.
func Run(ctx context.Context, cfg Config, onResult func(Result)) ([]Result, error) {
	if cfg.Trials < 1 {
		return nil, errors.New("trials must be at least 1")
	}
	if len(cfg.Sizes) == 0 {
		return nil, errors.New("no sizes to benchmark")
	}

	results := make([]Result, 0, len(cfg.Sizes))
	samples := make([]time.Duration, cfg.Trials)

	for _, n := range cfg.Sizes {
		c, err := generate.Chain(generate.Params{N: n, MaxPotential: cfg.MaxPotential, Seed: cfg.Seed})
		if err != nil {
			return results, fmt.Errorf("generate chain of %d items: %w", n, err)
		}

		var energy uint64
		for trial := range cfg.Trials {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			start := time.Now()
			res := solver.Solve(c, cfg.TieBreak)
			samples[trial] = time.Since(start)
			energy = res.Energy
		}

		mean, stddev := meanStdDev(samples)
		r := Result{
			N:      n,
			NCubed: math.Pow(float64(n), 3),
			Mean:   mean,
			StdDev: stddev,
			Energy: energy,
		}
		results = append(results, r)
		if onResult != nil {
			onResult(r)
		}
	}

	return results, nil
}

// meanStdDev returns the mean and population standard deviation.
func meanStdDev(samples []time.Duration) (time.Duration, time.Duration) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean := sum / float64(len(samples))

	var sq float64
	for _, s := range samples {
		d := float64(s) - mean
		sq += d * d
	}
	return time.Duration(mean), time.Duration(math.Sqrt(sq / float64(len(samples))))
}
