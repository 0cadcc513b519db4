package montyhall

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// checkEvery is how many trials a worker runs between cancellation checks.
const checkEvery = 4096

// Job names one door/trial configuration to run both strategies on.
type Job struct {
	Name      string
	NumDoors  int
	NumTrials int
}

// Runner fans trials out over worker goroutines.
// Every worker owns a PCG stream derived from the run seed, so no generator is
// shared. With a fixed Seed and Workers count, results are reproducible.
type Runner struct {
	Workers int     // <= 0 means runtime.NumCPU()
	Seed    *uint64 // nil draws a fresh seed per call
	Logger  *slog.Logger
}

// NewRunner returns a Runner with the given worker count and optional seed.
func NewRunner(workers int, seed *uint64) *Runner {
	return &Runner{Workers: workers, Seed: seed}
}

func (r *Runner) logger() *slog.Logger {
	if r == nil || r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) workers(numTrials int) int {
	w := 0
	if r != nil {
		w = r.Workers
	}
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > numTrials {
		w = numTrials
	}
	return w
}

func (r *Runner) seed() uint64 {
	if r != nil && r.Seed != nil {
		return *r.Seed
	}
	return NewSeed()
}

// Estimate is the parallel counterpart of the package-level Estimate.
// A cancelled ctx abandons the run at a trial boundary and returns ctx.Err().
func (r *Runner) Estimate(ctx context.Context, numDoors, numTrials int, s Strategy) (StrategyResult, error) {
	if err := Validate(numDoors, numTrials); err != nil {
		return StrategyResult{}, err
	}
	return r.estimate(ctx, numDoors, numTrials, s, r.seed())
}

func (r *Runner) estimate(ctx context.Context, numDoors, numTrials int, s Strategy, seed uint64) (StrategyResult, error) {
	start := time.Now()
	workers := r.workers(numTrials)
	chunk := numTrials / workers
	rem := numTrials % workers

	// separate stream families per strategy keep switch and stay independent
	// under one seed
	var family uint64
	if s.Switches() {
		family = 1
	}

	wins := make([]int, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		n := chunk
		if w < rem {
			n++
		}
		g.Go(func() error {
			rng := NewStreamRNG(seed, uint64(w)<<1|family)
			switchDoors := s.Switches()
			local := 0
			for i := 0; i < n; i++ {
				if i%checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if RunTrial(numDoors, switchDoors, rng) {
					local++
				}
			}
			wins[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StrategyResult{}, err
	}

	res := StrategyResult{Strategy: s, NumDoors: numDoors, TotalTrials: numTrials}
	for _, v := range wins {
		res.Wins += v
	}
	r.logger().Debug("estimate complete",
		"strategy", s,
		"doors", numDoors,
		"trials", numTrials,
		"wins", res.Wins,
		"workers", workers,
		"elapsed", time.Since(start),
	)
	return res, nil
}

// Compare runs both strategies with the same door and trial counts.
func (r *Runner) Compare(ctx context.Context, numDoors, numTrials int) (Comparison, error) {
	if err := Validate(numDoors, numTrials); err != nil {
		return Comparison{}, err
	}
	return r.compare(ctx, numDoors, numTrials, r.seed())
}

func (r *Runner) compare(ctx context.Context, numDoors, numTrials int, seed uint64) (Comparison, error) {
	sw, err := r.estimate(ctx, numDoors, numTrials, StrategySwitch, seed)
	if err != nil {
		return Comparison{}, err
	}
	st, err := r.estimate(ctx, numDoors, numTrials, StrategyStay, seed)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{NumDoors: numDoors, Seed: seed, Switch: sw, Stay: st}, nil
}

// Sweep compares both strategies for every job, in order.
// All jobs are validated before any trial runs. The first job runs on the
// base seed and later jobs on seeds derived from it; each Comparison records
// the seed it ran on, so Runner.Compare with that seed replays it.
func (r *Runner) Sweep(ctx context.Context, jobs []Job) ([]Comparison, error) {
	for _, j := range jobs {
		if err := Validate(j.NumDoors, j.NumTrials); err != nil {
			return nil, err
		}
	}
	base := r.seed()
	out := make([]Comparison, 0, len(jobs))
	for i, j := range jobs {
		seed := base
		if i > 0 {
			seed = deriveSeed(base, uint64(i))
		}
		cmp, err := r.compare(ctx, j.NumDoors, j.NumTrials, seed)
		if err != nil {
			return out, err
		}
		cmp.Scenario = j.Name
		out = append(out, cmp)
		r.logger().Info("scenario complete",
			"scenario", j.Name,
			"doors", j.NumDoors,
			"trials", j.NumTrials,
			"switch_rate", cmp.Switch.WinRate(),
			"stay_rate", cmp.Stay.WinRate(),
		)
	}
	return out, nil
}

// Replicate runs batches independent estimates and summarizes their win rates.
// The spread of the samples shrinks as numTrials grows.
func (r *Runner) Replicate(ctx context.Context, numDoors, numTrials int, s Strategy, batches int) (Stats, error) {
	if err := Validate(numDoors, numTrials); err != nil {
		return Stats{}, err
	}
	if batches <= 0 {
		return Stats{}, nil
	}
	base := r.seed()
	rates := make([]float64, batches)
	for b := 0; b < batches; b++ {
		res, err := r.estimate(ctx, numDoors, numTrials, s, deriveSeed(base, uint64(b)))
		if err != nil {
			return Stats{}, err
		}
		rates[b] = res.WinRate()
	}
	return calcStats(rates), nil
}

// deriveSeed mixes k into base (splitmix64 finalizer).
func deriveSeed(base, k uint64) uint64 {
	z := base + (k+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
