package allocator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SearchOptions bounds a search
type SearchOptions struct {
	Attempts int           // number of strategies tried; 0 means DefaultAttempts
	Seed     int64         // base seed; attempt i uses Seed+i
	Timeout  time.Duration // wall-clock budget; 0 means none
	Workers  int           // concurrent attempts; 0 means GOMAXPROCS
}

// DefaultAttempts is the attempt count when none is given
const DefaultAttempts = 24

// AttemptSummary records a finished attempt for diagnostics
type AttemptSummary struct {
	Strategy string  `json:"strategy"`
	Seed     int64   `json:"seed"`
	Penalty  float64 `json:"penalty"`
	Clean    bool    `json:"clean"`
}

// Result is the outcome of a search
type Result struct {
	Best      *Candidate
	Attempts  []AttemptSummary
	Completed int
	Elapsed   time.Duration
}

// Search runs the pipeline under several strategies and keeps the
// lowest-penalty candidate, the earliest one on ties. The first clean
// candidate, in strategy order, ends the search early: later attempts are
// not run, but an earlier attempt with a lower penalty still wins. Without a
// timeout the result depends only on the input and the seed, whatever the
// number of workers.
func (a *Allocator) Search(ctx context.Context, opts SearchOptions) (*Result, error) {
	start := time.Now()
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	strategies := Strategies(opts.Attempts, opts.Seed)
	results := make([]*Candidate, len(strategies))

	// cutoff is the lowest index of a clean candidate seen so far; attempts
	// above it can no longer win.
	var cutoff atomic.Int64
	cutoff.Store(math.MaxInt64)
	lowerCutoff := func(i int64) {
		for {
			cur := cutoff.Load()
			if i >= cur || cutoff.CompareAndSwap(cur, i) {
				return
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range strategies {
		if int64(i) > cutoff.Load() || gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if int64(i) > cutoff.Load() {
				return nil
			}
			c, err := a.Attempt(gctx, strategies[i])
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return err
			}
			results[i] = c
			if c.Score.Clean(a.policy) {
				lowerCutoff(int64(i))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.recorder.ObserveSearch(0, 0, time.Since(start), err)
		a.logger.Warn("allocation search failed", zap.Error(err))
		return nil, err
	}

	res := &Result{}
	for i, c := range results {
		if c == nil || int64(i) > cutoff.Load() {
			continue
		}
		res.Completed++
		res.Attempts = append(res.Attempts, AttemptSummary{
			Strategy: c.Strategy.Name,
			Seed:     c.Strategy.Seed,
			Penalty:  c.Score.Penalty,
			Clean:    c.Score.Clean(a.policy),
		})
		if res.Best == nil || c.Score.Penalty < res.Best.Score.Penalty {
			res.Best = c
		}
	}
	res.Elapsed = time.Since(start)

	if res.Best == nil {
		err := ErrNoCandidate
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %v", ErrNoCandidate, ctx.Err())
		}
		a.recorder.ObserveSearch(0, 0, res.Elapsed, err)
		return nil, err
	}

	a.recorder.ObserveSearch(res.Completed, res.Best.Score.Penalty, res.Elapsed, nil)
	a.logger.Info("allocation search finished",
		zap.String("strategy", res.Best.Strategy.Name),
		zap.Int64("seed", res.Best.Strategy.Seed),
		zap.Float64("penalty", res.Best.Score.Penalty),
		zap.Int("completed", res.Completed),
		zap.Int("relaxations", len(res.Best.Relaxations)),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}
