package allocator

import (
	"context"
	"math/rand"
	"time"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"go.uber.org/zap"
)

// Stage is how far an attempt got through the pipeline
type Stage int

const (
	StageUnassigned Stage = iota
	StageQuotaConstructed
	StageTwinBalanced
	StageFloorCompacted
	StageEcoAssigned
	StageTimeBalanced
	StageScored
)

func (s Stage) String() string {
	return [...]string{
		"unassigned", "quota-constructed", "twin-balanced", "floor-compacted",
		"eco-assigned", "time-balanced", "scored",
	}[s]
}

// Recorder receives search measurements; see internal/metrics
type Recorder interface {
	ObserveAttempt(strategy string, penalty float64, clean bool, elapsed time.Duration)
	ObserveSearch(completed int, penalty float64, elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAttempt(string, float64, bool, time.Duration) {}
func (nopRecorder) ObserveSearch(int, float64, time.Duration, error) {}

// Candidate is the outcome of one attempt
type Candidate struct {
	Strategy    Strategy
	Allocation  *Allocation
	Score       Score
	Relaxations []models.Relaxation
	Stage       Stage

	TwinSwaps   int
	FloorSwaps  int
	FinishMoves int
}

// Allocator runs the allocation pipeline for one problem
type Allocator struct {
	problem  *Problem
	policy   Policy
	scorer   *Scorer
	logger   *zap.Logger
	recorder Recorder
}

// Option configures an Allocator
type Option func(*Allocator)

// WithLogger sets the logger; the default discards everything
func WithLogger(l *zap.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(a *Allocator) {
		if r != nil {
			a.recorder = r
		}
	}
}

// NewAllocator creates an allocator for a validated problem
func NewAllocator(p *Problem, policy Policy, opts ...Option) *Allocator {
	a := &Allocator{
		problem:  p,
		policy:   policy,
		scorer:   NewScorer(p, policy),
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Problem returns the problem the allocator works on
func (a *Allocator) Problem() *Problem { return a.problem }

// Policy returns the tolerances in use
func (a *Allocator) Policy() Policy { return a.policy }

// Attempt runs the whole pipeline once under a strategy. Cancelling ctx
// between phases discards the attempt.
func (a *Allocator) Attempt(ctx context.Context, s Strategy) (*Candidate, error) {
	start := time.Now()
	log := a.logger.With(zap.String("strategy", s.Name), zap.Int64("seed", s.Seed))
	rng := rand.New(rand.NewSource(s.Seed))
	c := &Candidate{Strategy: s, Stage: StageUnassigned}

	alloc, relaxations, err := construct(a.problem, a.policy, s.order(a.problem.Members, rng), s.AscendingScan)
	if err != nil {
		return nil, err
	}
	c.Stage = StageQuotaConstructed
	b := newBoard(a.problem, a.policy, alloc, log)
	b.relaxations = relaxations

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.TwinSwaps = b.balanceTwins()
	c.Stage = StageTwinBalanced

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.FloorSwaps = b.compactFloors()
	c.Stage = StageFloorCompacted
	if a.policy.RelaxTwinFloors {
		for _, id := range b.floorViolators() {
			b.relax(models.Relaxation{Housekeeper: id, Rule: RuleFloorCap, Detail: "floor span left wide after twin balancing"})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.assignEco(); err != nil {
		return nil, err
	}
	c.Stage = StageEcoAssigned

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.FinishMoves = b.balanceFinishTimes()
	c.Stage = StageTimeBalanced

	c.Allocation = b.alloc
	c.Relaxations = b.relaxations
	c.Score = a.scorer.Score(b.alloc)
	c.Stage = StageScored

	log.Debug("attempt scored",
		zap.Float64("penalty", c.Score.Penalty),
		zap.Int("hard", c.Score.Hard()),
		zap.Int("twin_swaps", c.TwinSwaps),
		zap.Int("floor_swaps", c.FloorSwaps),
		zap.Int("finish_moves", c.FinishMoves),
	)
	a.recorder.ObserveAttempt(s.Name, c.Score.Penalty, c.Score.Clean(a.policy), time.Since(start))
	return c, nil
}
