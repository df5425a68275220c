// Package analysis provides Monte Carlo equity estimation, hole-card ranges
// and offline equity exports.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	rand "math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-resolver/internal/randutil"
	"github.com/lox/holdem-resolver/poker"
)

var (
	// ErrInvalidHolding is returned when a holding is not two cards disjoint from the board.
	ErrInvalidHolding = errors.New("invalid holding")
	// ErrDeckExhausted is returned when a rollout needs more cards than the deck has.
	ErrDeckExhausted = errors.New("not enough cards in deck")
	// ErrInvalidRollouts is returned for non-positive rollout or opponent counts.
	ErrInvalidRollouts = errors.New("invalid rollout parameters")
)

// EquityResult summarises a Monte Carlo run. Share accumulates 1/|winners|
// per rollout the subject wins or splits.
type EquityResult struct {
	Share    float64
	Wins     uint32
	Ties     uint32
	Rollouts uint32
}

// Equity returns the estimated win probability with fractional tie credit.
func (e EquityResult) Equity() float64 {
	if e.Rollouts == 0 {
		return 0.0
	}
	return e.Share / float64(e.Rollouts)
}

// WinRate returns the fraction of rollouts won outright.
func (e EquityResult) WinRate() float64 {
	if e.Rollouts == 0 {
		return 0.0
	}
	return float64(e.Wins) / float64(e.Rollouts)
}

// TieRate returns the fraction of rollouts that ended in a split pot.
func (e EquityResult) TieRate() float64 {
	if e.Rollouts == 0 {
		return 0.0
	}
	return float64(e.Ties) / float64(e.Rollouts)
}

// ConfidenceInterval returns the 95% confidence interval for equity
func (e EquityResult) ConfidenceInterval() (lower, upper float64) {
	equity := e.Equity()
	n := float64(e.Rollouts)
	if n == 0 {
		return 0.0, 0.0
	}

	se := math.Sqrt((equity * (1.0 - equity)) / n)
	margin := 1.96 * se

	return math.Max(0.0, equity-margin), math.Min(1.0, equity+margin)
}

func (e *EquityResult) add(o EquityResult) {
	e.Share += o.Share
	e.Wins += o.Wins
	e.Ties += o.Ties
	e.Rollouts += o.Rollouts
}

// Estimator runs Monte Carlo rollouts across a fixed number of workers. Each
// call derives fresh worker streams from the estimator seed, so a sequence of
// calls is reproducible for a given seed and worker count.
type Estimator struct {
	seed    int64
	workers int
	logger  zerolog.Logger
	calls   atomic.Int64
}

// EstimatorOption configures an Estimator.
type EstimatorOption func(*Estimator)

// WithSeed sets the root seed.
func WithSeed(seed int64) EstimatorOption {
	return func(e *Estimator) { e.seed = seed }
}

// WithWorkers sets how many goroutines share the rollouts.
func WithWorkers(n int) EstimatorOption {
	return func(e *Estimator) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) EstimatorOption {
	return func(e *Estimator) { e.logger = logger }
}

// NewEstimator creates an estimator. Without options it uses seed 1 and
// min(NumCPU, 8) workers.
func NewEstimator(opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		seed:    1,
		workers: min(runtime.NumCPU(), 8),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EstimateWinProbability estimates the chance that holding wins against
// numOpponents random holdings once board is completed to five cards.
func (e *Estimator) EstimateWinProbability(ctx context.Context, holding, board poker.Hand, numOpponents, rollouts int) (EquityResult, error) {
	if holding.CountCards() != 2 || holding.Overlaps(board) {
		return EquityResult{}, fmt.Errorf("%w: %s with board %s", ErrInvalidHolding, holding, board)
	}
	if n := board.CountCards(); n > 5 {
		return EquityResult{}, fmt.Errorf("board has %d cards: %w", n, poker.ErrInvalidHand)
	}
	if rollouts <= 0 || numOpponents < 1 {
		return EquityResult{}, fmt.Errorf("%w: rollouts=%d opponents=%d", ErrInvalidRollouts, rollouts, numOpponents)
	}
	missing := 5 - board.CountCards()
	if need := 2 + board.CountCards() + 2*numOpponents + missing; need > 52 {
		return EquityResult{}, fmt.Errorf("%w: need %d cards for %d opponents", ErrDeckExhausted, need, numOpponents)
	}

	start := time.Now()
	callSeed := randutil.Derive(e.seed, int(e.calls.Add(1)))
	workers := min(e.workers, rollouts)
	results := make([]EquityResult, workers)
	rngs := randutil.Split(callSeed, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		count := rollouts / workers
		if w < rollouts%workers {
			count++
		}
		g.Go(func() error {
			res, err := simulate(gctx, rngs[w], holding, board, numOpponents, missing, count)
			results[w] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return EquityResult{}, err
	}

	var total EquityResult
	for _, r := range results {
		total.add(r)
	}

	e.logger.Debug().
		Str("holding", holding.String()).
		Str("board", board.String()).
		Int("opponents", numOpponents).
		Int("rollouts", rollouts).
		Float64("equity", total.Equity()).
		Dur("elapsed", time.Since(start)).
		Msg("equity estimated")

	return total, nil
}

func simulate(ctx context.Context, rng *rand.Rand, holding, board poker.Hand, opponents, missing, rollouts int) (EquityResult, error) {
	deck := poker.NewDeck(rng, holding|board)
	hands := make([]poker.Hand, opponents+1)
	hands[0] = holding

	res := EquityResult{Rollouts: uint32(rollouts)}
	for i := 0; i < rollouts; i++ {
		if i&1023 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		deck.Shuffle()
		for o := 1; o <= opponents; o++ {
			hands[o], _ = deck.DealHand(2)
		}
		extra, _ := deck.DealHand(missing)

		winners, err := poker.GetWinners(hands, board|extra)
		if err != nil {
			return res, err
		}
		if winners[0] != 0 {
			continue
		}
		res.Share += 1.0 / float64(len(winners))
		if len(winners) == 1 {
			res.Wins++
		} else {
			res.Ties++
		}
	}
	return res, nil
}
