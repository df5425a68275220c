package solver

import (
	rand "math/rand/v2"
	"sync"

	"github.com/lox/holdem-resolver/internal/randutil"
	"github.com/lox/holdem-resolver/poker"
	"github.com/lox/holdem-resolver/sdk/analysis"
)

// ValueEstimator scores a depth-limited leaf of the lookahead tree. It
// returns one value vector per player slot, indexed by holding, with slot 0
// being the resolving player.
type ValueEstimator interface {
	Estimate(state RoundState, ranges [2]analysis.HoleRange) [2][]float64
}

// RandomEstimator stands in for a learned value network: each holding in a
// player's range gets a draw from a standard normal, and the opponent gets
// the negated draws masked by their own range.
type RandomEstimator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomEstimator returns an estimator seeded for reproducibility.
func NewRandomEstimator(seed int64) *RandomEstimator {
	return &RandomEstimator{rng: randutil.New(seed)}
}

func (e *RandomEstimator) Estimate(_ RoundState, ranges [2]analysis.HoleRange) [2][]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out [2][]float64
	out[0] = make([]float64, poker.NumHoldings)
	out[1] = make([]float64, poker.NumHoldings)
	for i := 0; i < poker.NumHoldings; i++ {
		v := e.rng.NormFloat64()
		if ranges[0][i] > 0 {
			out[0][i] = v
		}
		if ranges[1][i] > 0 {
			out[1][i] = -v
		}
	}
	return out
}
