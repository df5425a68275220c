package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/lox/holdem-resolver/poker"
)

// ErrDegenerateRange reports that a range had no mass left to normalise and
// was replaced by a uniform distribution over the holdings still possible.
var ErrDegenerateRange = errors.New("degenerate range")

// HoleRange is a probability vector over the 1326 holdings in canonical
// poker.HoldingAt order.
type HoleRange []float64

// NewHoleRange returns an all-zero range.
func NewHoleRange() HoleRange {
	return make(HoleRange, poker.NumHoldings)
}

// UniformRange spreads mass evenly over every holding disjoint from known.
func UniformRange(known poker.Hand) HoleRange {
	r := NewHoleRange()
	r.fillUniform(known)
	return r
}

func (r HoleRange) fillUniform(known poker.Hand) {
	count := 0
	for i := range r {
		if poker.HoldingAt(i).Overlaps(known) {
			r[i] = 0
			continue
		}
		r[i] = 1
		count++
	}
	if count == 0 {
		return
	}
	w := 1.0 / float64(count)
	for i := range r {
		r[i] *= w
	}
}

// Clone returns an independent copy.
func (r HoleRange) Clone() HoleRange {
	out := make(HoleRange, len(r))
	copy(out, r)
	return out
}

// Sum returns the total mass.
func (r HoleRange) Sum() float64 {
	total := 0.0
	for _, v := range r {
		total += v
	}
	return total
}

// Mask returns 1 for every holding with positive mass and 0 elsewhere.
func (r HoleRange) Mask() []float64 {
	out := make([]float64, len(r))
	for i, v := range r {
		if v > 0 {
			out[i] = 1
		}
	}
	return out
}

// Normalize rescales r to sum to one. When no usable mass remains, r is reset
// to uniform over holdings disjoint from known and ErrDegenerateRange is
// returned; r is valid either way.
func (r HoleRange) Normalize(known poker.Hand) error {
	total := r.Sum()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		r.fillUniform(known)
		return ErrDegenerateRange
	}
	inv := 1.0 / total
	for i := range r {
		r[i] *= inv
	}
	return nil
}

// RemoveCards applies a public-card update: every holding containing one of
// cards is zeroed and the remainder renormalised. known lists the cards seen
// before this update; a degenerate range falls back to uniform over holdings
// disjoint from both.
func (r HoleRange) RemoveCards(cards, known poker.Hand) error {
	if cards == 0 {
		return nil
	}
	for i := range r {
		if poker.HoldingAt(i).Overlaps(cards) {
			r[i] = 0
		}
	}
	return r.Normalize(known | cards)
}

// BayesianUpdate conditions prior on an observed action. likelihood[i] is
// the probability that holding i takes the action and tableTotal is the sum
// of the whole strategy table the column came from, so P(action) is the
// column mass divided by tableTotal. The posterior is renormalised; known
// lists the public cards used for the uniform fallback.
func BayesianUpdate(prior HoleRange, likelihood []float64, tableTotal float64, known poker.Hand) (HoleRange, error) {
	if len(prior) != len(likelihood) {
		return nil, fmt.Errorf("range has %d entries, likelihood has %d", len(prior), len(likelihood))
	}
	posterior := NewHoleRange()
	columnTotal := 0.0
	for _, p := range likelihood {
		columnTotal += p
	}
	if tableTotal <= 0 || columnTotal <= 0 {
		posterior.fillUniform(known)
		return posterior, ErrDegenerateRange
	}
	pAction := columnTotal / tableTotal
	for i, p := range prior {
		posterior[i] = p * likelihood[i] / pAction
	}
	return posterior, posterior.Normalize(known)
}

// Check verifies the range invariants: mass sums to one within tol and
// no holding overlapping known carries mass.
func (r HoleRange) Check(known poker.Hand, tol float64) error {
	if len(r) != poker.NumHoldings {
		return fmt.Errorf("range has %d entries, want %d", len(r), poker.NumHoldings)
	}
	for i, v := range r {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("holding %s has invalid weight %v", poker.HoldingAt(i), v)
		}
		if v != 0 && poker.HoldingAt(i).Overlaps(known) {
			return fmt.Errorf("holding %s overlaps known cards %s but has weight %v", poker.HoldingAt(i), known, v)
		}
	}
	if sum := r.Sum(); math.Abs(sum-1) > tol {
		return fmt.Errorf("range sums to %v", sum)
	}
	return nil
}

// Weight returns the mass on a two-card holding.
func (r HoleRange) Weight(holding poker.Hand) float64 {
	idx := poker.HoldingIndex(holding)
	if idx < 0 {
		return 0
	}
	return r[idx]
}

// Support counts holdings with positive mass.
func (r HoleRange) Support() int {
	n := 0
	for _, v := range r {
		if v > 0 {
			n++
		}
	}
	return n
}
