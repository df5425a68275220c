package solver

import (
	"fmt"

	"github.com/lox/holdem-resolver/poker"
)

// ActionTable is a row-major NumHoldings x Actions matrix of per-holding
// action weights. Decision nodes keep one for the current strategy and one
// for cumulative regret.
type ActionTable struct {
	Actions int
	Values  []float64
}

// NewActionTable returns an all-zero table.
func NewActionTable(actions int) *ActionTable {
	return &ActionTable{Actions: actions, Values: make([]float64, poker.NumHoldings*actions)}
}

// UniformTable returns a table whose rows are the uniform distribution.
func UniformTable(actions int) *ActionTable {
	t := NewActionTable(actions)
	v := 1.0 / float64(actions)
	for i := range t.Values {
		t.Values[i] = v
	}
	return t
}

// Row returns the weights for holding i. The slice aliases the table.
func (t *ActionTable) Row(i int) []float64 {
	return t.Values[i*t.Actions : (i+1)*t.Actions]
}

// Column copies the weights of action a across all holdings.
func (t *ActionTable) Column(a int) []float64 {
	out := make([]float64, poker.NumHoldings)
	for i := range out {
		out[i] = t.Values[i*t.Actions+a]
	}
	return out
}

// Sum returns the total of every cell.
func (t *ActionTable) Sum() float64 {
	total := 0.0
	for _, v := range t.Values {
		total += v
	}
	return total
}

// Add accumulates other into t.
func (t *ActionTable) Add(other *ActionTable) error {
	if other.Actions != t.Actions {
		return fmt.Errorf("action table mismatch: %d vs %d actions", t.Actions, other.Actions)
	}
	for i, v := range other.Values {
		t.Values[i] += v
	}
	return nil
}

// Scaled returns a copy of t multiplied by f.
func (t *ActionTable) Scaled(f float64) *ActionTable {
	out := &ActionTable{Actions: t.Actions, Values: make([]float64, len(t.Values))}
	for i, v := range t.Values {
		out.Values[i] = v * f
	}
	return out
}

// Argmax returns the column with the largest weight in row i. The first
// column wins ties.
func (t *ActionTable) Argmax(i int) int {
	row := t.Row(i)
	best := 0
	for a := 1; a < len(row); a++ {
		if row[a] > row[best] {
			best = a
		}
	}
	return best
}

// AccumulateRegret adds the positive part of childValue - nodeValue to the
// regret of action a for every holding. Regrets never go negative.
func (t *ActionTable) AccumulateRegret(a int, childValue, nodeValue []float64) {
	for i := range childValue {
		if d := childValue[i] - nodeValue[i]; d > 0 {
			t.Values[i*t.Actions+a] += d
		}
	}
}

// RegretMatch rewrites t as the regret-matching strategy for regret: each
// row is the normalised positive regret. Rows with no positive regret keep
// their previous values.
func (t *ActionTable) RegretMatch(regret *ActionTable) {
	for i := 0; i < poker.NumHoldings; i++ {
		r := regret.Row(i)
		total := 0.0
		for _, v := range r {
			if v > 0 {
				total += v
			}
		}
		if total <= 0 {
			continue
		}
		row := t.Row(i)
		for a, v := range r {
			if v > 0 {
				row[a] = v / total
			} else {
				row[a] = 0
			}
		}
	}
}
