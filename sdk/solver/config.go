package solver

import (
	"errors"
	"time"
)

// Config controls the depth-limited resolver.
type Config struct {
	// Iterations caps the number of CFR iterations per decision.
	Iterations int

	// MaxRaises limits how many bets or raises may appear along one path of
	// the lookahead tree.
	MaxRaises int

	// ChanceBranches is the number of sampled next-street card sets under
	// each chance node.
	ChanceBranches int

	// ReferencePot scales terminal payoffs: a terminal pot of ReferencePot
	// chips is worth 1.
	ReferencePot float64

	// TimeBudget stops iterating once this much wall time has passed. Zero
	// disables the check.
	TimeBudget time.Duration

	// ResolveFrom is the earliest street on which the agent resolves
	// heads-up spots instead of using the heuristic.
	ResolveFrom Street

	Seed int64
}

// Validate ensures the resolver parameters are safe to use.
func (c Config) Validate() error {
	if c.Iterations <= 0 {
		return errors.New("iterations must be > 0")
	}
	if c.MaxRaises < 0 {
		return errors.New("max raises cannot be negative")
	}
	if c.ChanceBranches <= 0 {
		return errors.New("chance branches must be > 0")
	}
	if c.ReferencePot <= 0 {
		return errors.New("reference pot must be > 0")
	}
	if c.TimeBudget < 0 {
		return errors.New("time budget cannot be negative")
	}
	if c.ResolveFrom > StreetRiver {
		return errors.New("invalid resolve street")
	}
	return nil
}

// HeuristicConfig controls the rollout-based fallback resolver.
type HeuristicConfig struct {
	Rollouts int

	// RiskAverseness is the exponent of the utility curve, in (0, 1).
	// Smaller values are more risk averse.
	RiskAverseness float64
}

// Validate ensures the heuristic parameters are safe to use.
func (c HeuristicConfig) Validate() error {
	if c.Rollouts <= 0 {
		return errors.New("rollouts must be > 0")
	}
	if c.RiskAverseness <= 0 || c.RiskAverseness >= 1 {
		return errors.New("risk averseness must be in (0, 1)")
	}
	return nil
}

// DefaultConfig returns the resolver settings used for live play.
func DefaultConfig() Config {
	return Config{
		Iterations:     200,
		MaxRaises:      2,
		ChanceBranches: 5,
		ReferencePot:   30,
		ResolveFrom:    StreetRiver,
		Seed:           1,
	}
}

// DefaultHeuristicConfig returns the heuristic settings used for live play.
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		Rollouts:       10000,
		RiskAverseness: 0.5,
	}
}
