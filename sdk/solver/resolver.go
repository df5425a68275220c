// Package solver implements depth-limited continual resolving for heads-up
// hold'em together with a rollout heuristic for everything else.
package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-resolver/internal/randutil"
	"github.com/lox/holdem-resolver/poker"
	"github.com/lox/holdem-resolver/sdk/analysis"
)

// ErrPrecondition is returned when the resolver is asked to solve a spot it
// cannot represent, such as a pot with more than two players.
var ErrPrecondition = errors.New("resolver precondition failed")

// Progress reports one completed CFR iteration.
type Progress struct {
	Iteration int
	Elapsed   time.Duration
}

// Result is the outcome of one resolve.
type Result struct {
	Action Action

	// UpdatedRange is the resolving player's range conditioned on Action,
	// to be used as the prior at their next decision.
	UpdatedRange analysis.HoleRange

	// AverageStrategy is the root strategy averaged over all iterations,
	// one row per holding and one column per entry of Actions.
	AverageStrategy *ActionTable
	Actions         []Action
	Iterations      int
	Stats           TreeStats
	Elapsed         time.Duration
}

// Probabilities returns the averaged root strategy for one holding, keyed
// by action.
func (r Result) Probabilities(holding poker.Hand) map[Action]float64 {
	idx := poker.HoldingIndex(holding)
	if idx < 0 || r.AverageStrategy == nil {
		return nil
	}
	out := make(map[Action]float64, len(r.Actions))
	for a, p := range r.AverageStrategy.Row(idx) {
		out[r.Actions[a]] = p
	}
	return out
}

// CFRResolver re-solves a heads-up subtree at each decision with regret
// matching over full 1326-wide ranges.
type CFRResolver struct {
	cfg       Config
	cache     *UtilityCache
	clock     quartz.Clock
	estimator ValueEstimator
	logger    zerolog.Logger
	progress  func(Progress)
	resolves  int
}

// ResolverOption configures a CFRResolver.
type ResolverOption func(*CFRResolver)

// WithClock sets the clock used for the time budget.
func WithClock(clock quartz.Clock) ResolverOption {
	return func(r *CFRResolver) { r.clock = clock }
}

// WithEstimator replaces the leaf value estimator.
func WithEstimator(est ValueEstimator) ResolverOption {
	return func(r *CFRResolver) { r.estimator = est }
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) ResolverOption {
	return func(r *CFRResolver) { r.logger = logger }
}

// WithProgress registers a callback invoked after every iteration.
func WithProgress(fn func(Progress)) ResolverOption {
	return func(r *CFRResolver) { r.progress = fn }
}

// NewCFRResolver creates a resolver sharing cache for showdown matrices.
func NewCFRResolver(cfg Config, cache *UtilityCache, opts ...ResolverOption) (*CFRResolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cache == nil {
		return nil, errors.New("utility cache is required")
	}
	r := &CFRResolver{
		cfg:    cfg,
		cache:  cache,
		clock:  quartz.NewReal(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.estimator == nil {
		r.estimator = NewRandomEstimator(randutil.Derive(cfg.Seed, 1))
	}
	return r, nil
}

// Resolve picks an action for seat acting holding holding, given the prior
// ranges of the acting player (self) and their opponent. The priors are not
// modified.
func (r *CFRResolver) Resolve(ctx context.Context, state RoundState, acting int, holding poker.Hand, self, opp analysis.HoleRange) (Result, error) {
	if n := state.ActiveCount(); n != 2 {
		return Result{}, fmt.Errorf("%w: %d active players", ErrPrecondition, n)
	}
	hIdx := poker.HoldingIndex(holding)
	if hIdx < 0 || holding.Overlaps(state.Board) {
		return Result{}, fmt.Errorf("%w: %s with board %s", analysis.ErrInvalidHolding, holding, state.Board)
	}

	start := r.clock.Now()
	r.resolves++
	rng := randutil.New(randutil.Derive(r.cfg.Seed, r.resolves))
	root, err := NewTreeBuilder(r.cfg, rng).Build(state, acting)
	if err != nil {
		return Result{}, err
	}
	stats := Stats(root)

	board := state.Board
	ranges := [2]analysis.HoleRange{self.Clone(), opp.Clone()}
	for slot, rg := range ranges {
		if err := rg.RemoveCards(board, 0); err != nil {
			r.logger.Warn().Err(err).Int("slot", slot).Str("board", board.String()).Msg("Range reset to uniform")
		}
	}

	it := &iteration{resolver: r, ctx: ctx}
	average := NewActionTable(len(root.Actions))
	var deadline time.Time
	if r.cfg.TimeBudget > 0 {
		deadline = start.Add(r.cfg.TimeBudget)
	}

	done := 0
	for done < r.cfg.Iterations {
		if err := ctx.Err(); err != nil {
			if done == 0 {
				return Result{}, err
			}
			r.logger.Debug().Int("iterations", done).Msg("Resolve cancelled, returning partial average")
			break
		}
		if _, err := it.traverse(root, ranges); err != nil {
			if done == 0 || !errors.Is(err, ctx.Err()) {
				return Result{}, err
			}
			break
		}
		if err := average.Add(root.Strategy); err != nil {
			return Result{}, err
		}
		done++

		now := r.clock.Now()
		if r.progress != nil {
			r.progress(Progress{Iteration: done, Elapsed: now.Sub(start)})
		}
		if !deadline.IsZero() && !now.Before(deadline) {
			r.logger.Debug().Int("iterations", done).Dur("budget", r.cfg.TimeBudget).Msg("Time budget exhausted")
			break
		}
	}

	avg := average.Scaled(1 / float64(done))
	choice := avg.Argmax(hIdx)
	updated, err := analysis.BayesianUpdate(ranges[SlotSelf], avg.Column(choice), avg.Sum(), board)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Updated range reset to uniform")
	}

	elapsed := r.clock.Since(start)
	r.logger.Debug().
		Str("holding", holding.String()).
		Str("board", board.String()).
		Str("action", root.Actions[choice].String()).
		Int("iterations", done).
		Int("decisions", stats.Decisions).
		Int("terminals", stats.Terminals).
		Dur("elapsed", elapsed).
		Msg("Resolved decision")

	return Result{
		Action:          root.Actions[choice],
		UpdatedRange:    updated,
		AverageStrategy: avg,
		Actions:         root.Actions,
		Iterations:      done,
		Stats:           stats,
		Elapsed:         elapsed,
	}, nil
}

// iteration carries the per-resolve context through the recursion.
type iteration struct {
	resolver *CFRResolver
	ctx      context.Context
}

// traverse pushes ranges down to the terminals, returns each slot's value
// vector for n, and updates regrets and strategies on the way back up.
func (it *iteration) traverse(n Node, ranges [2]analysis.HoleRange) ([2][]float64, error) {
	switch n := n.(type) {
	case *DecisionNode:
		return it.decision(n, ranges)
	case *ChanceNode:
		return it.chance(n, ranges)
	case *FoldTerminal:
		return it.fold(n, ranges), nil
	case *ShowdownTerminal:
		return it.showdown(n, ranges)
	case *ValueEstimateTerminal:
		return it.resolver.estimator.Estimate(n.State, ranges), nil
	default:
		return [2][]float64{}, fmt.Errorf("unknown node type %T", n)
	}
}

func (it *iteration) decision(n *DecisionNode, ranges [2]analysis.HoleRange) ([2][]float64, error) {
	p := n.Player
	tableTotal := n.Strategy.Sum()
	children := make([][2][]float64, len(n.Children))
	for a, child := range n.Children {
		childRanges := ranges
		posterior, err := analysis.BayesianUpdate(ranges[p], n.Strategy.Column(a), tableTotal, n.State.Board)
		if err != nil && !errors.Is(err, analysis.ErrDegenerateRange) {
			return [2][]float64{}, err
		}
		childRanges[p] = posterior
		if children[a], err = it.traverse(child, childRanges); err != nil {
			return [2][]float64{}, err
		}
	}

	var value [2][]float64
	for slot := range value {
		value[slot] = make([]float64, poker.NumHoldings)
	}
	for i := 0; i < poker.NumHoldings; i++ {
		row := n.Strategy.Row(i)
		for a, w := range row {
			if w == 0 {
				continue
			}
			value[0][i] += w * children[a][0][i]
			value[1][i] += w * children[a][1][i]
		}
	}

	for a := range n.Children {
		n.Regret.AccumulateRegret(a, children[a][p], value[p])
	}
	n.Strategy.RegretMatch(n.Regret)
	return value, nil
}

func (it *iteration) chance(n *ChanceNode, ranges [2]analysis.HoleRange) ([2][]float64, error) {
	var value [2][]float64
	for slot := range value {
		value[slot] = make([]float64, poker.NumHoldings)
	}
	if len(n.Children) == 0 {
		return value, nil
	}
	for k, child := range n.Children {
		if err := it.ctx.Err(); err != nil {
			return value, err
		}
		childRanges := [2]analysis.HoleRange{ranges[0].Clone(), ranges[1].Clone()}
		for _, rg := range childRanges {
			// a degenerate range has already been reset to uniform
			_ = rg.RemoveCards(n.Reveals[k], n.State.Board)
		}
		cv, err := it.traverse(child, childRanges)
		if err != nil {
			return value, err
		}
		for slot := range value {
			for i, v := range cv[slot] {
				value[slot][i] += v
			}
		}
	}
	inv := 1 / float64(len(n.Children))
	for slot := range value {
		for i := range value[slot] {
			value[slot][i] *= inv
		}
	}
	return value, nil
}

func (it *iteration) fold(n *FoldTerminal, ranges [2]analysis.HoleRange) [2][]float64 {
	v := float64(n.State.TotalPot()) / it.resolver.cfg.ReferencePot
	folder, other := n.Folder, 1-n.Folder
	var value [2][]float64
	value[folder] = make([]float64, poker.NumHoldings)
	value[other] = make([]float64, poker.NumHoldings)
	for i := 0; i < poker.NumHoldings; i++ {
		if ranges[folder][i] > 0 {
			value[folder][i] = -v
		}
		if ranges[other][i] > 0 {
			value[other][i] = v
		}
	}
	return value
}

func (it *iteration) showdown(n *ShowdownTerminal, ranges [2]analysis.HoleRange) ([2][]float64, error) {
	m, err := it.resolver.cache.GetOrBuild(it.ctx, n.State.Board)
	if err != nil {
		return [2][]float64{}, err
	}
	scale := float64(n.State.TotalPot()) / it.resolver.cfg.ReferencePot
	p, o := n.Player, 1-n.Player

	var value [2][]float64
	value[p] = m.MulVec(ranges[o])
	value[o] = m.VecMul(ranges[p])
	for i := 0; i < poker.NumHoldings; i++ {
		value[p][i] *= scale
		value[o][i] *= -scale
	}
	return value, nil
}
