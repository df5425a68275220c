package solver

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"

	"github.com/lox/holdem-resolver/poker"
	"github.com/lox/holdem-resolver/sdk/analysis"
)

// HeuristicResolver picks actions from a rollout equity estimate and a
// concave money utility. It handles multi-way pots and early streets where
// the CFR resolver is not used.
type HeuristicResolver struct {
	cfg    HeuristicConfig
	est    *analysis.Estimator
	logger zerolog.Logger
}

// NewHeuristicResolver creates a heuristic resolver drawing equities from est.
func NewHeuristicResolver(cfg HeuristicConfig, est *analysis.Estimator, logger zerolog.Logger) (*HeuristicResolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if est == nil {
		return nil, errors.New("equity estimator is required")
	}
	return &HeuristicResolver{cfg: cfg, est: est, logger: logger}, nil
}

// ActionUtility is the expected utility of one legal action.
type ActionUtility struct {
	Action  Action
	Utility float64
}

// ChooseAction returns the legal action with the highest expected utility
// for player holding holding.
func (h *HeuristicResolver) ChooseAction(ctx context.Context, state RoundState, player int, holding poker.Hand) (Action, error) {
	opponents := state.NumActiveOpponents(player)
	if opponents < 1 {
		return CheckCall, nil
	}
	res, err := h.est.EstimateWinProbability(ctx, holding, state.Board, opponents, h.cfg.Rollouts)
	if err != nil {
		return Fold, err
	}

	utilities := h.Utilities(state, player, res.Equity())
	best := utilities[0]
	for _, u := range utilities[1:] {
		if u.Utility > best.Utility {
			best = u
		}
	}

	h.logger.Debug().
		Str("holding", holding.String()).
		Str("board", state.Board.String()).
		Int("opponents", opponents).
		Float64("equity", res.Equity()).
		Str("action", best.Action.String()).
		Msg("Heuristic decision")
	return best.Action, nil
}

// Utilities scores every legal action for player given their probability of
// winning. Each action is valued under two projections, every seat calling
// and every seat betting one more big blind, and the results are averaged.
// Chips put in beyond a projection are matched by opponents as far as their
// stacks allow.
func (h *HeuristicResolver) Utilities(state RoundState, player int, winProb float64) []ActionUtility {
	p := state.Players[player]
	chips := p.Chips
	toCall := state.ToCall(player)
	raise := state.BigBlind
	bet := state.CurrentBet()

	scenarios := [2]struct {
		pot      int
		target   int
		projCost int
		cost     func(Action) int
	}{
		{
			pot:      state.PotIfAllCall(),
			target:   bet,
			projCost: toCall,
			cost: func(a Action) int {
				switch a {
				case CheckCall:
					return toCall
				case BetRaise:
					return toCall + raise
				case AllIn:
					return chips
				}
				return 0
			},
		},
		{
			pot:      state.PotIfAllBet(),
			target:   bet + raise,
			projCost: toCall + raise,
			cost: func(a Action) int {
				switch a {
				case CheckCall, BetRaise:
					return toCall + raise
				case AllIn:
					return chips
				}
				return 0
			},
		},
	}

	legal := state.LegalActionsFor(player)
	out := make([]ActionUtility, 0, len(legal))
	for _, a := range legal {
		pw := winProb
		if a == Fold {
			pw = 0
		}
		eu := 0.0
		for _, s := range scenarios {
			cost := min(s.cost(a), chips)
			extra := max(0, cost-s.projCost)
			won := s.pot + extra + state.matched(player, s.target, extra)
			eu += pw*h.utility(chips-cost+won) + (1-pw)*h.utility(chips-cost)
		}
		out = append(out, ActionUtility{Action: a, Utility: eu / float64(len(scenarios))})
	}
	return out
}

func (h *HeuristicResolver) utility(money int) float64 {
	return math.Pow(math.Max(float64(money), 0), h.cfg.RiskAverseness)
}
