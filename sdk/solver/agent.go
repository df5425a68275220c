package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lox/holdem-resolver/poker"
	"github.com/lox/holdem-resolver/sdk/analysis"
)

// Agent plays one seat across a hand. It tracks both players' ranges and
// routes each decision to the CFR resolver for heads-up spots on late
// streets and to the heuristic resolver otherwise.
type Agent struct {
	cfr       *CFRResolver
	heuristic *HeuristicResolver
	logger    zerolog.Logger

	seat    int
	holding poker.Hand
	board   poker.Hand
	ranges  [2]analysis.HoleRange
}

// NewAgent combines the two resolvers. The CFR resolver's configuration
// decides from which street it is used.
func NewAgent(cfr *CFRResolver, heuristic *HeuristicResolver, logger zerolog.Logger) *Agent {
	return &Agent{cfr: cfr, heuristic: heuristic, logger: logger}
}

// NewHand starts a new hand for seat with the given hole cards. Ranges are
// reset to uniform, the opponent's excluding holding, and cached utility
// matrices dropped.
func (a *Agent) NewHand(seat int, holding poker.Hand) error {
	if holding.CountCards() != 2 {
		return fmt.Errorf("%w: %s", analysis.ErrInvalidHolding, holding)
	}
	a.seat = seat
	a.holding = holding
	a.board = 0
	a.ranges = [2]analysis.HoleRange{analysis.UniformRange(0), analysis.UniformRange(holding)}
	a.cfr.cache.Reset()
	return nil
}

// ObserveBoard applies newly revealed community cards to both ranges.
func (a *Agent) ObserveBoard(board poker.Hand) {
	revealed := board &^ a.board
	if revealed == 0 {
		return
	}
	prev := a.board
	a.board = board
	for slot, rg := range a.ranges {
		known := prev
		if slot == SlotOpponent {
			known |= a.holding
		}
		if err := rg.RemoveCards(revealed, known); err != nil {
			a.logger.Warn().Err(err).Int("slot", slot).Str("board", board.String()).Msg("Range reset to uniform")
		}
	}
}

// Ranges returns copies of the agent's own and its opponent's ranges.
func (a *Agent) Ranges() (self, opp analysis.HoleRange) {
	return a.ranges[SlotSelf].Clone(), a.ranges[SlotOpponent].Clone()
}

// ChooseAction decides for the agent's seat in state.
func (a *Agent) ChooseAction(ctx context.Context, state RoundState) (Action, error) {
	if a.ranges[SlotSelf] == nil {
		return Fold, errors.New("agent has no hand")
	}
	a.ObserveBoard(state.Board)
	if state.Players[a.seat].Chips == 0 {
		return CheckCall, nil
	}

	if state.ActiveCount() == 2 && state.Street() >= a.cfr.cfg.ResolveFrom {
		res, err := a.cfr.Resolve(ctx, state, a.seat, a.holding, a.ranges[SlotSelf], a.ranges[SlotOpponent])
		switch {
		case err == nil:
			a.ranges[SlotSelf] = res.UpdatedRange
			return res.Action, nil
		case errors.Is(err, ErrPrecondition):
			a.logger.Warn().Err(err).Msg("Falling back to heuristic resolver")
		default:
			return Fold, err
		}
	}
	return a.heuristic.ChooseAction(ctx, state, a.seat, a.holding)
}
