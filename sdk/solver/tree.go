package solver

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/holdem-resolver/poker"
)

// Node is one vertex of a lookahead tree. The concrete types are
// *DecisionNode, *ChanceNode, *FoldTerminal, *ShowdownTerminal and
// *ValueEstimateTerminal.
type Node interface {
	isNode()
}

// Player slots used throughout the tree. Slot 0 is the seat the tree was
// built for, slot 1 its only opponent.
const (
	SlotSelf     = 0
	SlotOpponent = 1
)

// DecisionNode is a point where Player (a slot) picks one of Actions.
// Children[i] follows Actions[i].
type DecisionNode struct {
	State    RoundState
	Player   int
	Actions  []Action
	Children []Node
	Strategy *ActionTable
	Regret   *ActionTable
}

// ChanceNode deals the next street. Children[i] follows Reveals[i].
type ChanceNode struct {
	State    RoundState
	Reveals  []poker.Hand
	Children []Node
}

// FoldTerminal ends the hand with Folder (a slot) giving up the pot.
type FoldTerminal struct {
	State  RoundState
	Folder int
}

// ShowdownTerminal ends the hand at showdown on a complete board. Player is
// the slot whose call closed the action.
type ShowdownTerminal struct {
	State  RoundState
	Player int
}

// ValueEstimateTerminal cuts the tree off at a sampled future board and
// defers to a ValueEstimator.
type ValueEstimateTerminal struct {
	State RoundState
}

func (*DecisionNode) isNode()          {}
func (*ChanceNode) isNode()            {}
func (*FoldTerminal) isNode()          {}
func (*ShowdownTerminal) isNode()      {}
func (*ValueEstimateTerminal) isNode() {}

// TreeBuilder expands bounded lookahead trees.
type TreeBuilder struct {
	cfg Config
	rng *rand.Rand
}

// NewTreeBuilder returns a builder drawing chance samples from rng.
func NewTreeBuilder(cfg Config, rng *rand.Rand) *TreeBuilder {
	return &TreeBuilder{cfg: cfg, rng: rng}
}

type buildPath struct {
	seats  [2]int
	raises int
	first  bool
}

// Build expands the tree rooted at acting's decision in a heads-up state.
func (b *TreeBuilder) Build(state RoundState, acting int) (*DecisionNode, error) {
	state = state.Clone()
	state.Acting = acting
	if err := state.Validate(); err != nil {
		return nil, err
	}
	if n := state.ActiveCount(); n != 2 {
		return nil, fmt.Errorf("%w: %d active players", ErrPrecondition, n)
	}
	if state.Players[acting].Chips == 0 {
		return nil, fmt.Errorf("%w: seat %d has no chips behind", ErrIllegalAction, acting)
	}
	path := buildPath{seats: [2]int{acting, state.Opponent(acting)}, first: true}
	return b.decision(state, SlotSelf, path), nil
}

func (b *TreeBuilder) decision(state RoundState, slot int, path buildPath) *DecisionNode {
	seat := path.seats[slot]
	state.Acting = seat
	actions := b.actions(state, seat, path)
	node := &DecisionNode{
		State:    state,
		Player:   slot,
		Actions:  actions,
		Children: make([]Node, len(actions)),
		Strategy: UniformTable(len(actions)),
		Regret:   NewActionTable(len(actions)),
	}

	other := 1 - slot
	for i, action := range actions {
		next, taken := state.Apply(action)
		childPath := path
		childPath.first = false
		if taken == BetRaise {
			childPath.raises++
		}

		opp := next.Players[path.seats[other]]
		switch {
		case taken == Fold:
			node.Children[i] = &FoldTerminal{State: next, Folder: slot}
		case opp.Chips == 0:
			node.Children[i] = b.closeAction(next, slot)
		case taken == BetRaise,
			taken == CheckCall && path.first,
			taken == AllIn && opp.Committed < next.CurrentBet():
			node.Children[i] = b.decision(next, other, childPath)
		default:
			node.Children[i] = b.closeAction(next, slot)
		}
	}
	return node
}

// actions filters the legal actions: bet/raise is dropped once the raise
// cap is hit or when the opponent has nothing left to call with, and all-in
// is dropped in the latter case whenever a plain call is available.
func (b *TreeBuilder) actions(state RoundState, seat int, path buildPath) []Action {
	legal := state.LegalActionsFor(seat)
	oppBroke := state.Players[path.seats[SlotOpponent]].Chips == 0
	if seat == path.seats[SlotOpponent] {
		oppBroke = state.Players[path.seats[SlotSelf]].Chips == 0
	}
	canCall := state.IsLegal(seat, CheckCall)

	out := legal[:0:0]
	for _, a := range legal {
		switch a {
		case BetRaise:
			if path.raises >= b.cfg.MaxRaises || oppBroke {
				continue
			}
		case AllIn:
			if oppBroke && canCall {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// closeAction ends the betting round: showdown on the river, otherwise a
// chance node over sampled next-street cards.
func (b *TreeBuilder) closeAction(state RoundState, slot int) Node {
	if state.Board.CountCards() >= 5 {
		return &ShowdownTerminal{State: state, Player: slot}
	}
	return b.chance(state)
}

func (b *TreeBuilder) chance(state RoundState) *ChanceNode {
	n := 1
	if state.Board.CountCards() < 3 {
		n = 3
	}
	base := nextStreet(state)
	node := &ChanceNode{State: base}
	deck := poker.NewDeck(b.rng, state.Board)
	for i := 0; i < b.cfg.ChanceBranches; i++ {
		deck.Shuffle()
		cards, ok := deck.DealHand(n)
		if !ok {
			break
		}
		child := base.Clone()
		child.Board |= cards
		node.Reveals = append(node.Reveals, cards)
		node.Children = append(node.Children, &ValueEstimateTerminal{State: child})
	}
	return node
}

// nextStreet sweeps committed chips into the pot.
func nextStreet(state RoundState) RoundState {
	next := state.Clone()
	for i := range next.Players {
		next.Pot += next.Players[i].Committed
		next.Players[i].Committed = 0
	}
	return next
}

// TreeStats summarises the shape of a tree.
type TreeStats struct {
	Decisions int `json:"decisions"`
	Chances   int `json:"chances"`
	Terminals int `json:"terminals"`
	MaxDepth  int `json:"max_depth"`
}

// Stats walks the tree rooted at n.
func Stats(n Node) TreeStats {
	var s TreeStats
	var walk func(Node, int)
	walk = func(n Node, depth int) {
		s.MaxDepth = max(s.MaxDepth, depth)
		switch n := n.(type) {
		case *DecisionNode:
			s.Decisions++
			for _, c := range n.Children {
				walk(c, depth+1)
			}
		case *ChanceNode:
			s.Chances++
			for _, c := range n.Children {
				walk(c, depth+1)
			}
		default:
			s.Terminals++
		}
	}
	walk(n, 0)
	return s
}
