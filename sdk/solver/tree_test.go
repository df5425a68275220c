package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-resolver/internal/randutil"
	"github.com/lox/holdem-resolver/poker"
)

func testConfig(maxRaises int) Config {
	cfg := DefaultConfig()
	cfg.MaxRaises = maxRaises
	cfg.Iterations = 20
	return cfg
}

func buildTree(t *testing.T, cfg Config, state RoundState) *DecisionNode {
	t.Helper()
	root, err := NewTreeBuilder(cfg, randutil.New(7)).Build(state, state.Acting)
	require.NoError(t, err)
	return root
}

func childFor(t *testing.T, n *DecisionNode, a Action) Node {
	t.Helper()
	for i, action := range n.Actions {
		if action == a {
			return n.Children[i]
		}
	}
	t.Fatalf("action %s not available at node with %v", a, n.Actions)
	return nil
}

func TestTreeRootChildTypes(t *testing.T) {
	t.Parallel()
	root := buildTree(t, testConfig(2), riverState())

	require.Equal(t, []Action{Fold, CheckCall, BetRaise, AllIn}, root.Actions)
	require.Len(t, root.Children, 4)

	fold, ok := childFor(t, root, Fold).(*FoldTerminal)
	require.True(t, ok)
	assert.Equal(t, SlotSelf, fold.Folder)

	check, ok := childFor(t, root, CheckCall).(*DecisionNode)
	require.True(t, ok, "a first-layer check hands the action to the opponent")
	assert.Equal(t, SlotOpponent, check.Player)

	bet, ok := childFor(t, root, BetRaise).(*DecisionNode)
	require.True(t, ok)
	assert.Equal(t, SlotOpponent, bet.Player)

	shove, ok := childFor(t, root, AllIn).(*DecisionNode)
	require.True(t, ok, "the opponent owes chips after an all-in")
	assert.Equal(t, []Action{Fold, AllIn}, shove.Actions)
	_, ok = childFor(t, shove, AllIn).(*ShowdownTerminal)
	assert.True(t, ok)
}

func TestTreeLaterCallsCloseTheAction(t *testing.T) {
	t.Parallel()
	root := buildTree(t, testConfig(2), riverState())

	check := childFor(t, root, CheckCall).(*DecisionNode)
	sd, ok := childFor(t, check, CheckCall).(*ShowdownTerminal)
	require.True(t, ok)
	assert.Equal(t, SlotOpponent, sd.Player)

	bet := childFor(t, root, BetRaise).(*DecisionNode)
	_, ok = childFor(t, bet, CheckCall).(*ShowdownTerminal)
	assert.True(t, ok)

	fold, ok := childFor(t, bet, Fold).(*FoldTerminal)
	require.True(t, ok)
	assert.Equal(t, SlotOpponent, fold.Folder)
	assert.Equal(t, 30, fold.State.TotalPot())
}

func TestTreeNodesStartUniform(t *testing.T) {
	t.Parallel()
	root := buildTree(t, testConfig(1), riverState())
	walkDecisions(root, func(n *DecisionNode) {
		want := 1 / float64(len(n.Actions))
		for _, v := range n.Strategy.Values {
			if v != want {
				t.Fatalf("strategy cell %v, want %v", v, want)
			}
		}
		for _, v := range n.Regret.Values {
			if v != 0 {
				t.Fatalf("regret cell %v, want 0", v)
			}
		}
	})
}

func TestTreeRaiseCap(t *testing.T) {
	t.Parallel()
	for _, maxRaises := range []int{0, 1, 2, 3} {
		root := buildTree(t, testConfig(maxRaises), riverState())
		var walk func(Node, int)
		walk = func(n Node, raises int) {
			d, ok := n.(*DecisionNode)
			if !ok {
				return
			}
			for i, a := range d.Actions {
				r := raises
				if a == BetRaise {
					r++
				}
				if r > maxRaises {
					t.Fatalf("max raises %d: path reached %d raises", maxRaises, r)
				}
				walk(d.Children[i], r)
			}
		}
		walk(root, 0)

		if maxRaises == 0 {
			assert.NotContains(t, root.Actions, BetRaise)
		} else {
			assert.Contains(t, root.Actions, BetRaise)
		}
	}
}

func TestTreeChanceNodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		board  string
		reveal int
	}{
		{"turn deals the river", "TsJsQs2h", 1},
		{"flop deals the turn", "TsJsQs", 1},
		{"preflop deals the flop", "", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := poker.MustParseHand(tt.board)
			state := NewHeadsUpState(board, 20, 10, 90)
			cfg := testConfig(1)
			root := buildTree(t, cfg, state)

			check := childFor(t, root, CheckCall).(*DecisionNode)
			chance, ok := childFor(t, check, CheckCall).(*ChanceNode)
			require.True(t, ok)
			require.Len(t, chance.Children, cfg.ChanceBranches)
			assert.Equal(t, 20, chance.State.Pot)

			for i, child := range chance.Children {
				leaf, ok := child.(*ValueEstimateTerminal)
				require.True(t, ok)
				reveal := chance.Reveals[i]
				assert.Equal(t, tt.reveal, reveal.CountCards())
				assert.False(t, reveal.Overlaps(board))
				assert.Equal(t, board|reveal, leaf.State.Board)
			}
		})
	}
}

func TestTreeBuildPreconditions(t *testing.T) {
	t.Parallel()
	builder := NewTreeBuilder(testConfig(1), randutil.New(1))

	threeWay := riverState()
	threeWay.Players = append(threeWay.Players, PlayerState{Chips: 90})
	_, err := builder.Build(threeWay, 0)
	assert.ErrorIs(t, err, ErrPrecondition)

	broke := riverState()
	broke.Players[0] = PlayerState{Committed: 90}
	_, err = builder.Build(broke, 0)
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestTreeStats(t *testing.T) {
	t.Parallel()
	stats := Stats(buildTree(t, testConfig(1), riverState()))
	assert.Greater(t, stats.Decisions, 1)
	assert.Zero(t, stats.Chances)
	assert.Greater(t, stats.Terminals, stats.Decisions)
	assert.GreaterOrEqual(t, stats.MaxDepth, 3)
}

func walkDecisions(n Node, fn func(*DecisionNode)) {
	switch n := n.(type) {
	case *DecisionNode:
		fn(n)
		for _, c := range n.Children {
			walkDecisions(c, fn)
		}
	case *ChanceNode:
		for _, c := range n.Children {
			walkDecisions(c, fn)
		}
	}
}
