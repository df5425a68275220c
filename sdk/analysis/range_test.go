package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-resolver/poker"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name     string
		notation string
		wantSize int
		wantErr  bool
	}{
		{name: "pocket aces", notation: "AA", wantSize: 6},
		{name: "ace king suited", notation: "AKs", wantSize: 4},
		{name: "ace king offsuit", notation: "AKo", wantSize: 12},
		{name: "ace king any", notation: "AK", wantSize: 16},
		{name: "reversed ranks", notation: "KAs", wantSize: 4},
		{name: "multiple hands", notation: "AA,KK,AKs", wantSize: 16},
		{name: "pocket pairs range", notation: "TT+", wantSize: 30},
		{name: "suited range plus", notation: "ATs+", wantSize: 16},
		{name: "offsuit range plus", notation: "KJo+", wantSize: 24},
		{name: "dash range pairs", notation: "22-55", wantSize: 24},
		{name: "dash range suited", notation: "A5s-A2s", wantSize: 16},
		{name: "complex range", notation: "TT+,AJs+,KQs", wantSize: 46},
		{name: "overlapping parts", notation: "AA,AA,TT+", wantSize: 30},
		{name: "invalid notation", notation: "XX", wantErr: true},
		{name: "invalid modifier", notation: "AKx", wantErr: true},
		{name: "pocket pair with modifier", notation: "AAs", wantErr: true},
		{name: "mixed dash", notation: "22-AKs", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRange(tt.notation)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseRange() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && r.Support() != tt.wantSize {
				t.Errorf("ParseRange() size = %v, want %v", r.Support(), tt.wantSize)
			}
		})
	}
}

func TestRangeWeight(t *testing.T) {
	r, err := ParseRange("AA,KK,AKs")
	require.NoError(t, err)

	tests := []struct {
		cards string
		want  bool
	}{
		{"AhAs", true},
		{"KhKd", true},
		{"AhKh", true},
		{"AhKd", false},
		{"QhQd", false},
	}
	for _, tt := range tests {
		got := r.Weight(poker.MustParseHand(tt.cards)) > 0
		if got != tt.want {
			t.Errorf("Weight(%s) > 0 = %v, want %v", tt.cards, got, tt.want)
		}
	}
	assert.Zero(t, r.Weight(poker.MustParseHand("As")))
}

func TestPriorFromNotation(t *testing.T) {
	board := poker.MustParseHand("AsKd2c")
	r, err := PriorFromNotation("AA,KK", board)
	require.NoError(t, err)
	require.NoError(t, r.Check(board, 1e-9))
	// three aces and three kings remain: 3 + 3 combinations
	assert.Equal(t, 6, r.Support())

	_, err = PriorFromNotation("AA", poker.MustParseHand("AsAhAd"))
	assert.ErrorIs(t, err, ErrDegenerateRange)

	preflop, err := PriorFromNotation("QQ+", 0)
	require.NoError(t, err)
	require.NoError(t, preflop.Check(0, 1e-9))
	assert.Equal(t, 18, preflop.Support())
}

func TestUniformRange(t *testing.T) {
	t.Parallel()
	r := UniformRange(0)
	require.NoError(t, r.Check(0, 1e-9))
	assert.Equal(t, poker.NumHoldings, r.Support())

	board := poker.MustParseHand("2c3d4h5s6c")
	r = UniformRange(board)
	require.NoError(t, r.Check(board, 1e-9))
	assert.Equal(t, 47*46/2, r.Support())
}

func TestRemoveCards(t *testing.T) {
	t.Parallel()
	r := UniformRange(0)
	flop := poker.MustParseHand("AsKsQs")
	require.NoError(t, r.RemoveCards(flop, 0))
	require.NoError(t, r.Check(flop, 1e-9))
	assert.Equal(t, 49*48/2, r.Support())

	turn := poker.MustParseHand("2d")
	require.NoError(t, r.RemoveCards(turn, flop))
	require.NoError(t, r.Check(flop|turn, 1e-9))
	assert.Equal(t, 48*47/2, r.Support())
}

func TestRemoveCardsDegenerate(t *testing.T) {
	t.Parallel()
	r := NewHoleRange()
	r[poker.HoldingIndex(poker.MustParseHand("AsAh"))] = 1

	board := poker.MustParseHand("As7d8c")
	err := r.RemoveCards(board, 0)
	require.ErrorIs(t, err, ErrDegenerateRange)
	require.NoError(t, r.Check(board, 1e-9))
	assert.Equal(t, 49*48/2, r.Support())
}

func TestRemoveCardsDegenerateOnLaterStreet(t *testing.T) {
	t.Parallel()
	flop := poker.MustParseHand("TsJsQs")
	r := NewHoleRange()
	r[poker.HoldingIndex(poker.MustParseHand("AhKh"))] = 1
	require.NoError(t, r.RemoveCards(flop, 0))

	turn := poker.MustParseHand("2h")
	require.NoError(t, r.RemoveCards(turn, flop))
	require.NoError(t, r.Check(flop|turn, 1e-9))

	river := poker.MustParseHand("Ah")
	err := r.RemoveCards(river, flop|turn)
	require.ErrorIs(t, err, ErrDegenerateRange)

	board := flop | turn | river
	require.NoError(t, r.Check(board, 1e-9))
	assert.Equal(t, 47*46/2, r.Support())
	assert.Zero(t, r.Weight(poker.MustParseHand("TsKc")))
}

func TestNormalizeRejectsNaN(t *testing.T) {
	t.Parallel()
	r := NewHoleRange()
	r[0] = math.NaN()
	err := r.Normalize(0)
	require.ErrorIs(t, err, ErrDegenerateRange)
	require.NoError(t, r.Check(0, 1e-9))
}

func TestBayesianUpdate(t *testing.T) {
	t.Parallel()
	prior := UniformRange(0)

	// Two-action table: the first half of holdings always take action 0,
	// the rest always take action 1.
	column := make([]float64, poker.NumHoldings)
	for i := 0; i < poker.NumHoldings/2; i++ {
		column[i] = 1
	}
	posterior, err := BayesianUpdate(prior, column, float64(poker.NumHoldings), 0)
	require.NoError(t, err)
	require.NoError(t, posterior.Check(0, 1e-9))
	assert.Equal(t, poker.NumHoldings/2, posterior.Support())
	assert.InDelta(t, 2.0/poker.NumHoldings, posterior[0], 1e-12)
	assert.Zero(t, posterior[poker.NumHoldings-1])

	// Prior is left untouched.
	assert.InDelta(t, 1.0/poker.NumHoldings, prior[poker.NumHoldings-1], 1e-12)
}

func TestBayesianUpdateMixedLikelihood(t *testing.T) {
	t.Parallel()
	prior := NewHoleRange()
	a := poker.HoldingIndex(poker.MustParseHand("AsAh"))
	b := poker.HoldingIndex(poker.MustParseHand("7c2d"))
	prior[a], prior[b] = 0.5, 0.5

	column := make([]float64, poker.NumHoldings)
	column[a], column[b] = 0.9, 0.3

	posterior, err := BayesianUpdate(prior, column, 2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, posterior[a], 1e-12)
	assert.InDelta(t, 0.25, posterior[b], 1e-12)
}

func TestBayesianUpdateDegenerate(t *testing.T) {
	t.Parallel()
	prior := UniformRange(0)
	board := poker.MustParseHand("2c2d2h")

	posterior, err := BayesianUpdate(prior, make([]float64, poker.NumHoldings), 10, board)
	require.ErrorIs(t, err, ErrDegenerateRange)
	require.NoError(t, posterior.Check(board, 1e-9))

	_, err = BayesianUpdate(prior, make([]float64, 3), 10, 0)
	require.Error(t, err)
}
