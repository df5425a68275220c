package poker

import (
	"errors"
	rand "math/rand/v2"
	"testing"

	ph "github.com/paulhankin/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateCategories(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cards   string
		want    HandType
		ranks   []uint8
		kickers int
	}{
		{"royal flush", "AsKsQsJsTs9h8h", StraightFlush, []uint8{Ace}, 0},
		{"straight flush", "9s8s7s6s5s4h3h", StraightFlush, []uint8{Nine}, 0},
		{"steel wheel", "As2s3s4s5sKhQd", StraightFlush, []uint8{Five}, 0},
		{"four of a kind", "AsAhAdAcKs2h3h", FourOfAKind, []uint8{Ace, King}, 1},
		{"full house", "AsAhAdKsKh2h3h", FullHouse, []uint8{Ace, King}, 0},
		{"full house from two trips", "AsAhAdKsKhKd3h", FullHouse, []uint8{Ace, King}, 0},
		{"flush", "AsKsQs8s6s4h3h", Flush, []uint8{Ace, King, Queen, Eight, Six}, 5},
		{"flush picks best five", "AsKsQs8s6s4s3s", Flush, []uint8{Ace, King, Queen, Eight, Six}, 5},
		{"straight", "AsKhQdJcTs9h8h", Straight, []uint8{Ace}, 0},
		{"wheel", "Ah2c3d4s5hKdQc", Straight, []uint8{Five}, 0},
		{"six high beats wheel ordering", "Ah2c3d4s5h6d9c", Straight, []uint8{Six}, 0},
		{"three of a kind", "AsAhAdKs9c7h5h", ThreeOfAKind, []uint8{Ace, King, Nine}, 2},
		{"two pair", "AsAhKdKs9c7h5h", TwoPair, []uint8{Ace, King, Nine}, 1},
		{"three pairs use best kicker", "AsAhKdKs9c9h5h", TwoPair, []uint8{Ace, King, Nine}, 1},
		{"one pair", "AsAhKdQs9c7h5h", Pair, []uint8{Ace, King, Queen, Nine}, 3},
		{"high card", "AsKhQd9s7c5h3h", HighCard, []uint8{Ace, King, Queen, Nine, Seven}, 5},
		{"five cards", "2c3d4h5s7c", HighCard, []uint8{Seven, Five, Four, Three, Two}, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, err := Evaluate(MustParseHand(tc.cards))
			require.NoError(t, err)
			assert.Equal(t, tc.want, s.Type(), s.String())
			assert.Equal(t, tc.ranks, s.Ranks[:len(tc.ranks)])
			assert.Len(t, s.Kickers(), tc.kickers)
		})
	}
}

func TestEvaluateInvalidHand(t *testing.T) {
	t.Parallel()
	for _, cards := range []string{"", "AsKs", "AsKsQsJs", "AsKsQsJsTs9s8s7s"} {
		_, err := Evaluate(MustParseHand(cards))
		require.Error(t, err, cards)
		assert.True(t, errors.Is(err, ErrInvalidHand))

		var invalid *InvalidHandError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, len(cards)/2, invalid.Cards)
	}
}

func TestEvaluateCardsIgnoresRepeats(t *testing.T) {
	t.Parallel()
	as, _ := ParseCard("As")
	_, err := EvaluateCards(as, as, as, as, as)
	assert.ErrorIs(t, err, ErrInvalidHand)
}

func TestHandComparison(t *testing.T) {
	t.Parallel()
	order := []string{
		"AsKsQsJsTs9h8h", // royal flush
		"AsAhAdAcKs2h3h", // quads
		"AsAhAdKsKh2h3h", // full house
		"AsKsQs8s6s4h3h", // flush
		"AsKhQdJcTs9h8h", // straight
		"5h4c3d2sAh9c8d", // wheel
		"AsAhAdKs9c7h5h", // trips
		"AsAhKdKs9c7h5h", // two pair
		"AsAhKdQs9c7h5h", // pair of aces
		"9s9hKdQsAc7h5h", // pair of nines
		"AsKhQd9s7c5h3h", // ace high
		"KsQhJd9s7c5h3h", // king high
	}
	for i := 0; i+1 < len(order); i++ {
		a, err := Evaluate(MustParseHand(order[i]))
		require.NoError(t, err)
		b, err := Evaluate(MustParseHand(order[i+1]))
		require.NoError(t, err)
		assert.Equal(t, 1, CompareHands(a, b), "%s (%s) should beat %s (%s)", order[i], a, order[i+1], b)
		assert.Equal(t, -1, CompareHands(b, a))
	}
}

func TestGetWinnersScenarios(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		board string
		a, b  string
		want  []int
	}{
		{"royal flush beats ace-high flush", "TsJsQsKs2s", "3s8s", "AsKs", []int{1}},
		{"higher straight flush", "3s4s5s6s7s", "7s8s", "8s9s", []int{1}},
		{"quads kicker", "9s9h9d9c5h", "2s3s", "4s8s", []int{1}},
		{"board plays", "AsKdQhJcTs", "2c3d", "4c5d", []int{0, 1}},
		{"split wheel", "Ah2c3d4s5h", "Kc7d", "Qc7h", []int{0, 1}},
		{"higher pair", "2c7d9hJsKd", "AcAd", "QcQd", []int{0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := GetWinners([]Hand{MustParseHand(tc.a), MustParseHand(tc.b)}, MustParseHand(tc.board))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetWinnersMultiway(t *testing.T) {
	t.Parallel()
	board := MustParseHand("2c2d7h8sKc")
	players := []Hand{
		MustParseHand("AhQd"),
		MustParseHand("AsQc"),
		MustParseHand("KdKh"),
		MustParseHand("3c4c"),
	}
	got, err := GetWinners(players, board)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, got)

	got, err = GetWinners(players[:2], board)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)

	_, err = GetWinners([]Hand{MustParseHand("AhQd")}, 0)
	assert.ErrorIs(t, err, ErrInvalidHand)
}

func TestEvaluateIdempotent(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(3, 5))
	deck := NewDeck(rng, 0)
	for i := 0; i < 500; i++ {
		deck.Shuffle()
		cards := deck.Deal(7)
		h := NewHand(cards...)
		first, err := Evaluate(h)
		require.NoError(t, err)
		second, err := Evaluate(h)
		require.NoError(t, err)
		require.Equal(t, first, second)

		// Adding the two cards that were not part of any best-five pick of a
		// six-card subset never lowers the strength.
		six, err := Evaluate(NewHand(cards[:6]...))
		require.NoError(t, err)
		require.GreaterOrEqual(t, first.Compare(six), 0)
	}
}

func TestEvaluateSupersetKeepsBestFive(t *testing.T) {
	t.Parallel()
	five := MustParseHand("AsKsQsJsTs")
	base, err := Evaluate(five)
	require.NoError(t, err)
	for _, extra := range []string{"2c", "2c3d", "9s3d"} {
		s, err := Evaluate(five | MustParseHand(extra))
		require.NoError(t, err)
		assert.Equal(t, base.Value(), s.Value(), extra)
	}
}

func toOracle(t *testing.T, c Card) ph.Card {
	t.Helper()
	suits := [...]ph.Suit{ph.Club, ph.Diamond, ph.Heart, ph.Spade}
	rank := ph.Rank(c.Rank() + 2)
	if c.Rank() == Ace {
		rank = ph.Rank(1)
	}
	out, err := ph.MakeCard(suits[c.Suit()], rank)
	require.NoError(t, err)
	return out
}

func oracleScore(t *testing.T, h Hand) int {
	t.Helper()
	var cards [7]ph.Card
	for i, c := range h.Cards() {
		cards[i] = toOracle(t, c)
	}
	return int(ph.Eval7(&cards))
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Orders random showdowns with an independent evaluator and checks that both
// agree on every winner.
func TestEvaluateMatchesReferenceEvaluator(t *testing.T) {
	t.Parallel()
	direction := sign(oracleScore(t, MustParseHand("AsKsQsJsTs9h8h")) - oracleScore(t, MustParseHand("AsKhQd9s7c5h3h")))
	require.NotZero(t, direction)

	rng := rand.New(rand.NewPCG(99, 1))
	deck := NewDeck(rng, 0)
	for i := 0; i < 2000; i++ {
		deck.Shuffle()
		board, _ := deck.DealHand(5)
		a, _ := deck.DealHand(2)
		b, _ := deck.DealHand(2)

		sa, err := Evaluate(a | board)
		require.NoError(t, err)
		sb, err := Evaluate(b | board)
		require.NoError(t, err)

		want := direction * sign(oracleScore(t, a|board)-oracleScore(t, b|board))
		require.Equal(t, want, sa.Compare(sb), "board %s: %s (%s) vs %s (%s)", board, a, sa, b, sb)
	}
}

func BenchmarkEvaluate(b *testing.B) {
	h := MustParseHand("AsKhQd9s7c5h3h")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Evaluate(h)
	}
}
