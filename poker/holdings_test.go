package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldingIndexRoundTrip(t *testing.T) {
	t.Parallel()
	seen := make(map[Hand]bool, NumHoldings)
	for i := 0; i < NumHoldings; i++ {
		h := HoldingAt(i)
		require.Equal(t, 2, h.CountCards())
		require.False(t, seen[h], "duplicate holding %s", h)
		seen[h] = true
		require.Equal(t, i, HoldingIndex(h))
		require.Equal(t, i, HoldingIndexOf(h.GetCard(1), h.GetCard(0)))
	}
	assert.Len(t, seen, 1326)
}

func TestHoldingOrder(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "2c3c", HoldingAt(0).String())
	assert.Equal(t, "2c4c", HoldingAt(1).String())
	assert.Equal(t, "KsAs", HoldingAt(NumHoldings-1).String())
	assert.Equal(t, -1, HoldingIndex(MustParseHand("As")))
	assert.Equal(t, -1, HoldingIndex(MustParseHand("AsKsQs")))

	holdings := Holdings()
	holdings[0] = 0
	assert.NotZero(t, HoldingAt(0), "Holdings must return a copy")
}
