package poker

// NumHoldings is the number of distinct two-card holdings in a 52-card deck.
const NumHoldings = 52 * 51 / 2

var (
	holdingTable [NumHoldings]Hand
	holdingIndex [52][52]int16
)

func init() {
	idx := 0
	for a := 0; a < 52; a++ {
		for b := a + 1; b < 52; b++ {
			holdingTable[idx] = Hand(CardAt(a)) | Hand(CardAt(b))
			holdingIndex[a][b] = int16(idx)
			holdingIndex[b][a] = int16(idx)
			idx++
		}
		holdingIndex[a][a] = -1
	}
}

// HoldingAt returns the holding stored at canonical index i. Holdings are
// ordered as lexicographic pairs of card bit positions (a < b).
func HoldingAt(i int) Hand {
	return holdingTable[i]
}

// HoldingIndex returns the canonical index of a two-card hand, or -1 if h
// does not contain exactly two cards.
func HoldingIndex(h Hand) int {
	if h.CountCards() != 2 {
		return -1
	}
	return int(holdingIndex[h.GetCard(0).Index()][h.GetCard(1).Index()])
}

// HoldingIndexOf returns the canonical index of two distinct cards.
func HoldingIndexOf(a, b Card) int {
	if a == 0 || b == 0 {
		return -1
	}
	return int(holdingIndex[a.Index()][b.Index()])
}

// Holdings returns every holding in canonical order.
func Holdings() []Hand {
	out := make([]Hand, NumHoldings)
	copy(out, holdingTable[:])
	return out
}
