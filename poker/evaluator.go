package poker

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// HandType enumerates the categories of poker hands ordered from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable category name.
func (t HandType) String() string {
	switch t {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// LowAce is the bit that stands for an ace played below the deuce in an
// extended 14-bit rank mask. Rank r occupies bit r+1 of the same mask.
const LowAce = 0

// ErrInvalidHand is returned when a hand cannot be evaluated.
var ErrInvalidHand = errors.New("invalid hand")

// InvalidHandError reports how many distinct cards were supplied.
type InvalidHandError struct {
	Cards int
}

func (e *InvalidHandError) Error() string {
	return fmt.Sprintf("invalid hand: need 5 to 7 distinct cards, got %d", e.Cards)
}

// Unwrap lets errors.Is match ErrInvalidHand.
func (e *InvalidHandError) Unwrap() error { return ErrInvalidHand }

// HandStrength is a totally ordered hand value: the category first, then the
// significant ranks in order. The leading ranks identify the made hand (the
// quad rank, trip and pair of a full house, pairs, the straight's high card)
// and the rest are kickers.
type HandStrength struct {
	Category HandType
	Ranks    [5]uint8
	made     uint8
	count    uint8
}

// Value packs the strength into an integer; a larger value is a stronger hand.
func (s HandStrength) Value() uint32 {
	v := uint32(s.Category) << 20
	for i := 0; i < 5; i++ {
		v |= uint32(s.Ranks[i]) << (16 - 4*i)
	}
	return v
}

// Compare returns 1 if s beats other, -1 if it loses and 0 for a tie.
func (s HandStrength) Compare(other HandStrength) int {
	a, b := s.Value(), other.Value()
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// Type returns the hand category.
func (s HandStrength) Type() HandType { return s.Category }

// Kickers returns the tie-break ranks that are not part of the made hand.
func (s HandStrength) Kickers() []uint8 {
	return append([]uint8(nil), s.Ranks[s.made:s.count]...)
}

// String renders the category followed by its significant ranks, e.g. "Pair [A K 9 7]".
func (s HandStrength) String() string {
	var b strings.Builder
	b.WriteString(s.Category.String())
	b.WriteString(" [")
	for i := uint8(0); i < s.count; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(RankChar(s.Ranks[i]))
	}
	b.WriteByte(']')
	return b.String()
}

func newStrength(cat HandType, made int, ranks ...uint8) HandStrength {
	s := HandStrength{Category: cat, made: uint8(made), count: uint8(len(ranks))}
	copy(s.Ranks[:], ranks)
	return s
}

// Evaluate returns the strength of the best five-card hand within h.
// h must contain between 5 and 7 cards.
func Evaluate(h Hand) (HandStrength, error) {
	if n := h.CountCards(); n < 5 || n > 7 {
		return HandStrength{}, &InvalidHandError{Cards: n}
	}
	return evaluateUnchecked(h), nil
}

// EvaluateCards is Evaluate over a card list. Repeated cards count once.
func EvaluateCards(cards ...Card) (HandStrength, error) {
	return Evaluate(NewHand(cards...))
}

func evaluateUnchecked(h Hand) HandStrength {
	var suitMasks [4]uint16
	var rankMask uint16
	for suit := uint8(0); suit < 4; suit++ {
		mask := h.GetSuitMask(suit)
		suitMasks[suit] = mask
		rankMask |= mask
	}
	return strengthFromMasks(suitMasks, rankMask)
}

func strengthFromMasks(suitMasks [4]uint16, rankMask uint16) HandStrength {
	// At most one suit can hold five or more of seven cards.
	for _, suitMask := range suitMasks {
		if bits.OnesCount16(suitMask) < 5 {
			continue
		}
		if high, ok := straightHigh(suitMask); ok {
			return newStrength(StraightFlush, 1, high)
		}
		top := findOrderedKickers(suitMask, 0, 5)
		return newStrength(Flush, 0, top...)
	}

	s0, s1, s2, s3 := suitMasks[0], suitMasks[1], suitMasks[2], suitMasks[3]

	quadsMask := s0 & s1 & s2 & s3
	tripCandidates := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	tripsMask := tripCandidates &^ quadsMask
	pairsMask := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ tripCandidates

	if quad := highestRank(quadsMask); quad >= 0 {
		q := uint8(quad)
		kickers := findOrderedKickers(rankMask, 1<<q, 1)
		return newStrength(FourOfAKind, 1, q, kickers[0])
	}

	if trip := highestRank(tripsMask); trip >= 0 {
		t := uint8(trip)
		if pair := highestRank(pairsMask | (tripsMask &^ (1 << t))); pair >= 0 {
			return newStrength(FullHouse, 2, t, uint8(pair))
		}
	}

	if high, ok := straightHigh(rankMask); ok {
		return newStrength(Straight, 1, high)
	}

	if trip := highestRank(tripsMask); trip >= 0 {
		t := uint8(trip)
		kickers := findOrderedKickers(rankMask, 1<<t, 2)
		return newStrength(ThreeOfAKind, 1, t, kickers[0], kickers[1])
	}

	if pair1 := highestRank(pairsMask); pair1 >= 0 {
		high := uint8(pair1)
		if pair2 := highestRank(pairsMask &^ (1 << high)); pair2 >= 0 {
			low := uint8(pair2)
			kickers := findOrderedKickers(rankMask, 1<<high|1<<low, 1)
			return newStrength(TwoPair, 2, high, low, kickers[0])
		}
		kickers := findOrderedKickers(rankMask, 1<<high, 3)
		return newStrength(Pair, 1, high, kickers[0], kickers[1], kickers[2])
	}

	return newStrength(HighCard, 0, findOrderedKickers(rankMask, 0, 5)...)
}

// highestRank returns the highest rank present in the bitmask (or -1 when empty).
func highestRank(mask uint16) int {
	if mask == 0 {
		return -1
	}
	return bits.Len16(mask) - 1
}

// findOrderedKickers finds the top n ranks in descending order, excluding used ranks.
func findOrderedKickers(mask, used uint16, n int) []uint8 {
	available := mask &^ used
	kickers := make([]uint8, 0, n)
	for len(kickers) < n {
		if available == 0 {
			kickers = append(kickers, 0)
			continue
		}
		top := uint8(bits.Len16(available) - 1)
		kickers = append(kickers, top)
		available &^= 1 << top
	}
	return kickers
}

// extendedMask shifts ranks up one bit and copies the ace into the LowAce bit.
func extendedMask(mask uint16) uint16 {
	mask &= 0x1FFF
	return mask<<1 | (mask>>Ace)&1<<LowAce
}

// straightHigh returns the high-card rank of the best straight in the mask.
// A wheel (A-2-3-4-5) reports Five.
func straightHigh(mask uint16) (uint8, bool) {
	ext := extendedMask(mask)
	seq := ext & (ext >> 1) & (ext >> 2) & (ext >> 3) & (ext >> 4)
	if seq == 0 {
		return 0, false
	}
	low := bits.Len16(seq) - 1
	return uint8(low + 4 - 1), true
}

// CompareHands compares two hands and returns 1 if a wins, -1 if b wins, 0 for tie
func CompareHands(a, b HandStrength) int {
	return a.Compare(b)
}

// GetWinners evaluates each holding combined with the board and returns the
// indices of every holding tied at the best strength.
func GetWinners(holdings []Hand, board Hand) ([]int, error) {
	if len(holdings) == 0 {
		return nil, nil
	}
	var best HandStrength
	winners := make([]int, 0, 1)
	for i, holding := range holdings {
		s, err := Evaluate(holding | board)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", i, err)
		}
		switch cmp := s.Compare(best); {
		case i == 0 || cmp > 0:
			best = s
			winners = append(winners[:0], i)
		case cmp == 0:
			winners = append(winners, i)
		}
	}
	return winners, nil
}
