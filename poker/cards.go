// Package poker provides card, holding and hand-strength primitives built on
// bit-packed uint64 card sets.
package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Card is a single card encoded as one bit at position suit*13+rank.
type Card uint64

// Hand is a set of cards; multiple bits may be set.
type Hand uint64

// Suit constants
const (
	Clubs    uint8 = 0
	Diamonds uint8 = 1
	Hearts   uint8 = 2
	Spades   uint8 = 3
)

// Rank constants (0-12 for 2-A)
const (
	Two   uint8 = 0
	Three uint8 = 1
	Four  uint8 = 2
	Five  uint8 = 3
	Six   uint8 = 4
	Seven uint8 = 5
	Eight uint8 = 6
	Nine  uint8 = 7
	Ten   uint8 = 8
	Jack  uint8 = 9
	Queen uint8 = 10
	King  uint8 = 11
	Ace   uint8 = 12
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"

	// FullDeck has all 52 card bits set.
	FullDeck Hand = (1 << 52) - 1
)

// NewCard creates a card from rank and suit.
func NewCard(rank, suit uint8) Card {
	return Card(1) << (suit*13 + rank)
}

// CardAt returns the card occupying bit position index (0-51).
func CardAt(index int) Card {
	return Card(1) << index
}

// Index returns which bit position this card occupies (0-51), or -1 for the zero card.
func (c Card) Index() int {
	if c == 0 {
		return -1
	}
	return bits.TrailingZeros64(uint64(c))
}

// Rank returns the rank of the card (0-12)
func (c Card) Rank() uint8 {
	if c == 0 {
		return 255
	}
	return uint8(c.Index() % 13)
}

// Suit returns the suit of the card (0-3)
func (c Card) Suit() uint8 {
	if c == 0 {
		return 255
	}
	return uint8(c.Index() / 13)
}

// String returns the string representation (e.g., "As", "Kh")
func (c Card) String() string {
	rank, suit := c.Rank(), c.Suit()
	if rank > 12 || suit > 3 {
		return "??"
	}
	return string(rankChars[rank]) + string(suitChars[suit])
}

// ParseCard parses a string like "As" into a Card.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card string: %q", s)
	}
	rank, ok := ParseRank(s[0])
	if !ok {
		return 0, fmt.Errorf("invalid rank: %c", s[0])
	}
	suit := strings.IndexByte(suitChars, lower(s[1]))
	if suit < 0 {
		return 0, fmt.Errorf("invalid suit: %c", s[1])
	}
	return NewCard(rank, uint8(suit)), nil
}

// ParseRank converts a rank character to its 0-12 value.
func ParseRank(c byte) (uint8, bool) {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	idx := strings.IndexByte(rankChars, c)
	if idx < 0 {
		return 0, false
	}
	return uint8(idx), true
}

// RankChar returns the display character for a 0-12 rank.
func RankChar(rank uint8) byte {
	if rank > 12 {
		return '?'
	}
	return rankChars[rank]
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// ParseHand parses concatenated or space/comma separated card notation
// such as "AsKs", "As Ks" or "As,Ks". The empty string yields an empty hand.
func ParseHand(s string) (Hand, error) {
	s = strings.NewReplacer(" ", "", ",", "").Replace(s)
	if len(s)%2 != 0 {
		return 0, fmt.Errorf("invalid hand string: %q", s)
	}
	var h Hand
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return 0, err
		}
		if h.HasCard(c) {
			return 0, fmt.Errorf("duplicate card %s in %q", c, s)
		}
		h.AddCard(c)
	}
	return h, nil
}

// MustParseHand is ParseHand for literals known to be valid.
func MustParseHand(s string) Hand {
	h, err := ParseHand(s)
	if err != nil {
		panic(err)
	}
	return h
}

// NewHand creates a hand from multiple cards
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the hand
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// HasCard checks if the hand contains a specific card
func (h Hand) HasCard(c Card) bool {
	return (h & Hand(c)) != 0
}

// Overlaps reports whether the two hands share any card.
func (h Hand) Overlaps(other Hand) bool {
	return h&other != 0
}

// CountCards returns the number of cards in the hand
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// GetCard returns the i-th lowest card in the hand, or 0 if out of range.
func (h Hand) GetCard(i int) Card {
	rest := uint64(h)
	for ; rest != 0; i-- {
		low := rest & -rest
		if i == 0 {
			return Card(low)
		}
		rest &^= low
	}
	return 0
}

// Cards returns the cards in canonical (bit) order.
func (h Hand) Cards() []Card {
	out := make([]Card, 0, h.CountCards())
	for rest := uint64(h); rest != 0; rest &= rest - 1 {
		out = append(out, Card(rest&-rest))
	}
	return out
}

// GetSuitMask returns the cards of a specific suit as a 13-bit rank mask.
func (h Hand) GetSuitMask(suit uint8) uint16 {
	return uint16((h >> (suit * 13)) & 0x1FFF)
}

// RankMask returns the union of all suit masks.
func (h Hand) RankMask() uint16 {
	return h.GetSuitMask(Clubs) | h.GetSuitMask(Diamonds) | h.GetSuitMask(Hearts) | h.GetSuitMask(Spades)
}

// String renders the cards in canonical order without separators.
func (h Hand) String() string {
	var b strings.Builder
	for _, c := range h.Cards() {
		b.WriteString(c.String())
	}
	return b.String()
}

// MarshalText encodes the hand in String form.
func (h Hand) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText decodes the output of MarshalText.
func (h *Hand) UnmarshalText(text []byte) error {
	parsed, err := ParseHand(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
