package poker

import (
	rand "math/rand/v2"
)

// Deck holds the cards still available for dealing.
type Deck struct {
	cards [52]Card
	size  int
	next  int
	rng   *rand.Rand
}

// NewDeck creates a shuffled deck without the excluded cards.
func NewDeck(rng *rand.Rand, exclude Hand) *Deck {
	d := &Deck{rng: rng}
	d.Reset(exclude)
	return d
}

// Reset refills the deck with every card not in exclude and shuffles it.
func (d *Deck) Reset(exclude Hand) {
	d.size = 0
	for i := 0; i < 52; i++ {
		c := CardAt(i)
		if exclude.HasCard(c) {
			continue
		}
		d.cards[d.size] = c
		d.size++
	}
	d.Shuffle()
}

// Shuffle shuffles the remaining cards using Fisher-Yates and rewinds the deck.
func (d *Deck) Shuffle() {
	d.next = 0
	for i := d.size - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards, or nil if fewer than n remain.
func (d *Deck) Deal(n int) []Card {
	if d.next+n > d.size {
		return nil
	}
	cards := d.cards[d.next : d.next+n]
	d.next += n
	return cards
}

// DealHand deals n cards as a Hand. ok is false if the deck runs short.
func (d *Deck) DealHand(n int) (Hand, bool) {
	cards := d.Deal(n)
	if cards == nil && n > 0 {
		return 0, false
	}
	return NewHand(cards...), true
}

// DealExcluding deals n cards skipping any in exclude. Skipped cards are
// consumed from the deck.
func (d *Deck) DealExcluding(n int, exclude Hand) (Hand, bool) {
	var h Hand
	for got := 0; got < n; {
		if d.next >= d.size {
			return 0, false
		}
		c := d.cards[d.next]
		d.next++
		if exclude.HasCard(c) {
			continue
		}
		h.AddCard(c)
		got++
	}
	return h, true
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return d.size - d.next
}
