package poker

import "fmt"

// ClassKind distinguishes pocket pairs from suited and unsuited holdings.
type ClassKind uint8

const (
	ClassPair ClassKind = iota
	ClassSuited
	ClassUnsuited
)

func (k ClassKind) String() string {
	switch k {
	case ClassPair:
		return "pair"
	case ClassSuited:
		return "suited"
	case ClassUnsuited:
		return "unsuited"
	default:
		return "unknown"
	}
}

// ParseClassKind parses the tag written by ClassKind.String.
func ParseClassKind(s string) (ClassKind, error) {
	switch s {
	case "pair":
		return ClassPair, nil
	case "suited":
		return ClassSuited, nil
	case "unsuited":
		return ClassUnsuited, nil
	default:
		return 0, fmt.Errorf("unknown hole class %q", s)
	}
}

// HoleClass is a suit-isomorphic holding class such as AA, AKs or AKo.
// There are 169 classes.
type HoleClass struct {
	High uint8
	Low  uint8
	Kind ClassKind
}

// ClassOf returns the class of a two-card holding.
func ClassOf(holding Hand) HoleClass {
	a, b := holding.GetCard(0), holding.GetCard(1)
	high, low := a.Rank(), b.Rank()
	if low > high {
		high, low = low, high
	}
	switch {
	case high == low:
		return HoleClass{High: high, Low: low, Kind: ClassPair}
	case a.Suit() == b.Suit():
		return HoleClass{High: high, Low: low, Kind: ClassSuited}
	default:
		return HoleClass{High: high, Low: low, Kind: ClassUnsuited}
	}
}

// Representative returns one concrete holding of the class.
func (c HoleClass) Representative() Hand {
	switch c.Kind {
	case ClassPair:
		return NewHand(NewCard(c.High, Spades), NewCard(c.Low, Hearts))
	case ClassSuited:
		return NewHand(NewCard(c.High, Spades), NewCard(c.Low, Spades))
	default:
		return NewHand(NewCard(c.High, Spades), NewCard(c.Low, Hearts))
	}
}

// Combos returns the number of concrete holdings in the class.
func (c HoleClass) Combos() int {
	switch c.Kind {
	case ClassPair:
		return 6
	case ClassSuited:
		return 4
	default:
		return 12
	}
}

// String renders the class in the usual "AKs" notation.
func (c HoleClass) String() string {
	s := string([]byte{RankChar(c.High), RankChar(c.Low)})
	switch c.Kind {
	case ClassSuited:
		return s + "s"
	case ClassUnsuited:
		return s + "o"
	default:
		return s
	}
}

// AllClasses lists the 169 classes ordered by high rank, then low rank: AA, AKs, AKo, ..., 22.
func AllClasses() []HoleClass {
	classes := make([]HoleClass, 0, 169)
	for high := int(Ace); high >= int(Two); high-- {
		for low := high; low >= int(Two); low-- {
			h, l := uint8(high), uint8(low)
			if h == l {
				classes = append(classes, HoleClass{High: h, Low: l, Kind: ClassPair})
				continue
			}
			classes = append(classes,
				HoleClass{High: h, Low: l, Kind: ClassSuited},
				HoleClass{High: h, Low: l, Kind: ClassUnsuited})
		}
	}
	return classes
}
