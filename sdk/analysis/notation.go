package analysis

import (
	"fmt"
	"strings"

	"github.com/lox/holdem-resolver/poker"
)

// ParseRange builds an unnormalised range from standard notation with weight
// 1 on every listed holding.
// Examples: "AA,KK", "AKs,AKo", "TT+", "A5s-A2s", "KTs+", "22-66"
func ParseRange(notation string) (HoleRange, error) {
	r := NewHoleRange()
	for part := range strings.SplitSeq(notation, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		classes, err := parseRangePart(part)
		if err != nil {
			return nil, fmt.Errorf("invalid range part %q: %w", part, err)
		}
		for _, c := range classes {
			r.addClass(c)
		}
	}
	return r, nil
}

// PriorFromNotation parses notation, removes holdings blocked by known cards
// and normalises the result.
func PriorFromNotation(notation string, known poker.Hand) (HoleRange, error) {
	r, err := ParseRange(notation)
	if err != nil {
		return nil, err
	}
	if err := r.RemoveCards(known, 0); err != nil {
		return nil, fmt.Errorf("range %q is empty after removing %s: %w", notation, known, err)
	}
	if known == 0 {
		if err := r.Normalize(0); err != nil {
			return nil, fmt.Errorf("range %q is empty: %w", notation, err)
		}
	}
	return r, nil
}

func (r HoleRange) addClass(c poker.HoleClass) {
	for s1 := uint8(0); s1 < 4; s1++ {
		for s2 := uint8(0); s2 < 4; s2++ {
			switch c.Kind {
			case poker.ClassPair:
				if s2 <= s1 {
					continue
				}
			case poker.ClassSuited:
				if s1 != s2 {
					continue
				}
			case poker.ClassUnsuited:
				if s1 == s2 {
					continue
				}
			}
			r[poker.HoldingIndexOf(poker.NewCard(c.High, s1), poker.NewCard(c.Low, s2))] = 1
		}
	}
}

func parseRangePart(part string) ([]poker.HoleClass, error) {
	if base, ok := strings.CutSuffix(part, "+"); ok {
		return parsePlus(base)
	}
	if start, end, ok := strings.Cut(part, "-"); ok {
		return parseDash(strings.TrimSpace(start), strings.TrimSpace(end))
	}
	high, low, kinds, err := parseHandNotation(part)
	if err != nil {
		return nil, err
	}
	return classes(high, low, kinds), nil
}

// parsePlus handles "TT+" (pairs up to aces) and "KTs+" (kicker up to one below the high card).
func parsePlus(base string) ([]poker.HoleClass, error) {
	high, low, kinds, err := parseHandNotation(base)
	if err != nil {
		return nil, err
	}
	var out []poker.HoleClass
	if high == low {
		for r := high; r <= poker.Ace; r++ {
			out = append(out, classes(r, r, kinds)...)
		}
		return out, nil
	}
	for r := low; r < high; r++ {
		out = append(out, classes(high, r, kinds)...)
	}
	return out, nil
}

// parseDash handles "22-66" and "A5s-A2s".
func parseDash(start, end string) ([]poker.HoleClass, error) {
	sh, sl, kinds, err := parseHandNotation(start)
	if err != nil {
		return nil, err
	}
	eh, el, _, err := parseHandNotation(end)
	if err != nil {
		return nil, err
	}

	var out []poker.HoleClass
	switch {
	case sh == sl && eh == el:
		for r := min(sh, eh); r <= max(sh, eh); r++ {
			out = append(out, classes(r, r, kinds)...)
		}
	case sh == eh:
		for r := min(sl, el); r <= max(sl, el); r++ {
			out = append(out, classes(sh, r, kinds)...)
		}
	default:
		return nil, fmt.Errorf("unsupported range format: %s-%s", start, end)
	}
	return out, nil
}

func parseHandNotation(s string) (high, low uint8, kinds []poker.ClassKind, err error) {
	if len(s) < 2 || len(s) > 3 {
		return 0, 0, nil, fmt.Errorf("invalid notation length: %s", s)
	}
	r1, ok1 := poker.ParseRank(s[0])
	r2, ok2 := poker.ParseRank(s[1])
	if !ok1 || !ok2 {
		return 0, 0, nil, fmt.Errorf("invalid rank in: %s", s)
	}
	high, low = max(r1, r2), min(r1, r2)

	if high == low {
		if len(s) == 3 {
			return 0, 0, nil, fmt.Errorf("pocket pairs cannot have suited/offsuit modifier: %s", s)
		}
		return high, low, []poker.ClassKind{poker.ClassPair}, nil
	}
	if len(s) == 2 {
		return high, low, []poker.ClassKind{poker.ClassSuited, poker.ClassUnsuited}, nil
	}
	switch s[2] {
	case 's':
		return high, low, []poker.ClassKind{poker.ClassSuited}, nil
	case 'o':
		return high, low, []poker.ClassKind{poker.ClassUnsuited}, nil
	default:
		return 0, 0, nil, fmt.Errorf("invalid modifier: %c", s[2])
	}
}

func classes(high, low uint8, kinds []poker.ClassKind) []poker.HoleClass {
	if high == low {
		return []poker.HoleClass{{High: high, Low: low, Kind: poker.ClassPair}}
	}
	out := make([]poker.HoleClass, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, poker.HoleClass{High: high, Low: low, Kind: k})
	}
	return out
}
