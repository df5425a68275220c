package solver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lox/holdem-resolver/poker"
)

// ErrIllegalAction reports a round state that no sequence of legal actions
// could have produced.
var ErrIllegalAction = errors.New("illegal action")

// Street enumerates the betting round within a Texas Hold'em hand.
type Street uint8

const (
	StreetPreflop Street = iota
	StreetFlop
	StreetTurn
	StreetRiver
)

func (s Street) String() string {
	switch s {
	case StreetPreflop:
		return "preflop"
	case StreetFlop:
		return "flop"
	case StreetTurn:
		return "turn"
	case StreetRiver:
		return "river"
	default:
		return "unknown"
	}
}

// ParseStreet converts a street name back to a Street.
func ParseStreet(s string) (Street, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "preflop":
		return StreetPreflop, nil
	case "flop":
		return StreetFlop, nil
	case "turn":
		return StreetTurn, nil
	case "river":
		return StreetRiver, nil
	default:
		return 0, fmt.Errorf("unknown street %q", s)
	}
}

// StreetForBoard maps a board size to its street.
func StreetForBoard(board poker.Hand) Street {
	switch n := board.CountCards(); {
	case n >= 5:
		return StreetRiver
	case n == 4:
		return StreetTurn
	case n >= 3:
		return StreetFlop
	default:
		return StreetPreflop
	}
}

// Action is one of the four abstract betting actions. The declaration order
// is the legal-action order and the tie-break order.
type Action uint8

const (
	Fold Action = iota
	CheckCall
	BetRaise
	AllIn
)

// NumActions is the size of the full action set.
const NumActions = 4

func (a Action) String() string {
	switch a {
	case Fold:
		return "fold"
	case CheckCall:
		return "check/call"
	case BetRaise:
		return "bet/raise"
	case AllIn:
		return "all-in"
	default:
		return "unknown"
	}
}

// ParseAction accepts the names printed by Action.String plus the common
// short forms.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold", "f":
		return Fold, nil
	case "check/call", "check", "call", "c":
		return CheckCall, nil
	case "bet/raise", "bet", "raise", "r":
		return BetRaise, nil
	case "all-in", "allin", "a":
		return AllIn, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// PlayerState is one seat's stake in the current hand. Committed counts chips
// put in during the current betting round.
type PlayerState struct {
	Chips     int  `json:"chips"`
	Committed int  `json:"committed"`
	Folded    bool `json:"folded,omitempty"`
}

// RoundState is an immutable snapshot of a betting round. Pot holds the chips
// collected on earlier streets; chips committed this round are kept per seat.
// Methods never mutate the receiver.
type RoundState struct {
	Board    poker.Hand    `json:"board"`
	Pot      int           `json:"pot"`
	BigBlind int           `json:"big_blind"`
	Acting   int           `json:"acting"`
	Players  []PlayerState `json:"players"`
}

// NewHeadsUpState builds a fresh betting round for two seats with equal
// stacks and no chips committed.
func NewHeadsUpState(board poker.Hand, pot, bigBlind, stack int) RoundState {
	return RoundState{
		Board:    board,
		Pot:      pot,
		BigBlind: bigBlind,
		Players:  []PlayerState{{Chips: stack}, {Chips: stack}},
	}
}

// Clone returns a deep copy.
func (s RoundState) Clone() RoundState {
	s.Players = append([]PlayerState(nil), s.Players...)
	return s
}

// Validate checks the snapshot for impossible values.
func (s RoundState) Validate() error {
	if len(s.Players) < 2 {
		return fmt.Errorf("%w: %d seats", ErrIllegalAction, len(s.Players))
	}
	if s.Acting < 0 || s.Acting >= len(s.Players) {
		return fmt.Errorf("%w: acting seat %d out of range", ErrIllegalAction, s.Acting)
	}
	if s.BigBlind <= 0 {
		return fmt.Errorf("%w: big blind %d", ErrIllegalAction, s.BigBlind)
	}
	if s.Pot < 0 {
		return fmt.Errorf("%w: negative pot", ErrIllegalAction)
	}
	if n := s.Board.CountCards(); n > 5 || (n > 0 && n < 3) {
		return fmt.Errorf("%w: board has %d cards", ErrIllegalAction, n)
	}
	for i, p := range s.Players {
		if p.Chips < 0 || p.Committed < 0 {
			return fmt.Errorf("%w: seat %d has negative chips", ErrIllegalAction, i)
		}
	}
	if s.Players[s.Acting].Folded {
		return fmt.Errorf("%w: acting seat %d has folded", ErrIllegalAction, s.Acting)
	}
	return nil
}

// Street reports the betting round implied by the board.
func (s RoundState) Street() Street {
	return StreetForBoard(s.Board)
}

// CurrentBet is the largest amount committed by any seat this round.
func (s RoundState) CurrentBet() int {
	bet := 0
	for _, p := range s.Players {
		bet = max(bet, p.Committed)
	}
	return bet
}

// TotalPot is the pot including chips committed this round.
func (s RoundState) TotalPot() int {
	total := s.Pot
	for _, p := range s.Players {
		total += p.Committed
	}
	return total
}

// ToCall is the amount seat must add to match the current bet.
func (s RoundState) ToCall(seat int) int {
	return max(0, s.CurrentBet()-s.Players[seat].Committed)
}

// ActiveCount counts seats that have not folded.
func (s RoundState) ActiveCount() int {
	n := 0
	for _, p := range s.Players {
		if !p.Folded {
			n++
		}
	}
	return n
}

// NumActiveOpponents counts seats other than seat still in the hand.
func (s RoundState) NumActiveOpponents(seat int) int {
	n := s.ActiveCount()
	if !s.Players[seat].Folded {
		n--
	}
	return n
}

// ActiveSeats lists the seats still in the hand in seat order.
func (s RoundState) ActiveSeats() []int {
	seats := make([]int, 0, len(s.Players))
	for i, p := range s.Players {
		if !p.Folded {
			seats = append(seats, i)
		}
	}
	return seats
}

// LegalActions returns the acting seat's legal actions in Action order.
func (s RoundState) LegalActions() []Action {
	return s.LegalActionsFor(s.Acting)
}

// LegalActionsFor returns the legal actions for seat in Action order. Fold is
// always available; check/call needs chips left after matching the current
// bet and bet/raise needs chips beyond one big blind more.
func (s RoundState) LegalActionsFor(seat int) []Action {
	p := s.Players[seat]
	bet := s.CurrentBet()
	actions := []Action{Fold}
	if p.Chips+p.Committed > bet {
		actions = append(actions, CheckCall)
	}
	if p.Chips+p.Committed > bet+s.BigBlind {
		actions = append(actions, BetRaise)
	}
	if p.Chips > 0 {
		actions = append(actions, AllIn)
	}
	return actions
}

// IsLegal reports whether seat may take action.
func (s RoundState) IsLegal(seat int, action Action) bool {
	for _, a := range s.LegalActionsFor(seat) {
		if a == action {
			return true
		}
	}
	return false
}

// Apply performs action for the acting seat and returns the new state along
// with the action actually taken. A call or bet the seat cannot cover becomes
// an all-in; a seat with no chips left can only check. Acting passes to the
// next seat still in the hand with chips behind.
func (s RoundState) Apply(action Action) (RoundState, Action) {
	next := s.Clone()
	seat := s.Acting
	p := &next.Players[seat]
	bet := s.CurrentBet()

	taken := action
	switch action {
	case Fold:
		p.Folded = true
	case CheckCall, BetRaise:
		target := bet
		if action == BetRaise {
			target = bet + s.BigBlind
		}
		switch {
		case p.Chips == 0:
			taken = CheckCall
		case p.Chips+p.Committed <= target:
			taken = AllIn
			p.Committed += p.Chips
			p.Chips = 0
		default:
			pay := target - p.Committed
			p.Chips -= pay
			p.Committed = target
		}
	case AllIn:
		if p.Chips == 0 {
			taken = CheckCall
		}
		p.Committed += p.Chips
		p.Chips = 0
	default:
		taken = CheckCall
	}

	next.Acting = next.nextToAct(seat)
	return next, taken
}

// nextToAct finds the first seat after from that is in the hand and has
// chips behind, or from itself when nobody else can act.
func (s RoundState) nextToAct(from int) int {
	n := len(s.Players)
	for i := 1; i < n; i++ {
		seat := (from + i) % n
		if p := s.Players[seat]; !p.Folded && p.Chips > 0 {
			return seat
		}
	}
	return from
}

// Opponent returns the other active seat in a heads-up state, or -1.
func (s RoundState) Opponent(seat int) int {
	if s.ActiveCount() != 2 {
		return -1
	}
	for i, p := range s.Players {
		if i != seat && !p.Folded {
			return i
		}
	}
	return -1
}

// PotIfAllCall projects the pot if every active seat matches the current bet
// or goes all-in trying.
func (s RoundState) PotIfAllCall() int {
	return s.projectPot(s.CurrentBet())
}

// PotIfAllBet projects the pot if every active seat matches one more big blind
// on top of the current bet.
func (s RoundState) PotIfAllBet() int {
	return s.projectPot(s.CurrentBet() + s.BigBlind)
}

func (s RoundState) projectPot(target int) int {
	total := s.Pot
	for _, p := range s.Players {
		if p.Folded {
			total += p.Committed
			continue
		}
		total += max(p.Committed, min(target, p.Committed+p.Chips))
	}
	return total
}

// matched is how much of extra chips above target the opponents of seat
// can still put in.
func (s RoundState) matched(seat, target, extra int) int {
	total := 0
	for i, p := range s.Players {
		if i == seat || p.Folded {
			continue
		}
		total += min(extra, max(0, p.Chips+p.Committed-target))
	}
	return total
}

func (s RoundState) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s board=%s pot=%d bet=%d acting=%d", s.Street(), s.Board, s.TotalPot(), s.CurrentBet(), s.Acting)
	for i, p := range s.Players {
		state := ""
		if p.Folded {
			state = " folded"
		}
		fmt.Fprintf(&b, " [%d: %d/%d%s]", i, p.Chips, p.Committed, state)
	}
	return b.String()
}
