package draw

import (
	"fmt"
	"strconv"

	"github.com/kofflo/cobram/internal/errors"
)

// Kind is the closed set of supported bracket topologies. Bracket sizes
// are fixed: a 16-player single elimination, or a 10/12-player round
// robin played over two groups.
type Kind int

const (
	Knockout16 Kind = iota
	RoundRobin10
	RoundRobin12
)

func (k Kind) String() string {
	switch k {
	case Knockout16:
		return "KNOCKOUT_16"
	case RoundRobin10:
		return "ROUND_ROBIN_10"
	case RoundRobin12:
		return "ROUND_ROBIN_12"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts the wire form produced by String back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "KNOCKOUT_16":
		return Knockout16, nil
	case "ROUND_ROBIN_10":
		return RoundRobin10, nil
	case "ROUND_ROBIN_12":
		return RoundRobin12, nil
	}
	return 0, errors.InvalidInputf("invalid draw kind %q", s)
}

// NumberPlayers returns the fixed number of player places of the topology.
func (k Kind) NumberPlayers() int {
	switch k {
	case RoundRobin10:
		return 10
	case RoundRobin12:
		return 12
	default:
		return 16
	}
}

// NumberMatches returns the fixed number of matches of the topology.
func (k Kind) NumberMatches() int {
	return 15
}

func (k Kind) numberRounds() int {
	return 4
}

// roundRobinMatches[r] is the number of matches of round r in a round
// robin draw: two group rounds, two crossover semifinals, one final.
var roundRobinMatches = [4]int{6, 6, 2, 1}

func (k Kind) matchesInRound(round int) int {
	if k == Knockout16 {
		return 8 >> round
	}
	return roundRobinMatches[round]
}

// MatchID names a match as an uppercase round letter followed by the
// 1-based match number within the round: A1, B2, D1. The format is part
// of the API surface and stored state.
type MatchID string

func makeMatchID(round, match int) MatchID {
	return MatchID(fmt.Sprintf("%c%d", 'A'+round, match+1))
}

var ErrInvalidMatchID = errors.InvalidInput("invalid match id")

func (k Kind) parseMatchID(id MatchID) (round, match int, err error) {
	if len(id) < 2 {
		return 0, 0, ErrInvalidMatchID
	}
	letter := id[0]
	if letter < 'A' || letter > 'Z' {
		return 0, 0, ErrInvalidMatchID
	}
	round = int(letter - 'A')
	number, convErr := strconv.Atoi(string(id[1:]))
	if convErr != nil {
		return 0, 0, ErrInvalidMatchID
	}
	match = number - 1
	if round >= k.numberRounds() || match < 0 || match >= k.matchesInRound(round) {
		return 0, 0, ErrInvalidMatchID
	}
	return round, match, nil
}

var (
	ErrInvalidReferenceDraw = errors.InvalidInput("invalid reference draw")
	ErrScoreAlreadySet      = errors.Conflict("cannot change score on a played match without force")
	ErrPlayersNotDefined    = errors.Validation("match players not yet defined")
	ErrInvalidPlayerPlace   = errors.InvalidInput("invalid player place in draw")
)

// Draw owns the matches of one bracket. A reference draw additionally
// owns the places table mapping (round, match, side) to a player place;
// follower draws (one per gambler) share the reference's table, so
// seeding and winner propagation on the reference are visible through
// every follower, while each follower's match scores stay independent.
type Draw struct {
	kind    Kind
	rules   Rules
	ref     *Draw
	matches [][]*Match
	// places is allocated on the reference draw only; -1 marks an
	// unassigned side.
	places [][][2]int
}

// New creates a reference draw of the given topology.
func New(kind Kind, rules Rules) *Draw {
	d := &Draw{kind: kind, rules: rules}
	d.ref = d
	d.matches = allocMatches(kind, rules)
	d.places = make([][][2]int, kind.numberRounds())
	for r := range d.places {
		d.places[r] = make([][2]int, kind.matchesInRound(r))
		for m := range d.places[r] {
			if kind == Knockout16 && r == 0 {
				d.places[r][m] = [2]int{2 * m, 2*m + 1}
			} else {
				d.places[r][m] = [2]int{-1, -1}
			}
		}
	}
	return d
}

// NewFollower creates a draw that shares ref's places table but owns its
// matches. The reference must be self-referential.
func NewFollower(ref *Draw) (*Draw, error) {
	if ref == nil || ref.ref != ref {
		return nil, ErrInvalidReferenceDraw
	}
	return &Draw{
		kind:    ref.kind,
		rules:   ref.rules,
		ref:     ref,
		matches: allocMatches(ref.kind, ref.rules),
	}, nil
}

func allocMatches(kind Kind, rules Rules) [][]*Match {
	matches := make([][]*Match, kind.numberRounds())
	for r := range matches {
		matches[r] = make([]*Match, kind.matchesInRound(r))
		for m := range matches[r] {
			matches[r][m] = newMatch(rules)
		}
	}
	return matches
}

func (d *Draw) Kind() Kind         { return d.kind }
func (d *Draw) Rules() Rules       { return d.rules }
func (d *Draw) IsReference() bool  { return d.ref == d }
func (d *Draw) Reference() *Draw   { return d.ref }
func (d *Draw) NumberPlayers() int { return d.kind.NumberPlayers() }
func (d *Draw) NumberMatches() int { return d.kind.NumberMatches() }
func (d *Draw) FinalID() MatchID   { return makeMatchID(d.kind.numberRounds()-1, 0) }

// MatchInfo is the queryable state of one match slot.
type MatchInfo struct {
	// Score is nil while the match is unplayed.
	Score []SetScore
	// Places holds the player places on each side, -1 while unassigned.
	Places [2]int
	// Winner is the winning side; meaningful only when Decided is true.
	Winner  int
	Decided bool
	// Sets counts sets won per side; meaningful only when Decided is true.
	Sets SetScore
}

// Match returns the state of the identified match slot.
func (d *Draw) Match(id MatchID) (MatchInfo, error) {
	round, match, err := d.kind.parseMatchID(id)
	if err != nil {
		return MatchInfo{}, err
	}
	return d.matchInfo(round, match), nil
}

func (d *Draw) matchInfo(round, match int) MatchInfo {
	m := d.matches[round][match]
	info := MatchInfo{
		Score:  m.Score(),
		Places: d.ref.places[round][match],
	}
	if winner, ok := m.Winner(); ok {
		info.Winner = winner
		info.Decided = true
		info.Sets, _ = m.SetCounts()
	}
	return info
}

// MatchIDs lists every match id in round-major order.
func (d *Draw) MatchIDs() []MatchID {
	ids := make([]MatchID, 0, d.kind.NumberMatches())
	for r := 0; r < d.kind.numberRounds(); r++ {
		for m := 0; m < d.kind.matchesInRound(r); m++ {
			ids = append(ids, makeMatchID(r, m))
		}
	}
	return ids
}

// Matches returns the state of every match slot keyed by id.
func (d *Draw) Matches() map[MatchID]MatchInfo {
	infos := make(map[MatchID]MatchInfo, d.kind.NumberMatches())
	for r := 0; r < d.kind.numberRounds(); r++ {
		for m := 0; m < d.kind.matchesInRound(r); m++ {
			infos[makeMatchID(r, m)] = d.matchInfo(r, m)
		}
	}
	return infos
}

// Winner returns the player place that won the draw, if the final is decided.
func (d *Draw) Winner() (int, bool) {
	finalRound := d.kind.numberRounds() - 1
	final := d.matches[finalRound][0]
	side, ok := final.Winner()
	if !ok {
		return -1, false
	}
	place := d.ref.places[finalRound][0][side]
	if place < 0 {
		return -1, false
	}
	return place, true
}

// SetMatchScore records (or, with nil, clears) a match result. Changing a
// recorded score requires force. On a reference draw a recorded result
// propagates the winner to the next round, and clearing retracts every
// downstream consequence.
func (d *Draw) SetMatchScore(id MatchID, score []SetScore, force bool) error {
	round, match, err := d.kind.parseMatchID(id)
	if err != nil {
		return err
	}
	m := d.matches[round][match]
	if m.played() && !force {
		return ErrScoreAlreadySet
	}
	if score == nil {
		m.score = nil
		if d.IsReference() {
			d.retract(round, match)
		}
		return nil
	}
	places := d.ref.places[round][match]
	if places[0] < 0 || places[1] < 0 {
		return ErrPlayersNotDefined
	}
	if err := m.setScore(score); err != nil {
		return err
	}
	if d.IsReference() {
		side, _ := m.Winner()
		d.propagate(round, match, places[side])
	}
	return nil
}

func (d *Draw) propagate(round, match, winnerPlace int) {
	if d.kind == Knockout16 {
		d.propagateKnockout(round, match, winnerPlace)
	} else {
		d.propagateRoundRobin(round, match, winnerPlace)
	}
}

func (d *Draw) retract(round, match int) {
	if d.kind == Knockout16 {
		d.retractKnockout(round, match)
	} else {
		d.retractRoundRobin(round, match)
	}
}

// ByeAllowed reports whether a bye may be placed at place given the byes
// already present. Knockout draws refuse a bye facing another bye; round
// robin draws admit no byes at all.
func (d *Draw) ByeAllowed(byePlaces []int, place int) bool {
	if d.kind != Knockout16 {
		return false
	}
	sibling := place ^ 1
	for _, b := range byePlaces {
		if b == sibling {
			return false
		}
	}
	return true
}

// AdvanceByes auto-scores every first-round match holding a bye with a
// retirement favoring the opponent. A no-op for round robin draws.
func (d *Draw) AdvanceByes(byePlaces []int) error {
	if d.kind != Knockout16 {
		return nil
	}
	for _, place := range byePlaces {
		score := []SetScore{RetirePlayer2}
		if place%2 == 0 {
			score = []SetScore{RetirePlayer1}
		}
		if err := d.SetMatchScore(makeMatchID(0, place/2), score, true); err != nil {
			return err
		}
	}
	return nil
}

// ResetPlayer clears every result depending on the player at place, used
// when a placed player is replaced with force.
func (d *Draw) ResetPlayer(place int) error {
	if d.kind == Knockout16 {
		return d.SetMatchScore(makeMatchID(0, place/2), nil, true)
	}
	return d.resetRoundRobinPlayer(place)
}
