package draw

import (
	"github.com/kofflo/cobram/internal/errors"
)

// TieBreak is the tie-break policy applied to the fifth set of a
// five-set match. Three-set tournaments carry TieBreakUnset.
type TieBreak int

const (
	TieBreakUnset TieBreak = iota
	// TieBreakAt7: fifth set played like a normal set (7-point breaker at 6-6).
	TieBreakAt7
	// TieBreakAt13: games continue until a two-game margin or a breaker at 12-12.
	TieBreakAt13
	// NoTieBreak: games continue until a two-game margin, however long.
	NoTieBreak
)

func (t TieBreak) String() string {
	switch t {
	case TieBreakAt7:
		return "TIE_BREAKER_AT_7"
	case TieBreakAt13:
		return "TIE_BREAKER_AT_13"
	case NoTieBreak:
		return "NO_TIE_BREAKER"
	default:
		return ""
	}
}

// ParseTieBreak converts the wire form produced by String back to a policy.
func ParseTieBreak(s string) (TieBreak, error) {
	switch s {
	case "TIE_BREAKER_AT_7":
		return TieBreakAt7, nil
	case "TIE_BREAKER_AT_13":
		return TieBreakAt13, nil
	case "NO_TIE_BREAKER":
		return NoTieBreak, nil
	case "":
		return TieBreakUnset, nil
	}
	return TieBreakUnset, errors.InvalidInputf("invalid tie-break policy %q", s)
}

// Rules carries the match format of a tournament: best of Sets sets,
// fifth set governed by FifthSet when Sets is 5.
type Rules struct {
	Sets     int
	FifthSet TieBreak
}

// SetScore is the game score of one set, match order (player 1, player 2)
type SetScore [2]int

// Retirement sentinels. Either may appear only as the sole set of a score
// and immediately decides the match for the opponent.
var (
	RetirePlayer1 = SetScore{-1, 0}
	RetirePlayer2 = SetScore{0, -1}
)

// IsRetirement reports whether s is one of the retirement sentinels.
func (s SetScore) IsRetirement() bool {
	return s == RetirePlayer1 || s == RetirePlayer2
}

var (
	ErrInvalidNumberOfSets = errors.Validation("invalid number of sets for a match")
	ErrInvalidSetScore     = errors.Validation("invalid score for a set")
	ErrNoMatchWinner       = errors.Validation("score does not decide the match")
)

// Match stores one match's validated set score. Matches are owned by
// exactly one Draw slot and mutated only through the draw.
type Match struct {
	rules Rules
	score []SetScore
}

func newMatch(rules Rules) *Match {
	return &Match{rules: rules}
}

func (m *Match) played() bool {
	return m.score != nil
}

// Score returns a copy of the recorded sets, or nil if the match is unplayed.
func (m *Match) Score() []SetScore {
	if m.score == nil {
		return nil
	}
	return append([]SetScore(nil), m.score...)
}

// setScore validates and records a score; nil clears the match.
func (m *Match) setScore(score []SetScore) error {
	if score == nil {
		m.score = nil
		return nil
	}
	if err := validateScore(m.rules, score); err != nil {
		return err
	}
	m.score = append([]SetScore(nil), score...)
	return nil
}

// Winner returns the winning side (0 or 1). Retirement sentinels take
// precedence over set count.
func (m *Match) Winner() (int, bool) {
	if m.score == nil {
		return 0, false
	}
	for _, s := range m.score {
		if s == RetirePlayer1 {
			return 1, true
		}
		if s == RetirePlayer2 {
			return 0, true
		}
	}
	won1, won2 := setsWon(m.score)
	if won1 > won2 {
		return 0, true
	}
	return 1, true
}

// SetCounts returns how many sets each side won. A retirement score
// counts as (0, 0).
func (m *Match) SetCounts() (SetScore, bool) {
	if m.score == nil {
		return SetScore{}, false
	}
	for _, s := range m.score {
		if s.IsRetirement() {
			return SetScore{0, 0}, true
		}
	}
	won1, won2 := setsWon(m.score)
	return SetScore{won1, won2}, true
}

func setsWon(score []SetScore) (int, int) {
	var won1, won2 int
	for _, s := range score {
		if s[0] > s[1] {
			won1++
		} else {
			won2++
		}
	}
	return won1, won2
}

// validateScore checks that score represents a legally completed match
// under the given rules.
func validateScore(rules Rules, score []SetScore) error {
	if len(score) > rules.Sets {
		return ErrInvalidNumberOfSets
	}
	need := rules.Sets/2 + 1
	var won bool
	var won1, won2 int
	for i, set := range score {
		if won {
			// the match is already decided, no further set allowed
			return ErrInvalidNumberOfSets
		}
		if set.IsRetirement() {
			if i != 0 {
				return ErrInvalidSetScore
			}
			won = true
			continue
		}
		if i == 4 {
			// a fifth set is reached only at two sets all and always decides
			if !validFifthSet(rules.FifthSet, set) {
				return ErrInvalidSetScore
			}
			won = true
			continue
		}
		if !validNormalSet(set) {
			return ErrInvalidSetScore
		}
		if set[0] > set[1] {
			won1++
		} else {
			won2++
		}
		if won1 == need || won2 == need {
			won = true
		}
	}
	if !won {
		return ErrNoMatchWinner
	}
	return nil
}

// validNormalSet accepts 6-0..6-4, 7-5 and 7-6 in either order.
func validNormalSet(set SetScore) bool {
	hi, lo := ordered(set)
	switch hi {
	case 6:
		return lo >= 0 && lo <= 4
	case 7:
		return lo == 5 || lo == 6
	}
	return false
}

func validFifthSet(policy TieBreak, set SetScore) bool {
	hi, lo := ordered(set)
	switch policy {
	case TieBreakAt7:
		return validNormalSet(set)
	case TieBreakAt13:
		if hi == 6 && lo >= 0 && lo <= 4 {
			return true
		}
		if hi == 13 && lo == 12 {
			return true
		}
		return hi >= 7 && hi <= 13 && hi-lo == 2
	case NoTieBreak:
		if hi == 6 && lo >= 0 && lo <= 4 {
			return true
		}
		return hi >= 7 && hi-lo == 2
	}
	return false
}

func ordered(set SetScore) (hi, lo int) {
	if set[0] >= set[1] {
		return set[0], set[1]
	}
	return set[1], set[0]
}
