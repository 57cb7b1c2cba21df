package draw

import (
	"github.com/kofflo/cobram/internal/errors"
)

// Round robin draws run over four fixed rounds: rounds A and B hold the
// intra-group matches of groups A and B, round C holds two crossover
// semifinals assigned manually once both groups are complete, and round D
// is the final, populated automatically from the semifinal winners.

var (
	ErrPlayersOnlyInRoundRobin      = errors.Validation("players can be assigned to a match only in a round robin draw")
	ErrMustAddBothPlayers           = errors.Validation("must add both players to a match")
	ErrPlayersNotInSameGroup        = errors.Validation("players not in the same group")
	ErrPlayersNotInSameGroupAsMatch = errors.Validation("players not in the same group as the match")
	ErrPlayersFromSameGroup         = errors.Validation("players come from the same group")
	ErrGroupsNotComplete            = errors.Validation("groups are not complete yet")
	ErrPlayersCannotBeAddedToFinal  = errors.Validation("players cannot be added manually to the final")
	ErrPlayersAlreadyAssigned       = errors.Conflict("cannot update match players without force")
)

const (
	groupA = 0
	groupB = 1
)

// group maps a player place to its group: the first four places belong to
// group A, the next four to group B, and the remaining places split evenly
// between the two in the same order.
func (d *Draw) group(place int) (int, error) {
	n := d.kind.NumberPlayers()
	half := (n - 8) / 2
	switch {
	case place >= 0 && place < 4:
		return groupA, nil
	case place >= 4 && place < 8:
		return groupB, nil
	case place >= 8 && place < 8+half:
		return groupA, nil
	case place >= 8+half && place < n:
		return groupB, nil
	}
	return 0, ErrInvalidPlayerPlace
}

// AddPlayersToMatch assigns the players at place1 and place2 to a round
// robin match, or clears the assignment when both places are -1.
// Group-round matches take players of the matching group only; semifinals
// take one player per group once both group rounds are complete; the
// final is never assigned manually. Overwriting an assignment requires
// force and clears the match score.
func (d *Draw) AddPlayersToMatch(id MatchID, place1, place2 int, force bool) error {
	if d.kind == Knockout16 {
		return ErrPlayersOnlyInRoundRobin
	}
	round, match, err := d.kind.parseMatchID(id)
	if err != nil {
		return err
	}
	clearing := place1 < 0 && place2 < 0
	if (place1 < 0) != (place2 < 0) {
		return ErrMustAddBothPlayers
	}
	if !clearing {
		if err := d.checkAssignablePlayers(round, place1, place2); err != nil {
			return err
		}
	}
	slots := &d.ref.places[round][match]
	assigned := slots[0] >= 0 || slots[1] >= 0
	if assigned && !force {
		return ErrPlayersAlreadyAssigned
	}
	if clearing {
		*slots = [2]int{-1, -1}
	} else {
		*slots = [2]int{place1, place2}
	}
	if assigned {
		return d.SetMatchScore(id, nil, true)
	}
	return nil
}

func (d *Draw) checkAssignablePlayers(round, place1, place2 int) error {
	group1, err := d.group(place1)
	if err != nil {
		return err
	}
	group2, err := d.group(place2)
	if err != nil {
		return err
	}
	switch round {
	case 0, 1:
		if group1 != group2 {
			return ErrPlayersNotInSameGroup
		}
		if group1 != round {
			return ErrPlayersNotInSameGroupAsMatch
		}
	case 2:
		if !d.groupComplete(groupA) || !d.groupComplete(groupB) {
			return ErrGroupsNotComplete
		}
		if group1 == group2 {
			return ErrPlayersFromSameGroup
		}
	case 3:
		return ErrPlayersCannotBeAddedToFinal
	}
	return nil
}

// groupComplete reports whether every match of a group round is played.
// Only meaningful on the reference draw, which holds the real results.
func (d *Draw) groupComplete(group int) bool {
	for _, m := range d.ref.matches[group] {
		if !m.played() {
			return false
		}
	}
	return true
}

// A semifinal winner takes the corresponding side of the final.
func (d *Draw) propagateRoundRobin(round, match, winnerPlace int) {
	if round != 2 {
		return
	}
	d.places[3][0][match] = winnerPlace
}

func (d *Draw) retractRoundRobin(round, match int) {
	if round != 2 {
		return
	}
	d.places[3][0][match] = -1
	d.matches[3][0].score = nil
}

// resetRoundRobinPlayer clears every match the place takes part in; any
// such reset also invalidates the knockout stage outcomes.
func (d *Draw) resetRoundRobinPlayer(place int) error {
	var hit bool
	for r := 0; r < d.kind.numberRounds(); r++ {
		for m := 0; m < d.kind.matchesInRound(r); m++ {
			slots := d.ref.places[r][m]
			if slots[0] != place && slots[1] != place {
				continue
			}
			if err := d.SetMatchScore(makeMatchID(r, m), nil, true); err != nil {
				return err
			}
			hit = true
		}
	}
	if !hit {
		return nil
	}
	for _, id := range []MatchID{"C1", "C2", "D1"} {
		if err := d.SetMatchScore(id, nil, true); err != nil {
			return err
		}
	}
	return nil
}
