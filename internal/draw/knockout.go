package draw

// Knockout propagation: the winner of match (r, m) occupies side m%2 of
// match (r+1, m/2). The draw winner is the decided side of the final.

func (d *Draw) propagateKnockout(round, match, winnerPlace int) {
	if round == d.kind.numberRounds()-1 {
		return
	}
	nextRound, nextMatch, side := round+1, match/2, match%2
	d.places[nextRound][nextMatch][side] = winnerPlace
	next := d.matches[nextRound][nextMatch]
	if !next.played() {
		return
	}
	// A forced overwrite can change who reached the next round while its
	// score stands: re-derive that match's winner from the new occupant.
	winnerSide, _ := next.Winner()
	d.propagateKnockout(nextRound, nextMatch, d.places[nextRound][nextMatch][winnerSide])
}

func (d *Draw) retractKnockout(round, match int) {
	if round == d.kind.numberRounds()-1 {
		return
	}
	nextRound, nextMatch, side := round+1, match/2, match%2
	d.places[nextRound][nextMatch][side] = -1
	d.matches[nextRound][nextMatch].score = nil
	d.retractKnockout(nextRound, nextMatch)
}
