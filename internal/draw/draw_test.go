package draw

import (
	"errors"
	"testing"
)

func straightSets() []SetScore {
	return []SetScore{{6, 4}, {6, 4}}
}

func newKnockout(t *testing.T) *Draw {
	t.Helper()
	return New(Knockout16, Rules{Sets: 3})
}

func TestParseMatchID(t *testing.T) {
	tests := []struct {
		kind  Kind
		id    MatchID
		valid bool
	}{
		{Knockout16, "A1", true},
		{Knockout16, "A8", true},
		{Knockout16, "B4", true},
		{Knockout16, "C2", true},
		{Knockout16, "D1", true},
		{Knockout16, "A9", false},
		{Knockout16, "B5", false},
		{Knockout16, "D2", false},
		{Knockout16, "E1", false},
		{Knockout16, "a1", false},
		{Knockout16, "A0", false},
		{Knockout16, "A", false},
		{Knockout16, "", false},
		{Knockout16, "AX", false},
		{RoundRobin10, "A6", true},
		{RoundRobin10, "A7", false},
		{RoundRobin10, "B6", true},
		{RoundRobin12, "C2", true},
		{RoundRobin12, "C3", false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+string(tt.id), func(t *testing.T) {
			_, _, err := tt.kind.parseMatchID(tt.id)
			if tt.valid && err != nil {
				t.Errorf("parseMatchID(%q) = %v, want nil", tt.id, err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidMatchID) {
				t.Errorf("parseMatchID(%q) = %v, want %v", tt.id, err, ErrInvalidMatchID)
			}
		})
	}
}

func TestKnockoutInitialPlaces(t *testing.T) {
	d := newKnockout(t)

	info, err := d.Match("A3")
	if err != nil {
		t.Fatalf("Match(A3): %v", err)
	}
	if info.Places != [2]int{4, 5} {
		t.Fatalf("A3 places = %v, want [4 5]", info.Places)
	}

	info, _ = d.Match("B1")
	if info.Places != [2]int{-1, -1} {
		t.Fatalf("B1 places = %v, want unassigned", info.Places)
	}
}

func TestKnockoutPropagation(t *testing.T) {
	d := newKnockout(t)

	if err := d.SetMatchScore("A1", straightSets(), false); err != nil {
		t.Fatalf("SetMatchScore(A1): %v", err)
	}
	info, _ := d.Match("B1")
	if info.Places[0] != 0 {
		t.Fatalf("B1 side 0 = %d, want 0", info.Places[0])
	}

	// loser of A2 goes nowhere, winner (place 3) takes side 1 of B1
	if err := d.SetMatchScore("A2", []SetScore{{4, 6}, {4, 6}}, false); err != nil {
		t.Fatalf("SetMatchScore(A2): %v", err)
	}
	info, _ = d.Match("B1")
	if info.Places != [2]int{0, 3} {
		t.Fatalf("B1 places = %v, want [0 3]", info.Places)
	}

	if err := d.SetMatchScore("B1", straightSets(), false); err != nil {
		t.Fatalf("SetMatchScore(B1): %v", err)
	}
	info, _ = d.Match("C1")
	if info.Places[0] != 0 {
		t.Fatalf("C1 side 0 = %d, want 0", info.Places[0])
	}
}

func TestKnockoutFullRunAndWinner(t *testing.T) {
	d := newKnockout(t)

	if _, ok := d.Winner(); ok {
		t.Fatal("fresh draw should have no winner")
	}
	for _, id := range d.MatchIDs() {
		if err := d.SetMatchScore(id, straightSets(), false); err != nil {
			t.Fatalf("SetMatchScore(%s): %v", id, err)
		}
	}
	winner, ok := d.Winner()
	if !ok || winner != 0 {
		t.Fatalf("Winner() = %d, %v, want 0, true", winner, ok)
	}
}

func TestKnockoutScoreGates(t *testing.T) {
	d := newKnockout(t)

	if err := d.SetMatchScore("B1", straightSets(), false); !errors.Is(err, ErrPlayersNotDefined) {
		t.Fatalf("score on undefined match = %v, want %v", err, ErrPlayersNotDefined)
	}

	if err := d.SetMatchScore("A1", straightSets(), false); err != nil {
		t.Fatalf("SetMatchScore(A1): %v", err)
	}
	if err := d.SetMatchScore("A1", straightSets(), false); !errors.Is(err, ErrScoreAlreadySet) {
		t.Fatalf("rescore without force = %v, want %v", err, ErrScoreAlreadySet)
	}
	if err := d.SetMatchScore("A1", []SetScore{{4, 6}, {4, 6}}, true); err != nil {
		t.Fatalf("rescore with force = %v, want nil", err)
	}
	info, _ := d.Match("B1")
	if info.Places[0] != 1 {
		t.Fatalf("B1 side 0 after forced rescore = %d, want 1", info.Places[0])
	}
}

func TestKnockoutRetraction(t *testing.T) {
	d := newKnockout(t)

	for _, id := range []MatchID{"A1", "A2"} {
		if err := d.SetMatchScore(id, straightSets(), false); err != nil {
			t.Fatalf("SetMatchScore(%s): %v", id, err)
		}
	}
	if err := d.SetMatchScore("B1", straightSets(), false); err != nil {
		t.Fatalf("SetMatchScore(B1): %v", err)
	}

	// clearing A1 must clear B1's result and vacate the downstream slots
	if err := d.SetMatchScore("A1", nil, true); err != nil {
		t.Fatalf("clear A1: %v", err)
	}
	info, _ := d.Match("B1")
	if info.Score != nil {
		t.Fatal("B1 should be cleared after retraction")
	}
	if info.Places != [2]int{-1, 2} {
		t.Fatalf("B1 places after retraction = %v, want [-1 2]", info.Places)
	}
	info, _ = d.Match("C1")
	if info.Places[0] != -1 {
		t.Fatalf("C1 side 0 after retraction = %d, want -1", info.Places[0])
	}
}

func TestKnockoutForcedOverwriteRederives(t *testing.T) {
	d := newKnockout(t)

	if err := d.SetMatchScore("A1", straightSets(), false); err != nil {
		t.Fatalf("SetMatchScore(A1): %v", err)
	}
	if err := d.SetMatchScore("A2", straightSets(), false); err != nil {
		t.Fatalf("SetMatchScore(A2): %v", err)
	}
	if err := d.SetMatchScore("B1", straightSets(), false); err != nil {
		t.Fatalf("SetMatchScore(B1): %v", err)
	}
	if err := d.SetMatchScore("C1", []SetScore{{4, 6}, {4, 6}}, false); err == nil {
		t.Fatal("C1 should not be scorable with one side missing")
	}

	// flip A1 with force: B1's score stands but its winner place changes,
	// so the re-derived winner must flow into C1
	if err := d.SetMatchScore("A1", []SetScore{{4, 6}, {4, 6}}, true); err != nil {
		t.Fatalf("forced rescore A1: %v", err)
	}
	info, _ := d.Match("B1")
	if info.Places != [2]int{1, 2} {
		t.Fatalf("B1 places = %v, want [1 2]", info.Places)
	}
	info, _ = d.Match("C1")
	if info.Places[0] != 1 {
		t.Fatalf("C1 side 0 = %d, want 1 (re-derived from B1)", info.Places[0])
	}
}

func TestByes(t *testing.T) {
	d := newKnockout(t)

	if !d.ByeAllowed(nil, 1) {
		t.Fatal("first bye should be allowed")
	}
	if d.ByeAllowed([]int{0}, 1) {
		t.Fatal("bye facing a bye should be refused")
	}
	if d.ByeAllowed([]int{3}, 1) != true {
		t.Fatal("bye with a non-sibling bye should be allowed")
	}

	// bye at place 1: player at place 0 advances by retirement of side 2
	if err := d.AdvanceByes([]int{1}); err != nil {
		t.Fatalf("AdvanceByes: %v", err)
	}
	info, _ := d.Match("A1")
	if !info.Decided || info.Winner != 0 {
		t.Fatalf("A1 after bye = %+v, want side 0 winner", info)
	}
	infoB, _ := d.Match("B1")
	if infoB.Places[0] != 0 {
		t.Fatalf("B1 side 0 = %d, want 0", infoB.Places[0])
	}

	// bye at an even place retires side 1's opponent
	if err := d.AdvanceByes([]int{6}); err != nil {
		t.Fatalf("AdvanceByes: %v", err)
	}
	info, _ = d.Match("A4")
	if !info.Decided || info.Winner != 1 {
		t.Fatalf("A4 after bye = %+v, want side 1 winner", info)
	}
}

func TestRoundRobinByesNotAllowed(t *testing.T) {
	d := New(RoundRobin10, Rules{Sets: 3})
	if d.ByeAllowed(nil, 0) {
		t.Fatal("round robin draws should refuse byes")
	}
}

func TestFollower(t *testing.T) {
	ref := newKnockout(t)
	follower, err := NewFollower(ref)
	if err != nil {
		t.Fatalf("NewFollower: %v", err)
	}
	if follower.IsReference() || follower.Reference() != ref {
		t.Fatal("follower should point at its reference")
	}

	if _, err := NewFollower(nil); !errors.Is(err, ErrInvalidReferenceDraw) {
		t.Fatalf("NewFollower(nil) = %v, want %v", err, ErrInvalidReferenceDraw)
	}
	if _, err := NewFollower(follower); !errors.Is(err, ErrInvalidReferenceDraw) {
		t.Fatalf("NewFollower(follower) = %v, want %v", err, ErrInvalidReferenceDraw)
	}

	// a follower's score does not touch the reference
	if err := follower.SetMatchScore("A1", straightSets(), false); err != nil {
		t.Fatalf("follower SetMatchScore: %v", err)
	}
	refInfo, _ := ref.Match("A1")
	if refInfo.Score != nil {
		t.Fatal("reference should not see follower scores")
	}

	// a follower's bracket slots alias the reference placements
	if err := ref.SetMatchScore("A1", straightSets(), false); err != nil {
		t.Fatalf("ref SetMatchScore: %v", err)
	}
	followerInfo, _ := follower.Match("B1")
	if followerInfo.Places[0] != 0 {
		t.Fatalf("follower B1 side 0 = %d, want 0 (shared places)", followerInfo.Places[0])
	}

	// follower scores never propagate placements
	if err := follower.SetMatchScore("A3", straightSets(), false); err != nil {
		t.Fatalf("follower SetMatchScore(A3): %v", err)
	}
	refB2, _ := ref.Match("B2")
	if refB2.Places[0] != -1 {
		t.Fatalf("ref B2 side 0 = %d, want -1", refB2.Places[0])
	}
}
