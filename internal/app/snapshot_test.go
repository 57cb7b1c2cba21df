package app

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/kofflo/cobram/internal/draw"
)

func exactScore() []draw.SetScore {
	return []draw.SetScore{{6, 4}, {6, 4}}
}

func testParams(name string, year int) TournamentParams {
	return TournamentParams{
		Name:       name,
		NationCode: "ITA",
		Year:       year,
		Sets:       3,
		Category:   "MASTER_1000",
		Draw:       "KNOCKOUT_16",
	}
}

// testStore builds a store with one knockout tournament: fifteen players
// plus a bye, a seeded favorite, two gamblers and a joker bet.
func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore("cobram")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.CreateNation("Italy", "ITA"); err != nil {
		t.Fatalf("CreateNation: %v", err)
	}
	for i := 0; i < 15; i++ {
		if _, err := store.CreatePlayer(fmt.Sprintf("Name%02d", i), fmt.Sprintf("Surname%02d", i), "ITA"); err != nil {
			t.Fatalf("CreatePlayer: %v", err)
		}
	}
	if _, err := store.CreateGambler("alice", 100); err != nil {
		t.Fatalf("CreateGambler: %v", err)
	}
	if _, err := store.CreateGambler("bob", 0); err != nil {
		t.Fatalf("CreateGambler: %v", err)
	}
	if _, err := store.CreateTournament(testParams("Rome Masters", 2025)); err != nil {
		t.Fatalf("CreateTournament: %v", err)
	}
	for i := 0; i < 15; i++ {
		seed := 0
		if i == 0 {
			seed = 1
		}
		err := store.SetTournamentPlayer("Rome Masters", 2025, i,
			fmt.Sprintf("Name%02d", i), fmt.Sprintf("Surname%02d", i), seed, false)
		if err != nil {
			t.Fatalf("SetTournamentPlayer(%d): %v", i, err)
		}
	}
	if err := store.SetTournamentPlayer("Rome Masters", 2025, 15, "BYE", "BYE", 0, false); err != nil {
		t.Fatalf("SetTournamentPlayer(bye): %v", err)
	}
	if err := store.SetBet("Rome Masters", 2025, "alice", "A1", exactScore(), true, false); err != nil {
		t.Fatalf("SetBet: %v", err)
	}
	if err := store.SetBet("Rome Masters", 2025, "bob", "A1", []draw.SetScore{{4, 6}, {4, 6}}, false, false); err != nil {
		t.Fatalf("SetBet: %v", err)
	}
	return store
}

// playTournament records side-0 wins on every match the bye has not
// already decided.
func playTournament(t *testing.T, store *Store, name string, year int) {
	t.Helper()
	matches, err := store.TournamentMatches(name, year)
	if err != nil {
		t.Fatalf("TournamentMatches: %v", err)
	}
	for _, id := range []draw.MatchID{
		"A1", "A2", "A3", "A4", "A5", "A6", "A7",
		"B1", "B2", "B3", "B4", "C1", "C2", "D1",
	} {
		if matches[id].Decided {
			continue
		}
		if err := store.SetResult(name, year, id, exactScore(), false); err != nil {
			t.Fatalf("SetResult(%s): %v", id, err)
		}
	}
}

func rankingByNickname(view RankingView) map[string]float64 {
	scores := make(map[string]float64, len(view.Scores))
	for _, entry := range view.Scores {
		scores[entry.Gambler.Nickname] = entry.Score
	}
	return scores
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := testStore(t)
	playTournament(t, store, "Rome Masters", 2025)
	if err := store.CloseTournament("Rome Masters", 2025); err != nil {
		t.Fatalf("CloseTournament: %v", err)
	}

	payload, err := store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	restored, err := RestoreStore(payload)
	if err != nil {
		t.Fatalf("RestoreStore: %v", err)
	}

	if restored.LeagueName() != "cobram" {
		t.Errorf("league name = %q", restored.LeagueName())
	}
	if len(restored.Nations()) != 1 || len(restored.Players()) != 15 {
		t.Errorf("restored %d nations, %d players", len(restored.Nations()), len(restored.Players()))
	}

	info, err := restored.Tournament("Rome Masters", 2025)
	if err != nil {
		t.Fatalf("Tournament: %v", err)
	}
	if info.IsOpen {
		t.Error("tournament should be restored closed")
	}
	if info.Winner == nil || info.Winner.Name != "Name00" {
		t.Errorf("winner = %v", info.Winner)
	}

	// results survive, the bye retirement included
	want, err := store.TournamentMatches("Rome Masters", 2025)
	if err != nil {
		t.Fatalf("TournamentMatches: %v", err)
	}
	got, err := restored.TournamentMatches("Rome Masters", 2025)
	if err != nil {
		t.Fatalf("TournamentMatches: %v", err)
	}
	for id, wm := range want {
		gm, ok := got[id]
		if !ok {
			t.Fatalf("match %s missing after restore", id)
		}
		if len(gm.Score) != len(wm.Score) || gm.Decided != wm.Decided || gm.BetsClosed != wm.BetsClosed {
			t.Errorf("match %s = %+v, want %+v", id, gm, wm)
		}
	}

	// bets, joker and points survive: alice's exact A1 bet doubled by
	// the joker on a top-seeded winner
	bets, err := restored.GamblerBets("Rome Masters", 2025, "alice")
	if err != nil {
		t.Fatalf("GamblerBets: %v", err)
	}
	if !bets["A1"].Joker {
		t.Error("joker lost on restore")
	}
	if bets["A1"].Points != 14 {
		t.Errorf("A1 points = %v, want 14", bets["A1"].Points)
	}

	wantRanking := rankingByNickname(store.Ranking())
	gotRanking := rankingByNickname(restored.Ranking())
	if wantRanking["alice"] != gotRanking["alice"] || wantRanking["bob"] != gotRanking["bob"] {
		t.Errorf("ranking = %v, want %v", gotRanking, wantRanking)
	}
	// the restored ranking must already hold the closed tournament's
	// points, not just the initial scores
	if gotRanking["alice"] != 1100 || gotRanking["bob"] != 600 {
		t.Errorf("restored ranking = %v, want alice 1100 and bob 600", gotRanking)
	}
}

// Bye retirements are recreated by bye advancement when the slots are
// replayed; recording them as results would make the restore reject the
// payload.
func TestSnapshotOmitsByeResults(t *testing.T) {
	store := testStore(t)

	payload, err := store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	var snap snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(snap.Tournaments) != 1 {
		t.Fatalf("snapshot holds %d tournaments, want 1", len(snap.Tournaments))
	}
	if _, ok := snap.Tournaments[0].Results["A8"]; ok {
		t.Error("the bye-decided match must not be recorded as a result")
	}
}

func TestSnapshotRoundTripOpenTournament(t *testing.T) {
	store := testStore(t)
	if err := store.SetResult("Rome Masters", 2025, "A1", exactScore(), false); err != nil {
		t.Fatalf("SetResult: %v", err)
	}

	payload, err := store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	restored, err := RestoreStore(payload)
	if err != nil {
		t.Fatalf("RestoreStore: %v", err)
	}

	info, err := restored.Tournament("Rome Masters", 2025)
	if err != nil {
		t.Fatalf("Tournament: %v", err)
	}
	if !info.IsOpen {
		t.Error("tournament should be restored open")
	}

	// only the played match's bets are gated; the replay must not close
	// the bye-decided one
	matches, err := restored.TournamentMatches("Rome Masters", 2025)
	if err != nil {
		t.Fatalf("TournamentMatches: %v", err)
	}
	if !matches["A1"].BetsClosed {
		t.Error("A1 bets should stay closed")
	}
	if matches["A8"].BetsClosed {
		t.Error("A8 bets should stay open: the bye decided it, not a result")
	}
	if matches["A2"].BetsClosed {
		t.Error("A2 bets should stay open")
	}

	// bets stay editable where they were editable before
	if err := restored.SetBet("Rome Masters", 2025, "bob", "A2", exactScore(), false, false); err != nil {
		t.Fatalf("SetBet after restore: %v", err)
	}
}

func TestSnapshotRoundTripRoundRobinAssignments(t *testing.T) {
	store, err := NewStore("cobram")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.CreateNation("Italy", "ITA"); err != nil {
		t.Fatalf("CreateNation: %v", err)
	}
	for i := 0; i < 10; i++ {
		if _, err := store.CreatePlayer(fmt.Sprintf("Name%02d", i), fmt.Sprintf("Surname%02d", i), "ITA"); err != nil {
			t.Fatalf("CreatePlayer: %v", err)
		}
	}
	params := testParams("ATP Finals", 2025)
	params.Category = "ATP_FINALS"
	params.Draw = "ROUND_ROBIN_10"
	if _, err := store.CreateTournament(params); err != nil {
		t.Fatalf("CreateTournament: %v", err)
	}
	for i := 0; i < 10; i++ {
		err := store.SetTournamentPlayer("ATP Finals", 2025, i,
			fmt.Sprintf("Name%02d", i), fmt.Sprintf("Surname%02d", i), 0, false)
		if err != nil {
			t.Fatalf("SetTournamentPlayer(%d): %v", i, err)
		}
	}
	if err := store.AssignMatchPlayers("ATP Finals", 2025, "A1", 0, 1, false); err != nil {
		t.Fatalf("AssignMatchPlayers: %v", err)
	}
	if err := store.SetResult("ATP Finals", 2025, "A1", exactScore(), false); err != nil {
		t.Fatalf("SetResult: %v", err)
	}

	payload, err := store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	restored, err := RestoreStore(payload)
	if err != nil {
		t.Fatalf("RestoreStore: %v", err)
	}
	matches, err := restored.TournamentMatches("ATP Finals", 2025)
	if err != nil {
		t.Fatalf("TournamentMatches: %v", err)
	}
	m := matches["A1"]
	if m.Player1 == nil || m.Player1.Name != "Name00" || m.Player2 == nil || m.Player2.Name != "Name01" {
		t.Fatalf("A1 assignment lost: %+v", m)
	}
	if !m.Decided {
		t.Fatal("A1 result lost")
	}
}

func TestSnapshotGhostTournament(t *testing.T) {
	store, err := NewStore("cobram")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.CreateNation("Italy", "ITA"); err != nil {
		t.Fatalf("CreateNation: %v", err)
	}
	if _, err := store.CreateGambler("alice", 1000); err != nil {
		t.Fatalf("CreateGambler: %v", err)
	}
	params := testParams("Rome Masters", 2025)
	params.Ghost = true
	params.PreviousYearScores = map[string]float64{"alice": 300}
	if _, err := store.CreateTournament(params); err != nil {
		t.Fatalf("CreateTournament: %v", err)
	}
	if err := store.CloseTournament("Rome Masters", 2025); err != nil {
		t.Fatalf("CloseTournament: %v", err)
	}

	payload, err := store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	restored, err := RestoreStore(payload)
	if err != nil {
		t.Fatalf("RestoreStore: %v", err)
	}
	if got := rankingByNickname(restored.Ranking())["alice"]; got != 700 {
		t.Errorf("alice = %v, want 700 (carry dropped by the ghost)", got)
	}
	carry, err := restored.PreviousYearScores("Rome Masters", 2025)
	if err != nil {
		t.Fatalf("PreviousYearScores: %v", err)
	}
	if carry["alice"] != 300 {
		t.Errorf("carry = %v, want 300", carry["alice"])
	}
}

func TestRestoreRejectsBadPayloads(t *testing.T) {
	if _, err := RestoreStore([]byte("not json")); err == nil {
		t.Error("garbage payload should fail")
	}
	if _, err := RestoreStore([]byte(`{"version":99,"league":"x"}`)); err == nil {
		t.Error("unknown version should fail")
	}
}
