package app

import (
	"encoding/json"

	"github.com/kofflo/cobram/internal/bet"
	"github.com/kofflo/cobram/internal/draw"
	"github.com/kofflo/cobram/internal/errors"
	"github.com/kofflo/cobram/internal/tournament"
)

// The snapshot format serializes the whole object graph as one JSON
// document. Entities are stored once and referenced by key (nation code,
// player full name, gambler nickname); restoring replays the recorded
// state through the domain API, so every invariant is re-checked and the
// pointer identities are rebuilt.

const snapshotVersion = 1

type snapshot struct {
	Version     int               `json:"version"`
	League      string            `json:"league"`
	Nations     []nationState     `json:"nations"`
	Players     []playerState     `json:"players"`
	Gamblers    []gamblerState    `json:"gamblers"`
	Tournaments []tournamentState `json:"tournaments"`
}

type nationState struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type playerState struct {
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	NationCode string `json:"nation_code"`
}

type gamblerState struct {
	Nickname     string  `json:"nickname"`
	InitialScore float64 `json:"initial_score"`
}

type slotState struct {
	Place int  `json:"place"`
	Bye   bool `json:"bye,omitempty"`
	// Name and Surname key into Players; empty for byes.
	Name    string `json:"name,omitempty"`
	Surname string `json:"surname,omitempty"`
	Seed    int    `json:"seed,omitempty"`
}

type assignmentState struct {
	MatchID draw.MatchID `json:"match_id"`
	Place1  int          `json:"place_1"`
	Place2  int          `json:"place_2"`
}

type tournamentState struct {
	Params      TournamentParams                            `json:"params"`
	Open        bool                                        `json:"open"`
	Slots       []slotState                                 `json:"slots,omitempty"`
	Assignments []assignmentState                           `json:"assignments,omitempty"`
	Results     map[draw.MatchID][]draw.SetScore            `json:"results,omitempty"`
	BetsClosed  map[draw.MatchID]bool                       `json:"bets_closed,omitempty"`
	Bets        map[string]map[draw.MatchID][]draw.SetScore `json:"bets,omitempty"`
	Jokers      map[string]draw.MatchID                     `json:"jokers,omitempty"`
}

// Snapshot serializes the store.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		Version: snapshotVersion,
		League:  s.league.Name(),
	}
	for _, n := range s.nations {
		snap.Nations = append(snap.Nations, nationState{Name: n.Name, Code: n.Code})
	}
	for _, p := range s.players {
		snap.Players = append(snap.Players, playerState{
			Name: p.Name, Surname: p.Surname, NationCode: p.Nation.Code,
		})
	}
	for _, g := range s.league.Gamblers() {
		initial, err := s.league.InitialScore(g)
		if err != nil {
			return nil, err
		}
		snap.Gamblers = append(snap.Gamblers, gamblerState{
			Nickname: g.Nickname, InitialScore: initial,
		})
	}
	for _, bt := range s.league.Tournaments() {
		state, err := s.tournamentState(bt)
		if err != nil {
			return nil, err
		}
		snap.Tournaments = append(snap.Tournaments, state)
	}
	return json.Marshal(snap)
}

func (s *Store) tournamentState(bt *bet.Tournament) (tournamentState, error) {
	trn := bt.Tournament()
	id := bt.ID()
	previous, err := s.league.PreviousYearScores(id)
	if err != nil {
		return tournamentState{}, err
	}
	previousByNickname := make(map[string]float64, len(previous))
	for gambler, score := range previous {
		previousByNickname[gambler.Nickname] = score
	}
	state := tournamentState{
		Params: TournamentParams{
			Name:               id.Name,
			NationCode:         trn.Nation().Code,
			Year:               id.Year,
			Sets:               trn.Sets(),
			FifthSet:           trn.FifthSet().String(),
			Category:           trn.Category().String(),
			Draw:               trn.DrawKind().String(),
			Ghost:              bt.IsGhost(),
			PreviousYearScores: previousByNickname,
		},
		Open: bt.IsOpen(),
	}
	if bt.IsGhost() {
		return state, nil
	}

	for place := 0; place < trn.NumberPlayers(); place++ {
		player, err := trn.Player(place)
		if err != nil {
			return tournamentState{}, err
		}
		if player == nil {
			continue
		}
		slot := slotState{Place: place, Seed: trn.Seed(player)}
		if player == tournament.Bye {
			slot.Bye = true
		} else {
			slot.Name = player.Name
			slot.Surname = player.Surname
		}
		state.Slots = append(state.Slots, slot)
	}

	d := trn.Draw()
	state.Results = make(map[draw.MatchID][]draw.SetScore)
	state.BetsClosed = make(map[draw.MatchID]bool)
	for _, matchID := range d.MatchIDs() {
		info, err := d.Match(matchID)
		if err != nil {
			return tournamentState{}, err
		}
		if d.Kind() != draw.Knockout16 && matchID != d.FinalID() &&
			info.Places[0] >= 0 && info.Places[1] >= 0 {
			state.Assignments = append(state.Assignments, assignmentState{
				MatchID: matchID, Place1: info.Places[0], Place2: info.Places[1],
			})
		}
		// Bye results are recreated by bye advancement during slot
		// replay and cannot be set through the tournament.
		if info.Score != nil && !matchHasBye(trn, info) {
			state.Results[matchID] = info.Score
		}
		if bt.BetsClosed(matchID) {
			state.BetsClosed[matchID] = true
		}
	}

	state.Bets = make(map[string]map[draw.MatchID][]draw.SetScore)
	state.Jokers = make(map[string]draw.MatchID)
	for _, gambler := range bt.Gamblers() {
		bets, err := bt.GamblerMatches(gambler)
		if err != nil {
			return tournamentState{}, err
		}
		byMatch := make(map[draw.MatchID][]draw.SetScore)
		for matchID, b := range bets {
			if b.Score != nil {
				byMatch[matchID] = b.Score
			}
		}
		if len(byMatch) > 0 {
			state.Bets[gambler.Nickname] = byMatch
		}
		if joker, err := bt.Joker(gambler); err == nil && joker != "" {
			state.Jokers[gambler.Nickname] = joker
		}
	}
	return state, nil
}

func matchHasBye(trn *tournament.Tournament, info draw.MatchInfo) bool {
	for _, place := range info.Places {
		if place < 0 {
			continue
		}
		if player, err := trn.Player(place); err == nil && player == tournament.Bye {
			return true
		}
	}
	return false
}

// RestoreStore rebuilds a store from a snapshot payload by replaying it
// through the domain API.
func RestoreStore(payload []byte) (*Store, error) {
	var snap snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid snapshot payload")
	}
	if snap.Version != snapshotVersion {
		return nil, errors.InvalidInputf("unsupported snapshot version %d", snap.Version)
	}
	store, err := NewStore(snap.League)
	if err != nil {
		return nil, err
	}
	for _, n := range snap.Nations {
		if _, err := store.CreateNation(n.Name, n.Code); err != nil {
			return nil, err
		}
	}
	for _, p := range snap.Players {
		if _, err := store.CreatePlayer(p.Name, p.Surname, p.NationCode); err != nil {
			return nil, err
		}
	}
	for _, g := range snap.Gamblers {
		if _, err := store.CreateGambler(g.Nickname, g.InitialScore); err != nil {
			return nil, err
		}
	}
	for _, state := range snap.Tournaments {
		if err := store.restoreTournament(state); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (s *Store) restoreTournament(state tournamentState) error {
	if _, err := s.CreateTournament(state.Params); err != nil {
		return err
	}
	name, year := state.Params.Name, state.Params.Year

	s.mu.Lock()
	defer s.mu.Unlock()
	bt, err := s.tournament(name, year)
	if err != nil {
		return err
	}
	if !bt.IsGhost() {
		if err := s.replayTournament(bt, state); err != nil {
			return err
		}
	}
	if !state.Open {
		// Closing through the league folds the restored points into
		// the ranking.
		if err := s.league.CloseTournament(bt.ID()); err != nil {
			return err
		}
	}
	return nil
}

// replayTournament re-applies placements, results and bets round by
// round. Results are forced because bye advancement already scored some
// matches; the recorded bet gates are restored wholesale afterwards.
func (s *Store) replayTournament(bt *bet.Tournament, state tournamentState) error {
	trn := bt.Tournament()
	for _, slot := range state.Slots {
		player := tournament.Bye
		if !slot.Bye {
			var err error
			player, err = s.player(slot.Name, slot.Surname)
			if err != nil {
				return err
			}
		}
		if err := trn.SetPlayer(slot.Place, player, slot.Seed, false); err != nil {
			return err
		}
	}

	assignments := make(map[draw.MatchID]assignmentState, len(state.Assignments))
	for _, a := range state.Assignments {
		assignments[a.MatchID] = a
	}
	for _, matchID := range trn.Draw().MatchIDs() {
		if a, ok := assignments[matchID]; ok {
			info, err := trn.Draw().Match(matchID)
			if err != nil {
				return err
			}
			if info.Places[0] != a.Place1 || info.Places[1] != a.Place2 {
				if err := trn.AddPlayersToMatch(matchID, a.Place1, a.Place2, true); err != nil {
					return err
				}
			}
		}
		if score, ok := state.Results[matchID]; ok {
			if err := bt.SetResult(matchID, score, true); err != nil {
				return err
			}
		}
	}

	for _, gambler := range bt.Gamblers() {
		joker := state.Jokers[gambler.Nickname]
		bets := state.Bets[gambler.Nickname]
		jokerApplied := false
		for _, matchID := range trn.Draw().MatchIDs() {
			score, ok := bets[matchID]
			if !ok {
				continue
			}
			if err := bt.SetBet(gambler, matchID, score, matchID == joker, true); err != nil {
				return err
			}
			if matchID == joker {
				jokerApplied = true
			}
		}
		if joker != "" && !jokerApplied {
			if err := bt.SetBet(gambler, joker, nil, true, true); err != nil {
				return err
			}
		}
	}

	bt.RestoreBetsClosed(state.BetsClosed)
	return nil
}
