// Package app holds the in-memory state of the server: the entity
// registries that guarantee pointer identity, the league, and the
// snapshot codec that persists and rebuilds the whole graph.
package app

import (
	"sort"
	"sync"

	"github.com/kofflo/cobram/internal/bet"
	"github.com/kofflo/cobram/internal/draw"
	"github.com/kofflo/cobram/internal/errors"
	"github.com/kofflo/cobram/internal/league"
	"github.com/kofflo/cobram/internal/models"
	"github.com/kofflo/cobram/internal/standings"
	"github.com/kofflo/cobram/internal/tournament"
)

var (
	ErrNationExists  = errors.Conflict("nation already existing")
	ErrNoSuchNation  = errors.NotFound("no such nation")
	ErrPlayerExists  = errors.Conflict("player already existing")
	ErrNoSuchPlayer  = errors.NotFound("no such player")
	ErrNoSuchGambler = errors.NotFound("no such gambler")
)

// Store is the process-wide state. All entities live here once and are
// referenced by pointer from the league downwards, so every exported
// method takes the store lock.
type Store struct {
	mu      sync.RWMutex
	nations []*models.Nation
	players []*models.Player
	league  *league.League
}

func NewStore(leagueName string) (*Store, error) {
	l, err := league.New(leagueName)
	if err != nil {
		return nil, err
	}
	return &Store{league: l}, nil
}

func (s *Store) LeagueName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.league.Name()
}

// CreateNation registers a nation, unique by code.
func (s *Store) CreateNation(name, code string) (*models.Nation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nations {
		if n.Code == code {
			return nil, ErrNationExists
		}
	}
	nation, err := models.NewNation(name, code)
	if err != nil {
		return nil, err
	}
	s.nations = append(s.nations, nation)
	return nation, nil
}

func (s *Store) Nations() []*models.Nation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Nation(nil), s.nations...)
}

func (s *Store) Nation(code string) (*models.Nation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nation(code)
}

func (s *Store) nation(code string) (*models.Nation, error) {
	for _, n := range s.nations {
		if n.Code == code {
			return n, nil
		}
	}
	return nil, ErrNoSuchNation
}

// CreatePlayer registers a player, unique by name and surname.
func (s *Store) CreatePlayer(name, surname, nationCode string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.Name == name && p.Surname == surname {
			return nil, ErrPlayerExists
		}
	}
	nation, err := s.nation(nationCode)
	if err != nil {
		return nil, err
	}
	player, err := models.NewPlayer(name, surname, nation)
	if err != nil {
		return nil, err
	}
	s.players = append(s.players, player)
	return player, nil
}

func (s *Store) Players() []*models.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Player(nil), s.players...)
}

func (s *Store) Player(name, surname string) (*models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player(name, surname)
}

func (s *Store) player(name, surname string) (*models.Player, error) {
	for _, p := range s.players {
		if p.Name == name && p.Surname == surname {
			return p, nil
		}
	}
	return nil, ErrNoSuchPlayer
}

// CreateGambler registers a gambler in the league with an initial score.
func (s *Store) CreateGambler(nickname string, initialScore float64) (*models.Gambler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.league.Gambler(nickname); err == nil {
		return nil, league.ErrGamblerAlreadyEntered
	}
	gambler, err := models.NewGambler(nickname)
	if err != nil {
		return nil, err
	}
	if err := s.league.AddGambler(gambler, initialScore); err != nil {
		return nil, err
	}
	return gambler, nil
}

func (s *Store) Gamblers() []*models.Gambler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.league.Gamblers()
}

func (s *Store) Gambler(nickname string) (*models.Gambler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.league.Gambler(nickname)
}

func (s *Store) RemoveGambler(nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gambler, err := s.league.Gambler(nickname)
	if err != nil {
		return err
	}
	return s.league.RemoveGambler(gambler)
}

// TournamentParams is the wire-level input for creating a tournament.
type TournamentParams struct {
	Name       string `json:"name"`
	NationCode string `json:"nation_code"`
	Year       int    `json:"year"`
	Sets       int    `json:"n_sets"`
	FifthSet   string `json:"tie_breaker_5th,omitempty"`
	Category   string `json:"category"`
	Draw       string `json:"draw_type"`
	Ghost      bool   `json:"ghost,omitempty"`
	// PreviousYearScores carries last year's points by nickname.
	PreviousYearScores map[string]float64 `json:"previous_year_scores,omitempty"`
}

// CreateTournament creates a bet tournament in the league.
func (s *Store) CreateTournament(params TournamentParams) (bet.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nation, err := s.nation(params.NationCode)
	if err != nil {
		return bet.Info{}, err
	}
	fifthSet, err := draw.ParseTieBreak(params.FifthSet)
	if err != nil {
		return bet.Info{}, err
	}
	category, err := tournament.ParseCategory(params.Category)
	if err != nil {
		return bet.Info{}, err
	}
	kind, err := draw.ParseKind(params.Draw)
	if err != nil {
		return bet.Info{}, err
	}
	previous := make(map[*models.Gambler]float64, len(params.PreviousYearScores))
	for nickname, score := range params.PreviousYearScores {
		gambler, err := s.league.Gambler(nickname)
		if err != nil {
			return bet.Info{}, err
		}
		previous[gambler] = score
	}
	cfg := tournament.Config{
		Name:     params.Name,
		Nation:   nation,
		Year:     params.Year,
		Sets:     params.Sets,
		FifthSet: fifthSet,
		Category: category,
		Draw:     kind,
	}
	bt, err := s.league.CreateTournament(cfg, previous, params.Ghost)
	if err != nil {
		return bet.Info{}, err
	}
	return bt.Info(), nil
}

func (s *Store) Tournaments() []bet.Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tournaments := s.league.Tournaments()
	infos := make([]bet.Info, 0, len(tournaments))
	for _, bt := range tournaments {
		infos = append(infos, bt.Info())
	}
	return infos
}

func (s *Store) Tournament(name string, year int) (bet.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bt, err := s.league.Tournament(tournament.ID{Name: name, Year: year})
	if err != nil {
		return bet.Info{}, err
	}
	return bt.Info(), nil
}

func (s *Store) RemoveTournament(name string, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.league.RemoveTournament(tournament.ID{Name: name, Year: year})
}

func (s *Store) CloseTournament(name string, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.league.CloseTournament(tournament.ID{Name: name, Year: year})
}

func (s *Store) OpenTournament(name string, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.league.OpenTournament(tournament.ID{Name: name, Year: year})
}

func (s *Store) tournament(name string, year int) (*bet.Tournament, error) {
	return s.league.Tournament(tournament.ID{Name: name, Year: year})
}

// SetTournamentPlayer places a player (or a bye) at a draw position.
func (s *Store) SetTournamentPlayer(name string, year, place int, playerName, playerSurname string, seed int, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bt, err := s.tournament(name, year)
	if err != nil {
		return err
	}
	var player *models.Player
	if playerName == tournament.Bye.Name && playerSurname == tournament.Bye.Surname {
		player = tournament.Bye
	} else if playerName != "" || playerSurname != "" {
		player, err = s.player(playerName, playerSurname)
		if err != nil {
			return err
		}
	}
	return bt.Tournament().SetPlayer(place, player, seed, force)
}

// PlayerSlot is one draw position of a tournament.
type PlayerSlot struct {
	Place  int            `json:"place"`
	Player *models.Player `json:"player"`
	Seed   int            `json:"seed,omitempty"`
}

func (s *Store) TournamentPlayers(name string, year int) ([]PlayerSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bt, err := s.tournament(name, year)
	if err != nil {
		return nil, err
	}
	trn := bt.Tournament()
	slots := make([]PlayerSlot, trn.NumberPlayers())
	for place := range slots {
		player, _ := trn.Player(place)
		slots[place] = PlayerSlot{Place: place}
		if player != nil {
			slots[place].Player = player
			slots[place].Seed = trn.Seed(player)
		}
	}
	return slots, nil
}

// AssignMatchPlayers assigns places to a round robin match.
func (s *Store) AssignMatchPlayers(name string, year int, id draw.MatchID, place1, place2 int, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bt, err := s.tournament(name, year)
	if err != nil {
		return err
	}
	return bt.Tournament().AddPlayersToMatch(id, place1, place2, force)
}

// SetResult records a real match result.
func (s *Store) SetResult(name string, year int, id draw.MatchID, score []draw.SetScore, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bt, err := s.tournament(name, year)
	if err != nil {
		return err
	}
	return bt.SetResult(id, score, force)
}

// SetBet records a gambler's bet on a match.
func (s *Store) SetBet(name string, year int, nickname string, id draw.MatchID, score []draw.SetScore, joker, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bt, err := s.tournament(name, year)
	if err != nil {
		return err
	}
	gambler, err := s.league.Gambler(nickname)
	if err != nil {
		return err
	}
	return bt.SetBet(gambler, id, score, joker, force)
}

func (s *Store) TournamentMatches(name string, year int) (map[draw.MatchID]bet.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bt, err := s.tournament(name, year)
	if err != nil {
		return nil, err
	}
	return bt.Matches(), nil
}

func (s *Store) GamblerBets(name string, year int, nickname string) (map[draw.MatchID]bet.Bet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bt, err := s.tournament(name, year)
	if err != nil {
		return nil, err
	}
	gambler, err := s.league.Gambler(nickname)
	if err != nil {
		return nil, err
	}
	return bt.GamblerMatches(gambler)
}

// TournamentScores computes the tournament standings against the current
// league ranking.
func (s *Store) TournamentScores(name string, year int) (bet.Scores, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bt, err := s.tournament(name, year)
	if err != nil {
		return bet.Scores{}, err
	}
	ranking := make(map[*models.Gambler]float64)
	for _, entry := range s.league.Ranking().Scores {
		ranking[entry.Gambler] = entry.Score
	}
	return bt.Scores(ranking), nil
}

func (s *Store) PreviousYearScores(name string, year int) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scores, err := s.league.PreviousYearScores(tournament.ID{Name: name, Year: year})
	if err != nil {
		return nil, err
	}
	byNickname := make(map[string]float64, len(scores))
	for gambler, score := range scores {
		byNickname[gambler.Nickname] = score
	}
	return byNickname, nil
}

// RankingView is the JSON shape of the league standings.
type RankingView struct {
	Scores       []standings.Entry         `json:"scores"`
	YearlyScores map[int][]standings.Entry `json:"yearly_scores"`
	Winners      []TournamentWinner        `json:"winners"`
	// LastTournament names the most recent closed tournament.
	LastTournament *tournament.ID `json:"last_tournament,omitempty"`
}

// TournamentWinner pairs a closed tournament with its top gambler.
type TournamentWinner struct {
	Tournament tournament.ID   `json:"tournament"`
	Winner     *models.Gambler `json:"winner"`
}

func (s *Store) Ranking() RankingView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ranking := s.league.Ranking()
	view := RankingView{
		Scores:       ranking.Scores,
		YearlyScores: ranking.YearlyScores,
	}
	for id, winner := range ranking.Winners {
		view.Winners = append(view.Winners, TournamentWinner{Tournament: id, Winner: winner})
	}
	sort.Slice(view.Winners, func(i, j int) bool {
		a, b := view.Winners[i].Tournament, view.Winners[j].Tournament
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Name < b.Name
	})
	if ranking.LastTournament != nil {
		id := ranking.LastTournament.ID()
		view.LastTournament = &id
	}
	return view
}
