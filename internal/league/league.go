// Package league aggregates bet tournaments across seasons: gamblers are
// admitted league-wide, tournaments are played in creation order, and the
// league keeps a rolling ranking where each edition of a tournament
// replaces the points of the previous year's edition.
package league

import (
	"sort"

	"github.com/kofflo/cobram/internal/bet"
	"github.com/kofflo/cobram/internal/errors"
	"github.com/kofflo/cobram/internal/models"
	"github.com/kofflo/cobram/internal/standings"
	"github.com/kofflo/cobram/internal/tournament"
)

var (
	ErrInvalidName           = errors.InvalidInput("invalid name for a league")
	ErrTournamentExists      = errors.Conflict("tournament already existing in league")
	ErrNoSuchTournament      = errors.NotFound("no such tournament in league")
	ErrGamblerAlreadyEntered = errors.Conflict("gambler already in league")
	ErrGamblerNotEntered     = errors.NotFound("no such gambler in league")
)

// League holds the gamblers and the ordered bet tournaments of a betting
// circle. The ranking is recomputed eagerly on every mutation that can
// change it.
type League struct {
	name          string
	gamblers      []*models.Gambler
	initialScores map[*models.Gambler]float64
	tournaments   []*bet.Tournament // creation order
	index         map[tournament.ID]*bet.Tournament

	// previousYear[year][name][gambler] is what the gambler scored in
	// the year's edition of the tournament, seeded at creation for the
	// year before and filled in as editions close.
	previousYear map[int]map[string]map[*models.Gambler]float64

	ranking        []standings.Entry
	yearlyScores   map[int][]standings.Entry
	winners        map[tournament.ID]*models.Gambler
	lastTournament *bet.Tournament
}

func New(name string) (*League, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	return &League{
		name:          name,
		initialScores: make(map[*models.Gambler]float64),
		index:         make(map[tournament.ID]*bet.Tournament),
		previousYear:  make(map[int]map[string]map[*models.Gambler]float64),
		yearlyScores:  make(map[int][]standings.Entry),
		winners:       make(map[tournament.ID]*models.Gambler),
	}, nil
}

func (l *League) Name() string { return l.name }

// Has reports whether the gambler is in the league.
func (l *League) Has(gambler *models.Gambler) bool {
	for _, g := range l.gamblers {
		if g == gambler {
			return true
		}
	}
	return false
}

// Gamblers returns the league gamblers in admission order.
func (l *League) Gamblers() []*models.Gambler {
	return append([]*models.Gambler(nil), l.gamblers...)
}

// Gambler looks a gambler up by nickname.
func (l *League) Gambler(nickname string) (*models.Gambler, error) {
	for _, g := range l.gamblers {
		if g.Nickname == nickname {
			return g, nil
		}
	}
	return nil, ErrGamblerNotEntered
}

// InitialScore returns the score the gambler was admitted with.
func (l *League) InitialScore(gambler *models.Gambler) (float64, error) {
	if !l.Has(gambler) {
		return 0, ErrGamblerNotEntered
	}
	return l.initialScores[gambler], nil
}

// AddGambler admits a gambler with an initial ranking score and enters
// them into every open tournament.
func (l *League) AddGambler(gambler *models.Gambler, initialScore float64) error {
	if gambler == nil {
		return errors.InvalidInput("invalid gambler for a league")
	}
	if l.Has(gambler) {
		return ErrGamblerAlreadyEntered
	}
	l.gamblers = append(l.gamblers, gambler)
	l.initialScores[gambler] = initialScore
	for _, bt := range l.tournaments {
		if !bt.IsOpen() {
			continue
		}
		if err := bt.AddGambler(gambler); err != nil {
			return err
		}
		l.previousYear[bt.ID().Year-1][bt.ID().Name][gambler] = 0
	}
	l.computeRanking()
	return nil
}

// RemoveGambler drops a gambler from the league and from every open
// tournament. Closed tournaments keep their recorded scores.
func (l *League) RemoveGambler(gambler *models.Gambler) error {
	if !l.Has(gambler) {
		return ErrGamblerNotEntered
	}
	for i, g := range l.gamblers {
		if g == gambler {
			l.gamblers = append(l.gamblers[:i], l.gamblers[i+1:]...)
			break
		}
	}
	delete(l.initialScores, gambler)
	for _, bt := range l.tournaments {
		if !bt.IsOpen() {
			continue
		}
		if err := bt.RemoveGambler(gambler); err != nil {
			return err
		}
	}
	l.computeRanking()
	return nil
}

// CreateTournament creates a bet tournament in the league, admitting all
// current gamblers. previousYearScores seeds the carry-over points from
// last year's edition; gamblers missing from it carry zero.
func (l *League) CreateTournament(cfg tournament.Config, previousYearScores map[*models.Gambler]float64, ghost bool) (*bet.Tournament, error) {
	bt, err := bet.New(cfg, ghost)
	if err != nil {
		return nil, err
	}
	id := bt.ID()
	if _, ok := l.index[id]; ok {
		return nil, ErrTournamentExists
	}
	carry := l.yearScores(id.Year-1, id.Name)
	for _, gambler := range l.gamblers {
		if err := bt.AddGambler(gambler); err != nil {
			return nil, err
		}
		carry[gambler] = previousYearScores[gambler]
	}
	l.tournaments = append(l.tournaments, bt)
	l.index[id] = bt
	return bt, nil
}

// RemoveTournament drops a tournament from the league.
func (l *League) RemoveTournament(id tournament.ID) error {
	if _, ok := l.index[id]; !ok {
		return ErrNoSuchTournament
	}
	delete(l.index, id)
	for i, bt := range l.tournaments {
		if bt.ID() == id {
			l.tournaments = append(l.tournaments[:i], l.tournaments[i+1:]...)
			break
		}
	}
	l.computeRanking()
	return nil
}

// Tournament looks a tournament up by identity.
func (l *League) Tournament(id tournament.ID) (*bet.Tournament, error) {
	bt, ok := l.index[id]
	if !ok {
		return nil, ErrNoSuchTournament
	}
	return bt, nil
}

// Tournaments returns every tournament in creation order.
func (l *League) Tournaments() []*bet.Tournament {
	return append([]*bet.Tournament(nil), l.tournaments...)
}

// OpenTournaments returns the tournaments still open, in creation order.
func (l *League) OpenTournaments() []*bet.Tournament {
	var open []*bet.Tournament
	for _, bt := range l.tournaments {
		if bt.IsOpen() {
			open = append(open, bt)
		}
	}
	return open
}

// CloseTournament closes a tournament and folds its points into the
// league ranking.
func (l *League) CloseTournament(id tournament.ID) error {
	bt, ok := l.index[id]
	if !ok {
		return ErrNoSuchTournament
	}
	if err := bt.Close(); err != nil {
		return err
	}
	l.computeRanking()
	return nil
}

// OpenTournament reopens a tournament, pulling its points back out of the
// ranking until it closes again.
func (l *League) OpenTournament(id tournament.ID) error {
	bt, ok := l.index[id]
	if !ok {
		return ErrNoSuchTournament
	}
	bt.Open()
	l.computeRanking()
	return nil
}

// PreviousYearScores returns the carry-over points of last year's edition
// of the tournament.
func (l *League) PreviousYearScores(id tournament.ID) (map[*models.Gambler]float64, error) {
	if _, ok := l.index[id]; !ok {
		return nil, ErrNoSuchTournament
	}
	scores := make(map[*models.Gambler]float64)
	for g, s := range l.yearScores(id.Year-1, id.Name) {
		scores[g] = s
	}
	return scores, nil
}

// Ranking is the league standings snapshot.
type Ranking struct {
	// Scores is the rolling ranking over the closed tournaments.
	Scores []standings.Entry
	// YearlyScores totals the points earned per season.
	YearlyScores map[int][]standings.Entry
	// Winners maps each closed non-ghost tournament to its top gambler.
	Winners map[tournament.ID]*models.Gambler
	// LastTournament is the most recent closed tournament, nil if none.
	LastTournament *bet.Tournament
}

// Ranking returns the current standings.
func (l *League) Ranking() Ranking {
	yearly := make(map[int][]standings.Entry, len(l.yearlyScores))
	for year, entries := range l.yearlyScores {
		yearly[year] = append([]standings.Entry(nil), entries...)
	}
	winners := make(map[tournament.ID]*models.Gambler, len(l.winners))
	for id, g := range l.winners {
		winners[id] = g
	}
	return Ranking{
		Scores:         append([]standings.Entry(nil), l.ranking...),
		YearlyScores:   yearly,
		Winners:        winners,
		LastTournament: l.lastTournament,
	}
}

// Years returns the seasons with recorded points, ascending.
func (l *League) Years() []int {
	years := make([]int, 0, len(l.yearlyScores))
	for year := range l.yearlyScores {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// yearScores returns the per-gambler score table of a tournament edition,
// creating it on first use.
func (l *League) yearScores(year int, name string) map[*models.Gambler]float64 {
	byName, ok := l.previousYear[year]
	if !ok {
		byName = make(map[string]map[*models.Gambler]float64)
		l.previousYear[year] = byName
	}
	scores, ok := byName[name]
	if !ok {
		scores = make(map[*models.Gambler]float64)
		byName[name] = scores
	}
	return scores
}

// computeRanking walks the tournaments in creation order, accumulating
// ranking points into the rolling scores and stopping at the first open
// tournament. Each edition's points replace the points of last year's
// edition, keeping the ranking a rolling window of one season.
func (l *League) computeRanking() {
	rolling := make(map[*models.Gambler]float64, len(l.initialScores))
	for g, s := range l.initialScores {
		rolling[g] = s
	}
	yearlyTotals := make(map[int]map[*models.Gambler]float64)
	winners := make(map[tournament.ID]*models.Gambler)
	var lastTournament *bet.Tournament
	for _, bt := range l.tournaments {
		if bt.IsOpen() {
			break
		}
		id := bt.ID()
		lastTournament = bt
		scores := bt.Scores(rolling)
		edition := l.yearScores(id.Year, id.Name)
		// Rebuild the edition table from scratch so gamblers who left
		// the tournament do not keep a stale carry entry.
		for gambler := range edition {
			delete(edition, gambler)
		}
		carry := l.yearScores(id.Year-1, id.Name)
		for gambler, points := range scores.RankingPoints {
			if l.Has(gambler) {
				rolling[gambler] += float64(points) - carry[gambler]
				totals, ok := yearlyTotals[id.Year]
				if !ok {
					totals = make(map[*models.Gambler]float64)
					yearlyTotals[id.Year] = totals
				}
				totals[gambler] += float64(points)
			}
			edition[gambler] = float64(points)
		}
		if len(scores.Ranking) > 0 && !bt.IsGhost() {
			winners[id] = scores.Ranking[0].Gambler
		}
	}
	yearly := make(map[int][]standings.Entry, len(yearlyTotals))
	for year, totals := range yearlyTotals {
		yearly[year] = standings.Order(totals)
	}
	l.ranking = standings.Order(rolling)
	l.yearlyScores = yearly
	l.winners = winners
	l.lastTournament = lastTournament
}
