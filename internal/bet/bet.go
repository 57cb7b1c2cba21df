// Package bet wraps a tournament with the betting layer: each admitted
// gambler holds a private follower draw carrying their predicted bracket,
// every real match carries a bets-closed gate, and gambler scores are
// computed lazily by diffing each bet draw against the real draw.
package bet

import (
	"github.com/kofflo/cobram/internal/draw"
	"github.com/kofflo/cobram/internal/errors"
	"github.com/kofflo/cobram/internal/models"
	"github.com/kofflo/cobram/internal/tournament"
)

// Points awarded per match when the predicted winner is right.
const (
	pointsWinner     = 3
	pointsSetScore   = 2
	pointsCorrectSet = 1
)

// Joker multipliers derived from the actual winner's seed: beating the
// field with an unseeded or low-seeded winner pays more.
const (
	jokerTopSeeds = 2
	jokerMidSeeds = 3
	jokerLongShot = 4
)

// rankingPoints maps a finishing position (0-based) to ranking points per
// tournament category; positions beyond the table score 0.
var rankingPoints = map[tournament.Category][]int{
	tournament.GrandSlam:  {2000, 1200, 800, 600, 400, 300, 200, 125, 100, 75, 50, 25},
	tournament.ATPFinals:  {1500, 900, 600, 450, 300, 225, 150, 100, 75, 50, 25, 15},
	tournament.Olympics:   {1500, 900, 600, 450, 300, 225, 150, 100, 75, 50, 25, 15},
	tournament.Master1000: {1000, 600, 400, 300, 200, 150, 100, 75, 50, 25, 10, 5},
	tournament.ATP500:     {500, 300, 200, 150, 100, 75, 50, 35, 25, 10},
	tournament.ATP250:     {250, 150, 100, 75, 50, 35, 25, 15, 10, 5},
}

var (
	ErrGamblerAlreadyEntered = errors.Conflict("gambler already in bet tournament")
	ErrUnknownGambler        = errors.NotFound("unknown gambler")
	ErrTournamentClosed      = errors.Conflict("bet tournament is closed")
	ErrBetsClosedForMatch    = errors.Conflict("cannot change a bet on a match with closed bets without force")
	ErrJokerAlreadySet       = errors.Conflict("joker already set for gambler")
	ErrGhostTournament       = errors.Validation("operation not available on a ghost tournament")
	ErrCloseUndecided        = errors.Conflict("cannot close a bet tournament before the final is decided")
)

// Tournament is a bet tournament: one real tournament plus the gamblers
// betting on it. A ghost tournament carries ranking points forward from a
// prior season and admits no play.
type Tournament struct {
	trn        *tournament.Tournament
	ghost      bool
	isOpen     bool
	gamblers   []*models.Gambler // admission order
	bets       map[*models.Gambler]*draw.Draw
	jokers     map[*models.Gambler]draw.MatchID // "" while unset
	betsClosed map[draw.MatchID]bool
	cache      scoreCache
}

// New creates an open bet tournament together with its tournament.
func New(cfg tournament.Config, ghost bool) (*Tournament, error) {
	trn, err := tournament.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Tournament{
		trn:        trn,
		ghost:      ghost,
		isOpen:     true,
		bets:       make(map[*models.Gambler]*draw.Draw),
		jokers:     make(map[*models.Gambler]draw.MatchID),
		betsClosed: make(map[draw.MatchID]bool),
	}, nil
}

// Tournament exposes the wrapped tournament.
func (bt *Tournament) Tournament() *tournament.Tournament { return bt.trn }

func (bt *Tournament) ID() tournament.ID { return bt.trn.ID() }
func (bt *Tournament) IsGhost() bool     { return bt.ghost }
func (bt *Tournament) IsOpen() bool      { return bt.isOpen }

// Has reports whether the gambler is admitted.
func (bt *Tournament) Has(gambler *models.Gambler) bool {
	_, ok := bt.bets[gambler]
	return ok
}

// Gamblers returns the admitted gamblers in admission order.
func (bt *Tournament) Gamblers() []*models.Gambler {
	return append([]*models.Gambler(nil), bt.gamblers...)
}

// AddGambler admits a gambler, deriving their private follower draw.
func (bt *Tournament) AddGambler(gambler *models.Gambler) error {
	if !bt.isOpen {
		return ErrTournamentClosed
	}
	if gambler == nil {
		return errors.InvalidInput("invalid gambler for a bet tournament")
	}
	if bt.Has(gambler) {
		return ErrGamblerAlreadyEntered
	}
	follower, err := draw.NewFollower(bt.trn.Draw())
	if err != nil {
		return err
	}
	bt.gamblers = append(bt.gamblers, gambler)
	bt.bets[gambler] = follower
	bt.jokers[gambler] = ""
	bt.cache.Invalidate()
	return nil
}

// RemoveGambler drops a gambler and their bets.
func (bt *Tournament) RemoveGambler(gambler *models.Gambler) error {
	if !bt.isOpen {
		return ErrTournamentClosed
	}
	if !bt.Has(gambler) {
		return ErrUnknownGambler
	}
	for i, g := range bt.gamblers {
		if g == gambler {
			bt.gamblers = append(bt.gamblers[:i], bt.gamblers[i+1:]...)
			break
		}
	}
	delete(bt.bets, gambler)
	delete(bt.jokers, gambler)
	bt.cache.Invalidate()
	return nil
}

// SetResult records a real match result. A non-nil score closes the bets
// on that match; clearing the score reopens them. On a closed tournament
// only forced edits go through.
func (bt *Tournament) SetResult(id draw.MatchID, score []draw.SetScore, force bool) error {
	if bt.ghost {
		return ErrGhostTournament
	}
	if !bt.isOpen && !force {
		return ErrTournamentClosed
	}
	if err := bt.trn.SetMatchScore(id, score, force); err != nil {
		return err
	}
	bt.betsClosed[id] = score != nil
	bt.cache.Invalidate()
	return nil
}

// SetBet records a gambler's predicted score for a match, validated by
// the same rules as real results. While the match's bets are closed only
// forced edits go through. With joker set the match becomes the
// gambler's joker; a previous joker is released automatically as long as
// its own match bets are still open. With joker unset on the current
// joker match the joker is cleared.
func (bt *Tournament) SetBet(gambler *models.Gambler, id draw.MatchID, score []draw.SetScore, joker, force bool) error {
	if bt.ghost {
		return ErrGhostTournament
	}
	if !bt.isOpen && !force {
		return ErrTournamentClosed
	}
	betDraw, ok := bt.bets[gambler]
	if !ok {
		return ErrUnknownGambler
	}
	if bt.betsClosed[id] && !force {
		return ErrBetsClosedForMatch
	}
	if joker {
		current := bt.jokers[gambler]
		if current != "" && current != id && bt.betsClosed[current] {
			return ErrJokerAlreadySet
		}
	}
	if err := betDraw.SetMatchScore(id, score, force); err != nil {
		return err
	}
	if joker {
		bt.jokers[gambler] = id
	} else if bt.jokers[gambler] == id {
		bt.jokers[gambler] = ""
	}
	bt.cache.Invalidate()
	return nil
}

// RestoreBetsClosed overwrites the per-match bet gates wholesale. Used
// when rebuilding a tournament from a persisted snapshot, where replayed
// results would otherwise close every gate.
func (bt *Tournament) RestoreBetsClosed(gates map[draw.MatchID]bool) {
	bt.betsClosed = make(map[draw.MatchID]bool, len(gates))
	for id, closed := range gates {
		bt.betsClosed[id] = closed
	}
	bt.cache.Invalidate()
}

// Joker returns the gambler's joker match id, "" while unset.
func (bt *Tournament) Joker(gambler *models.Gambler) (draw.MatchID, error) {
	if !bt.Has(gambler) {
		return "", ErrUnknownGambler
	}
	return bt.jokers[gambler], nil
}

// BetsClosed reports whether gambler edits to the match are gated.
func (bt *Tournament) BetsClosed(id draw.MatchID) bool {
	return bt.betsClosed[id]
}

// Match is the bets-aware view of a real match.
type Match struct {
	tournament.Match
	BetsClosed bool `json:"bets_closed"`
}

// Bet is a gambler's view of their own prediction for a match.
type Bet struct {
	tournament.Match
	Joker  bool    `json:"joker"`
	Points float64 `json:"points"`
}

// Match returns the real match state plus its bet gate.
func (bt *Tournament) Match(id draw.MatchID) (Match, error) {
	if bt.ghost {
		return Match{}, ErrGhostTournament
	}
	m, err := bt.trn.Match(id)
	if err != nil {
		return Match{}, err
	}
	return Match{Match: m, BetsClosed: bt.betsClosed[id]}, nil
}

// Matches returns every real match keyed by id; empty for ghosts.
func (bt *Tournament) Matches() map[draw.MatchID]Match {
	matches := make(map[draw.MatchID]Match)
	if bt.ghost {
		return matches
	}
	for id, m := range bt.trn.Matches() {
		matches[id] = Match{Match: m, BetsClosed: bt.betsClosed[id]}
	}
	return matches
}

// GamblerMatch returns one bet of a gambler, with its points so far.
func (bt *Tournament) GamblerMatch(gambler *models.Gambler, id draw.MatchID) (Bet, error) {
	if bt.ghost {
		return Bet{}, ErrGhostTournament
	}
	betDraw, ok := bt.bets[gambler]
	if !ok {
		return Bet{}, ErrUnknownGambler
	}
	info, err := betDraw.Match(id)
	if err != nil {
		return Bet{}, err
	}
	bt.cache.ensureFresh(bt)
	return Bet{
		Match:  bt.resolveBet(info),
		Joker:  bt.jokers[gambler] == id,
		Points: bt.cache.points[gambler][id],
	}, nil
}

// GamblerMatches returns every bet of a gambler keyed by match id.
func (bt *Tournament) GamblerMatches(gambler *models.Gambler) (map[draw.MatchID]Bet, error) {
	if bt.ghost {
		return map[draw.MatchID]Bet{}, nil
	}
	betDraw, ok := bt.bets[gambler]
	if !ok {
		return nil, ErrUnknownGambler
	}
	bt.cache.ensureFresh(bt)
	bets := make(map[draw.MatchID]Bet)
	for id, info := range betDraw.Matches() {
		bets[id] = Bet{
			Match:  bt.resolveBet(info),
			Joker:  bt.jokers[gambler] == id,
			Points: bt.cache.points[gambler][id],
		}
	}
	return bets, nil
}

// resolveBet resolves a bet draw slot against the shared placements, so a
// bet shows the real occupants of the bracket positions.
func (bt *Tournament) resolveBet(info draw.MatchInfo) tournament.Match {
	m := tournament.Match{Score: info.Score}
	if info.Places[0] >= 0 {
		m.Player1, _ = bt.trn.Player(info.Places[0])
	}
	if info.Places[1] >= 0 {
		m.Player2, _ = bt.trn.Player(info.Places[1])
	}
	if info.Decided {
		m.Decided = true
		m.Sets = info.Sets
		if info.Winner == 0 {
			m.Winner = m.Player1
		} else {
			m.Winner = m.Player2
		}
	}
	return m
}

// Close closes the tournament for structural changes and force-closes the
// bets on every match. A non-ghost tournament must have a decided winner.
func (bt *Tournament) Close() error {
	if !bt.ghost && bt.trn.Winner() == nil {
		return ErrCloseUndecided
	}
	bt.isOpen = false
	for _, id := range bt.trn.Draw().MatchIDs() {
		bt.betsClosed[id] = true
	}
	return nil
}

// Open reopens the tournament. Per-match bet gates keep their state.
func (bt *Tournament) Open() {
	bt.isOpen = true
}

// Info is the flat presentation summary of a bet tournament.
type Info struct {
	tournament.Info
	IsOpen  bool `json:"is_open"`
	IsGhost bool `json:"is_ghost"`
}

func (bt *Tournament) Info() Info {
	return Info{Info: bt.trn.Info(), IsOpen: bt.isOpen, IsGhost: bt.ghost}
}
