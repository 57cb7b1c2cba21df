package tournament

import (
	"github.com/kofflo/cobram/internal/draw"
	"github.com/kofflo/cobram/internal/errors"
	"github.com/kofflo/cobram/internal/models"
)

// Category is the tournament category, which fixes the ranking points
// awarded per finishing position.
type Category int

const (
	GrandSlam Category = iota
	ATPFinals
	Master1000
	ATP500
	ATP250
	Olympics
)

var categoryNames = map[Category]string{
	GrandSlam:  "GRAND_SLAM",
	ATPFinals:  "ATP_FINALS",
	Master1000: "MASTER_1000",
	ATP500:     "ATP_500",
	ATP250:     "ATP_250",
	Olympics:   "OLYMPICS",
}

func (c Category) String() string {
	return categoryNames[c]
}

// ParseCategory converts the wire form produced by String back to a Category.
func ParseCategory(s string) (Category, error) {
	for category, name := range categoryNames {
		if name == s {
			return category, nil
		}
	}
	return 0, errors.InvalidInputf("invalid tournament category %q", s)
}

// Bye is the placeholder opponent causing automatic advancement. Byes are
// recognized by identity, like every other entity.
var (
	byeNation = &models.Nation{Name: "BYE", Code: "BYE"}
	Bye       = &models.Player{Name: "BYE", Surname: "BYE", Nation: byeNation}
)

const (
	minYear = 1900
	maxYear = 2100
)

var (
	ErrInvalidPlace         = errors.InvalidInput("invalid place for a tournament player")
	ErrPlayerAlreadyEntered = errors.Conflict("player is already in the tournament")
	ErrPlayerNotEntered     = errors.NotFound("player is not in the tournament")
	ErrPlayerUpdateForce    = errors.Conflict("cannot update a player without force")
	ErrByeNotAllowed        = errors.Validation("bye not allowed")
	ErrScoreOfMatchWithBye  = errors.Validation("cannot set the score of a match with a bye")
	ErrPlayersNotAllDefined = errors.Validation("not all match players are defined")
	ErrInvalidSeed          = errors.InvalidInput("invalid seed value")
	ErrPlayerCannotBeSeeded = errors.Validation("player cannot be seeded")
	ErrSeedPositionOccupied = errors.Validation("seed position already occupied")
)

// ID identifies a tournament: name and year, immutable after creation.
type ID struct {
	Name string `json:"name"`
	Year int    `json:"year"`
}

// Config carries the construction inputs of a tournament. FifthSet is
// required for five-set tournaments and must be unset for three-set ones.
type Config struct {
	Name     string
	Nation   *models.Nation
	Year     int
	Sets     int
	FifthSet draw.TieBreak
	Category Category
	Draw     draw.Kind
}

func (c Config) validate() error {
	if c.Name == "" {
		return errors.InvalidInput("invalid name for a tournament")
	}
	if c.Nation == nil {
		return errors.InvalidInput("invalid nation for a tournament")
	}
	if c.Year < minYear || c.Year >= maxYear {
		return errors.InvalidInput("invalid year for a tournament")
	}
	switch c.Sets {
	case 3:
		if c.FifthSet != draw.TieBreakUnset {
			return errors.InvalidInput("invalid tie-break at 5th set for a 3-set tournament")
		}
	case 5:
		if c.FifthSet == draw.TieBreakUnset {
			return errors.InvalidInput("invalid tie-break at 5th set for a 5-set tournament")
		}
	default:
		return errors.InvalidInput("invalid number of sets for a tournament")
	}
	if _, ok := categoryNames[c.Category]; !ok {
		return errors.InvalidInput("invalid category for a tournament")
	}
	return nil
}

// Tournament binds a draw to real players, seeds, nation and category.
type Tournament struct {
	cfg     Config
	draw    *draw.Draw
	players []*models.Player
	seeds   []int
}

// New validates the configuration and creates the tournament with its
// reference draw.
func New(cfg Config) (*Tournament, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	d := draw.New(cfg.Draw, draw.Rules{Sets: cfg.Sets, FifthSet: cfg.FifthSet})
	return &Tournament{
		cfg:     cfg,
		draw:    d,
		players: make([]*models.Player, d.NumberPlayers()),
		seeds:   make([]int, d.NumberPlayers()),
	}, nil
}

func (t *Tournament) ID() ID                  { return ID{Name: t.cfg.Name, Year: t.cfg.Year} }
func (t *Tournament) Name() string            { return t.cfg.Name }
func (t *Tournament) Year() int               { return t.cfg.Year }
func (t *Tournament) Nation() *models.Nation  { return t.cfg.Nation }
func (t *Tournament) Sets() int               { return t.cfg.Sets }
func (t *Tournament) FifthSet() draw.TieBreak { return t.cfg.FifthSet }
func (t *Tournament) Category() Category      { return t.cfg.Category }
func (t *Tournament) DrawKind() draw.Kind     { return t.cfg.Draw }
func (t *Tournament) NumberPlayers() int      { return t.draw.NumberPlayers() }
func (t *Tournament) NumberMatches() int      { return t.draw.NumberMatches() }

// Draw exposes the reference draw, used by the betting layer to derive
// follower draws and to diff bets against real results.
func (t *Tournament) Draw() *draw.Draw { return t.draw }

// Winner returns the tournament winner, or nil while undecided.
func (t *Tournament) Winner() *models.Player {
	place, ok := t.draw.Winner()
	if !ok {
		return nil
	}
	return t.players[place]
}

// SetPlayer places a player (or the Bye sentinel, or nil to vacate) at a
// place with an optional seed. Replacing a different player requires
// force and resets their dependent results. Byes placed against byes and
// seed collisions are rejected; bye auto-advancement re-runs after every
// placement change.
func (t *Tournament) SetPlayer(place int, player *models.Player, seed int, force bool) error {
	if place < 0 || place >= len(t.players) {
		return ErrInvalidPlace
	}
	if player == Bye {
		if !t.draw.ByeAllowed(t.byePlaces(), place) {
			return ErrByeNotAllowed
		}
	} else if player != nil && t.players[place] != player && t.placeOf(player) >= 0 {
		return ErrPlayerAlreadyEntered
	}
	if seed < 0 {
		return ErrInvalidSeed
	}
	if seed != 0 {
		if player == nil || player == Bye {
			return ErrPlayerCannotBeSeeded
		}
		for p, s := range t.seeds {
			if s == seed && p != place {
				return ErrSeedPositionOccupied
			}
		}
	}
	switch {
	case t.players[place] == nil || t.players[place] == player:
		t.players[place] = player
	case force:
		t.players[place] = player
		if err := t.draw.ResetPlayer(place); err != nil {
			return err
		}
	default:
		return ErrPlayerUpdateForce
	}
	t.seeds[place] = seed
	return t.draw.AdvanceByes(t.byePlaces())
}

// Player returns the player at place, nil while vacant.
func (t *Tournament) Player(place int) (*models.Player, error) {
	if place < 0 || place >= len(t.players) {
		return nil, ErrInvalidPlace
	}
	return t.players[place], nil
}

// PlayerPlace returns the place the player occupies.
func (t *Tournament) PlayerPlace(player *models.Player) (int, error) {
	if place := t.placeOf(player); place >= 0 {
		return place, nil
	}
	return 0, ErrPlayerNotEntered
}

// Players returns a copy of the placement array.
func (t *Tournament) Players() []*models.Player {
	return append([]*models.Player(nil), t.players...)
}

// Seed returns the seed of a placed player, 0 for unseeded or nil.
func (t *Tournament) Seed(player *models.Player) int {
	if player == nil {
		return 0
	}
	if place := t.placeOf(player); place >= 0 {
		return t.seeds[place]
	}
	return 0
}

// Seeds returns a copy of the seed array, parallel to Players.
func (t *Tournament) Seeds() []int {
	return append([]int(nil), t.seeds...)
}

func (t *Tournament) placeOf(player *models.Player) int {
	for place, p := range t.players {
		if p != nil && p == player {
			return place
		}
	}
	return -1
}

func (t *Tournament) byePlaces() []int {
	var places []int
	for place, p := range t.players {
		if p == Bye {
			places = append(places, place)
		}
	}
	return places
}

// Match is the player-resolved state of one match.
type Match struct {
	Player1 *models.Player  `json:"player_1"`
	Player2 *models.Player  `json:"player_2"`
	Score   []draw.SetScore `json:"score"`
	Winner  *models.Player  `json:"winner,omitempty"`
	Sets    draw.SetScore   `json:"sets"`
	Decided bool            `json:"decided"`
}

func (t *Tournament) resolveMatch(info draw.MatchInfo) Match {
	match := Match{Score: info.Score}
	if info.Places[0] >= 0 {
		match.Player1 = t.players[info.Places[0]]
	}
	if info.Places[1] >= 0 {
		match.Player2 = t.players[info.Places[1]]
	}
	if info.Decided {
		match.Decided = true
		match.Sets = info.Sets
		if info.Winner == 0 {
			match.Winner = match.Player1
		} else {
			match.Winner = match.Player2
		}
	}
	return match
}

// Match returns the player-resolved state of the identified match.
func (t *Tournament) Match(id draw.MatchID) (Match, error) {
	info, err := t.draw.Match(id)
	if err != nil {
		return Match{}, err
	}
	return t.resolveMatch(info), nil
}

// Matches returns every match keyed by id.
func (t *Tournament) Matches() map[draw.MatchID]Match {
	matches := make(map[draw.MatchID]Match, t.draw.NumberMatches())
	for id, info := range t.draw.Matches() {
		matches[id] = t.resolveMatch(info)
	}
	return matches
}

// SetMatchScore records a real result. Both players must be placed and
// neither may be a bye; bye matches are scored automatically.
func (t *Tournament) SetMatchScore(id draw.MatchID, score []draw.SetScore, force bool) error {
	info, err := t.draw.Match(id)
	if err != nil {
		return err
	}
	for _, place := range info.Places {
		if place < 0 || t.players[place] == nil {
			return ErrPlayersNotAllDefined
		}
		if t.players[place] == Bye {
			return ErrScoreOfMatchWithBye
		}
	}
	return t.draw.SetMatchScore(id, score, force)
}

// AddPlayersToMatch assigns places to a round robin match, see
// draw.AddPlayersToMatch.
func (t *Tournament) AddPlayersToMatch(id draw.MatchID, place1, place2 int, force bool) error {
	return t.draw.AddPlayersToMatch(id, place1, place2, force)
}

// Info is the flat presentation summary of a tournament.
type Info struct {
	Name     string         `json:"name"`
	Year     int            `json:"year"`
	Nation   *models.Nation `json:"nation"`
	Sets     int            `json:"n_sets"`
	FifthSet string         `json:"tie_breaker_5th,omitempty"`
	Category string         `json:"category"`
	DrawKind string         `json:"draw_type"`
	Winner   *models.Player `json:"winner"`
}

func (t *Tournament) Info() Info {
	return Info{
		Name:     t.cfg.Name,
		Year:     t.cfg.Year,
		Nation:   t.cfg.Nation,
		Sets:     t.cfg.Sets,
		FifthSet: t.cfg.FifthSet.String(),
		Category: t.cfg.Category.String(),
		DrawKind: t.cfg.Draw.String(),
		Winner:   t.Winner(),
	}
}
