package bet

import (
	"github.com/kofflo/cobram/internal/draw"
	"github.com/kofflo/cobram/internal/models"
	"github.com/kofflo/cobram/internal/standings"
)

// scoreCache memoizes the per-match and total points of every gambler.
// Mutations invalidate it; readers call ensureFresh before touching it.
type scoreCache struct {
	fresh      bool
	scores     map[*models.Gambler]float64
	finalExact map[*models.Gambler]bool
	points     map[*models.Gambler]map[draw.MatchID]float64
}

func (c *scoreCache) Invalidate() { c.fresh = false }

func (c *scoreCache) ensureFresh(bt *Tournament) {
	if c.fresh {
		return
	}
	c.scores = make(map[*models.Gambler]float64)
	c.finalExact = make(map[*models.Gambler]bool)
	c.points = make(map[*models.Gambler]map[draw.MatchID]float64)
	actual := bt.trn.Draw().Matches()
	finalID := bt.trn.Draw().FinalID()
	for _, gambler := range bt.gamblers {
		betMatches := bt.bets[gambler].Matches()
		pts := make(map[draw.MatchID]float64)
		total := 0.0
		for id, am := range actual {
			pts[id] = 0
			bm, ok := betMatches[id]
			if !ok || am.Score == nil || bm.Score == nil || !am.Decided || !bm.Decided {
				continue
			}
			if am.Winner != bm.Winner {
				continue
			}
			score := pointsWinner
			if am.Sets == bm.Sets {
				score += pointsSetScore
			}
			n := len(am.Score)
			if len(bm.Score) < n {
				n = len(bm.Score)
			}
			for i := 0; i < n; i++ {
				if am.Score[i] == bm.Score[i] {
					score += pointsCorrectSet
				}
			}
			if bt.jokers[gambler] == id {
				score *= bt.jokerMultiplier(am.Places[am.Winner])
			}
			pts[id] = float64(score)
			total += float64(score)
		}
		af := actual[finalID]
		bf, ok := betMatches[finalID]
		c.finalExact[gambler] = ok && af.Score != nil && bf.Score != nil &&
			af.Decided && bf.Decided && af.Sets == bf.Sets
		c.points[gambler] = pts
		c.scores[gambler] = total
	}
	c.fresh = true
}

// jokerMultiplier maps the actual winner's seed to the joker payout. The
// seed bands split the field in thirds: an unseeded winner or one outside
// the top two thirds pays the long-shot multiplier.
func (bt *Tournament) jokerMultiplier(winnerPlace int) int {
	player, err := bt.trn.Player(winnerPlace)
	if err != nil || player == nil {
		return jokerLongShot
	}
	seed := bt.trn.Seed(player)
	if seed == 0 {
		return jokerLongShot
	}
	band := bt.trn.Draw().NumberPlayers() / 3
	switch {
	case seed <= band:
		return jokerTopSeeds
	case seed <= 2*band:
		return jokerMidSeeds
	default:
		return jokerLongShot
	}
}

// Scores is the scoring summary of a bet tournament.
type Scores struct {
	// Ranking orders the gamblers by total score, seed bonus included.
	Ranking []standings.Entry
	// RankingPoints maps each gambler to the ranking points earned by
	// their finishing position under the tournament category.
	RankingPoints map[*models.Gambler]int
	// SeedBonus maps each gambler to the bonus earned by predicting the
	// exact set-score of the final, scaled by their external ranking.
	SeedBonus map[*models.Gambler]float64
}

// Scores computes the gambler standings of this tournament. rankingScores
// is the external ranking used for the seed bonus; nil disables the
// bonus. Ghost tournaments score everyone at zero.
func (bt *Tournament) Scores(rankingScores map[*models.Gambler]float64) Scores {
	result := Scores{
		RankingPoints: make(map[*models.Gambler]int),
		SeedBonus:     make(map[*models.Gambler]float64),
	}
	if bt.ghost {
		totals := make(map[*models.Gambler]float64, len(bt.gamblers))
		for _, g := range bt.gamblers {
			totals[g] = 0
			result.RankingPoints[g] = 0
			result.SeedBonus[g] = 0
		}
		result.Ranking = standings.Order(totals)
		return result
	}
	bt.cache.ensureFresh(bt)
	totals := make(map[*models.Gambler]float64, len(bt.gamblers))
	for _, g := range bt.gamblers {
		bonus := 0.0
		if bt.cache.finalExact[g] && rankingScores != nil {
			bonus = bt.seedBonus(g, rankingScores)
		}
		result.SeedBonus[g] = bonus
		totals[g] = bt.cache.scores[g] + bonus
	}
	result.Ranking = standings.Order(totals)
	positions := standings.Positions(totals)
	table := rankingPoints[bt.trn.Category()]
	for g, pos := range positions {
		if pos < len(table) {
			result.RankingPoints[g] = table[pos]
		} else {
			result.RankingPoints[g] = 0
		}
	}
	return result
}

// seedBonus rewards the exact final prediction by the gambler's standing
// in the external ranking: the further from the top, the smaller the
// bonus, halved so it cannot dwarf match points.
func (bt *Tournament) seedBonus(gambler *models.Gambler, rankingScores map[*models.Gambler]float64) float64 {
	ranked := make(map[*models.Gambler]float64)
	for _, g := range bt.gamblers {
		if s, ok := rankingScores[g]; ok {
			ranked[g] = s
		}
	}
	positions := standings.Positions(ranked)
	pos, ok := positions[gambler]
	if !ok {
		return 0
	}
	return float64(len(ranked)-pos-1) / 2
}
