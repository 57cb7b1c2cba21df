package handlers

import (
	"github.com/kofflo/cobram/internal/bet"
	"github.com/kofflo/cobram/internal/standings"
)

// scoresResponse is the JSON shape of a tournament's standings; the
// per-gambler maps are keyed by nickname.
type scoresResponse struct {
	Ranking       []standings.Entry  `json:"ranking"`
	RankingPoints map[string]int     `json:"ranking_points"`
	SeedBonus     map[string]float64 `json:"seed_bonus"`
}

func scoresView(scores bet.Scores) scoresResponse {
	resp := scoresResponse{
		Ranking:       scores.Ranking,
		RankingPoints: make(map[string]int, len(scores.RankingPoints)),
		SeedBonus:     make(map[string]float64, len(scores.SeedBonus)),
	}
	for gambler, points := range scores.RankingPoints {
		resp.RankingPoints[gambler.Nickname] = points
	}
	for gambler, bonus := range scores.SeedBonus {
		resp.SeedBonus[gambler.Nickname] = bonus
	}
	return resp
}
