// Package standings orders gambler scores and assigns tie-aware
// positions: gamblers with equal scores share the position of the first
// of them, and the next distinct score resumes at its overall index
// (30, 20, 20, 10 gives positions 0, 1, 1, 3).
package standings

import (
	"sort"

	"github.com/kofflo/cobram/internal/models"
)

// Entry is one ranked gambler.
type Entry struct {
	Gambler *models.Gambler `json:"gambler"`
	Score   float64         `json:"score"`
}

// Order sorts scores descending. Equal scores order by nickname
// ascending, so the ranking is reproducible regardless of map iteration.
func Order(scores map[*models.Gambler]float64) []Entry {
	entries := make([]Entry, 0, len(scores))
	for gambler, score := range scores {
		entries = append(entries, Entry{Gambler: gambler, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Gambler.Nickname < entries[j].Gambler.Nickname
	})
	return entries
}

// Positions maps each gambler to their 0-based finishing position.
func Positions(scores map[*models.Gambler]float64) map[*models.Gambler]int {
	entries := Order(scores)
	positions := make(map[*models.Gambler]int, len(entries))
	lastPosition := 0
	for i, entry := range entries {
		if i > 0 && entry.Score == entries[i-1].Score {
			positions[entry.Gambler] = lastPosition
			continue
		}
		positions[entry.Gambler] = i
		lastPosition = i
	}
	return positions
}
