// Package testutil provides shared fixtures for domain tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/kofflo/cobram/internal/draw"
	"github.com/kofflo/cobram/internal/models"
	"github.com/kofflo/cobram/internal/repository"
	"github.com/kofflo/cobram/internal/tournament"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:", 5)
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// Nation returns a fixture nation.
func Nation(t *testing.T) *models.Nation {
	t.Helper()
	nation, err := models.NewNation("Italy", "ITA")
	if err != nil {
		t.Fatalf("failed to create nation: %v", err)
	}
	return nation
}

// Players returns n distinct fixture players.
func Players(t *testing.T, n int) []*models.Player {
	t.Helper()
	nation := Nation(t)
	players := make([]*models.Player, n)
	for i := range players {
		player, err := models.NewPlayer(fmt.Sprintf("Name%02d", i), fmt.Sprintf("Surname%02d", i), nation)
		if err != nil {
			t.Fatalf("failed to create player %d: %v", i, err)
		}
		players[i] = player
	}
	return players
}

// Gamblers returns n distinct fixture gamblers.
func Gamblers(t *testing.T, n int) []*models.Gambler {
	t.Helper()
	gamblers := make([]*models.Gambler, n)
	for i := range gamblers {
		gambler, err := models.NewGambler(fmt.Sprintf("gambler%02d", i))
		if err != nil {
			t.Fatalf("failed to create gambler %d: %v", i, err)
		}
		gamblers[i] = gambler
	}
	return gamblers
}

// Config returns a three-set knockout tournament configuration.
func Config(t *testing.T) tournament.Config {
	t.Helper()
	return tournament.Config{
		Name:     "Rome Masters",
		Nation:   Nation(t),
		Year:     2025,
		Sets:     3,
		Category: tournament.Master1000,
		Draw:     draw.Knockout16,
	}
}
