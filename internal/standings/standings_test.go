package standings

import (
	"testing"

	"github.com/kofflo/cobram/internal/models"
)

func gambler(t *testing.T, nickname string) *models.Gambler {
	t.Helper()
	g, err := models.NewGambler(nickname)
	if err != nil {
		t.Fatalf("NewGambler: %v", err)
	}
	return g
}

func TestOrder(t *testing.T) {
	anna := gambler(t, "anna")
	bea := gambler(t, "bea")
	carl := gambler(t, "carl")
	dan := gambler(t, "dan")
	scores := map[*models.Gambler]float64{carl: 20, anna: 20, dan: 10, bea: 30}

	entries := Order(scores)
	want := []Entry{{bea, 30}, {anna, 20}, {carl, 20}, {dan, 10}}
	if len(entries) != len(want) {
		t.Fatalf("len = %d, want %d", len(entries), len(want))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entries[%d] = %v %v, want %v %v",
				i, entries[i].Gambler.Nickname, entries[i].Score,
				want[i].Gambler.Nickname, want[i].Score)
		}
	}
}

func TestPositions(t *testing.T) {
	anna := gambler(t, "anna")
	bea := gambler(t, "bea")
	carl := gambler(t, "carl")
	dan := gambler(t, "dan")
	scores := map[*models.Gambler]float64{anna: 30, bea: 20, carl: 20, dan: 10}

	positions := Positions(scores)
	want := map[*models.Gambler]int{anna: 0, bea: 1, carl: 1, dan: 3}
	for g, pos := range want {
		if positions[g] != pos {
			t.Errorf("position of %s = %d, want %d", g.Nickname, positions[g], pos)
		}
	}
}

func TestPositionsEmpty(t *testing.T) {
	if got := Positions(nil); len(got) != 0 {
		t.Fatalf("Positions(nil) = %v, want empty", got)
	}
}
