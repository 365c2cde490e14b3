package scoring

import (
	"math/rand"
	"testing"

	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/stretchr/testify/assert"
)

func scored(id string, score float64, cy, py int64) model.ScoredRow {
	return model.ScoredRow{Row: row(id, cy, py), Score: score}
}

func ids(rows []model.ScoredRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Row.CustomerID
	}
	return out
}

func TestRank_TieBreaks(t *testing.T) {
	rows := []model.ScoredRow{
		scored("B", 0.5, 900, 1000), // |delta| 100
		scored("A", 0.5, 900, 1000), // same score and delta: id asc
		scored("C", 0.5, 500, 1000), // larger |delta| wins
		scored("D", 0.9, 990, 1000),
	}
	Rank(rows)
	assert.Equal(t, []string{"D", "C", "A", "B"}, ids(rows))
}

func TestRank_Idempotent(t *testing.T) {
	rows := make([]model.ScoredRow, 0, 50)
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		id := string(rune('A'+i%26)) + string(rune('a'+i/26))
		rows = append(rows, scored(id, float64(rnd.Intn(4))/4, int64(rnd.Intn(3)*100), 300))
	}
	Rank(rows)
	first := ids(rows)

	rnd.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	Rank(rows)
	assert.Equal(t, first, ids(rows), "order does not depend on input order")

	Rank(rows)
	assert.Equal(t, first, ids(rows))
}
