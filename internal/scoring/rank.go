package scoring

import (
	"sort"

	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
)

// Rank sorts in place: score desc, then |YoYDelta| desc, then CustomerID asc.
// The order is total, so ranking an already ranked slice leaves it unchanged.
func Rank(rows []model.ScoredRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return Less(rows[i], rows[j])
	})
}

// Less reports whether a ranks ahead of b.
func Less(a, b model.ScoredRow) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if c := a.Row.YoYDelta().Abs().Cmp(b.Row.YoYDelta().Abs()); c != 0 {
		return c > 0
	}
	return a.Row.CustomerID < b.Row.CustomerID
}
