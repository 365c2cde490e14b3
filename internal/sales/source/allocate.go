package source

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// allocateCents splits total across weights by largest remainder, so the parts
// always sum to total exactly. Non-positive weights receive nothing.
func allocateCents(total int64, weights []float64) []int64 {
	out := make([]int64, len(weights))
	if len(weights) == 0 || total <= 0 {
		return out
	}

	sum := 0.0
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum == 0 {
		out[0] = total
		return out
	}

	type remainder struct {
		idx  int
		frac float64
	}
	rems := make([]remainder, 0, len(weights))
	allocated := int64(0)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		exact := float64(total) * w / sum
		floor := math.Floor(exact)
		out[i] = int64(floor)
		allocated += out[i]
		rems = append(rems, remainder{idx: i, frac: exact - floor})
	}

	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for i := int64(0); i < total-allocated; i++ {
		out[rems[int(i)%len(rems)].idx]++
	}
	return out
}

func toCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

func roundCents(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}
