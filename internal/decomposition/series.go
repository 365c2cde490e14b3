package decomposition

import (
	"sort"

	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/shopspring/decimal"
)

// branchDeltas computes each branch's net-sales YoY delta, worst branch first.
func branchDeltas(details []model.DetailRecord) []model.BranchDelta {
	byBranch := map[string]*model.BranchDelta{}
	for _, d := range details {
		b, ok := byBranch[d.Branch]
		if !ok {
			b = &model.BranchDelta{Branch: d.Branch}
			byBranch[d.Branch] = b
		}
		if d.Period == model.PeriodCurrent {
			b.CYSales = b.CYSales.Add(d.NetSales())
		} else {
			b.PYSales = b.PYSales.Add(d.NetSales())
		}
	}

	out := make([]model.BranchDelta, 0, len(byBranch))
	for _, b := range byBranch {
		b.Delta = b.CYSales.Sub(b.PYSales)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Delta.Cmp(out[j].Delta); c != 0 {
			return c < 0
		}
		return out[i].Branch < out[j].Branch
	})
	return out
}

// weeklySeries aligns both years by week of year. Weeks 1..max(minWeeks, last week seen)
// are always present; quiet weeks carry zeros.
func weeklySeries(details []model.DetailRecord, minWeeks int) []model.WeekPoint {
	last := minWeeks
	for _, d := range details {
		if d.Week > last {
			last = d.Week
		}
	}

	points := make([]model.WeekPoint, last)
	for i := range points {
		points[i] = model.WeekPoint{Week: i + 1, CY: decimal.Zero, PY: decimal.Zero}
	}
	for _, d := range details {
		p := &points[d.Week-1]
		if d.Period == model.PeriodCurrent {
			p.CY = p.CY.Add(d.NetSales())
		} else {
			p.PY = p.PY.Add(d.NetSales())
		}
	}
	return points
}
