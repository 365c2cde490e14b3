package decomposition

import (
	"sort"

	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/shopspring/decimal"
)

type lineAgg struct {
	cyUnits, pyUnits decimal.Decimal
	cyRev, pyRev     decimal.Decimal
}

// priceVolumeMix attributes the gross revenue change by category line.
//
// Continuing lines (units sold in both years):
//
//	volume = (cyUnits - pyUnits) * pyPrice
//	price  = (cyPrice - pyPrice) * cyUnits
//	mix    = continuing delta - price - volume
//
// A line sold only last year is a discontinued adjustment, only this year a new
// business adjustment. Neither is folded into mix.
func priceVolumeMix(details []model.DetailRecord) (model.PVMBreakdown, []model.LineDetail) {
	aggs := map[string]*lineAgg{}
	for _, d := range details {
		a, ok := aggs[d.Category]
		if !ok {
			a = &lineAgg{}
			aggs[d.Category] = a
		}
		if d.Period == model.PeriodCurrent {
			a.cyUnits = a.cyUnits.Add(d.Units)
			a.cyRev = a.cyRev.Add(d.Sales)
		} else {
			a.pyUnits = a.pyUnits.Add(d.Units)
			a.pyRev = a.pyRev.Add(d.Sales)
		}
	}

	categories := make([]string, 0, len(aggs))
	for c := range aggs {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var pvm model.PVMBreakdown
	lines := make([]model.LineDetail, 0, len(categories))
	price, volume := decimal.Zero, decimal.Zero

	for _, c := range categories {
		a := aggs[c]
		line := model.LineDetail{
			Category:  c,
			CYUnits:   a.cyUnits,
			PYUnits:   a.pyUnits,
			CYRevenue: a.cyRev,
			PYRevenue: a.pyRev,
			CYPrice:   unitPrice(a.cyRev, a.cyUnits),
			PYPrice:   unitPrice(a.pyRev, a.pyUnits),
		}
		change := a.cyRev.Sub(a.pyRev)
		inCY, inPY := a.cyUnits.IsPositive(), a.pyUnits.IsPositive()

		switch {
		case inCY && inPY:
			line.Status = model.LineContinuing
			line.VolumeEffect = a.cyUnits.Sub(a.pyUnits).Mul(line.PYPrice)
			line.PriceEffect = line.CYPrice.Sub(line.PYPrice).Mul(a.cyUnits)
			volume = volume.Add(line.VolumeEffect)
			price = price.Add(line.PriceEffect)
			pvm.ContinuingDelta = pvm.ContinuingDelta.Add(change)
		case inPY:
			line.Status = model.LineDiscontinued
			pvm.DiscontinuedAdjustment = pvm.DiscontinuedAdjustment.Add(change)
		case inCY:
			line.Status = model.LineNew
			pvm.NewBusinessAdjustment = pvm.NewBusinessAdjustment.Add(change)
		default:
			// Dollar-only adjustments with no units in either year have no
			// price or volume to attribute; they land in mix.
			line.Status = model.LineContinuing
			pvm.ContinuingDelta = pvm.ContinuingDelta.Add(change)
		}

		line.VolumeEffect = line.VolumeEffect.Round(2)
		line.PriceEffect = line.PriceEffect.Round(2)
		lines = append(lines, line)
	}

	pvm.PriceEffect = price.Round(2)
	pvm.VolumeEffect = volume.Round(2)
	pvm.MixEffect = pvm.ContinuingDelta.Sub(pvm.PriceEffect).Sub(pvm.VolumeEffect)
	return pvm, lines
}

func unitPrice(revenue, units decimal.Decimal) decimal.Decimal {
	if !units.IsPositive() {
		return decimal.Zero
	}
	return revenue.Div(units)
}
