// Package decomposition builds a customer one-pager from detail records: a
// price-volume-mix attribution of the revenue change, the returns impact, per-branch
// deltas and a week-of-year cadence series. Every build is reconciled against the
// customer's headline YoY delta before it is returned.
package decomposition

import (
	"fmt"

	"github.com/fekuna/omnipos-salesinsight-service/internal/apperror"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/shopspring/decimal"
)

// Tolerance is the largest residual accepted by reconciliation: one cent.
var Tolerance = decimal.New(1, -2)

const (
	defaultWeeks = 52
	maxWeek      = 53
)

type Engine struct {
	minWeeks int
}

func NewEngine() *Engine {
	return &Engine{minWeeks: defaultWeeks}
}

// Build decomposes the change between the row's prior and current year.
// Details must all belong to row.CustomerID.
func (e *Engine) Build(row model.Row, details []model.DetailRecord) (*model.OnePager, error) {
	if len(details) == 0 {
		return nil, apperror.NewNotFound("customer details", row.CustomerID)
	}
	for _, d := range details {
		if d.CustomerID != row.CustomerID {
			return nil, apperror.InvalidInput("detail for %q passed to one-pager of %q", d.CustomerID, row.CustomerID)
		}
		if d.Week < 1 || d.Week > maxWeek {
			return nil, apperror.InvalidInput("week %d out of range for %q", d.Week, d.CustomerID)
		}
		if d.Period != model.PeriodCurrent && d.Period != model.PeriodPrior {
			return nil, apperror.InvalidInput("unknown period %q", d.Period)
		}
	}

	pvm, lines := priceVolumeMix(details)
	returns := returnsImpact(details)

	op := &model.OnePager{
		CustomerID: row.CustomerID,
		Headline:   headline(row, details),
		PVM:        pvm,
		Returns:    returns,
		Branches:   branchDeltas(details),
		Weekly:     weeklySeries(details, e.minWeeks),
		Lines:      lines,
	}

	if err := Reconcile(op); err != nil {
		return nil, fmt.Errorf("build one-pager %s: %w", row.CustomerID, err)
	}
	return op, nil
}

// Reconcile checks both identities of a one-pager against its headline delta:
// PVM + adjustments + returns, and the sum of branch deltas.
func Reconcile(op *model.OnePager) error {
	delta := op.Headline.YoYDelta()

	explained := op.PVM.Total().Add(op.Returns.Impact)
	if residual := delta.Sub(explained); residual.Abs().GreaterThan(Tolerance) {
		return apperror.NewIntegrity("pvm", residual)
	}

	branchSum := decimal.Zero
	for _, b := range op.Branches {
		branchSum = branchSum.Add(b.Delta)
	}
	if residual := delta.Sub(branchSum); residual.Abs().GreaterThan(Tolerance) {
		return apperror.NewIntegrity("branch", residual)
	}
	return nil
}

func headline(row model.Row, details []model.DetailRecord) model.Headline {
	h := model.Headline{Row: row}
	for _, d := range details {
		margin := d.Sales.Sub(d.Cost)
		if d.Period == model.PeriodCurrent {
			h.CYGrossMargin = h.CYGrossMargin.Add(margin)
		} else {
			h.PYGrossMargin = h.PYGrossMargin.Add(margin)
		}
	}
	return h
}

func returnsImpact(details []model.DetailRecord) model.ReturnsImpact {
	var r model.ReturnsImpact
	for _, d := range details {
		if d.Period == model.PeriodCurrent {
			r.CYReturnUnits = r.CYReturnUnits.Add(d.ReturnUnits)
			r.CYReturnValue = r.CYReturnValue.Add(d.ReturnValue)
		} else {
			r.PYReturnUnits = r.PYReturnUnits.Add(d.ReturnUnits)
			r.PYReturnValue = r.PYReturnValue.Add(d.ReturnValue)
		}
	}
	// More returns this year reduce net revenue.
	r.Impact = r.CYReturnValue.Sub(r.PYReturnValue).Neg()
	return r
}
