package decomposition

import (
	"errors"
	"testing"

	"github.com/fekuna/omnipos-salesinsight-service/internal/apperror"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type rec struct {
	branch, category string
	week             int
	period           model.Period
	units, sales     string
	retUnits, retVal string
}

func details(id string, recs ...rec) []model.DetailRecord {
	out := make([]model.DetailRecord, 0, len(recs))
	for _, r := range recs {
		d := model.DetailRecord{
			CustomerID:  id,
			Branch:      r.branch,
			Category:    r.category,
			Week:        r.week,
			Period:      r.period,
			Units:       dec(r.units),
			Sales:       dec(r.sales),
			ReturnUnits: decimal.Zero,
			ReturnValue: decimal.Zero,
		}
		if r.retVal != "" {
			d.ReturnUnits = dec(r.retUnits)
			d.ReturnValue = dec(r.retVal)
		}
		out = append(out, d)
	}
	return out
}

func build(t *testing.T, id string, ds []model.DetailRecord) *model.OnePager {
	t.Helper()
	op, err := NewEngine().Build(model.RollUp(id, ds), ds)
	require.NoError(t, err)
	return op
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "%s: want %s, got %s", msg, want, got)
}

func TestBuild_UnitDropOnly(t *testing.T) {
	ds := details("C1",
		rec{"NORTH", "TOOLS", 10, model.PeriodPrior, "100", "1000.00", "", ""},
		rec{"NORTH", "TOOLS", 10, model.PeriodCurrent, "80", "800.00", "", ""},
	)
	op := build(t, "C1", ds)

	assertDec(t, "0", op.PVM.PriceEffect, "price")
	assertDec(t, "0", op.PVM.MixEffect, "mix")
	assertDec(t, "-200", op.PVM.VolumeEffect, "volume")
	assertDec(t, "-200", op.Headline.YoYDelta(), "delta")
}

func TestBuild_PriceIncreaseOnly(t *testing.T) {
	ds := details("C1",
		rec{"NORTH", "TOOLS", 3, model.PeriodPrior, "100", "1000.00", "", ""},
		rec{"NORTH", "TOOLS", 3, model.PeriodCurrent, "100", "1200.00", "", ""},
	)
	op := build(t, "C1", ds)

	assertDec(t, "200", op.PVM.PriceEffect, "price")
	assertDec(t, "0", op.PVM.VolumeEffect, "volume")
	assertDec(t, "0", op.PVM.MixEffect, "mix")
}

func TestBuild_LineExitsAndEntriesAreSeparate(t *testing.T) {
	ds := details("C1",
		rec{"NORTH", "TOOLS", 1, model.PeriodPrior, "10", "100.00", "", ""},
		rec{"NORTH", "TOOLS", 1, model.PeriodCurrent, "10", "100.00", "", ""},
		rec{"SOUTH", "HVAC", 2, model.PeriodPrior, "5", "750.00", "", ""},
		rec{"EAST", "SAFETY", 2, model.PeriodCurrent, "4", "320.00", "", ""},
	)
	op := build(t, "C1", ds)

	assertDec(t, "-750", op.PVM.DiscontinuedAdjustment, "discontinued")
	assertDec(t, "320", op.PVM.NewBusinessAdjustment, "new business")
	assertDec(t, "0", op.PVM.MixEffect, "mix")
	assertDec(t, "-430", op.PVM.Total(), "total")

	statuses := map[string]model.LineStatus{}
	for _, l := range op.Lines {
		statuses[l.Category] = l.Status
	}
	assert.Equal(t, map[string]model.LineStatus{
		"HVAC":   model.LineDiscontinued,
		"SAFETY": model.LineNew,
		"TOOLS":  model.LineContinuing,
	}, statuses)
}

func TestBuild_ReturnsReconcileToNetDelta(t *testing.T) {
	ds := details("C1",
		rec{"NORTH", "TOOLS", 5, model.PeriodPrior, "100", "1000.00", "2", "20.00"},
		rec{"NORTH", "TOOLS", 5, model.PeriodCurrent, "100", "1000.00", "9", "90.00"},
	)
	op := build(t, "C1", ds)

	assertDec(t, "-70", op.Returns.Impact, "returns impact")
	assertDec(t, "-70", op.Headline.YoYDelta(), "net delta")
	assertDec(t, "0", op.PVM.Total(), "gross change")
	assertDec(t, "9", op.Returns.CYReturnUnits, "cy return units")
}

func TestBuild_MixCapturesUnattributableChange(t *testing.T) {
	// Rebates booked without units have no price or volume to attribute.
	ds := details("C1",
		rec{"NORTH", "TOOLS", 1, model.PeriodPrior, "3", "10.00", "", ""},
		rec{"NORTH", "TOOLS", 1, model.PeriodCurrent, "3", "10.00", "", ""},
		rec{"NORTH", "REBATE", 1, model.PeriodCurrent, "0", "-5.00", "", ""},
	)
	op := build(t, "C1", ds)

	assertDec(t, "-5", op.PVM.MixEffect, "mix")
	assertDec(t, "-5", op.Headline.YoYDelta(), "delta")
}

func TestBuild_BranchesSumToDeltaWorstFirst(t *testing.T) {
	ds := details("C1",
		rec{"NORTH", "TOOLS", 1, model.PeriodPrior, "10", "500.00", "", ""},
		rec{"NORTH", "TOOLS", 1, model.PeriodCurrent, "10", "300.00", "1", "30.00"},
		rec{"WEST", "TOOLS", 1, model.PeriodPrior, "10", "200.00", "", ""},
		rec{"WEST", "TOOLS", 1, model.PeriodCurrent, "10", "260.00", "", ""},
	)
	op := build(t, "C1", ds)

	require.Len(t, op.Branches, 2)
	assert.Equal(t, "NORTH", op.Branches[0].Branch)
	assertDec(t, "-230", op.Branches[0].Delta, "north")
	assertDec(t, "60", op.Branches[1].Delta, "west")

	sum := decimal.Zero
	for _, b := range op.Branches {
		sum = sum.Add(b.Delta)
	}
	assertDec(t, op.Headline.YoYDelta().String(), sum, "branch sum")
}

func TestBuild_WeeklySeriesIsContiguous(t *testing.T) {
	ds := details("C1",
		rec{"NORTH", "TOOLS", 2, model.PeriodPrior, "1", "10.00", "", ""},
		rec{"NORTH", "TOOLS", 2, model.PeriodCurrent, "1", "12.00", "", ""},
		rec{"NORTH", "TOOLS", 40, model.PeriodCurrent, "1", "7.00", "", ""},
	)
	op := build(t, "C1", ds)

	require.Len(t, op.Weekly, 52)
	for i, p := range op.Weekly {
		assert.Equal(t, i+1, p.Week)
	}
	assertDec(t, "12", op.Weekly[1].CY, "week 2 cy")
	assertDec(t, "10", op.Weekly[1].PY, "week 2 py")
	assertDec(t, "0", op.Weekly[0].CY, "week 1 cy")
	assertDec(t, "7", op.Weekly[39].CY, "week 40 cy")

	ds = append(ds, details("C1", rec{"NORTH", "TOOLS", 53, model.PeriodPrior, "1", "1.00", "", ""})...)
	op = build(t, "C1", ds)
	assert.Len(t, op.Weekly, 53)
}

func TestBuild_HeadlineMismatchIsIntegrityViolation(t *testing.T) {
	ds := details("C1",
		rec{"NORTH", "TOOLS", 1, model.PeriodPrior, "10", "100.00", "", ""},
		rec{"NORTH", "TOOLS", 1, model.PeriodCurrent, "10", "90.00", "", ""},
	)
	row := model.NewRow("C1", dec("95.00"), dec("100.00"))

	_, err := NewEngine().Build(row, ds)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrIntegrity)

	var ie *apperror.IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "pvm", ie.Check)
	assertDec(t, "5", ie.Residual, "residual")
}

func TestBuild_WithinOneCentIsAccepted(t *testing.T) {
	ds := details("C1",
		rec{"NORTH", "TOOLS", 1, model.PeriodPrior, "10", "100.00", "", ""},
		rec{"NORTH", "TOOLS", 1, model.PeriodCurrent, "10", "90.00", "", ""},
	)
	_, err := NewEngine().Build(model.NewRow("C1", dec("90.01"), dec("100.00")), ds)
	assert.NoError(t, err)
}

func TestBuild_InputErrors(t *testing.T) {
	row := model.NewRow("C1", dec("1"), dec("1"))

	_, err := NewEngine().Build(row, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = NewEngine().Build(row, details("OTHER", rec{"N", "T", 1, model.PeriodPrior, "1", "1", "", ""}))
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = NewEngine().Build(row, details("C1", rec{"N", "T", 54, model.PeriodPrior, "1", "1", "", ""}))
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestBuild_GrossMargin(t *testing.T) {
	ds := details("C1",
		rec{"NORTH", "TOOLS", 1, model.PeriodPrior, "10", "100.00", "", ""},
		rec{"NORTH", "TOOLS", 1, model.PeriodCurrent, "10", "90.00", "", ""},
	)
	ds[0].Cost = dec("80")
	ds[1].Cost = dec("75")
	op := build(t, "C1", ds)

	assertDec(t, "20", op.Headline.PYGrossMargin, "py gm")
	assertDec(t, "15", op.Headline.CYGrossMargin, "cy gm")
}
