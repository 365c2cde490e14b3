package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRow_Derivations(t *testing.T) {
	tests := []struct {
		name     string
		cy, py   string
		delta    string
		pct      string
		pctValid bool
		decliner bool
		grower   bool
	}{
		{"A100 twenty percent drop", "80000", "100000", "-20000", "-0.2", true, true, false},
		{"grower", "150", "100", "50", "0.5", true, false, true},
		{"flat", "100", "100", "0", "0", true, false, false},
		{"no prior year", "500", "0", "500", "", false, false, true},
		{"nothing either year", "0", "0", "0", "", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRow("A100", d(tt.cy), d(tt.py))
			assert.True(t, r.YoYDelta().Equal(d(tt.delta)), "delta %s", r.YoYDelta())
			assert.True(t, r.YoYDelta().Equal(r.CYSales.Sub(r.PYSales)))

			pct := r.YoYPct()
			assert.Equal(t, tt.pctValid, pct.Valid)
			if tt.pctValid {
				assert.True(t, pct.Decimal.Equal(d(tt.pct)), "pct %s", pct.Decimal)
			}
			assert.Equal(t, tt.decliner, r.IsDecliner())
			assert.Equal(t, tt.grower, r.IsGrower())
		})
	}
}

func TestRow_MarshalJSON_UndefinedPctIsNull(t *testing.T) {
	b, err := json.Marshal(NewRow("NEW1", d("500"), decimal.Zero))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Nil(t, out["yoy_pct"])
	assert.Equal(t, "500", out["yoy_delta"])
}

func TestRollUp_UsesNetSales(t *testing.T) {
	details := []DetailRecord{
		{Period: PeriodCurrent, Sales: d("100.00"), ReturnValue: d("10.00")},
		{Period: PeriodCurrent, Sales: d("50.00")},
		{Period: PeriodPrior, Sales: d("200.00"), ReturnValue: d("5.00")},
	}
	r := RollUp("C1", details)
	assert.True(t, r.CYSales.Equal(d("140")))
	assert.True(t, r.PYSales.Equal(d("195")))
}

func TestDetailRecord_PriceWithoutUnits(t *testing.T) {
	assert.True(t, DetailRecord{Sales: d("10")}.Price().IsZero())
	assert.True(t, DetailRecord{Sales: d("10"), Units: d("4")}.Price().Equal(d("2.5")))
}

func TestHeadline_MarshalJSONKeepsMargins(t *testing.T) {
	h := Headline{
		Row:           NewRow("A100", d("80000"), d("100000")),
		CYGrossMargin: d("12000"),
		PYGrossMargin: d("18000"),
	}
	b, err := json.Marshal(h)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "A100", out["customer_id"])
	assert.Equal(t, "-20000", out["yoy_delta"])
	assert.Equal(t, "-0.2", out["yoy_pct"])
	assert.Equal(t, "12000", out["cy_gross_margin"])
	assert.Equal(t, "18000", out["py_gross_margin"])
}
