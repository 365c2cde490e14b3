package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Row is one customer's current-year vs prior-year sales.
// YoYDelta and YoYPct are derived on read so they can never disagree with the sales figures.
type Row struct {
	CustomerID string          `ch:"customer_id" json:"customer_id"`
	CYSales    decimal.Decimal `ch:"cy_sales" json:"cy_sales"`
	PYSales    decimal.Decimal `ch:"py_sales" json:"py_sales"`
}

func NewRow(customerID string, cy, py decimal.Decimal) Row {
	return Row{CustomerID: customerID, CYSales: cy, PYSales: py}
}

func (r Row) YoYDelta() decimal.Decimal {
	return r.CYSales.Sub(r.PYSales)
}

// YoYPct is YoYDelta / PYSales as a fraction (-0.2 for a 20% drop).
// It is invalid, not zero, when there were no prior-year sales.
func (r Row) YoYPct() decimal.NullDecimal {
	if !r.PYSales.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(r.YoYDelta().Div(r.PYSales))
}

func (r Row) IsDecliner() bool { return r.YoYDelta().IsNegative() }

func (r Row) IsGrower() bool { return r.YoYDelta().IsPositive() }

type rowJSON struct {
	CustomerID string              `json:"customer_id"`
	CYSales    decimal.Decimal     `json:"cy_sales"`
	PYSales    decimal.Decimal     `json:"py_sales"`
	YoYDelta   decimal.Decimal     `json:"yoy_delta"`
	YoYPct     decimal.NullDecimal `json:"yoy_pct"`
}

func (r Row) toJSON() rowJSON {
	return rowJSON{
		CustomerID: r.CustomerID,
		CYSales:    r.CYSales,
		PYSales:    r.PYSales,
		YoYDelta:   r.YoYDelta(),
		YoYPct:     r.YoYPct(),
	}
}

func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toJSON())
}

// Components are the three normalized sub-scores behind a priority score.
type Components struct {
	Absolute   float64 `json:"absolute"`
	Percentage float64 `json:"percentage"`
	Strategic  float64 `json:"strategic"`
}

// ScoredRow pairs a Row with the score the scoring engine computed for it.
type ScoredRow struct {
	Row        Row        `json:"row"`
	Score      float64    `json:"priority_score"`
	Components Components `json:"components"`
}
