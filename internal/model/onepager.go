package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PVMBreakdown splits the gross revenue change into price, volume and mix on continuing
// lines, with line exits and entries reported separately.
type PVMBreakdown struct {
	PriceEffect            decimal.Decimal `json:"price_effect"`
	VolumeEffect           decimal.Decimal `json:"volume_effect"`
	MixEffect              decimal.Decimal `json:"mix_effect"`
	ContinuingDelta        decimal.Decimal `json:"continuing_delta"`
	DiscontinuedAdjustment decimal.Decimal `json:"discontinued_adjustment"`
	NewBusinessAdjustment  decimal.Decimal `json:"new_business_adjustment"`
}

// Total is the gross revenue change explained by the breakdown.
func (p PVMBreakdown) Total() decimal.Decimal {
	return p.PriceEffect.Add(p.VolumeEffect).Add(p.MixEffect).
		Add(p.DiscontinuedAdjustment).Add(p.NewBusinessAdjustment)
}

type LineStatus string

const (
	LineContinuing   LineStatus = "continuing"
	LineDiscontinued LineStatus = "discontinued"
	LineNew          LineStatus = "new"
)

// LineDetail is the per-category view behind the PVM numbers.
type LineDetail struct {
	Category     string          `json:"category"`
	Status       LineStatus      `json:"status"`
	CYUnits      decimal.Decimal `json:"cy_units"`
	PYUnits      decimal.Decimal `json:"py_units"`
	CYRevenue    decimal.Decimal `json:"cy_revenue"`
	PYRevenue    decimal.Decimal `json:"py_revenue"`
	CYPrice      decimal.Decimal `json:"cy_price"`
	PYPrice      decimal.Decimal `json:"py_price"`
	PriceEffect  decimal.Decimal `json:"price_effect"`
	VolumeEffect decimal.Decimal `json:"volume_effect"`
}

type ReturnsImpact struct {
	Impact        decimal.Decimal `json:"impact"`
	CYReturnUnits decimal.Decimal `json:"cy_return_units"`
	PYReturnUnits decimal.Decimal `json:"py_return_units"`
	CYReturnValue decimal.Decimal `json:"cy_return_value"`
	PYReturnValue decimal.Decimal `json:"py_return_value"`
}

type BranchDelta struct {
	Branch  string          `json:"branch"`
	CYSales decimal.Decimal `json:"cy_sales"`
	PYSales decimal.Decimal `json:"py_sales"`
	Delta   decimal.Decimal `json:"delta"`
}

type WeekPoint struct {
	Week int             `json:"week"`
	CY   decimal.Decimal `json:"cy"`
	PY   decimal.Decimal `json:"py"`
}

// Headline extends the Row with gross margin for both periods.
type Headline struct {
	Row
	CYGrossMargin decimal.Decimal `json:"cy_gross_margin"`
	PYGrossMargin decimal.Decimal `json:"py_gross_margin"`
}

// MarshalJSON flattens the row fields next to the margins; without it the
// embedded Row's marshaler would be promoted and the margins dropped.
func (h Headline) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		rowJSON
		CYGrossMargin decimal.Decimal `json:"cy_gross_margin"`
		PYGrossMargin decimal.Decimal `json:"py_gross_margin"`
	}{h.Row.toJSON(), h.CYGrossMargin, h.PYGrossMargin})
}

// OnePager is the read-only analytical summary of one customer.
type OnePager struct {
	CustomerID string        `json:"customer_id"`
	Headline   Headline      `json:"headline"`
	PVM        PVMBreakdown  `json:"pvm"`
	Returns    ReturnsImpact `json:"returns"`
	Branches   []BranchDelta `json:"branches"`
	Weekly     []WeekPoint   `json:"weekly"`
	Lines      []LineDetail  `json:"lines"`
}
