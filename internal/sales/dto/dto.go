package dto

import (
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/shopspring/decimal"
)

type ReportKind string

const (
	ReportDecliners ReportKind = "decliners"
	ReportGrowers   ReportKind = "growers"
)

// Report is one ranked result set.
type Report struct {
	Kind     ReportKind        `json:"kind"`
	Source   string            `json:"source"`
	Rows     []model.ScoredRow `json:"rows"`
	Matched  int               `json:"matched"`  // rows matching the filter before the limit
	Excluded int               `json:"excluded"` // source rows dropped for missing fields
}

// ChartExport is the one-pager's chart data, already computed, for a renderer.
type ChartExport struct {
	CustomerID string            `json:"customer_id"`
	Weeks      []int             `json:"weeks"`
	CY         []decimal.Decimal `json:"cy"`
	PY         []decimal.Decimal `json:"py"`
	PVM        []ChartBar        `json:"pvm"`
	Branches   []ChartBar        `json:"branches"`
}

type ChartBar struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Summary backs the dashboard cards: movement totals on both sides and the net.
type Summary struct {
	Source       string          `json:"source"`
	Customers    int             `json:"customers"`
	Decliners    int             `json:"decliners"`
	Growers      int             `json:"growers"`
	Flat         int             `json:"flat"`
	DeclineTotal decimal.Decimal `json:"decline_total"`
	GrowthTotal  decimal.Decimal `json:"growth_total"`
	NetMomentum  decimal.Decimal `json:"net_momentum"`
	CYTotal      decimal.Decimal `json:"cy_total"`
	PYTotal      decimal.Decimal `json:"py_total"`
	Excluded     int             `json:"excluded"`
	TopDecliner  string          `json:"top_decliner,omitempty"`
	TopGrower    string          `json:"top_grower,omitempty"`
}
