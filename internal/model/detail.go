package model

import "github.com/shopspring/decimal"

type Period string

const (
	PeriodCurrent Period = "cy"
	PeriodPrior   Period = "py"
)

// DetailRecord is one warehouse grain line: customer x branch x category x week, for one period.
type DetailRecord struct {
	CustomerID  string          `json:"customer_id"`
	Branch      string          `json:"branch"`
	Category    string          `json:"category"`
	Week        int             `json:"week"` // ISO week of year
	Period      Period          `json:"period"`
	Units       decimal.Decimal `json:"units"`
	Sales       decimal.Decimal `json:"sales"` // gross extended amount
	ReturnUnits decimal.Decimal `json:"return_units"`
	ReturnValue decimal.Decimal `json:"return_value"`
	Cost        decimal.Decimal `json:"cost"`
}

// Price is the effective unit price of the record; zero when no units were sold.
func (d DetailRecord) Price() decimal.Decimal {
	if !d.Units.IsPositive() {
		return decimal.Zero
	}
	return d.Sales.Div(d.Units)
}

// NetSales is gross sales less the value of returns.
func (d DetailRecord) NetSales() decimal.Decimal {
	return d.Sales.Sub(d.ReturnValue)
}

// RollUp aggregates details into the customer's headline Row on net sales.
func RollUp(customerID string, details []DetailRecord) Row {
	cy, py := decimal.Zero, decimal.Zero
	for _, d := range details {
		switch d.Period {
		case PeriodCurrent:
			cy = cy.Add(d.NetSales())
		case PeriodPrior:
			py = py.Add(d.NetSales())
		}
	}
	return NewRow(customerID, cy, py)
}
