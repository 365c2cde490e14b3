package dto

// RowFilter narrows a source fetch. The zero value fetches every customer.
type RowFilter struct {
	CustomerID string // exact match
}

type ListInput struct {
	Filter string // case-insensitive substring on customer id
	Limit  int    // 0 uses the configured default
}
