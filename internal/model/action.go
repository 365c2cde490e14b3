package model

import "time"

type ActionStatus string

const (
	ActionWaiting    ActionStatus = "waiting"
	ActionInProgress ActionStatus = "in_progress"
	ActionComplete   ActionStatus = "complete"
)

var ActionStatuses = []ActionStatus{ActionWaiting, ActionInProgress, ActionComplete}

func (s ActionStatus) Valid() bool {
	switch s {
	case ActionWaiting, ActionInProgress, ActionComplete:
		return true
	}
	return false
}

// Label is the human-facing status text.
func (s ActionStatus) Label() string {
	switch s {
	case ActionWaiting:
		return "Waiting for acceptance"
	case ActionInProgress:
		return "In-Progress"
	case ActionComplete:
		return "Complete"
	}
	return string(s)
}

// Action is a sales follow-up accepted for a customer.
type Action struct {
	ID           string       `db:"id" json:"id"`
	CustomerID   string       `db:"customer_id" json:"customer_id"`
	Description  string       `db:"description" json:"description"`
	CreatedBy    *string      `db:"created_by" json:"created_by"`
	Status       ActionStatus `db:"status" json:"status"`
	DateAccepted time.Time    `db:"date_accepted" json:"date_accepted"`
	ReviewDate   time.Time    `db:"review_date" json:"review_date"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// IsOverdue reports whether the review date has passed on an open action.
func (a *Action) IsOverdue(now time.Time) bool {
	return now.After(a.ReviewDate) && a.Status != ActionComplete
}
