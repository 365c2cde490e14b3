package dto

import (
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
)

type AddActionInput struct {
	CustomerID  string
	Description string
	CreatedBy   string
}

type ActionFilters struct {
	CustomerID string
	Status     model.ActionStatus // empty means any
	OverdueAt  *time.Time         // only open actions whose review date is before this instant
}
