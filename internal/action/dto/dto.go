package dto

import (
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
)

const (
	EventActionCreated       = "ActionCreated"
	EventActionStatusChanged = "ActionStatusChanged"
	EventActionDeleted       = "ActionDeleted"
)

// ActionEvent is the message published for every change to an action.
type ActionEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   model.Action `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type StatusCounts struct {
	Waiting    int `json:"waiting"`
	InProgress int `json:"in_progress"`
	Complete   int `json:"complete"`
	Overdue    int `json:"overdue"`
	Total      int `json:"total"`
}
