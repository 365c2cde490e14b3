package action

import (
	"context"

	"github.com/fekuna/omnipos-salesinsight-service/internal/action/dto"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
)

type UseCase interface {
	AddAction(ctx context.Context, input *dto.AddActionInput) (*model.Action, error)
	GetAction(ctx context.Context, id string) (*model.Action, error)
	ListActions(ctx context.Context, filters *dto.ActionFilters) ([]model.Action, error)
	UpdateStatus(ctx context.Context, id string, status model.ActionStatus) (*model.Action, error)
	MarkComplete(ctx context.Context, id string) (*model.Action, error)
	DeleteAction(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (*dto.StatusCounts, error)
}

// EventPublisher delivers action events to whoever follows them. A nil
// publisher on the usecase disables events.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}
