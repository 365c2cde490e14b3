package action

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/action/dto"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, a *model.Action) error
	// FindByID returns nil, nil when no action has the id.
	FindByID(ctx context.Context, id string) (*model.Action, error)
	FindAll(ctx context.Context, filters *dto.ActionFilters) ([]model.Action, error)
	UpdateStatus(ctx context.Context, id string, status model.ActionStatus, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[model.ActionStatus]int, error)
}
