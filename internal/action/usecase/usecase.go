package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/action"
	"github.com/fekuna/omnipos-salesinsight-service/internal/action/dto"
	"github.com/fekuna/omnipos-salesinsight-service/internal/apperror"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	idLength    = 8
	idAttempts  = 5
	publishWait = 5 * time.Second
)

type actionUseCase struct {
	repo        action.Repository
	publisher   action.EventPublisher
	reviewAfter time.Duration
	now         func() time.Time
	logger      logger.ZapLogger
}

// NewActionUseCase tracks follow-ups whose review falls reviewWeeks after acceptance.
// publisher may be nil.
func NewActionUseCase(repo action.Repository, publisher action.EventPublisher, reviewWeeks int, log logger.ZapLogger) action.UseCase {
	return &actionUseCase{
		repo:        repo,
		publisher:   publisher,
		reviewAfter: time.Duration(reviewWeeks) * 7 * 24 * time.Hour,
		now:         time.Now,
		logger:      log,
	}
}

func (uc *actionUseCase) AddAction(ctx context.Context, input *dto.AddActionInput) (*model.Action, error) {
	customerID := strings.TrimSpace(input.CustomerID)
	description := strings.TrimSpace(input.Description)
	if customerID == "" {
		return nil, apperror.InvalidInput("customer id is required")
	}
	if description == "" {
		return nil, apperror.InvalidInput("description is required")
	}

	id, err := uc.newID(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	var createdBy *string
	if input.CreatedBy != "" {
		createdBy = &input.CreatedBy
	}

	a := &model.Action{
		ID:           id,
		CustomerID:   customerID,
		Description:  description,
		CreatedBy:    createdBy,
		Status:       model.ActionInProgress,
		DateAccepted: now,
		ReviewDate:   now.Add(uc.reviewAfter),
		UpdatedAt:    now,
	}

	if err := uc.repo.Create(ctx, a); err != nil {
		uc.logger.Error("failed to create action", zap.String("customer_id", customerID), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("action accepted",
		zap.String("action_id", a.ID),
		zap.String("customer_id", a.CustomerID),
		zap.Time("review_date", a.ReviewDate),
	)
	uc.publish(ctx, dto.EventActionCreated, a)
	return a, nil
}

// newID draws short ids until one is unused.
func (uc *actionUseCase) newID(ctx context.Context) (string, error) {
	for i := 0; i < idAttempts; i++ {
		id := uuid.New().String()[:idLength]
		existing, err := uc.repo.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return id, nil
		}
	}
	return "", apperror.New("could not allocate a free action id")
}

func (uc *actionUseCase) GetAction(ctx context.Context, id string) (*model.Action, error) {
	a, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperror.NewNotFound("action", id)
	}
	return a, nil
}

func (uc *actionUseCase) ListActions(ctx context.Context, filters *dto.ActionFilters) ([]model.Action, error) {
	if filters != nil && filters.Status != "" && !filters.Status.Valid() {
		return nil, apperror.InvalidInput("unknown status %q", filters.Status)
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *actionUseCase) UpdateStatus(ctx context.Context, id string, status model.ActionStatus) (*model.Action, error) {
	if !status.Valid() {
		return nil, apperror.InvalidInput("unknown status %q", status)
	}
	if err := uc.repo.UpdateStatus(ctx, id, status, uc.now().UTC()); err != nil {
		return nil, err
	}

	a, err := uc.GetAction(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, dto.EventActionStatusChanged, a)
	return a, nil
}

func (uc *actionUseCase) MarkComplete(ctx context.Context, id string) (*model.Action, error) {
	return uc.UpdateStatus(ctx, id, model.ActionComplete)
}

func (uc *actionUseCase) DeleteAction(ctx context.Context, id string) error {
	a, err := uc.GetAction(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.publish(ctx, dto.EventActionDeleted, a)
	return nil
}

func (uc *actionUseCase) CountByStatus(ctx context.Context) (*dto.StatusCounts, error) {
	counts, err := uc.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	overdue, err := uc.repo.FindAll(ctx, &dto.ActionFilters{OverdueAt: &now})
	if err != nil {
		return nil, err
	}

	out := &dto.StatusCounts{
		Waiting:    counts[model.ActionWaiting],
		InProgress: counts[model.ActionInProgress],
		Complete:   counts[model.ActionComplete],
		Overdue:    len(overdue),
	}
	out.Total = out.Waiting + out.InProgress + out.Complete
	return out, nil
}

// publish is best effort: a broker outage is logged and never fails the request.
func (uc *actionUseCase) publish(ctx context.Context, eventType string, a *model.Action) {
	if uc.publisher == nil {
		return
	}
	event := dto.ActionEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   *a,
		Timestamp: uc.now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		uc.logger.Error("failed to encode action event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishWait)
	defer cancel()
	if err := uc.publisher.Publish(ctx, a.ID, value); err != nil {
		uc.logger.Warn("failed to publish action event",
			zap.String("event_type", eventType),
			zap.String("action_id", a.ID),
			zap.Error(err),
		)
	}
}
