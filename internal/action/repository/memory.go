package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/action/dto"
	"github.com/fekuna/omnipos-salesinsight-service/internal/apperror"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
)

// MemoryRepository keeps actions for the life of the process.
type MemoryRepository struct {
	mu      sync.RWMutex
	actions map[string]model.Action
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{actions: map[string]model.Action{}}
}

func (r *MemoryRepository) Create(_ context.Context, a *model.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[a.ID]; exists {
		return apperror.InvalidInput("action %q already exists", a.ID)
	}
	r.actions[a.ID] = *a
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *MemoryRepository) FindAll(_ context.Context, f *dto.ActionFilters) ([]model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Action, 0, len(r.actions))
	for _, a := range r.actions {
		if f != nil {
			if f.CustomerID != "" && a.CustomerID != f.CustomerID {
				continue
			}
			if f.Status != "" && a.Status != f.Status {
				continue
			}
			if f.OverdueAt != nil && !a.IsOverdue(*f.OverdueAt) {
				continue
			}
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateAccepted.Equal(out[j].DateAccepted) {
			return out[i].DateAccepted.Before(out[j].DateAccepted)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id string, status model.ActionStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actions[id]
	if !ok {
		return apperror.NewNotFound("action", id)
	}
	a.Status = status
	a.UpdatedAt = updatedAt
	r.actions[id] = a
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.actions[id]; !ok {
		return apperror.NewNotFound("action", id)
	}
	delete(r.actions, id)
	return nil
}

func (r *MemoryRepository) CountByStatus(_ context.Context) (map[model.ActionStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[model.ActionStatus]int, len(model.ActionStatuses))
	for _, s := range model.ActionStatuses {
		counts[s] = 0
	}
	for _, a := range r.actions {
		counts[a.Status]++
	}
	return counts, nil
}
