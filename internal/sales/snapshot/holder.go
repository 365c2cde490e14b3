// Package snapshot keeps the last successfully assembled dashboard so a periodic
// refresher can keep serving it while the source is failing.
package snapshot

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/dto"
	"go.uber.org/zap"
)

// Dashboard is one refresh worth of reports.
type Dashboard struct {
	Summary   *dto.Summary
	Decliners *dto.Report
	Growers   *dto.Report
	TakenAt   time.Time
}

type Holder struct {
	uc    sales.UseCase
	input dto.ListInput
	log   logger.ZapLogger
	now   func() time.Time

	current atomic.Pointer[Dashboard]

	mu      sync.Mutex
	lastErr error
}

func NewHolder(uc sales.UseCase, input dto.ListInput, log logger.ZapLogger) *Holder {
	return &Holder{uc: uc, input: input, log: log, now: time.Now}
}

// Refresh assembles a new dashboard. On failure the previous dashboard stays in
// place and the error is kept for LastError.
func (h *Holder) Refresh(ctx context.Context) error {
	d, err := h.assemble(ctx)

	h.mu.Lock()
	h.lastErr = err
	h.mu.Unlock()

	if err != nil {
		h.log.Warn("dashboard refresh failed, keeping previous snapshot", zap.Error(err))
		return err
	}
	h.current.Store(d)
	return nil
}

func (h *Holder) assemble(ctx context.Context) (*Dashboard, error) {
	in := h.input
	summary, err := h.uc.GetSummary(ctx)
	if err != nil {
		return nil, err
	}
	decliners, err := h.uc.ListDecliners(ctx, &in)
	if err != nil {
		return nil, err
	}
	growers, err := h.uc.ListGrowers(ctx, &in)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Summary: summary, Decliners: decliners, Growers: growers, TakenAt: h.now()}, nil
}

// Current returns the last good dashboard, or nil before the first success.
func (h *Holder) Current() *Dashboard {
	return h.current.Load()
}

func (h *Holder) LastError() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

// Run refreshes immediately and then every interval until ctx is done, calling
// onUpdate after each attempt.
func (h *Holder) Run(ctx context.Context, interval time.Duration, onUpdate func(*Dashboard, error)) {
	tick := func() {
		err := h.Refresh(ctx)
		if onUpdate != nil {
			onUpdate(h.Current(), err)
		}
	}

	tick()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
