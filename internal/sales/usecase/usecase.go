package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/apperror"
	"github.com/fekuna/omnipos-salesinsight-service/internal/decomposition"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/dto"
	"github.com/fekuna/omnipos-salesinsight-service/internal/scoring"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type salesUseCase struct {
	source       sales.Source
	decline      *scoring.Engine
	growth       *scoring.Engine
	builder      *decomposition.Engine
	defaultLimit int
	logger       logger.ZapLogger
}

// NewSalesUseCase assembles reports from src. defaultLimit applies when a list
// request leaves Limit at zero; a defaultLimit of zero means unlimited.
func NewSalesUseCase(src sales.Source, weights scoring.Weights, defaultLimit int, log logger.ZapLogger) (sales.UseCase, error) {
	decline, err := scoring.NewEngine(weights, scoring.Decline)
	if err != nil {
		return nil, err
	}
	growth, err := scoring.NewEngine(weights, scoring.Growth)
	if err != nil {
		return nil, err
	}
	return &salesUseCase{
		source:       src,
		decline:      decline,
		growth:       growth,
		builder:      decomposition.NewEngine(),
		defaultLimit: defaultLimit,
		logger:       log,
	}, nil
}

func (uc *salesUseCase) ListDecliners(ctx context.Context, input *dto.ListInput) (*dto.Report, error) {
	return uc.list(ctx, input, dto.ReportDecliners, uc.decline, model.Row.IsDecliner)
}

func (uc *salesUseCase) ListGrowers(ctx context.Context, input *dto.ListInput) (*dto.Report, error) {
	return uc.list(ctx, input, dto.ReportGrowers, uc.growth, model.Row.IsGrower)
}

// list scores against every fetched row, then keeps one side and applies the
// filter. Normalizers never see the filtered view.
func (uc *salesUseCase) list(ctx context.Context, input *dto.ListInput, kind dto.ReportKind, engine *scoring.Engine, keep func(model.Row) bool) (*dto.Report, error) {
	if input == nil {
		input = &dto.ListInput{}
	}
	if input.Limit < 0 {
		return nil, apperror.InvalidInput("limit must not be negative, got %d", input.Limit)
	}
	limit := input.Limit
	if limit == 0 {
		limit = uc.defaultLimit
	}

	start := time.Now()
	rows, excluded, err := uc.source.FetchRows(ctx, nil)
	if err != nil {
		uc.logger.Error("failed to fetch rows", zap.String("report", string(kind)), zap.Error(err))
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}

	scorer := engine.Prepare(rows)
	needle := strings.ToLower(strings.TrimSpace(input.Filter))

	scored := make([]model.ScoredRow, 0, len(rows)/2)
	for _, r := range rows {
		if !keep(r) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(r.CustomerID), needle) {
			continue
		}
		scored = append(scored, scorer.ScoreRow(r))
	}
	scoring.Rank(scored)

	matched := len(scored)
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	uc.logger.Debug("report assembled",
		zap.String("report", string(kind)),
		zap.String("source", uc.source.Name()),
		zap.Int("rows", len(rows)),
		zap.Int("matched", matched),
		zap.Int("excluded", excluded),
		zap.Duration("took", time.Since(start)),
	)

	return &dto.Report{
		Kind:     kind,
		Source:   uc.source.Name(),
		Rows:     scored,
		Matched:  matched,
		Excluded: excluded,
	}, nil
}

func (uc *salesUseCase) GetOnePager(ctx context.Context, customerID string) (*model.OnePager, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, apperror.InvalidInput("customer id is required")
	}

	rows, _, err := uc.source.FetchRows(ctx, &dto.RowFilter{CustomerID: customerID})
	if err != nil {
		return nil, fmt.Errorf("one-pager %s: %w", customerID, err)
	}
	if len(rows) == 0 {
		return nil, apperror.NewNotFound("customer", customerID)
	}

	details, err := uc.source.FetchDetails(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("one-pager %s: %w", customerID, err)
	}

	op, err := uc.builder.Build(rows[0], details)
	if err != nil {
		var ie *apperror.IntegrityError
		if apperror.As(err, &ie) {
			uc.logger.Error("one-pager failed reconciliation",
				zap.String("customer_id", customerID),
				zap.String("check", ie.Check),
				zap.String("residual", ie.Residual.StringFixed(2)),
			)
		}
		return nil, err
	}
	return op, nil
}

func (uc *salesUseCase) ExportChart(ctx context.Context, customerID string) (*dto.ChartExport, error) {
	op, err := uc.GetOnePager(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return ChartFromOnePager(op), nil
}

// ChartFromOnePager flattens a one-pager into render-ready series and bars.
func ChartFromOnePager(op *model.OnePager) *dto.ChartExport {
	out := &dto.ChartExport{
		CustomerID: op.CustomerID,
		Weeks:      make([]int, len(op.Weekly)),
		CY:         make([]decimal.Decimal, len(op.Weekly)),
		PY:         make([]decimal.Decimal, len(op.Weekly)),
		PVM: []dto.ChartBar{
			{Label: "Price", Value: op.PVM.PriceEffect},
			{Label: "Volume", Value: op.PVM.VolumeEffect},
			{Label: "Mix", Value: op.PVM.MixEffect},
			{Label: "Discontinued", Value: op.PVM.DiscontinuedAdjustment},
			{Label: "New business", Value: op.PVM.NewBusinessAdjustment},
			{Label: "Returns", Value: op.Returns.Impact},
		},
		Branches: make([]dto.ChartBar, len(op.Branches)),
	}
	for i, w := range op.Weekly {
		out.Weeks[i] = w.Week
		out.CY[i] = w.CY
		out.PY[i] = w.PY
	}
	for i, b := range op.Branches {
		out.Branches[i] = dto.ChartBar{Label: b.Branch, Value: b.Delta}
	}
	return out
}

func (uc *salesUseCase) GetSummary(ctx context.Context) (*dto.Summary, error) {
	rows, excluded, err := uc.source.FetchRows(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	s := &dto.Summary{Source: uc.source.Name(), Customers: len(rows), Excluded: excluded}
	for _, r := range rows {
		delta := r.YoYDelta()
		s.CYTotal = s.CYTotal.Add(r.CYSales)
		s.PYTotal = s.PYTotal.Add(r.PYSales)
		switch {
		case delta.IsNegative():
			s.Decliners++
			s.DeclineTotal = s.DeclineTotal.Add(delta)
		case delta.IsPositive():
			s.Growers++
			s.GrowthTotal = s.GrowthTotal.Add(delta)
		default:
			s.Flat++
		}
	}
	s.NetMomentum = s.GrowthTotal.Add(s.DeclineTotal)
	s.TopDecliner = top(uc.decline, rows, model.Row.IsDecliner)
	s.TopGrower = top(uc.growth, rows, model.Row.IsGrower)
	return s, nil
}

// top returns the id of the highest ranked row on one side, or "" when that side is empty.
func top(engine *scoring.Engine, rows []model.Row, keep func(model.Row) bool) string {
	scorer := engine.Prepare(rows)
	var best *model.ScoredRow
	for _, r := range rows {
		if !keep(r) {
			continue
		}
		sr := scorer.ScoreRow(r)
		if best == nil || scoring.Less(sr, *best) {
			best = &sr
		}
	}
	if best == nil {
		return ""
	}
	return best.Row.CustomerID
}
