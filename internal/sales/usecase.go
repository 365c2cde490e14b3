package sales

import (
	"context"

	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/dto"
)

type UseCase interface {
	ListDecliners(ctx context.Context, input *dto.ListInput) (*dto.Report, error)
	ListGrowers(ctx context.Context, input *dto.ListInput) (*dto.Report, error)
	GetOnePager(ctx context.Context, customerID string) (*model.OnePager, error)
	ExportChart(ctx context.Context, customerID string) (*dto.ChartExport, error)
	GetSummary(ctx context.Context) (*dto.Summary, error)
}
