package sales

import (
	"context"

	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/dto"
)

// Source produces rows and detail records. Implementations are read-only and
// interchangeable; the rest of the system never learns which one is active.
type Source interface {
	// FetchRows returns the rows matching filter (nil means all) and the number of
	// rows excluded because required fields were missing.
	FetchRows(ctx context.Context, filter *dto.RowFilter) ([]model.Row, int, error)
	FetchDetails(ctx context.Context, customerID string) ([]model.DetailRecord, error)
	Name() string
	Close() error
}
