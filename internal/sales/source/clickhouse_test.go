package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/fekuna/omnipos-salesinsight-service/config"
	"github.com/fekuna/omnipos-salesinsight-service/internal/apperror"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeConn struct {
	rows     []rowRecord
	details  []detailRow
	err      error
	queries  []string
	args     [][]any
	deadline bool
	closed   bool
}

func (f *fakeConn) Select(ctx context.Context, dest any, query string, args ...any) error {
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	switch d := dest.(type) {
	case *[]rowRecord:
		*d = f.rows
	case *[]detailRow:
		*d = f.details
	}
	return nil
}

func (f *fakeConn) Ping(context.Context) error { return nil }

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testClickHouseConfig() config.ClickHouseConfig {
	return config.ClickHouseConfig{
		URL:          "https://warehouse.internal:8443",
		User:         "analyst",
		Database:     "sales",
		Table:        "customer_weekly_sales",
		DialTimeout:  5,
		QueryTimeout: 30,
	}
}

func newTestClickHouse(t *testing.T, fc *fakeConn, log logger.ZapLogger) *ClickHouse {
	t.Helper()
	c, err := newClickHouseWithConn(fc, testClickHouseConfig(), log)
	require.NoError(t, err)
	return c
}

func TestClickHouse_FetchRowsExcludesIncomplete(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fc := &fakeConn{rows: []rowRecord{
		{CustomerID: "A100", CYSales: dec("80000.00"), PYSales: dec("100000.00"), Weeks: 52},
		{CustomerID: "", CYSales: dec("10.00"), PYSales: dec("5.00"), Weeks: 2},
		{CustomerID: "B200", CYSales: dec("0"), PYSales: dec("0"), Weeks: 3, EmptyWeeks: 3},
		{CustomerID: "C300", CYSales: dec("120.50"), PYSales: dec("0"), Weeks: 4, EmptyWeeks: 1},
	}}
	c := newTestClickHouse(t, fc, logger.FromZap(zap.New(core)))

	rows, excluded, err := c.FetchRows(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, excluded)
	require.Len(t, rows, 2)
	assert.Equal(t, "A100", rows[0].CustomerID)
	assert.True(t, rows[0].YoYDelta().Equal(dec("-20000")))
	assert.Equal(t, "C300", rows[1].CustomerID)

	assert.True(t, fc.deadline, "queries must run under the configured timeout")
	assert.Contains(t, fc.queries[0], "FROM customer_weekly_sales")
	assert.NotContains(t, fc.queries[0], "WHERE")
	assert.Equal(t, 1, logs.FilterMessage("excluded warehouse rows with missing fields").Len())
}

func TestClickHouse_FetchRowsKeepsSingleYearCustomers(t *testing.T) {
	// Weeks bought in only one year arrive with the other year's total NULL,
	// summed as zero.
	fc := &fakeConn{rows: []rowRecord{
		{CustomerID: "NEW1", CYSales: dec("100.00"), PYSales: dec("0"), Weeks: 1},
		{CustomerID: "GONE1", CYSales: dec("0"), PYSales: dec("4200.00"), Weeks: 6},
		{CustomerID: "MIX1", CYSales: dec("300.00"), PYSales: dec("250.00"), Weeks: 5, EmptyWeeks: 2},
	}}
	c := newTestClickHouse(t, fc, logger.NewNop())

	rows, excluded, err := c.FetchRows(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, excluded)
	require.Len(t, rows, 3)

	assert.Equal(t, "NEW1", rows[0].CustomerID)
	assert.True(t, rows[0].PYSales.IsZero())
	assert.False(t, rows[0].YoYPct().Valid)
	assert.Equal(t, "GONE1", rows[1].CustomerID)
	assert.True(t, rows[1].PYSales.Equal(dec("4200.00")))
	assert.True(t, rows[1].IsDecliner())

	assert.Contains(t, fc.queries[0], "ifNull(PY_PurchaseTotal, 0)")
	assert.Contains(t, fc.queries[0], "isNull(CY_PurchaseTotal) AND isNull(PY_PurchaseTotal)")
}

func TestClickHouse_FetchRowsFilterIsParameterized(t *testing.T) {
	fc := &fakeConn{}
	c := newTestClickHouse(t, fc, logger.NewNop())

	_, _, err := c.FetchRows(context.Background(), &dto.RowFilter{CustomerID: "A100' OR 1=1"})
	require.NoError(t, err)
	assert.Contains(t, fc.queries[0], "WHERE CustomerID = ?")
	assert.NotContains(t, fc.queries[0], "A100")
	assert.Equal(t, []any{"A100' OR 1=1"}, fc.args[0])
}

func TestClickHouse_FetchDetailsSplitsPeriods(t *testing.T) {
	fc := &fakeConn{details: []detailRow{
		{
			Branch: "NORTH", Category: "FAS-BOLT", Week: 3,
			CYUnits: dec("10"), CYSales: dec("100.00"), CYCost: dec("80.00"),
			PYUnits: dec("12"), PYSales: dec("120.00"), PYReturnUnits: dec("1"), PYReturnValue: dec("10.00"), PYCost: dec("96.00"),
		},
		{
			Branch: "SOUTH", Category: "SAF-GLOV", Week: 4,
			CYUnits: dec("5"), CYSales: dec("50.00"), CYCost: dec("40.00"),
		},
	}}
	c := newTestClickHouse(t, fc, logger.NewNop())

	details, err := c.FetchDetails(context.Background(), "A100")
	require.NoError(t, err)
	require.Len(t, details, 3, "all-zero prior-year record is dropped")

	assert.Equal(t, model.PeriodCurrent, details[0].Period)
	assert.Equal(t, model.PeriodPrior, details[1].Period)
	assert.Equal(t, 3, details[1].Week)
	assert.True(t, details[1].NetSales().Equal(dec("110.00")))
	assert.Equal(t, "SAF-GLOV", details[2].Category)
	assert.Equal(t, []any{"A100"}, fc.args[0])
}

func TestClickHouse_FetchDetailsUnknownCustomer(t *testing.T) {
	c := newTestClickHouse(t, &fakeConn{}, logger.NewNop())
	_, err := c.FetchDetails(context.Background(), "NOPE")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestClickHouse_QueryFailureIsDataUnavailable(t *testing.T) {
	boom := errors.New("code: 516, authentication failed")
	c := newTestClickHouse(t, &fakeConn{err: boom}, logger.NewNop())

	_, _, err := c.FetchRows(context.Background(), nil)
	assert.ErrorIs(t, err, apperror.ErrDataUnavailable)
	assert.ErrorIs(t, err, boom)

	_, err = c.FetchDetails(context.Background(), "A100")
	assert.ErrorIs(t, err, apperror.ErrDataUnavailable)
}

func TestClickHouse_Close(t *testing.T) {
	fc := &fakeConn{}
	c := newTestClickHouse(t, fc, logger.NewNop())
	require.NoError(t, c.Close())
	assert.True(t, fc.closed)
}

func TestNewClickHouse_UnreachableWarehouseFailsPerQuery(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cfg := testClickHouseConfig()
	cfg.URL = "http://127.0.0.1:1"
	cfg.DialTimeout = 1
	cfg.QueryTimeout = 2

	c, err := NewClickHouse(context.Background(), cfg, logger.FromZap(zap.New(core)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	assert.Equal(t, 1, logs.FilterMessage("clickhouse warehouse unreachable, queries will fail until it recovers").Len())

	_, _, err = c.FetchRows(context.Background(), nil)
	assert.ErrorIs(t, err, apperror.ErrDataUnavailable)

	_, err = c.FetchDetails(context.Background(), "A100")
	assert.ErrorIs(t, err, apperror.ErrDataUnavailable)
}

func TestNewClickHouse_RejectsUnsafeTableName(t *testing.T) {
	cfg := testClickHouseConfig()
	cfg.Table = "sales; DROP TABLE x"
	_, err := newClickHouseWithConn(&fakeConn{}, cfg, logger.NewNop())
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	cfg.Table = "analytics.customer_weekly_sales"
	_, err = newClickHouseWithConn(&fakeConn{}, cfg, logger.NewNop())
	assert.NoError(t, err)
}

func TestClickHouseOptions(t *testing.T) {
	tests := []struct {
		url      string
		addr     string
		protocol clickhouse.Protocol
		tls      bool
		wantErr  bool
	}{
		{url: "https://wh.example.com", addr: "wh.example.com:8443", protocol: clickhouse.HTTP, tls: true},
		{url: "http://localhost:8124", addr: "localhost:8124", protocol: clickhouse.HTTP},
		{url: "clickhouse://10.0.0.5", addr: "10.0.0.5:9000", protocol: clickhouse.Native},
		{url: "ftp://wh", wantErr: true},
		{url: "not a url", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg := testClickHouseConfig()
			cfg.URL = tt.url
			opts, err := clickHouseOptions(cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tt.addr}, opts.Addr)
			assert.Equal(t, tt.protocol, opts.Protocol)
			assert.Equal(t, tt.tls, opts.TLS != nil)
			assert.Equal(t, "sales", opts.Auth.Database)
			assert.Equal(t, 5*time.Second, opts.DialTimeout)
		})
	}
}
