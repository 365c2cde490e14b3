package source

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/fekuna/omnipos-salesinsight-service/config"
	"github.com/fekuna/omnipos-salesinsight-service/internal/apperror"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// conn is the slice of driver.Conn the warehouse source uses.
type conn interface {
	Select(ctx context.Context, dest any, query string, args ...any) error
	Ping(ctx context.Context) error
	Close() error
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

const rowsQuery = `
SELECT
	CustomerID AS customer_id,
	sum(ifNull(CY_PurchaseTotal, 0) - ifNull(CY_ReturnTotal, 0)) AS cy_sales,
	sum(ifNull(PY_PurchaseTotal, 0) - ifNull(PY_ReturnTotal, 0)) AS py_sales,
	count() AS weeks,
	countIf(isNull(CY_PurchaseTotal) AND isNull(PY_PurchaseTotal)) AS empty_weeks
FROM %s
%s
GROUP BY CustomerID
ORDER BY CustomerID`

const detailsQuery = `
SELECT
	Branch AS branch,
	FullSubCommCode AS category,
	toISOWeek(CY_WeekDate) AS week,
	sum(ifNull(CY_QtySold, 0)) AS cy_units,
	sum(ifNull(CY_PurchaseTotal, 0)) AS cy_sales,
	sum(ifNull(CY_ReturnQty, 0)) AS cy_return_units,
	sum(ifNull(CY_ReturnTotal, 0)) AS cy_return_value,
	sum(ifNull(CY_COGS, 0)) AS cy_cost,
	sum(ifNull(PY_QtySold, 0)) AS py_units,
	sum(ifNull(PY_PurchaseTotal, 0)) AS py_sales,
	sum(ifNull(PY_ReturnQty, 0)) AS py_return_units,
	sum(ifNull(PY_ReturnTotal, 0)) AS py_return_value,
	sum(ifNull(PY_COGS, 0)) AS py_cost
FROM %s
WHERE CustomerID = ?
GROUP BY branch, category, week
ORDER BY branch, category, week`

type rowRecord struct {
	CustomerID string          `ch:"customer_id"`
	CYSales    decimal.Decimal `ch:"cy_sales"`
	PYSales    decimal.Decimal `ch:"py_sales"`
	Weeks      uint64          `ch:"weeks"`
	EmptyWeeks uint64          `ch:"empty_weeks"`
}

type detailRow struct {
	Branch        string          `ch:"branch"`
	Category      string          `ch:"category"`
	Week          uint8           `ch:"week"`
	CYUnits       decimal.Decimal `ch:"cy_units"`
	CYSales       decimal.Decimal `ch:"cy_sales"`
	CYReturnUnits decimal.Decimal `ch:"cy_return_units"`
	CYReturnValue decimal.Decimal `ch:"cy_return_value"`
	CYCost        decimal.Decimal `ch:"cy_cost"`
	PYUnits       decimal.Decimal `ch:"py_units"`
	PYSales       decimal.Decimal `ch:"py_sales"`
	PYReturnUnits decimal.Decimal `ch:"py_return_units"`
	PYReturnValue decimal.Decimal `ch:"py_return_value"`
	PYCost        decimal.Decimal `ch:"py_cost"`
}

// ClickHouse reads rows and details from the customer_weekly_sales warehouse table.
type ClickHouse struct {
	conn         conn
	table        string
	queryTimeout time.Duration
	log          logger.ZapLogger
}

// NewClickHouse opens the warehouse connection. An unreachable warehouse is
// logged and left to surface as DataUnavailable on each fetch.
func NewClickHouse(ctx context.Context, cfg config.ClickHouseConfig, log logger.ZapLogger) (*ClickHouse, error) {
	opts, err := clickHouseOptions(cfg)
	if err != nil {
		return nil, err
	}

	c, err := clickhouse.Open(opts)
	if err != nil {
		return nil, apperror.NewDataUnavailable("open clickhouse", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeoutDuration())
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		log.Warn("clickhouse warehouse unreachable, queries will fail until it recovers",
			zap.Strings("addr", opts.Addr),
			zap.Error(err),
		)
	} else {
		log.Info("clickhouse source connected",
			zap.Strings("addr", opts.Addr),
			zap.String("database", cfg.Database),
			zap.String("table", cfg.Table),
		)
	}

	src, err := newClickHouseWithConn(c, cfg, log)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return src, nil
}

func newClickHouseWithConn(c conn, cfg config.ClickHouseConfig, log logger.ZapLogger) (*ClickHouse, error) {
	if !tableNamePattern.MatchString(cfg.Table) {
		return nil, apperror.InvalidInput("clickhouse table name %q is not a plain identifier", cfg.Table)
	}
	return &ClickHouse{
		conn:         c,
		table:        cfg.Table,
		queryTimeout: cfg.QueryTimeoutDuration(),
		log:          log,
	}, nil
}

func clickHouseOptions(cfg config.ClickHouseConfig) (*clickhouse.Options, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Host == "" {
		return nil, apperror.InvalidInput("CH_URL %q is not a valid url", cfg.URL)
	}

	opts := &clickhouse.Options{
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		DialTimeout: cfg.DialTimeoutDuration(),
	}

	host, port := u.Hostname(), u.Port()
	switch u.Scheme {
	case "https":
		opts.Protocol = clickhouse.HTTP
		opts.TLS = &tls.Config{ServerName: host}
		if port == "" {
			port = "8443"
		}
	case "http":
		opts.Protocol = clickhouse.HTTP
		if port == "" {
			port = "8123"
		}
	case "clickhouse", "tcp":
		opts.Protocol = clickhouse.Native
		if port == "" {
			port = "9000"
		}
	default:
		return nil, apperror.InvalidInput("CH_URL scheme %q is not one of http, https, clickhouse, tcp", u.Scheme)
	}
	opts.Addr = []string{host + ":" + port}
	return opts, nil
}

func (c *ClickHouse) Name() string { return config.ModeLive }

func (c *ClickHouse) FetchRows(ctx context.Context, filter *dto.RowFilter) ([]model.Row, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	where, args := "", []any{}
	if filter != nil && filter.CustomerID != "" {
		where = "WHERE CustomerID = ?"
		args = append(args, filter.CustomerID)
	}

	var records []rowRecord
	if err := c.conn.Select(ctx, &records, fmt.Sprintf(rowsQuery, c.table, where), args...); err != nil {
		return nil, 0, apperror.NewDataUnavailable("fetch rows", err)
	}

	rows := make([]model.Row, 0, len(records))
	excluded := 0
	for _, r := range records {
		// A NULL total means no purchase that year. Only a customer with no
		// purchase total in either year for any week carries nothing to report.
		if r.CustomerID == "" || r.EmptyWeeks == r.Weeks {
			excluded++
			continue
		}
		rows = append(rows, model.NewRow(r.CustomerID, r.CYSales, r.PYSales))
	}
	if excluded > 0 {
		c.log.Warn("excluded warehouse rows with missing fields",
			zap.Int("excluded", excluded),
			zap.Int("kept", len(rows)),
		)
	}
	return rows, excluded, nil
}

func (c *ClickHouse) FetchDetails(ctx context.Context, customerID string) ([]model.DetailRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	var records []detailRow
	if err := c.conn.Select(ctx, &records, fmt.Sprintf(detailsQuery, c.table), customerID); err != nil {
		return nil, apperror.NewDataUnavailable("fetch details", err)
	}
	if len(records) == 0 {
		return nil, apperror.NewNotFound("customer", customerID)
	}

	out := make([]model.DetailRecord, 0, len(records)*2)
	for _, r := range records {
		cy := model.DetailRecord{
			CustomerID: customerID, Branch: r.Branch, Category: r.Category, Week: int(r.Week),
			Period: model.PeriodCurrent, Units: r.CYUnits, Sales: r.CYSales,
			ReturnUnits: r.CYReturnUnits, ReturnValue: r.CYReturnValue, Cost: r.CYCost,
		}
		py := model.DetailRecord{
			CustomerID: customerID, Branch: r.Branch, Category: r.Category, Week: int(r.Week),
			Period: model.PeriodPrior, Units: r.PYUnits, Sales: r.PYSales,
			ReturnUnits: r.PYReturnUnits, ReturnValue: r.PYReturnValue, Cost: r.PYCost,
		}
		for _, d := range []model.DetailRecord{cy, py} {
			if !isEmpty(d) {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (c *ClickHouse) Close() error {
	return c.conn.Close()
}

func isEmpty(d model.DetailRecord) bool {
	return d.Units.IsZero() && d.Sales.IsZero() && d.ReturnUnits.IsZero() &&
		d.ReturnValue.IsZero() && d.Cost.IsZero()
}
