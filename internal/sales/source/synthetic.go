package source

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"

	"github.com/cespare/xxhash/v2"
	"github.com/fekuna/omnipos-salesinsight-service/config"
	"github.com/fekuna/omnipos-salesinsight-service/internal/apperror"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	movementStdDev = 0.18
	movementClamp  = 0.55
)

var (
	branchNames   = []string{"NORTH", "SOUTH", "EAST", "WEST", "CENTRAL", "NE", "NW", "SE", "SW"}
	categoryNames = []string{
		"ABR-DISC", "ADH-EPOX", "ELE-CABL", "ELE-SWCH", "FAS-BOLT", "FAS-SCRW",
		"HYD-HOSE", "LUB-GRSE", "PLB-VALV", "PWR-DRIL", "SAF-GLOV", "SAF-HELM",
	}
)

// Synthetic is a deterministic in-memory source. Two instances built from the same
// config produce identical rows and details, in any process.
type Synthetic struct {
	seed  int64
	rows  []model.Row
	index map[string]int
	log   logger.ZapLogger
}

func NewSynthetic(cfg config.SyntheticConfig, log logger.ZapLogger) (*Synthetic, error) {
	if cfg.Customers <= 0 {
		return nil, apperror.InvalidInput("synthetic customers must be positive, got %d", cfg.Customers)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	rows := make([]model.Row, 0, cfg.Customers)
	index := make(map[string]int, cfg.Customers)
	for i := 1; i <= cfg.Customers; i++ {
		id := fmt.Sprintf("CUST%04d", i)
		index[id] = len(rows)
		rows = append(rows, syntheticRow(rng, id, cfg))
	}

	log.Info("synthetic source ready",
		zap.Int64("seed", cfg.Seed),
		zap.Int("customers", len(rows)),
	)
	return &Synthetic{seed: cfg.Seed, rows: rows, index: index, log: log}, nil
}

func syntheticRow(rng *rand.Rand, id string, cfg config.SyntheticConfig) model.Row {
	if rng.Float64() < cfg.NewCustomerRate {
		cy := uniform(rng, 1_000, 40_000)
		return model.NewRow(id, roundCents(cy), decimal.Zero)
	}

	py := uniform(rng, 10_000, 250_000)
	m := rng.NormFloat64()*movementStdDev - cfg.DeclineBias
	m = math.Max(-movementClamp, math.Min(movementClamp, m))
	cy := math.Max(500, py*(1+m))
	return model.NewRow(id, roundCents(cy), roundCents(py))
}

func (s *Synthetic) Name() string { return config.ModeSynthetic }

func (s *Synthetic) FetchRows(ctx context.Context, filter *dto.RowFilter) ([]model.Row, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, apperror.NewDataUnavailable("fetch rows", err)
	}
	if filter != nil && filter.CustomerID != "" {
		i, ok := s.index[filter.CustomerID]
		if !ok {
			return []model.Row{}, 0, nil
		}
		return []model.Row{s.rows[i]}, 0, nil
	}

	out := make([]model.Row, len(s.rows))
	copy(out, s.rows)
	return out, 0, nil
}

func (s *Synthetic) FetchDetails(ctx context.Context, customerID string) ([]model.DetailRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.NewDataUnavailable("fetch details", err)
	}
	i, ok := s.index[customerID]
	if !ok {
		return nil, apperror.NewNotFound("customer", customerID)
	}
	return generateDetails(customerSeed(s.seed, customerID), s.rows[i]), nil
}

func (s *Synthetic) Close() error { return nil }

// customerSeed derives an independent, stable stream per customer so details do
// not depend on the order customers are requested in.
func customerSeed(seed int64, customerID string) int64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(seed))
	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(customerID)
	return int64(d.Sum64())
}

type synthLine struct {
	category   string
	inCY, inPY bool
	cyPrice    float64
	pyPrice    float64
	margin     float64
	returnRate [2]float64
	weight     [2]float64
	weeks      []int
}

type synthCell struct {
	line   *synthLine
	week   int
	branch string
	weight float64
}

var periods = [2]model.Period{model.PeriodCurrent, model.PeriodPrior}

// generateDetails spreads the row's net sales over category lines, branches and
// weeks. Each period's net amounts are allocated to the cent, so the details
// roll up to exactly the row.
func generateDetails(seed int64, row model.Row) []model.DetailRecord {
	rng := rand.New(rand.NewSource(seed))

	branches := pick(rng, branchNames, 1+rng.Intn(4))
	categories := pick(rng, categoryNames, 3+rng.Intn(4))

	lines := make([]*synthLine, len(categories))
	for i, c := range categories {
		l := &synthLine{
			category: c,
			inCY:     true,
			inPY:     true,
			pyPrice:  uniform(rng, 5, 200),
			margin:   uniform(rng, 0.14, 0.24),
			weeks:    pickWeeks(rng, 4+rng.Intn(9)),
		}
		l.cyPrice = l.pyPrice * (1 + uniform(rng, -0.05, 0.08))
		for p := range periods {
			l.returnRate[p] = uniform(rng, 0.01, 0.04)
			l.weight[p] = uniform(rng, 0.5, 1.5)
		}
		switch r := rng.Float64(); {
		case i == 0:
			// keep one continuing line so both periods always have somewhere to land
		case r < 0.12:
			l.inCY = false
		case r < 0.24:
			l.inPY = false
		}
		lines[i] = l
	}

	var out []model.DetailRecord
	targets := [2]int64{toCents(row.CYSales), toCents(row.PYSales)}
	for p, period := range periods {
		var cells []synthCell
		for _, l := range lines {
			if (p == 0 && !l.inCY) || (p == 1 && !l.inPY) {
				continue
			}
			for _, w := range l.weeks {
				season := 1 + 0.25*math.Sin(float64(w)/2.8)
				cells = append(cells, synthCell{
					line:   l,
					week:   w,
					branch: branches[rng.Intn(len(branches))],
					weight: l.weight[p] * season * uniform(rng, 0.85, 1.15),
				})
			}
		}

		weights := make([]float64, len(cells))
		for i, c := range cells {
			weights[i] = c.weight
		}
		for i, net := range allocateCents(targets[p], weights) {
			if net == 0 {
				continue
			}
			out = append(out, detailRecord(row.CustomerID, period, p, cells[i], net))
		}
	}
	return out
}

func detailRecord(customerID string, period model.Period, p int, c synthCell, netCents int64) model.DetailRecord {
	l := c.line
	rate := l.returnRate[p]
	price := l.cyPrice
	if period == model.PeriodPrior {
		price = l.pyPrice
	}

	retCents := int64(math.Round(float64(netCents) * rate / (1 - rate)))
	grossCents := netCents + retCents
	units := math.Max(1, math.Round(float64(grossCents)/100/price))
	costCents := int64(math.Round(float64(grossCents) * (1 - l.margin)))

	return model.DetailRecord{
		CustomerID:  customerID,
		Branch:      c.branch,
		Category:    l.category,
		Week:        c.week,
		Period:      period,
		Units:       decimal.NewFromFloat(units),
		Sales:       fromCents(grossCents),
		ReturnUnits: decimal.NewFromFloat(math.Round(units * rate)),
		ReturnValue: fromCents(retCents),
		Cost:        fromCents(costCents),
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func pick(rng *rand.Rand, from []string, n int) []string {
	if n > len(from) {
		n = len(from)
	}
	out := make([]string, n)
	for i, j := range rng.Perm(len(from))[:n] {
		out[i] = from[j]
	}
	return out
}

func pickWeeks(rng *rand.Rand, n int) []int {
	perm := rng.Perm(52)[:n]
	weeks := make([]int, n)
	for i, w := range perm {
		weeks[i] = w + 1
	}
	return weeks
}
