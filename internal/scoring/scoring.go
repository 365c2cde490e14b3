// Package scoring ranks customers by a composite priority score built from three
// independently normalized components: absolute movement, percentage movement and
// strategic importance (prior-year revenue share).
package scoring

import (
	"fmt"
	"math"

	"github.com/fekuna/omnipos-salesinsight-service/internal/apperror"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/shopspring/decimal"
)

const weightTolerance = 1e-9

// Weights is a convex combination over the three components.
type Weights struct {
	Absolute   float64
	Percentage float64
	Strategic  float64
}

func DefaultWeights() Weights {
	return Weights{Absolute: 0.5, Percentage: 0.3, Strategic: 0.2}
}

func (w Weights) Validate() error {
	if w.Absolute < 0 || w.Percentage < 0 || w.Strategic < 0 {
		return apperror.InvalidInput("score weights must be non-negative, got %+v", w)
	}
	sum := w.Absolute + w.Percentage + w.Strategic
	if math.Abs(sum-1) > weightTolerance {
		return apperror.InvalidInput("score weights must sum to 1, got %.6f", sum)
	}
	return nil
}

type Direction int

const (
	// Decline scores negative movement; the decliners view.
	Decline Direction = iota
	// Growth scores positive movement; the growers view.
	Growth
)

func (d Direction) String() string {
	if d == Growth {
		return "growth"
	}
	return "decline"
}

type Engine struct {
	weights   Weights
	direction Direction
}

func NewEngine(w Weights, dir Direction) (*Engine, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("new scoring engine: %w", err)
	}
	return &Engine{weights: w, direction: dir}, nil
}

func (e *Engine) Direction() Direction { return e.direction }

// Scorer holds the set-wide normalizers for one row set.
type Scorer struct {
	weights     Weights
	direction   Direction
	maxMovement decimal.Decimal
	totalPY     decimal.Decimal
}

// Prepare captures the largest movement and the prior-year total across the full set.
// Rows must be the complete set, not a filtered view, or normalization shifts.
func (e *Engine) Prepare(rows []model.Row) *Scorer {
	s := &Scorer{weights: e.weights, direction: e.direction}
	for _, r := range rows {
		if m := movement(e.direction, r); m.GreaterThan(s.maxMovement) {
			s.maxMovement = m
		}
		s.totalPY = s.totalPY.Add(r.PYSales)
	}
	return s
}

// Score scores every row against the set itself, preserving input order.
func (e *Engine) Score(rows []model.Row) []model.ScoredRow {
	s := e.Prepare(rows)
	out := make([]model.ScoredRow, len(rows))
	for i, r := range rows {
		out[i] = s.ScoreRow(r)
	}
	return out
}

func (s *Scorer) ScoreRow(r model.Row) model.ScoredRow {
	c := model.Components{
		Absolute:   s.absolute(r),
		Percentage: s.percentage(r),
		Strategic:  s.strategic(r),
	}
	score := s.weights.Absolute*c.Absolute + s.weights.Percentage*c.Percentage + s.weights.Strategic*c.Strategic
	return model.ScoredRow{Row: r, Score: clamp01(score), Components: c}
}

func (s *Scorer) absolute(r model.Row) float64 {
	if !s.maxMovement.IsPositive() {
		return 0
	}
	return movement(s.direction, r).Div(s.maxMovement).InexactFloat64()
}

// percentage is the pct movement in the scored direction, capped at 1.
// Rows without prior-year sales have no defined pct and contribute 0.
func (s *Scorer) percentage(r model.Row) float64 {
	pct := r.YoYPct()
	if !pct.Valid {
		return 0
	}
	v := pct.Decimal
	if s.direction == Decline {
		v = v.Neg()
	}
	if !v.IsPositive() {
		return 0
	}
	return math.Min(v.InexactFloat64(), 1)
}

func (s *Scorer) strategic(r model.Row) float64 {
	if !s.totalPY.IsPositive() {
		return 0
	}
	return r.PYSales.Div(s.totalPY).InexactFloat64()
}

func movement(dir Direction, r model.Row) decimal.Decimal {
	delta := r.YoYDelta()
	if dir == Decline {
		delta = delta.Neg()
	}
	if delta.IsPositive() {
		return delta
	}
	return decimal.Zero
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
