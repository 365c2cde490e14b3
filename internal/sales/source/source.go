// Package source holds the two interchangeable sales.Source adapters: a seeded
// synthetic generator and the ClickHouse warehouse reader.
package source

import (
	"context"

	"github.com/fekuna/omnipos-salesinsight-service/config"
	"github.com/fekuna/omnipos-salesinsight-service/internal/apperror"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales"
)

var (
	_ sales.Source = (*Synthetic)(nil)
	_ sales.Source = (*ClickHouse)(nil)
)

// New builds the source selected by cfg.Source.Mode. The mode is fixed for the
// lifetime of the returned source.
func New(ctx context.Context, cfg *config.Config, log logger.ZapLogger) (sales.Source, error) {
	switch cfg.Source.Mode {
	case config.ModeSynthetic:
		s, err := NewSynthetic(cfg.Synthetic, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.ModeLive:
		c, err := NewClickHouse(ctx, cfg.ClickHouse, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, &apperror.ConfigError{Problems: []string{"unknown DATA_MODE " + cfg.Source.Mode}}
	}
}
