package statsbuilder

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/wordle-stats-bot/internal/chart"
	"github.com/kapu/wordle-stats-bot/internal/config"
	stats "github.com/kapu/wordle-stats-bot/internal/service/stats"
	"github.com/kapu/wordle-stats-bot/internal/statscache"
)

type Deps struct {
	Service  *stats.Service
	Repo     stats.Repository
	Cache    *statscache.Cache
	Renderer chart.BarRenderer
}

// New wires the results store, aggregate cache, stats service and chart
// renderer. Redis is optional; Postgres is not.
func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the results store")
	}
	repo, err := stats.NewPostgresRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("init results store: %w", err)
	}

	var cache *statscache.Cache
	if strings.TrimSpace(cfg.RedisURL) != "" {
		cache, err = statscache.NewFromURL(cfg.RedisURL, time.Duration(cfg.CacheTTLSec)*time.Second)
		if err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("init cache: %w", err)
		}
	} else {
		logger.Warn("stats_cache_disabled", zap.String("reason", "REDIS_URL not set"))
	}

	service := stats.NewService(repo, stats.Config{LuckMinAttempts: cfg.LuckMinAttempts}, logger)

	return &Deps{
		Service:  service,
		Repo:     repo,
		Cache:    cache,
		Renderer: chart.NewSVGBarRenderer(),
	}, nil
}

func (d *Deps) Close() {
	if d == nil {
		return
	}
	if d.Cache != nil {
		_ = d.Cache.Close()
	}
	if d.Repo != nil {
		_ = d.Repo.Close()
	}
}
