package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/devicehub/internal/cache"
	"github.com/andresuchdata/devicehub/internal/dashboard"
	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/metrics"
	"github.com/rs/zerolog/log"
)

type DashboardService struct {
	refresher *dashboard.Refresher
	cache     cache.DashboardCache
	metrics   *metrics.Recorder
}

func NewDashboardService(refresher *dashboard.Refresher, c cache.DashboardCache, rec *metrics.Recorder) *DashboardService {
	if c == nil {
		c = cache.NewNoopDashboardCache()
	}
	return &DashboardService{refresher: refresher, cache: c, metrics: rec}
}

// GetDashboard serves the cached view when there is one, then the refresher's
// view if no write has invalidated it, and only then recomputes. Cache failures
// are logged and treated as a miss.
func (s *DashboardService) GetDashboard(ctx context.Context) (*domain.DashboardView, error) {
	view, ok, err := s.cache.GetDashboard(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read dashboard cache")
	}
	s.metrics.CacheLookup(ok && err == nil)
	if err == nil && ok {
		return view, nil
	}

	if view, ok := s.refresher.Current(); ok {
		return view, nil
	}

	view, err = s.refresher.Refresh(ctx)
	if err != nil {
		if stale, ok := s.refresher.Latest(); ok {
			log.Warn().Err(err).Msg("dashboard refresh failed, serving last good view")
			return stale, nil
		}
		return nil, fmt.Errorf("building dashboard: %w", err)
	}
	return view, nil
}
