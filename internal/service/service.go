// Package service holds the use cases behind the HTTP API: inventory intake,
// sales, loans, warranties and the dashboard.
package service

import (
	"context"
	"time"

	"github.com/andresuchdata/devicehub/internal/cache"
	"github.com/andresuchdata/devicehub/internal/metrics"
	"github.com/andresuchdata/devicehub/internal/repository"
	"github.com/rs/zerolog/log"
)

// Invalidator is told when a write makes the computed dashboard stale.
type Invalidator interface {
	Invalidate()
}

type deps struct {
	store   repository.Store
	cache   cache.DashboardCache
	stale   Invalidator
	metrics *metrics.Recorder
	now     func() time.Time
}

type Option func(*deps)

func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

func WithMetrics(rec *metrics.Recorder) Option {
	return func(d *deps) { d.metrics = rec }
}

// WithDashboardCache lets writes drop the cached dashboard view.
func WithDashboardCache(c cache.DashboardCache) Option {
	return func(d *deps) { d.cache = c }
}

// WithDashboardRefresher lets writes mark the refresher's in-memory view stale.
func WithDashboardRefresher(inv Invalidator) Option {
	return func(d *deps) { d.stale = inv }
}

func newDeps(store repository.Store, opts []Option) deps {
	d := deps{store: store, now: time.Now}
	for _, opt := range opts {
		opt(&d)
	}
	if d.cache == nil {
		d.cache = cache.NewNoopDashboardCache()
	}
	return d
}

func (d *deps) invalidateDashboard(ctx context.Context) {
	if d.stale != nil {
		d.stale.Invalidate()
	}
	if err := d.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
