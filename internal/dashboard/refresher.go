package dashboard

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const DefaultRefreshInterval = 5 * time.Minute

// Publisher receives every freshly composed view, typically the dashboard cache.
type Publisher interface {
	SetDashboard(ctx context.Context, view *domain.DashboardView) error
}

// Refresher recomputes the dashboard on an interval and remembers the last
// good view. A failed cycle leaves the previous view in place.
//
// Concurrent refreshes for the same generation share one load. Views are
// installed in GeneratedAt order, so a slow cycle never replaces a newer view,
// and only a view loaded in the current generation is published.
type Refresher struct {
	loader    *Loader
	composer  *Composer
	publisher Publisher
	interval  time.Duration
	now       func() time.Time
	metrics   *metrics.Recorder

	group singleflight.Group
	pubMu sync.Mutex

	mu       sync.RWMutex
	latest   *domain.DashboardView
	gen      uint64
	latestAt uint64
}

type RefresherOption func(*Refresher)

func WithClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) { r.now = now }
}

func WithMetrics(rec *metrics.Recorder) RefresherOption {
	return func(r *Refresher) { r.metrics = rec }
}

func NewRefresher(loader *Loader, composer *Composer, publisher Publisher, interval time.Duration, opts ...RefresherOption) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	r := &Refresher{
		loader:    loader,
		composer:  composer,
		publisher: publisher,
		interval:  interval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh runs one load/compose/publish cycle, or joins the one already
// running for the current generation. It returns the newest installed view,
// which may be newer than the one this cycle composed.
func (r *Refresher) Refresh(ctx context.Context) (*domain.DashboardView, error) {
	r.mu.RLock()
	gen := r.gen
	r.mu.RUnlock()

	v, err, _ := r.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		return r.refresh(ctx, gen)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.DashboardView), nil
}

func (r *Refresher) refresh(ctx context.Context, gen uint64) (*domain.DashboardView, error) {
	start := time.Now()
	now := r.now()

	snapshot, err := r.loader.Load(ctx, now)
	r.metrics.ObserveRefresh(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	view := r.composer.Compose(snapshot, now)

	r.pubMu.Lock()
	defer r.pubMu.Unlock()

	r.mu.Lock()
	if r.latest != nil && view.GeneratedAt.Before(r.latest.GeneratedAt) {
		newer := r.latest
		r.mu.Unlock()
		log.Debug().Time("generated_at", view.GeneratedAt).Msg("discarding dashboard view older than the installed one")
		return newer, nil
	}
	r.latest = &view
	r.latestAt = gen
	current := gen == r.gen
	r.mu.Unlock()

	if r.publisher != nil && current {
		if err := r.publisher.SetDashboard(ctx, &view); err != nil {
			log.Warn().Err(err).Msg("failed to publish dashboard view")
		}
	}
	return &view, nil
}

// Invalidate marks the installed view stale after a write. The next Refresh
// starts a new load instead of joining one that began before the write. It
// waits for an in-flight publish, so a cache delete issued afterwards wins.
func (r *Refresher) Invalidate() {
	r.pubMu.Lock()
	defer r.pubMu.Unlock()
	r.mu.Lock()
	r.gen++
	r.mu.Unlock()
}

// Current returns the installed view when nothing invalidated it since its
// load began.
func (r *Refresher) Current() (*domain.DashboardView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil || r.latestAt != r.gen {
		return nil, false
	}
	return r.latest, true
}

// Latest returns the last successfully composed view, stale or not.
func (r *Refresher) Latest() (*domain.DashboardView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.latest != nil
}

// Run refreshes immediately and then on every tick until ctx is cancelled.
// It always returns ctx.Err().
func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", r.interval).Msg("dashboard refresher started")
	r.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("dashboard refresher stopped")
			return ctx.Err()
		case <-ticker.C:
			r.cycle(ctx)
		}
	}
}

func (r *Refresher) cycle(ctx context.Context) {
	if _, err := r.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Msg("dashboard refresh failed, keeping previous view")
	}
}
