package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andresuchdata/devicehub/internal/analytics"
	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type fakeSource struct {
	mu sync.Mutex

	devices  []domain.Device
	gadgets  []domain.Gadget
	sales    []domain.Sale
	lowStock []domain.LowStockAlert

	salesErr    error
	blockGadget bool
	salesGate   *gate

	since     time.Time
	threshold int
	filter    repository.DeviceFilter
	calls     int
}

func (f *fakeSource) ListDevices(_ context.Context, filter repository.DeviceFilter) ([]domain.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	f.calls++
	return f.devices, nil
}

func (f *fakeSource) ListGadgets(ctx context.Context) ([]domain.Gadget, error) {
	f.mu.Lock()
	block := f.blockGadget
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.gadgets, nil
}

func (f *fakeSource) ListSales(_ context.Context, since time.Time) ([]domain.Sale, error) {
	f.mu.Lock()
	g := f.salesGate
	f.salesGate = nil
	f.mu.Unlock()
	if g != nil {
		close(g.entered)
		<-g.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = since
	if f.salesErr != nil {
		return nil, f.salesErr
	}
	return f.sales, nil
}

func (f *fakeSource) ListLowStockAlerts(_ context.Context, threshold int) ([]domain.LowStockAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threshold = threshold
	return f.lowStock, nil
}

// gate parks the next ListSales call until release is closed.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func (f *fakeSource) setSalesErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.salesErr = err
}

type chanPublisher struct {
	views chan *domain.DashboardView
	err   error
}

func (p *chanPublisher) SetDashboard(_ context.Context, view *domain.DashboardView) error {
	select {
	case p.views <- view:
	default:
	}
	return p.err
}

func seededSource(now time.Time) *fakeSource {
	return &fakeSource{
		devices: []domain.Device{
			{Status: domain.DeviceAvailable},
			{Status: domain.DeviceAvailable},
			{Status: domain.DeviceSold},
			{Status: domain.DeviceLoaned},
		},
		gadgets: []domain.Gadget{{Quantity: 4}, {Quantity: 0}, {Quantity: 7}},
		sales: []domain.Sale{
			{ItemDescription: "Apple iPhone 15", Price: decimal.NewFromInt(100000), DateSold: now.Add(-2 * time.Hour)},
			{ItemDescription: "Samsung Galaxy", Price: decimal.NewFromInt(75000), DateSold: now.AddDate(0, 0, -9)},
		},
		lowStock: []domain.LowStockAlert{
			{Type: "gadget", Brand: "Anker", Model: "PowerCore", StockCount: 2},
			{Type: "device", Brand: "Tecno", Model: "Spark 20", StockCount: 1},
			{Type: "device", Brand: "Apple", Model: "iPhone 13", StockCount: 1},
			{Type: "gadget", Brand: "Oraimo", Model: "FreePods", StockCount: 0},
		},
	}
}

func TestCompose(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	src := seededSource(now)
	c := NewComposer(analytics.NewAggregator(analytics.DefaultConfig()))

	view := c.Compose(Snapshot{Devices: src.devices, Gadgets: src.gadgets, Sales: src.sales, LowStock: src.lowStock}, now)

	assert.Equal(t, 2, view.Stats.TotalDevices)
	assert.Equal(t, 11, view.Stats.TotalGadgets)
	assert.Equal(t, 1, view.Stats.WeeklySales)
	assert.Equal(t, 1, view.Stats.PreviousWeeklySales)
	assert.Equal(t, 2, view.Stats.MonthlySales)
	assert.Equal(t, 0.0, view.Stats.WeeklyTrend)
	assert.Equal(t, now, view.GeneratedAt)
	assert.Len(t, view.DailySales, 2)
	assert.Len(t, view.BrandSales, 2)
	assert.Len(t, view.WeeklyPerformance, 7)

	require.Len(t, view.StockAlerts, 4)
	assert.Equal(t, "Oraimo", view.StockAlerts[0].Brand)
	assert.Equal(t, domain.SeverityCritical, view.StockAlerts[0].Severity)
	assert.Equal(t, "Apple", view.StockAlerts[1].Brand)
	assert.Equal(t, "Tecno", view.StockAlerts[2].Brand)
	assert.Equal(t, domain.SeverityCritical, view.StockAlerts[2].Severity)
	assert.Equal(t, "Anker", view.StockAlerts[3].Brand)
	assert.Equal(t, domain.SeverityWarning, view.StockAlerts[3].Severity)
}

func TestCompose_Empty(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	view := NewComposer(nil).Compose(Snapshot{}, now)

	assert.Zero(t, view.Stats.TotalDevices)
	assert.Zero(t, view.Stats.TotalGadgets)
	assert.Empty(t, view.DailySales)
	assert.Empty(t, view.BrandSales)
	assert.NotNil(t, view.StockAlerts)
	assert.Len(t, view.WeeklyPerformance, 7)
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, domain.SeverityCritical, Severity(0))
	assert.Equal(t, domain.SeverityCritical, Severity(1))
	assert.Equal(t, domain.SeverityWarning, Severity(2))
	assert.Equal(t, domain.SeverityWarning, Severity(5))
}

func TestLoader_Load(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	t.Run("fetches every source", func(t *testing.T) {
		src := seededSource(now)
		snap, err := NewLoader(src, 60, 5).Load(context.Background(), now)
		require.NoError(t, err)

		assert.Len(t, snap.Devices, 4)
		assert.Len(t, snap.Gadgets, 3)
		assert.Len(t, snap.Sales, 2)
		assert.Len(t, snap.LowStock, 4)
		assert.Equal(t, now.AddDate(0, 0, -60), src.since)
		assert.Equal(t, 5, src.threshold)
		assert.Equal(t, domain.DeviceAvailable, src.filter.Status)
	})

	t.Run("defaults", func(t *testing.T) {
		src := seededSource(now)
		_, err := NewLoader(src, 0, 0).Load(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, now.AddDate(0, 0, -DefaultWindowDays), src.since)
		assert.Equal(t, DefaultLowStockThreshold, src.threshold)
	})

	t.Run("one failure fails the whole load", func(t *testing.T) {
		src := seededSource(now)
		src.salesErr = errBoom
		src.blockGadget = true

		snap, err := NewLoader(src, 60, 5).Load(context.Background(), now)
		require.Error(t, err)
		assert.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "loading sales")
		assert.Equal(t, Snapshot{}, snap)
	})
}

func TestRefresher_Refresh(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	src := seededSource(now)
	pub := &chanPublisher{views: make(chan *domain.DashboardView, 4)}
	r := NewRefresher(NewLoader(src, 60, 3), NewComposer(nil), pub, time.Minute, WithClock(func() time.Time { return now }))

	_, ok := r.Latest()
	assert.False(t, ok)

	view, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, view.Stats.TotalDevices)
	assert.Same(t, view, <-pub.views)

	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Same(t, view, latest)

	t.Run("failure keeps the previous view", func(t *testing.T) {
		src.setSalesErr(errBoom)
		_, err := r.Refresh(context.Background())
		require.ErrorIs(t, err, errBoom)

		kept, ok := r.Latest()
		require.True(t, ok)
		assert.Same(t, view, kept)
		assert.Empty(t, pub.views)
	})

	t.Run("publish failure still updates the view", func(t *testing.T) {
		src.setSalesErr(nil)
		pub.err = errBoom
		fresh, err := r.Refresh(context.Background())
		require.NoError(t, err)
		<-pub.views

		latest, _ := r.Latest()
		assert.Same(t, fresh, latest)
	})
}

func TestRefresher_SlowCycleDoesNotReplaceNewerView(t *testing.T) {
	ctx := context.Background()
	older := time.Date(2025, 6, 30, 12, 1, 0, 0, time.UTC)
	newer := older.Add(time.Minute)
	var ticks atomic.Int32
	clock := func() time.Time {
		if ticks.Add(1) == 1 {
			return older
		}
		return newer
	}

	src := seededSource(older)
	g := newGate()
	src.salesGate = g
	pub := &chanPublisher{views: make(chan *domain.DashboardView, 4)}
	r := NewRefresher(NewLoader(src, 60, 3), NewComposer(nil), pub, time.Minute, WithClock(clock))

	slow := make(chan *domain.DashboardView, 1)
	go func() {
		view, err := r.Refresh(ctx)
		assert.NoError(t, err)
		slow <- view
	}()
	<-g.entered

	// a write lands while the first cycle is still loading
	r.Invalidate()
	fresh, err := r.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer, fresh.GeneratedAt)
	assert.Same(t, fresh, <-pub.views)

	close(g.release)
	assert.Same(t, fresh, <-slow, "the slow cycle hands back the newer view")

	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, newer, latest.GeneratedAt)
	current, ok := r.Current()
	require.True(t, ok)
	assert.Same(t, fresh, current)
	assert.Empty(t, pub.views, "the older view is never published")
}

func TestRefresher_InvalidatedCycleIsNotPublished(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	src := seededSource(now)
	g := newGate()
	src.salesGate = g
	pub := &chanPublisher{views: make(chan *domain.DashboardView, 4)}
	r := NewRefresher(NewLoader(src, 60, 3), NewComposer(nil), pub, time.Minute, WithClock(func() time.Time { return now }))

	done := make(chan error, 1)
	go func() {
		_, err := r.Refresh(ctx)
		done <- err
	}()
	<-g.entered
	r.Invalidate()
	close(g.release)
	require.NoError(t, <-done)

	_, ok := r.Latest()
	assert.True(t, ok, "the view is kept as a fallback")
	_, ok = r.Current()
	assert.False(t, ok, "but it predates the write")
	assert.Empty(t, pub.views)

	view, err := r.Refresh(ctx)
	require.NoError(t, err)
	assert.Same(t, view, <-pub.views)
	current, ok := r.Current()
	require.True(t, ok)
	assert.Same(t, view, current)
}

func TestRefresher_RunStopsOnCancel(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	src := seededSource(now)
	pub := &chanPublisher{views: make(chan *domain.DashboardView, 16)}
	r := NewRefresher(NewLoader(src, 60, 3), NewComposer(nil), pub, 5*time.Millisecond, WithClock(func() time.Time { return now }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// one immediate cycle plus at least one tick
	for i := 0; i < 2; i++ {
		select {
		case <-pub.views:
		case <-time.After(2 * time.Second):
			t.Fatal("refresher did not publish")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop after cancel")
	}
}

func TestNewRefresher_DefaultInterval(t *testing.T) {
	r := NewRefresher(nil, nil, nil, 0)
	assert.Equal(t, DefaultRefreshInterval, r.interval)
}
