package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/devicehub/internal/dashboard"
	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboardFixture(t *testing.T) (*DashboardService, *memStore, *recordingCache) {
	t.Helper()
	store := newMemStore()
	c := &recordingCache{}
	refresher := dashboard.NewRefresher(
		dashboard.NewLoader(store, 0, 0),
		dashboard.NewComposer(nil),
		c,
		0,
		dashboard.WithClock(fixedClock),
	)
	return NewDashboardService(refresher, c, metrics.NewRecorder()), store, c
}

func TestDashboardService_GetDashboard(t *testing.T) {
	svc, store, c := newDashboardFixture(t)
	store.addDevice(domain.Device{IMEISerial: "SN000001", Brand: "Apple", Model: "iPhone 13"})
	store.addGadget(domain.Gadget{Brand: "Anker", Model: "Charger", Quantity: 3})
	store.sales["s1"] = &domain.Sale{ID: "s1", ItemDescription: "Apple iPhone 12", Price: decimal.NewFromInt(10), DateSold: testNow.Add(-time.Hour)}

	view, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, view.Stats.TotalDevices)
	assert.Equal(t, 3, view.Stats.TotalGadgets)
	assert.Equal(t, 1, view.Stats.WeeklySales)
	assert.Equal(t, testNow, view.GeneratedAt)
	require.NotNil(t, c.view, "fresh view is published to the cache")

	calls := len(store.calls)
	cached, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Same(t, c.view, cached)
	assert.Len(t, store.calls, calls, "cache hit does not touch the store")
}

func TestDashboardService_FallsBackToLastView(t *testing.T) {
	svc, store, c := newDashboardFixture(t)

	first, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.InvalidateAll(context.Background()))
	svc.refresher.Invalidate()
	store.fail["ListSales"] = errors.New("db down")

	view, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, view)
}

func TestDashboardService_NoViewYet(t *testing.T) {
	svc, store, c := newDashboardFixture(t)
	c.getErr = errors.New("redis gone")
	store.fail["ListGadgets"] = errors.New("db down")

	_, err := svc.GetDashboard(context.Background())
	assert.ErrorContains(t, err, "building dashboard")
}

func TestDashboardService_ServesInstalledViewUntilWrite(t *testing.T) {
	store := newMemStore()
	refresher := dashboard.NewRefresher(dashboard.NewLoader(store, 0, 0), dashboard.NewComposer(nil), nil, 0, dashboard.WithClock(fixedClock))
	svc := NewDashboardService(refresher, nil, metrics.NewRecorder())
	inventory := NewInventoryService(store, WithClock(fixedClock), WithDashboardRefresher(refresher))

	first, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Zero(t, first.Stats.TotalGadgets)

	calls := len(store.calls)
	again, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Len(t, store.calls, calls, "no write, no reload")

	_, err = inventory.AddGadget(context.Background(), domain.AddGadgetForm{Brand: "Anker", Model: "Charger", Quantity: 4})
	require.NoError(t, err)

	view, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, view.Stats.TotalGadgets)
}
