package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/repository"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWindowDays        = 60
	DefaultLowStockThreshold = 3
)

// Source is the slice of the store the dashboard reads.
type Source interface {
	ListDevices(ctx context.Context, filter repository.DeviceFilter) ([]domain.Device, error)
	ListGadgets(ctx context.Context) ([]domain.Gadget, error)
	ListSales(ctx context.Context, since time.Time) ([]domain.Sale, error)
	ListLowStockAlerts(ctx context.Context, threshold int) ([]domain.LowStockAlert, error)
}

// Loader fetches a Snapshot. WindowDays must cover two months for the
// previous-month comparison to see any data.
type Loader struct {
	src               Source
	windowDays        int
	lowStockThreshold int
}

func NewLoader(src Source, windowDays, lowStockThreshold int) *Loader {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Loader{src: src, windowDays: windowDays, lowStockThreshold: lowStockThreshold}
}

// Load runs the four fetches concurrently. The first failure cancels the
// rest and no partial snapshot is returned.
func (l *Loader) Load(ctx context.Context, now time.Time) (Snapshot, error) {
	var s Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		devices, err := l.src.ListDevices(gctx, repository.DeviceFilter{Status: domain.DeviceAvailable})
		if err != nil {
			return fmt.Errorf("loading devices: %w", err)
		}
		s.Devices = devices
		return nil
	})
	g.Go(func() error {
		gadgets, err := l.src.ListGadgets(gctx)
		if err != nil {
			return fmt.Errorf("loading gadgets: %w", err)
		}
		s.Gadgets = gadgets
		return nil
	})
	g.Go(func() error {
		sales, err := l.src.ListSales(gctx, now.AddDate(0, 0, -l.windowDays))
		if err != nil {
			return fmt.Errorf("loading sales: %w", err)
		}
		s.Sales = sales
		return nil
	})
	g.Go(func() error {
		rows, err := l.src.ListLowStockAlerts(gctx, l.lowStockThreshold)
		if err != nil {
			return fmt.Errorf("loading low stock alerts: %w", err)
		}
		s.LowStock = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
