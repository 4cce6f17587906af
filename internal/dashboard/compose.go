// Package dashboard assembles the dashboard view from a snapshot of the store
// and keeps a fresh copy published on an interval.
package dashboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/andresuchdata/devicehub/internal/analytics"
	"github.com/andresuchdata/devicehub/internal/domain"
)

// CriticalStockLevel is the highest stock count rendered as critical.
const CriticalStockLevel = 1

// Snapshot is everything one dashboard computation reads.
type Snapshot struct {
	Devices  []domain.Device
	Gadgets  []domain.Gadget
	Sales    []domain.Sale
	LowStock []domain.LowStockAlert
}

type Composer struct {
	agg *analytics.Aggregator
}

func NewComposer(agg *analytics.Aggregator) *Composer {
	if agg == nil {
		agg = analytics.NewAggregator(analytics.DefaultConfig())
	}
	return &Composer{agg: agg}
}

// Compose is a pure function of the snapshot and now.
func (c *Composer) Compose(s Snapshot, now time.Time) domain.DashboardView {
	stats := c.agg.Stats(s.Sales, now)
	stats.TotalDevices = AvailableDevices(s.Devices)
	stats.TotalGadgets = GadgetUnits(s.Gadgets)

	return domain.DashboardView{
		Stats:             stats,
		DailySales:        c.agg.DailySeries(s.Sales),
		BrandSales:        c.agg.BrandSeries(s.Sales),
		WeeklyPerformance: c.agg.WeekdayHistogram(s.Sales),
		StockAlerts:       StockAlerts(s.LowStock),
		GeneratedAt:       now,
	}
}

// AvailableDevices counts devices currently on the shelf.
func AvailableDevices(devices []domain.Device) int {
	n := 0
	for i := range devices {
		if devices[i].Status == domain.DeviceAvailable {
			n++
		}
	}
	return n
}

// GadgetUnits sums gadget quantities.
func GadgetUnits(gadgets []domain.Gadget) int {
	n := 0
	for i := range gadgets {
		n += gadgets[i].Quantity
	}
	return n
}

// Severity grades a low-stock row.
func Severity(stock int) string {
	if stock <= CriticalStockLevel {
		return domain.SeverityCritical
	}
	return domain.SeverityWarning
}

// StockAlerts grades low-stock rows, lowest stock first.
func StockAlerts(rows []domain.LowStockAlert) []domain.StockAlert {
	alerts := make([]domain.StockAlert, 0, len(rows))
	for _, row := range rows {
		alerts = append(alerts, domain.StockAlert{LowStockAlert: row, Severity: Severity(row.StockCount)})
	}
	slices.SortStableFunc(alerts, func(a, b domain.StockAlert) int {
		return cmp.Or(
			cmp.Compare(a.StockCount, b.StockCount),
			cmp.Compare(a.Brand, b.Brand),
			cmp.Compare(a.Model, b.Model),
		)
	})
	return alerts
}
