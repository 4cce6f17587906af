package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/devicehub/internal/analytics"
	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/format"
	"github.com/andresuchdata/devicehub/internal/records"
	"github.com/andresuchdata/devicehub/internal/repository"
	"github.com/andresuchdata/devicehub/internal/warranty"
	"github.com/rs/zerolog/log"
)

const DefaultSalesListDays = 90

type SalesService struct {
	deps
	agg      *analytics.Aggregator
	listDays int
}

func NewSalesService(store repository.Store, agg *analytics.Aggregator, listDays int, opts ...Option) *SalesService {
	if agg == nil {
		agg = analytics.NewAggregator(analytics.DefaultConfig())
	}
	if listDays <= 0 {
		listDays = DefaultSalesListDays
	}
	return &SalesService{deps: newDeps(store, opts), agg: agg, listDays: listDays}
}

// soldItem is the inventory side of a sale resolved before anything is written.
type soldItem struct {
	device      *domain.Device
	gadget      *domain.Gadget
	quantity    int
	description string
}

func (s *SalesService) resolveItem(ctx context.Context, form domain.CreateSaleForm) (*soldItem, error) {
	switch form.ItemType {
	case domain.ItemTypeDevice:
		device, err := s.store.GetDevice(ctx, form.ItemID)
		if err != nil {
			return nil, fmt.Errorf("looking up device: %w", err)
		}
		if device.Status != domain.DeviceAvailable {
			return nil, fmt.Errorf("device %s is %s: %w", device.IMEISerial, device.Status, domain.ErrItemUnavailable)
		}
		return &soldItem{
			device:      device,
			quantity:    1,
			description: records.ItemDescription(device.Brand, device.Model, device.Capacity, device.Color),
		}, nil

	default:
		gadget, err := s.store.GetGadget(ctx, form.ItemID)
		if err != nil {
			return nil, fmt.Errorf("looking up gadget: %w", err)
		}
		qty := form.GadgetQuantity
		if qty <= 0 {
			qty = 1
		}
		if gadget.Quantity < qty {
			return nil, fmt.Errorf("%d requested, %d in stock: %w", qty, gadget.Quantity, domain.ErrInsufficientStock)
		}
		return &soldItem{
			gadget:      gadget,
			quantity:    qty,
			description: records.ItemDescription(gadget.Brand, gadget.Model, nil, nil),
		}, nil
	}
}

// CreateSale records a sale from inventory: the sale row, then the stock
// change, then a warranty for devices. A failing step undoes the earlier ones.
func (s *SalesService) CreateSale(ctx context.Context, form domain.CreateSaleForm) (*domain.Sale, error) {
	form.CustomerName = strings.TrimSpace(form.CustomerName)

	verr := validateForm(&form)
	requirePositive(verr, "sale_price", form.SalePrice)
	if verr.HasErrors() {
		return nil, verr
	}

	item, err := s.resolveItem(ctx, form)
	if err != nil {
		return nil, err
	}

	saleType, ok := domain.ParseSaleType(form.SaleType)
	if !ok {
		saleType = domain.SaleRetail
	}

	now := s.now()
	sale := &domain.Sale{
		SaleID:          format.NewBusinessID("SALE"),
		CustomerName:    form.CustomerName,
		SaleType:        saleType,
		Price:           form.SalePrice,
		Source:          domain.SourceInventory,
		ItemDescription: item.description,
		DateSold:        now,
	}
	if item.device != nil {
		sale.DeviceID = &item.device.ID
	} else {
		sale.GadgetID = &item.gadget.ID
		sale.GadgetQuantity = &item.quantity
	}

	tx := newSaga("create_sale", s.metrics)

	if err := s.store.CreateSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("recording sale: %w", err)
	}
	tx.done("sale", func(ctx context.Context) error {
		return s.store.DeleteSale(ctx, sale.ID)
	})

	if item.device != nil {
		if err := s.store.UpdateDeviceStatus(ctx, item.device.ID, domain.DeviceAvailable, domain.DeviceSold); err != nil {
			return nil, tx.abort(ctx, fmt.Errorf("marking device sold: %w", err))
		}
		tx.done("device_status", func(ctx context.Context) error {
			return s.store.UpdateDeviceStatus(ctx, item.device.ID, domain.DeviceSold, domain.DeviceAvailable)
		})

		if _, err := s.issueWarranty(ctx, sale, item.device); err != nil {
			return nil, tx.abort(ctx, fmt.Errorf("issuing warranty: %w", err))
		}
	} else {
		if _, err := s.store.AdjustGadgetQuantity(ctx, item.gadget.ID, -item.quantity); err != nil {
			return nil, tx.abort(ctx, fmt.Errorf("reducing gadget stock: %w", err))
		}
	}

	s.metrics.SaleRecorded(string(sale.Source))
	s.invalidateDashboard(ctx)
	log.Info().
		Str("sale_id", sale.SaleID).
		Str("item", sale.ItemDescription).
		Str("price", sale.Price.String()).
		Msg("sale recorded")
	return sale, nil
}

func (s *SalesService) issueWarranty(ctx context.Context, sale *domain.Sale, device *domain.Device) (*domain.Warranty, error) {
	plan, ok := domain.ParseWarrantyPlan(string(device.WarrantyPlan))
	if !ok {
		plan = domain.Plan1Year
	}

	w := &domain.Warranty{
		WarrantyID:   format.NewBusinessID("WTY"),
		SaleID:       sale.ID,
		DeviceID:     device.ID,
		CustomerName: sale.CustomerName,
		DeviceInfo:   sale.ItemDescription,
		StartDate:    sale.DateSold,
		EndDate:      warranty.EndDate(sale.DateSold, plan),
		Duration:     plan,
		Status:       string(domain.WarrantyActive),
		IMEISerial:   &device.IMEISerial,
	}
	if err := s.store.CreateWarranty(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// ListSales returns sales from the last days days (the configured default when
// days <= 0). The summary covers the whole window; search only narrows the rows.
func (s *SalesService) ListSales(ctx context.Context, days int, query string) (*domain.SalesPage, error) {
	if days <= 0 {
		days = s.listDays
	}
	now := s.now()

	sales, err := s.store.ListSales(ctx, now.AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}

	rows := records.Search(sales, query,
		records.Text(func(sale domain.Sale) string { return sale.SaleID }),
		records.Text(func(sale domain.Sale) string { return sale.CustomerName }),
		records.Text(func(sale domain.Sale) string { return sale.ItemDescription }),
	)

	return &domain.SalesPage{
		Summary: domain.SalesSummary{
			TotalSales:   len(sales),
			TodaysSales:  s.agg.TodayCount(sales, now),
			TotalRevenue: analytics.TotalRevenue(sales),
		},
		Sales: rows,
	}, nil
}
