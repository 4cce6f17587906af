package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/format"
	"github.com/andresuchdata/devicehub/internal/records"
	"github.com/andresuchdata/devicehub/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type InventoryService struct {
	deps
}

func NewInventoryService(store repository.Store, opts ...Option) *InventoryService {
	return &InventoryService{deps: newDeps(store, opts)}
}

// InventoryQuery drives the inventory listing.
type InventoryQuery struct {
	Search    string
	SortBy    string
	Direction records.Direction
}

func (s *InventoryService) AddDevice(ctx context.Context, form domain.AddDeviceForm) (*domain.Device, error) {
	form.IMEISerial = strings.TrimSpace(form.IMEISerial)
	form.Brand = strings.TrimSpace(form.Brand)
	form.Model = strings.TrimSpace(form.Model)

	verr := validateForm(&form)
	if verr.HasErrors() {
		return nil, verr
	}

	plan, ok := domain.ParseWarrantyPlan(form.WarrantyPlan)
	if !ok {
		plan = domain.Plan1Year
	}

	device := &domain.Device{
		IMEISerial:    form.IMEISerial,
		Brand:         form.Brand,
		Model:         form.Model,
		Capacity:      optional(strings.TrimSpace(form.Capacity)),
		Color:         optional(strings.TrimSpace(form.Color)),
		WarrantyPlan:  plan,
		Status:        domain.DeviceAvailable,
		PurchasePrice: nullDecimal(form.PurchasePrice),
		DateAdded:     s.now(),
	}

	switch {
	case strings.EqualFold(form.Source, domain.SourceTradeInLabel):
		device.Source = optional(domain.SourceTradeInLabel)
	case form.SupplierID != "":
		supplier, err := s.findSupplier(ctx, form.SupplierID)
		if err != nil {
			return nil, err
		}
		device.SupplierID = &supplier.ID
		device.Source = &supplier.Name
		device.SupplierName = &supplier.Name
	default:
		device.Source = optional(strings.TrimSpace(form.Source))
	}

	if err := s.store.CreateDevice(ctx, device); err != nil {
		return nil, fmt.Errorf("adding device: %w", err)
	}

	s.invalidateDashboard(ctx)
	log.Info().Str("device_id", device.ID).Str("imei_serial", device.IMEISerial).Msg("device added")
	return device, nil
}

func (s *InventoryService) AddGadget(ctx context.Context, form domain.AddGadgetForm) (*domain.Gadget, error) {
	form.Brand = strings.TrimSpace(form.Brand)
	form.Model = strings.TrimSpace(form.Model)

	verr := validateForm(&form)
	if verr.HasErrors() {
		return nil, verr
	}

	gadget := &domain.Gadget{
		InventoryID:   format.NewBusinessID("GDT"),
		Brand:         form.Brand,
		Model:         form.Model,
		Quantity:      form.Quantity,
		PurchasePrice: nullDecimal(form.PurchasePrice),
	}
	if form.SupplierID != "" {
		supplier, err := s.findSupplier(ctx, form.SupplierID)
		if err != nil {
			return nil, err
		}
		gadget.SupplierID = &supplier.ID
		gadget.SupplierName = &supplier.Name
	}

	if err := s.store.CreateGadget(ctx, gadget); err != nil {
		return nil, fmt.Errorf("adding gadget: %w", err)
	}

	s.invalidateDashboard(ctx)
	log.Info().Str("gadget_id", gadget.ID).Str("inventory_id", gadget.InventoryID).Int("quantity", gadget.Quantity).Msg("gadget added")
	return gadget, nil
}

func (s *InventoryService) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}
	return suppliers, nil
}

// ListInventory merges devices still in the shop (not sold) and gadget lines
// with stock into one table, then searches and sorts it. The default order is
// newest first.
func (s *InventoryService) ListInventory(ctx context.Context, q InventoryQuery) ([]domain.InventoryItem, error) {
	devices, err := s.store.ListDevices(ctx, repository.DeviceFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	gadgets, err := s.store.ListGadgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}

	items := make([]domain.InventoryItem, 0, len(devices)+len(gadgets))
	for _, d := range devices {
		if d.Status == domain.DeviceSold {
			continue
		}
		items = append(items, deviceItem(d))
	}
	for _, g := range gadgets {
		if g.Quantity <= 0 {
			continue
		}
		items = append(items, gadgetItem(g))
	}

	items = records.Search(items, q.Search,
		records.Text(func(i domain.InventoryItem) string { return i.Identifier }),
		records.Text(func(i domain.InventoryItem) string { return i.Brand }),
		records.Text(func(i domain.InventoryItem) string { return i.Model }),
		records.Text(func(i domain.InventoryItem) string { return i.Description }),
		records.OptionalText(func(i domain.InventoryItem) *string { return i.SupplierName }),
	)
	return sortInventory(items, q.SortBy, q.Direction), nil
}

func sortInventory(items []domain.InventoryItem, by string, dir records.Direction) []domain.InventoryItem {
	text := func(get func(domain.InventoryItem) string) records.SortKey[domain.InventoryItem, string] {
		return func(i domain.InventoryItem) (string, bool) {
			v := get(i)
			return strings.ToLower(v), v != ""
		}
	}

	switch by {
	case "brand":
		return records.Sort(items, text(func(i domain.InventoryItem) string { return i.Brand }), dir)
	case "model":
		return records.Sort(items, text(func(i domain.InventoryItem) string { return i.Model }), dir)
	case "status":
		return records.Sort(items, text(func(i domain.InventoryItem) string { return i.Status }), dir)
	case "type":
		return records.Sort(items, text(func(i domain.InventoryItem) string { return i.Type }), dir)
	case "quantity":
		return records.Sort(items, func(i domain.InventoryItem) (int, bool) { return i.Quantity, true }, dir)
	default:
		if by == "" {
			dir = records.Desc
		}
		return records.Sort(items, func(i domain.InventoryItem) (int64, bool) {
			return i.DateAdded.UnixNano(), !i.DateAdded.IsZero()
		}, dir)
	}
}

func deviceItem(d domain.Device) domain.InventoryItem {
	return domain.InventoryItem{
		Type:         domain.ItemTypeDevice,
		ID:           d.ID,
		Identifier:   d.IMEISerial,
		Brand:        d.Brand,
		Model:        d.Model,
		Capacity:     d.Capacity,
		Color:        d.Color,
		Description:  records.ItemDescription(d.Brand, d.Model, d.Capacity, d.Color),
		Quantity:     1,
		Status:       string(d.Status),
		StatusColor:  records.StatusColor(string(d.Status)),
		DateAdded:    d.DateAdded,
		SupplierName: d.SupplierName,
	}
}

func gadgetItem(g domain.Gadget) domain.InventoryItem {
	status := string(domain.DeviceAvailable)
	return domain.InventoryItem{
		Type:         domain.ItemTypeGadget,
		ID:           g.ID,
		Identifier:   g.InventoryID,
		Brand:        g.Brand,
		Model:        g.Model,
		Description:  records.ItemDescription(g.Brand, g.Model, nil, nil),
		Quantity:     g.Quantity,
		Status:       status,
		StatusColor:  records.StatusColor(status),
		DateAdded:    firstNonZero(g.CreatedAt, g.UpdatedAt),
		SupplierName: g.SupplierName,
	}
}

func (s *InventoryService) findSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("looking up supplier: %w", err)
	}
	for i := range suppliers {
		if suppliers[i].ID == id {
			return &suppliers[i], nil
		}
	}
	verr := domain.NewValidationError()
	verr.Add("supplier_id", "Unknown supplier")
	return nil, verr
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func firstNonZero(ts ...time.Time) time.Time {
	for _, t := range ts {
		if !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}
