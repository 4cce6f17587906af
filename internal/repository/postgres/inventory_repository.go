package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/repository"
	"github.com/jmoiron/sqlx"
)

const deviceColumns = `
	d.id, d.imei_serial, d.brand, d.model, d.capacity, d.color, d.warranty_plan,
	d.source, d.supplier_id, s.name AS supplier_name, d.status, d.purchase_price,
	d.date_added, d.date_sold, d.date_loaned, d.created_at, d.updated_at`

const gadgetColumns = `
	g.id, g.inventory_id, g.brand, g.model, g.quantity, g.supplier_id,
	s.name AS supplier_name, g.purchase_price, g.created_at, g.updated_at`

func (s *Store) ListDevices(ctx context.Context, filter repository.DeviceFilter) ([]domain.Device, error) {
	query := `SELECT` + deviceColumns + `
		FROM devices d
		LEFT JOIN suppliers s ON s.id = d.supplier_id`

	var args []any
	if filter.Status != "" {
		query += ` WHERE d.status = $1`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY d.date_added DESC`

	devices := []domain.Device{}
	if err := sqlx.SelectContext(ctx, s.q, &devices, query, args...); err != nil {
		return nil, fmt.Errorf("error listing devices: %w", err)
	}
	return devices, nil
}

func (s *Store) GetDevice(ctx context.Context, id string) (*domain.Device, error) {
	query := `SELECT` + deviceColumns + `
		FROM devices d
		LEFT JOIN suppliers s ON s.id = d.supplier_id
		WHERE d.id = $1`

	var device domain.Device
	if err := s.get(ctx, &device, "error getting device", query, id); err != nil {
		return nil, err
	}
	return &device, nil
}

func (s *Store) CreateDevice(ctx context.Context, d *domain.Device) error {
	query := `
		INSERT INTO devices (
			imei_serial, brand, model, capacity, color, warranty_plan,
			source, supplier_id, status, purchase_price, date_added
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := s.q.QueryRowxContext(ctx, query,
		d.IMEISerial,
		d.Brand,
		d.Model,
		d.Capacity,
		d.Color,
		d.WarrantyPlan,
		d.Source,
		d.SupplierID,
		d.Status,
		d.PurchasePrice,
		d.DateAdded,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return writeErr("error creating device", err)
	}
	return nil
}

// UpdateDeviceStatus moves a device from one status to another and stamps
// date_sold / date_loaned for the matching transitions; date_loaned is cleared
// when a device comes back. A device no longer in status from is left alone
// and reported as domain.ErrItemUnavailable.
func (s *Store) UpdateDeviceStatus(ctx context.Context, id string, from, to domain.DeviceStatus) error {
	query := `
		UPDATE devices SET
			status = $3::text,
			date_sold = CASE
				WHEN $3::text = 'sold' THEN NOW()
				WHEN $3::text = 'available' THEN NULL
				ELSE date_sold END,
			date_loaned = CASE
				WHEN $3::text = 'loaned' THEN NOW()
				WHEN $3::text = 'available' THEN NULL
				ELSE date_loaned END,
			updated_at = NOW()
		WHERE id = $1 AND status = $2`

	return s.transition(ctx, "error updating device status", "devices", domain.ErrItemUnavailable, query, id, from, to)
}

func (s *Store) ListGadgets(ctx context.Context) ([]domain.Gadget, error) {
	query := `SELECT` + gadgetColumns + `
		FROM gadgets g
		LEFT JOIN suppliers s ON s.id = g.supplier_id
		ORDER BY g.created_at DESC`

	gadgets := []domain.Gadget{}
	if err := sqlx.SelectContext(ctx, s.q, &gadgets, query); err != nil {
		return nil, fmt.Errorf("error listing gadgets: %w", err)
	}
	return gadgets, nil
}

func (s *Store) GetGadget(ctx context.Context, id string) (*domain.Gadget, error) {
	query := `SELECT` + gadgetColumns + `
		FROM gadgets g
		LEFT JOIN suppliers s ON s.id = g.supplier_id
		WHERE g.id = $1`

	var gadget domain.Gadget
	if err := s.get(ctx, &gadget, "error getting gadget", query, id); err != nil {
		return nil, err
	}
	return &gadget, nil
}

func (s *Store) CreateGadget(ctx context.Context, g *domain.Gadget) error {
	query := `
		INSERT INTO gadgets (inventory_id, brand, model, quantity, supplier_id, purchase_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := s.q.QueryRowxContext(ctx, query,
		g.InventoryID,
		g.Brand,
		g.Model,
		g.Quantity,
		g.SupplierID,
		g.PurchasePrice,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return writeErr("error creating gadget", err)
	}
	return nil
}

func (s *Store) AdjustGadgetQuantity(ctx context.Context, id string, delta int) (int, error) {
	query := `
		UPDATE gadgets SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING quantity`

	var quantity int
	err := s.q.QueryRowxContext(ctx, query, id, delta).Scan(&quantity)
	if err == nil {
		return quantity, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("error adjusting gadget quantity: %w", err)
	}

	var exists bool
	if err := sqlx.GetContext(ctx, s.q, &exists, `SELECT EXISTS (SELECT 1 FROM gadgets WHERE id = $1)`, id); err != nil {
		return 0, fmt.Errorf("error adjusting gadget quantity: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("error adjusting gadget quantity: %w", domain.ErrNotFound)
	}
	return 0, fmt.Errorf("error adjusting gadget quantity: %w", domain.ErrInsufficientStock)
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	query := `
		SELECT id, name, contact_info, created_at, updated_at
		FROM suppliers
		ORDER BY name`

	suppliers := []domain.Supplier{}
	if err := sqlx.SelectContext(ctx, s.q, &suppliers, query); err != nil {
		return nil, fmt.Errorf("error listing suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *Store) CreateSupplier(ctx context.Context, sup *domain.Supplier) error {
	query := `
		INSERT INTO suppliers (name, contact_info)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	if err := s.q.QueryRowxContext(ctx, query, sup.Name, sup.ContactInfo).Scan(&sup.ID, &sup.CreatedAt, &sup.UpdatedAt); err != nil {
		return writeErr("error creating supplier", err)
	}
	return nil
}

func (s *Store) ListLowStockAlerts(ctx context.Context, threshold int) ([]domain.LowStockAlert, error) {
	query := `
		SELECT 'device' AS type, brand, model, COUNT(*)::int AS stock_count
		FROM devices
		WHERE status = 'available'
		GROUP BY brand, model
		HAVING COUNT(*) < $1
		UNION ALL
		SELECT 'gadget' AS type, brand, model, SUM(quantity)::int AS stock_count
		FROM gadgets
		GROUP BY brand, model
		HAVING SUM(quantity) < $1
		ORDER BY stock_count, brand, model`

	alerts := []domain.LowStockAlert{}
	if err := sqlx.SelectContext(ctx, s.q, &alerts, query, threshold); err != nil {
		return nil, fmt.Errorf("error listing low stock alerts: %w", err)
	}
	return alerts, nil
}
