package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/format"
	"github.com/shopspring/decimal"
)

// csvTable is a CSV file addressed by lower-cased header name.
type csvTable struct {
	columns map[string]int
	rows    [][]string
}

func readTable(r io.Reader, required ...string) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty CSV file")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	t := &csvTable{columns: make(map[string]int, len(header))}
	for i, name := range header {
		t.columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := t.columns[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	t.rows, err = reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV rows: %w", err)
	}
	return t, nil
}

func (t *csvTable) get(row []string, column string) string {
	i, ok := t.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// nullIfEmpty returns nil if the string is empty
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parsePrice(raw string) (decimal.NullDecimal, error) {
	raw = strings.NewReplacer(",", "", " ", "").Replace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid price %q", raw)
	}
	return decimal.NewNullDecimal(d), nil
}

func parseSuppliers(r io.Reader) ([]domain.Supplier, error) {
	t, err := readTable(r, "name")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Supplier, 0, len(t.rows))
	for i, row := range t.rows {
		name := t.get(row, "name")
		if name == "" {
			return nil, fmt.Errorf("row %d: name is required", i+2)
		}
		out = append(out, domain.Supplier{
			Name:        name,
			ContactInfo: nullIfEmpty(t.get(row, "contact_info")),
		})
	}
	return out, nil
}

// supplierIndex resolves a supplier column by id or case-insensitive name.
type supplierIndex map[string]domain.Supplier

func newSupplierIndex(suppliers []domain.Supplier) supplierIndex {
	idx := make(supplierIndex, len(suppliers)*2)
	for _, s := range suppliers {
		idx[s.ID] = s
		idx[strings.ToLower(s.Name)] = s
	}
	return idx
}

func (idx supplierIndex) lookup(raw string) (*domain.Supplier, error) {
	if raw == "" {
		return nil, nil
	}
	if s, ok := idx[raw]; ok {
		return &s, nil
	}
	if s, ok := idx[strings.ToLower(raw)]; ok {
		return &s, nil
	}
	return nil, fmt.Errorf("unknown supplier %q", raw)
}

func parseDevices(r io.Reader, suppliers supplierIndex, now time.Time) ([]domain.Device, error) {
	t, err := readTable(r, "imei_serial", "brand", "model")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(t.rows))
	out := make([]domain.Device, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		imei := t.get(row, "imei_serial")
		if !format.ValidateDeviceIdentifier(imei) {
			return nil, fmt.Errorf("row %d: invalid imei_serial %q", line, imei)
		}
		if prev, dup := seen[imei]; dup {
			return nil, fmt.Errorf("row %d: imei_serial %s already on row %d", line, imei, prev)
		}
		seen[imei] = line

		d := domain.Device{
			IMEISerial:   imei,
			Brand:        t.get(row, "brand"),
			Model:        t.get(row, "model"),
			Capacity:     nullIfEmpty(t.get(row, "capacity")),
			Color:        nullIfEmpty(t.get(row, "color")),
			WarrantyPlan: domain.Plan1Year,
			Status:       domain.DeviceAvailable,
			DateAdded:    now,
		}
		if d.Brand == "" || d.Model == "" {
			return nil, fmt.Errorf("row %d: brand and model are required", line)
		}
		if raw := t.get(row, "warranty_plan"); raw != "" {
			plan, ok := domain.ParseWarrantyPlan(raw)
			if !ok {
				return nil, fmt.Errorf("row %d: unknown warranty plan %q", line, raw)
			}
			d.WarrantyPlan = plan
		}
		if d.PurchasePrice, err = parsePrice(t.get(row, "purchase_price")); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		source := t.get(row, "source")
		if strings.EqualFold(source, domain.SourceTradeInLabel) {
			d.Source = nullIfEmpty(domain.SourceTradeInLabel)
		} else {
			supplier, err := suppliers.lookup(t.get(row, "supplier"))
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", line, err)
			}
			if supplier != nil {
				d.SupplierID = &supplier.ID
				d.Source = &supplier.Name
			} else {
				d.Source = nullIfEmpty(source)
			}
		}
		out = append(out, d)
	}
	return out, nil
}

func parseGadgets(r io.Reader, suppliers supplierIndex) ([]domain.Gadget, error) {
	t, err := readTable(r, "brand", "model", "quantity")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Gadget, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		g := domain.Gadget{
			InventoryID: t.get(row, "inventory_id"),
			Brand:       t.get(row, "brand"),
			Model:       t.get(row, "model"),
		}
		if g.Brand == "" || g.Model == "" {
			return nil, fmt.Errorf("row %d: brand and model are required", line)
		}
		if g.InventoryID == "" {
			g.InventoryID = format.NewBusinessID("GDT")
		}

		qty, err := strconv.Atoi(t.get(row, "quantity"))
		if err != nil || qty < 1 {
			return nil, fmt.Errorf("row %d: quantity must be a positive integer", line)
		}
		g.Quantity = qty

		if g.PurchasePrice, err = parsePrice(t.get(row, "purchase_price")); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		supplier, err := suppliers.lookup(t.get(row, "supplier"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if supplier != nil {
			g.SupplierID = &supplier.ID
		}
		out = append(out, g)
	}
	return out, nil
}
