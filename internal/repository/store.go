package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/devicehub/internal/domain"
)

// DeviceFilter narrows ListDevices. An empty status lists every device.
type DeviceFilter struct {
	Status domain.DeviceStatus
}

type InventoryRepository interface {
	ListDevices(ctx context.Context, filter DeviceFilter) ([]domain.Device, error)
	GetDevice(ctx context.Context, id string) (*domain.Device, error)
	CreateDevice(ctx context.Context, device *domain.Device) error
	// UpdateDeviceStatus changes the status only while it is still from; a
	// device that has moved on fails with domain.ErrItemUnavailable.
	UpdateDeviceStatus(ctx context.Context, id string, from, to domain.DeviceStatus) error

	ListGadgets(ctx context.Context) ([]domain.Gadget, error)
	GetGadget(ctx context.Context, id string) (*domain.Gadget, error)
	CreateGadget(ctx context.Context, gadget *domain.Gadget) error
	// AdjustGadgetQuantity adds delta to the gadget's quantity and returns the
	// new quantity. It fails with domain.ErrInsufficientStock rather than go
	// below zero.
	AdjustGadgetQuantity(ctx context.Context, id string, delta int) (int, error)

	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *domain.Supplier) error

	// ListLowStockAlerts returns device models and gadget lines whose available
	// stock is strictly below threshold. Device models with no available unit
	// are not listed.
	ListLowStockAlerts(ctx context.Context, threshold int) ([]domain.LowStockAlert, error)
}

type SalesRepository interface {
	// ListSales returns sales sold at or after since, newest first.
	ListSales(ctx context.Context, since time.Time) ([]domain.Sale, error)
	CreateSale(ctx context.Context, sale *domain.Sale) error
	DeleteSale(ctx context.Context, id string) error
}

type LoanRepository interface {
	ListLoans(ctx context.Context, status domain.LoanStatus) ([]domain.Loan, error)
	GetLoan(ctx context.Context, id string) (*domain.Loan, error)
	CreateLoan(ctx context.Context, loan *domain.Loan) error
	DeleteLoan(ctx context.Context, id string) error
	// UpdateLoanStatus changes the status only while it is still from, failing
	// with domain.ErrLoanClosed otherwise. Moving back to active clears the
	// return date.
	UpdateLoanStatus(ctx context.Context, id string, from, to domain.LoanStatus, returnedAt *time.Time) error
}

type WarrantyRepository interface {
	ListWarranties(ctx context.Context) ([]domain.Warranty, error)
	CreateWarranty(ctx context.Context, warranty *domain.Warranty) error
	DeleteWarranty(ctx context.Context, id string) error
}

// Store is the full data store the services run against.
type Store interface {
	InventoryRepository
	SalesRepository
	LoanRepository
	WarrantyRepository
}
