package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier is the provenance of devices and gadgets
type Supplier struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	ContactInfo *string   `json:"contact_info" db:"contact_info"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Device is a single serialised unit identified by IMEI or serial number
type Device struct {
	ID            string              `json:"id" db:"id"`
	IMEISerial    string              `json:"imei_serial" db:"imei_serial"`
	Brand         string              `json:"brand" db:"brand"`
	Model         string              `json:"model" db:"model"`
	Capacity      *string             `json:"capacity" db:"capacity"`
	Color         *string             `json:"color" db:"color"`
	WarrantyPlan  WarrantyPlan        `json:"warranty_plan" db:"warranty_plan"`
	Source        *string             `json:"source" db:"source"`
	SupplierID    *string             `json:"supplier_id" db:"supplier_id"`
	SupplierName  *string             `json:"supplier_name,omitempty" db:"supplier_name"`
	Status        DeviceStatus        `json:"status" db:"status"`
	PurchasePrice decimal.NullDecimal `json:"purchase_price" db:"purchase_price"`
	DateAdded     time.Time           `json:"date_added" db:"date_added"`
	DateSold      *time.Time          `json:"date_sold" db:"date_sold"`
	DateLoaned    *time.Time          `json:"date_loaned" db:"date_loaned"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

// Gadget is a quantity-tracked accessory line without per-unit identity
type Gadget struct {
	ID            string              `json:"id" db:"id"`
	InventoryID   string              `json:"inventory_id" db:"inventory_id"`
	Brand         string              `json:"brand" db:"brand"`
	Model         string              `json:"model" db:"model"`
	Quantity      int                 `json:"quantity" db:"quantity"`
	SupplierID    *string             `json:"supplier_id" db:"supplier_id"`
	SupplierName  *string             `json:"supplier_name,omitempty" db:"supplier_name"`
	PurchasePrice decimal.NullDecimal `json:"purchase_price" db:"purchase_price"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

// Sale is one entry of the sales ledger
type Sale struct {
	ID              string          `json:"id" db:"id"`
	SaleID          string          `json:"sale_id" db:"sale_id"`
	CustomerID      *string         `json:"customer_id" db:"customer_id"`
	CustomerName    string          `json:"customer_name" db:"customer_name"`
	SaleType        SaleType        `json:"sale_type" db:"sale_type"`
	Price           decimal.Decimal `json:"sale_price" db:"sale_price"`
	Source          SaleSource      `json:"sale_source" db:"sale_source"`
	DeviceID        *string         `json:"device_id" db:"device_id"`
	GadgetID        *string         `json:"gadget_id" db:"gadget_id"`
	GadgetQuantity  *int            `json:"gadget_quantity" db:"gadget_quantity"`
	ItemDescription string          `json:"item_description" db:"item_description"`
	LoanID          *string         `json:"loan_id" db:"loan_id"`
	DateSold        time.Time       `json:"date_sold" db:"date_sold"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// CheckItemRef enforces that a sale references exactly one device or one gadget.
func (s *Sale) CheckItemRef() error {
	return checkItemRef(s.DeviceID, s.GadgetID)
}

// Loan is inventory handed to a third-party reseller
type Loan struct {
	ID                 string     `json:"id" db:"id"`
	LoanID             string     `json:"loan_id" db:"loan_id"`
	LoanerName         string     `json:"loaner_name" db:"loaner_name"`
	LoanerContact      *string    `json:"loaner_contact" db:"loaner_contact"`
	DeviceID           *string    `json:"device_id" db:"device_id"`
	GadgetID           *string    `json:"gadget_id" db:"gadget_id"`
	GadgetQuantity     *int       `json:"gadget_quantity" db:"gadget_quantity"`
	ItemDescription    string     `json:"item_description" db:"item_description"`
	Status             LoanStatus `json:"status" db:"status"`
	DateLoaned         time.Time  `json:"date_loaned" db:"date_loaned"`
	DateReturned       *time.Time `json:"date_returned" db:"date_returned"`
	ExpectedReturnDate *time.Time `json:"expected_return_date" db:"expected_return_date"`
	Notes              *string    `json:"notes" db:"notes"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// CheckItemRef enforces that a loan references exactly one device or one gadget.
func (l *Loan) CheckItemRef() error {
	return checkItemRef(l.DeviceID, l.GadgetID)
}

// IsOverdue reports whether an active loan is past its expected return date.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanActive && l.ExpectedReturnDate != nil && now.After(*l.ExpectedReturnDate)
}

// ReturnQuantity is the number of gadget units that go back to stock when the loan is returned.
func (l *Loan) ReturnQuantity() int {
	if l.GadgetQuantity == nil || *l.GadgetQuantity <= 0 {
		return 1
	}
	return *l.GadgetQuantity
}

// Warranty covers a device sold from inventory
type Warranty struct {
	ID           string       `json:"id" db:"id"`
	WarrantyID   string       `json:"warranty_id" db:"warranty_id"`
	SaleID       string       `json:"sale_id" db:"sale_id"`
	DeviceID     string       `json:"device_id" db:"device_id"`
	CustomerName string       `json:"customer_name" db:"customer_name"`
	DeviceInfo   string       `json:"device_info" db:"device_info"`
	StartDate    time.Time    `json:"warranty_start_date" db:"warranty_start_date"`
	EndDate      time.Time    `json:"warranty_end_date" db:"warranty_end_date"`
	Duration     WarrantyPlan `json:"warranty_duration" db:"warranty_duration"`
	Status       string       `json:"status" db:"status"`
	IMEISerial   *string      `json:"imei_serial,omitempty" db:"imei_serial"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// LowStockAlert is a row of the low_stock_alerts view
type LowStockAlert struct {
	Type       string `json:"type" db:"type"`
	Brand      string `json:"brand" db:"brand"`
	Model      string `json:"model" db:"model"`
	StockCount int    `json:"stock_count" db:"stock_count"`
}

// InventoryItem is the unified devices+gadgets row shown on the inventory page
type InventoryItem struct {
	Type         string    `json:"type"`
	ID           string    `json:"id"`
	Identifier   string    `json:"identifier"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Capacity     *string   `json:"capacity"`
	Color        *string   `json:"color"`
	Description  string    `json:"description"`
	Quantity     int       `json:"quantity"`
	Status       string    `json:"status"`
	StatusColor  string    `json:"status_color"`
	DateAdded    time.Time `json:"date_added"`
	SupplierName *string   `json:"supplier_name"`
}

func checkItemRef(deviceID, gadgetID *string) error {
	hasDevice := deviceID != nil && *deviceID != ""
	hasGadget := gadgetID != nil && *gadgetID != ""
	if hasDevice == hasGadget {
		return ErrItemReference
	}
	return nil
}
