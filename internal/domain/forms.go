package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ItemTypeDevice = "device"
	ItemTypeGadget = "gadget"

	// SourceTradeInLabel is the device source used when a unit came in as a trade-in.
	SourceTradeInLabel = "Trade-in"
)

// AddDeviceForm is the input for registering a device
type AddDeviceForm struct {
	IMEISerial    string           `json:"imei_serial" validate:"required,imei_serial"`
	Brand         string           `json:"brand" validate:"required"`
	Model         string           `json:"model" validate:"required"`
	Capacity      string           `json:"capacity"`
	Color         string           `json:"color"`
	WarrantyPlan  string           `json:"warranty_plan" validate:"omitempty,warranty_plan"`
	Source        string           `json:"source"`
	SupplierID    string           `json:"supplier_id"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
}

// AddGadgetForm is the input for registering a gadget line
type AddGadgetForm struct {
	Brand         string           `json:"brand" validate:"required"`
	Model         string           `json:"model" validate:"required"`
	Quantity      int              `json:"quantity" validate:"min=1"`
	SupplierID    string           `json:"supplier_id"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
}

// CreateSaleForm is the input for selling an inventory item
type CreateSaleForm struct {
	CustomerName   string          `json:"customer_name" validate:"required"`
	SaleType       string          `json:"sale_type" validate:"omitempty,oneof=retail trade_in wholesale"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	ItemType       string          `json:"item_type" validate:"required,oneof=device gadget"`
	ItemID         string          `json:"item_id" validate:"required"`
	GadgetQuantity int             `json:"gadget_quantity" validate:"omitempty,min=1"`
}

// CreateLoanForm is the input for handing an item to a reseller
type CreateLoanForm struct {
	LoanerName         string     `json:"loaner_name" validate:"required"`
	LoanerContact      string     `json:"loaner_contact" validate:"omitempty,contact"`
	ItemType           string     `json:"item_type" validate:"required,oneof=device gadget"`
	ItemID             string     `json:"item_id" validate:"required"`
	GadgetQuantity     int        `json:"gadget_quantity" validate:"omitempty,min=1"`
	ExpectedReturnDate *time.Time `json:"expected_return_date"`
	Notes              string     `json:"notes"`
}

// SellLoanForm converts an active loan into a sale
type SellLoanForm struct {
	CustomerName string          `json:"customer_name" validate:"required"`
	SalePrice    decimal.Decimal `json:"sale_price"`
}
