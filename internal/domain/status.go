package domain

import "strings"

type DeviceStatus string

const (
	DeviceAvailable DeviceStatus = "available"
	DeviceLoaned    DeviceStatus = "loaned"
	DeviceSold      DeviceStatus = "sold"
	DeviceTradeIn   DeviceStatus = "trade_in"
)

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
	LoanSold     LoanStatus = "sold"
)

type SaleSource string

const (
	SourceInventory SaleSource = "inventory"
	SourceLoan      SaleSource = "loan"
	SourceTradeIn   SaleSource = "trade_in"
)

type SaleType string

const (
	SaleRetail    SaleType = "retail"
	SaleTradeIn   SaleType = "trade_in"
	SaleWholesale SaleType = "wholesale"
)

type WarrantyPlan string

const (
	Plan6Months WarrantyPlan = "6_months"
	Plan1Year   WarrantyPlan = "1_year"
	Plan2Years  WarrantyPlan = "2_years"
)

// WarrantyStatus is derived from the end date on every read, never stored.
type WarrantyStatus string

const (
	WarrantyActive       WarrantyStatus = "active"
	WarrantyExpiringSoon WarrantyStatus = "expiring_soon"
	WarrantyExpired      WarrantyStatus = "expired"
)

var deviceStatuses = map[string]DeviceStatus{
	"available": DeviceAvailable,
	"loaned":    DeviceLoaned,
	"sold":      DeviceSold,
	"trade_in":  DeviceTradeIn,
}

var loanStatuses = map[string]LoanStatus{
	"active":   LoanActive,
	"returned": LoanReturned,
	"sold":     LoanSold,
}

var saleTypes = map[string]SaleType{
	"retail":    SaleRetail,
	"trade_in":  SaleTradeIn,
	"wholesale": SaleWholesale,
}

// the devices table of older deployments stored the long spelling
var warrantyPlans = map[string]WarrantyPlan{
	"6_months":   Plan6Months,
	"six_months": Plan6Months,
	"1_year":     Plan1Year,
	"one_year":   Plan1Year,
	"2_years":    Plan2Years,
	"two_years":  Plan2Years,
}

// ParseDeviceStatus returns the device status for a label (case-insensitive).
func ParseDeviceStatus(label string) (DeviceStatus, bool) {
	s, ok := deviceStatuses[normalizeLabel(label)]
	return s, ok
}

// ParseLoanStatus returns the loan status for a label (case-insensitive).
func ParseLoanStatus(label string) (LoanStatus, bool) {
	s, ok := loanStatuses[normalizeLabel(label)]
	return s, ok
}

// ParseSaleType returns the sale type for a label (case-insensitive).
func ParseSaleType(label string) (SaleType, bool) {
	s, ok := saleTypes[normalizeLabel(label)]
	return s, ok
}

// ParseWarrantyPlan accepts both "1_year" and "one_year" spellings.
func ParseWarrantyPlan(label string) (WarrantyPlan, bool) {
	p, ok := warrantyPlans[normalizeLabel(label)]
	return p, ok
}

func normalizeLabel(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), "-", "_")
}
