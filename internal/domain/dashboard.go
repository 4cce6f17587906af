package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats holds the KPI cards
type DashboardStats struct {
	TotalDevices         int     `json:"total_devices"` // available devices only
	TotalGadgets         int     `json:"total_gadgets"` // sum of gadget quantities
	WeeklySales          int     `json:"weekly_sales"`
	MonthlySales         int     `json:"monthly_sales"`
	PreviousWeeklySales  int     `json:"previous_weekly_sales"`
	PreviousMonthlySales int     `json:"previous_monthly_sales"`
	AvgDailySales        float64 `json:"avg_daily_sales"`
	AvgMonthlySales      float64 `json:"avg_monthly_sales"`
	WeeklyTrend          float64 `json:"weekly_trend"`
	MonthlyTrend         float64 `json:"monthly_trend"`
}

// SalesChartPoint is one day of the sales line chart
type SalesChartPoint struct {
	Date    string          `json:"date"` // YYYY-MM-DD
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

// BrandSales is one slice of the brand pie chart
type BrandSales struct {
	Brand   string          `json:"brand"`
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

// WeekdayBucket is one bar of the weekly performance chart
type WeekdayBucket struct {
	Day   int    `json:"day"` // 0 = Sunday
	Label string `json:"label"`
	Sales int    `json:"sales"`
}

const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// StockAlert is a low-stock row with its display severity
type StockAlert struct {
	LowStockAlert
	Severity string `json:"severity"`
}

// DashboardView aggregates all dashboard data
type DashboardView struct {
	Stats             DashboardStats    `json:"stats"`
	DailySales        []SalesChartPoint `json:"daily_sales"`
	BrandSales        []BrandSales      `json:"brand_sales"`
	WeeklyPerformance []WeekdayBucket   `json:"weekly_performance"`
	StockAlerts       []StockAlert      `json:"stock_alerts"`
	GeneratedAt       time.Time         `json:"generated_at"`
}

// SalesSummary is the header of the sales page
type SalesSummary struct {
	TotalSales   int             `json:"total_sales"`
	TodaysSales  int             `json:"todays_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// SalesPage is the response of the sales listing
type SalesPage struct {
	Summary SalesSummary `json:"summary"`
	Sales   []Sale       `json:"sales"`
}

// LoanRow is a loan with its derived flags
type LoanRow struct {
	Loan
	Overdue     bool   `json:"overdue"`
	StatusColor string `json:"status_color"`
}

// LoansPage is the response of the loans listing
type LoansPage struct {
	Active   int       `json:"active"`
	Returned int       `json:"returned"`
	Sold     int       `json:"sold"`
	Overdue  int       `json:"overdue"`
	Loans    []LoanRow `json:"loans"`
}

// WarrantyRow is a warranty with its live status
type WarrantyRow struct {
	Warranty
	LiveStatus    WarrantyStatus `json:"live_status"`
	DaysRemaining int            `json:"days_remaining"`
	StatusColor   string         `json:"status_color"`
}

// WarrantySummary counts warranties per derived status
type WarrantySummary struct {
	Active       int `json:"active"`
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiring_soon"`
}

// WarrantiesPage is the response of the warranty listing
type WarrantiesPage struct {
	Summary    WarrantySummary `json:"summary"`
	Warranties []WarrantyRow   `json:"warranties"`
}
