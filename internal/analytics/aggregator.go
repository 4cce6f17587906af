// Package analytics turns a window of raw sales into dashboard KPIs and chart
// series. Everything here is a pure function of its input and the supplied
// "now"; nothing is cached or persisted.
package analytics

import (
	"slices"
	"strings"
	"time"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/format"
	"github.com/shopspring/decimal"
)

const (
	WeekDays  = 7
	MonthDays = 30

	DefaultDailySeriesLimit = 14
	DefaultTopBrands        = 6

	UnknownBrand = "Unknown"
)

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Config controls bucketing and truncation.
type Config struct {
	// Location decides calendar days and months. Defaults to UTC.
	Location *time.Location
	// DailySeriesLimit keeps the most recent N days; <= 0 keeps everything.
	DailySeriesLimit int
	// TopBrands keeps the N best-selling brands; <= 0 keeps everything.
	TopBrands int
}

// DefaultConfig matches the dashboard charts: 14 days, top 6 brands.
func DefaultConfig() Config {
	return Config{
		Location:         time.UTC,
		DailySeriesLimit: DefaultDailySeriesLimit,
		TopBrands:        DefaultTopBrands,
	}
}

type Aggregator struct {
	loc        *time.Location
	dailyLimit int
	topBrands  int
}

func NewAggregator(cfg Config) *Aggregator {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{
		loc:        loc,
		dailyLimit: cfg.DailySeriesLimit,
		topBrands:  cfg.TopBrands,
	}
}

// Trend is the percentage change from previous to current. A zero previous
// yields 100 when there is new activity and 0 when there is none.
func Trend(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// PeriodCount counts sales sold in [from, to).
func PeriodCount(sales []domain.Sale, from, to time.Time) int {
	n := 0
	for i := range sales {
		d := sales[i].DateSold
		if !d.Before(from) && d.Before(to) {
			n++
		}
	}
	return n
}

// TotalRevenue sums all sale prices.
func TotalRevenue(sales []domain.Sale) decimal.Decimal {
	total := decimal.Zero
	for i := range sales {
		total = total.Add(sales[i].Price)
	}
	return total
}

// BrandOf takes the first whitespace-delimited token of an item description.
// It is a heuristic: multi-word brands are split.
func BrandOf(description string) string {
	fields := strings.Fields(description)
	if len(fields) == 0 {
		return UnknownBrand
	}
	return fields[0]
}

// Stats fills the sales KPIs. Inventory counts are left for the caller.
func (a *Aggregator) Stats(sales []domain.Sale, now time.Time) domain.DashboardStats {
	now = now.In(a.loc)
	weekAgo := now.AddDate(0, 0, -WeekDays)
	twoWeeksAgo := now.AddDate(0, 0, -2*WeekDays)
	monthAgo := now.AddDate(0, 0, -MonthDays)
	twoMonthsAgo := now.AddDate(0, 0, -2*MonthDays)

	weekly := PeriodCount(sales, weekAgo, now)
	prevWeekly := PeriodCount(sales, twoWeeksAgo, weekAgo)
	monthly := PeriodCount(sales, monthAgo, now)
	prevMonthly := PeriodCount(sales, twoMonthsAgo, monthAgo)

	return domain.DashboardStats{
		WeeklySales:          weekly,
		MonthlySales:         monthly,
		PreviousWeeklySales:  prevWeekly,
		PreviousMonthlySales: prevMonthly,
		AvgDailySales:        float64(monthly) / MonthDays,
		AvgMonthlySales:      a.MonthlyAverage(sales),
		WeeklyTrend:          Trend(float64(weekly), float64(prevWeekly)),
		MonthlyTrend:         Trend(float64(monthly), float64(prevMonthly)),
	}
}

// MonthlyAverage divides the number of sales by the number of distinct
// calendar months present. Sparse data therefore inflates the average.
func (a *Aggregator) MonthlyAverage(sales []domain.Sale) float64 {
	if len(sales) == 0 {
		return 0
	}
	months := make(map[string]struct{})
	for i := range sales {
		months[sales[i].DateSold.In(a.loc).Format(format.MonthKeyLayout)] = struct{}{}
	}
	return float64(len(sales)) / float64(len(months))
}

// DailySeries groups sales by calendar day, oldest first, keeping the most
// recent DailySeriesLimit days.
func (a *Aggregator) DailySeries(sales []domain.Sale) []domain.SalesChartPoint {
	byDay := make(map[string]*domain.SalesChartPoint)
	for i := range sales {
		key := sales[i].DateSold.In(a.loc).Format(format.DayKeyLayout)
		p, ok := byDay[key]
		if !ok {
			p = &domain.SalesChartPoint{Date: key, Revenue: decimal.Zero}
			byDay[key] = p
		}
		p.Sales++
		p.Revenue = p.Revenue.Add(sales[i].Price)
	}

	series := make([]domain.SalesChartPoint, 0, len(byDay))
	for _, p := range byDay {
		series = append(series, *p)
	}
	slices.SortFunc(series, func(x, y domain.SalesChartPoint) int {
		return strings.Compare(x.Date, y.Date)
	})

	if a.dailyLimit > 0 && len(series) > a.dailyLimit {
		series = series[len(series)-a.dailyLimit:]
	}
	return series
}

// BrandSeries groups sales by BrandOf(item description), best sellers first,
// keeping the top TopBrands. Ties keep first-seen order.
func (a *Aggregator) BrandSeries(sales []domain.Sale) []domain.BrandSales {
	index := make(map[string]int)
	series := make([]domain.BrandSales, 0)
	for i := range sales {
		brand := BrandOf(sales[i].ItemDescription)
		pos, ok := index[brand]
		if !ok {
			pos = len(series)
			index[brand] = pos
			series = append(series, domain.BrandSales{Brand: brand, Revenue: decimal.Zero})
		}
		series[pos].Sales++
		series[pos].Revenue = series[pos].Revenue.Add(sales[i].Price)
	}

	slices.SortStableFunc(series, func(x, y domain.BrandSales) int {
		return y.Sales - x.Sales
	})

	if a.topBrands > 0 && len(series) > a.topBrands {
		series = series[:a.topBrands]
	}
	return series
}

// WeekdayHistogram counts sales per day of week, index 0 = Sunday.
func (a *Aggregator) WeekdayHistogram(sales []domain.Sale) []domain.WeekdayBucket {
	buckets := make([]domain.WeekdayBucket, len(weekdayLabels))
	for d, label := range weekdayLabels {
		buckets[d] = domain.WeekdayBucket{Day: d, Label: label}
	}
	for i := range sales {
		buckets[sales[i].DateSold.In(a.loc).Weekday()].Sales++
	}
	return buckets
}

// TodayCount counts sales on the same calendar day as now.
func (a *Aggregator) TodayCount(sales []domain.Sale, now time.Time) int {
	today := now.In(a.loc).Format(format.DayKeyLayout)
	n := 0
	for i := range sales {
		if sales[i].DateSold.In(a.loc).Format(format.DayKeyLayout) == today {
			n++
		}
	}
	return n
}
