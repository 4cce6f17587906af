package analytics

import (
	"testing"
	"time"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sale(desc string, price int64, at time.Time) domain.Sale {
	return domain.Sale{
		ItemDescription: desc,
		Price:           decimal.NewFromInt(price),
		DateSold:        at,
	}
}

func unlimited() *Aggregator {
	return NewAggregator(Config{Location: time.UTC})
}

func TestTrend(t *testing.T) {
	assert.Equal(t, 0.0, Trend(0, 0))
	assert.Equal(t, 100.0, Trend(5, 0))
	assert.Equal(t, 100.0, Trend(10, 5))
	assert.Equal(t, -50.0, Trend(5, 10))
	assert.Equal(t, -100.0, Trend(0, 4))
}

func TestPeriodCount_HalfOpen(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	sales := []domain.Sale{
		sale("a", 1, from),                       // lower bound included
		sale("a", 1, to),                         // upper bound excluded
		sale("a", 1, to.Add(-time.Nanosecond)),   // just inside
		sale("a", 1, from.Add(-time.Nanosecond)), // just outside
	}
	assert.Equal(t, 2, PeriodCount(sales, from, to))
	assert.Equal(t, 0, PeriodCount(nil, from, to))
}

func TestBrandOf(t *testing.T) {
	assert.Equal(t, "Apple", BrandOf("Apple iPhone 15 128GB"))
	assert.Equal(t, "Samsung", BrandOf("  Samsung Galaxy"))
	assert.Equal(t, "Google", BrandOf("Google"))
	assert.Equal(t, UnknownBrand, BrandOf(""))
	assert.Equal(t, UnknownBrand, BrandOf("   "))
	// multi-word brands are split on purpose
	assert.Equal(t, "One", BrandOf("One Plus 12"))
}

func TestAggregator_Stats(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	agg := unlimited()

	t.Run("new activity trend is 100 not infinite", func(t *testing.T) {
		sales := []domain.Sale{
			sale("Apple iPhone", 1, now.Add(-1*time.Hour)),
			sale("Apple iPhone", 1, now.AddDate(0, 0, -2)),
			sale("Apple iPhone", 1, now.AddDate(0, 0, -6)),
		}
		stats := agg.Stats(sales, now)
		assert.Equal(t, 3, stats.WeeklySales)
		assert.Equal(t, 0, stats.PreviousWeeklySales)
		assert.Equal(t, 100.0, stats.WeeklyTrend)
	})

	t.Run("previous windows are adjacent and equal length", func(t *testing.T) {
		sales := []domain.Sale{
			sale("x", 1, now.AddDate(0, 0, -1)),  // this week
			sale("x", 1, now.AddDate(0, 0, -8)),  // previous week
			sale("x", 1, now.AddDate(0, 0, -10)), // previous week
			sale("x", 1, now.AddDate(0, 0, -14)), // previous week lower bound
			sale("x", 1, now.AddDate(0, 0, -40)), // previous month
			sale("x", 1, now.AddDate(0, 0, -61)), // outside both months
		}
		stats := agg.Stats(sales, now)
		assert.Equal(t, 1, stats.WeeklySales)
		assert.Equal(t, 3, stats.PreviousWeeklySales)
		assert.Equal(t, 4, stats.MonthlySales)
		assert.Equal(t, 1, stats.PreviousMonthlySales)
		assert.InDelta(t, -66.666, stats.WeeklyTrend, 0.01)
		assert.Equal(t, 300.0, stats.MonthlyTrend)
		assert.InDelta(t, 4.0/30.0, stats.AvgDailySales, 1e-9)
	})

	t.Run("sales at now are not counted yet", func(t *testing.T) {
		stats := agg.Stats([]domain.Sale{sale("x", 1, now)}, now)
		assert.Equal(t, 0, stats.WeeklySales)
		assert.Equal(t, 0, stats.MonthlySales)
	})

	t.Run("empty input", func(t *testing.T) {
		stats := agg.Stats(nil, now)
		assert.Equal(t, domain.DashboardStats{}, stats)
	})
}

func TestAggregator_MonthlyAverage(t *testing.T) {
	agg := unlimited()
	sales := []domain.Sale{
		sale("x", 1, time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)),
		sale("x", 1, time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)),
		sale("x", 1, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)),
		sale("x", 1, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
	}
	// two distinct months, the empty month in between does not count
	assert.Equal(t, 2.0, agg.MonthlyAverage(sales))
	assert.Equal(t, 0.0, agg.MonthlyAverage(nil))
}

func TestAggregator_MonthlyAverage_UsesLocation(t *testing.T) {
	dar := time.FixedZone("EAT", 3*60*60)
	agg := NewAggregator(Config{Location: dar})
	sales := []domain.Sale{
		sale("x", 1, time.Date(2025, 4, 30, 22, 0, 0, 0, time.UTC)), // May 1st in EAT
		sale("x", 1, time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)),
	}
	assert.Equal(t, 2.0, agg.MonthlyAverage(sales))
}

func TestAggregator_Scenario(t *testing.T) {
	monday := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	tuesday := time.Date(2025, 6, 3, 15, 0, 0, 0, time.UTC)
	sales := []domain.Sale{
		sale("Apple iPhone 15", 100000, monday),
		sale("Apple iPhone 15", 50000, monday.Add(3*time.Hour)),
		sale("Samsung Galaxy", 75000, tuesday),
	}
	agg := NewAggregator(DefaultConfig())

	daily := agg.DailySeries(sales)
	require.Len(t, daily, 2)
	assert.Equal(t, "2025-06-02", daily[0].Date)
	assert.Equal(t, 2, daily[0].Sales)
	assert.True(t, decimal.NewFromInt(150000).Equal(daily[0].Revenue))
	assert.Equal(t, "2025-06-03", daily[1].Date)
	assert.Equal(t, 1, daily[1].Sales)
	assert.True(t, decimal.NewFromInt(75000).Equal(daily[1].Revenue))

	brands := agg.BrandSeries(sales)
	require.Len(t, brands, 2)
	assert.Equal(t, "Apple", brands[0].Brand)
	assert.Equal(t, 2, brands[0].Sales)
	assert.True(t, decimal.NewFromInt(150000).Equal(brands[0].Revenue))
	assert.Equal(t, "Samsung", brands[1].Brand)
	assert.Equal(t, 1, brands[1].Sales)

	hist := agg.WeekdayHistogram(sales)
	require.Len(t, hist, 7)
	assert.Equal(t, 2, hist[time.Monday].Sales)
	assert.Equal(t, 1, hist[time.Tuesday].Sales)
	assert.Equal(t, "Sun", hist[0].Label)
}

func TestAggregator_RevenueConservation(t *testing.T) {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	brands := []string{"Apple iPhone", "Samsung A15", "Tecno Spark", "", "Infinix Hot", "Xiaomi Redmi", "Oppo A78", "Nokia G21"}
	var sales []domain.Sale
	for i := 0; i < 120; i++ {
		price := decimal.NewFromFloat(1234.56).Mul(decimal.NewFromInt(int64(i%9 + 1)))
		sales = append(sales, domain.Sale{
			ItemDescription: brands[i%len(brands)],
			Price:           price,
			DateSold:        base.Add(time.Duration(i*7) * time.Hour),
		})
	}

	agg := unlimited()
	total := TotalRevenue(sales)

	brandTotal := decimal.Zero
	brandCount := 0
	for _, b := range agg.BrandSeries(sales) {
		brandTotal = brandTotal.Add(b.Revenue)
		brandCount += b.Sales
	}
	dayTotal := decimal.Zero
	dayCount := 0
	for _, d := range agg.DailySeries(sales) {
		dayTotal = dayTotal.Add(d.Revenue)
		dayCount += d.Sales
	}
	histCount := 0
	for _, b := range agg.WeekdayHistogram(sales) {
		histCount += b.Sales
	}

	assert.True(t, total.Equal(brandTotal), "brand total %s != %s", brandTotal, total)
	assert.True(t, total.Equal(dayTotal), "daily total %s != %s", dayTotal, total)
	assert.Equal(t, len(sales), brandCount)
	assert.Equal(t, len(sales), dayCount)
	assert.Equal(t, len(sales), histCount)
}

func TestAggregator_Truncation(t *testing.T) {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	var sales []domain.Sale
	for i := 0; i < 20; i++ {
		sales = append(sales, sale("Brand"+string(rune('A'+i))+" X", 10, base.AddDate(0, 0, i)))
	}
	// BrandA sells most
	sales = append(sales, sale("BrandA X", 10, base))

	agg := NewAggregator(Config{Location: time.UTC, DailySeriesLimit: 14, TopBrands: 3})

	daily := agg.DailySeries(sales)
	require.Len(t, daily, 14)
	assert.Equal(t, "2025-05-07", daily[0].Date)
	assert.Equal(t, "2025-05-20", daily[13].Date)

	top := agg.BrandSeries(sales)
	require.Len(t, top, 3)
	assert.Equal(t, "BrandA", top[0].Brand)
	// ties keep first-seen order
	assert.Equal(t, "BrandB", top[1].Brand)
	assert.Equal(t, "BrandC", top[2].Brand)
}

func TestAggregator_EmptyInput(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	assert.Empty(t, agg.DailySeries(nil))
	assert.Empty(t, agg.BrandSeries(nil))
	assert.NotNil(t, agg.DailySeries(nil))
	assert.NotNil(t, agg.BrandSeries(nil))

	hist := agg.WeekdayHistogram(nil)
	require.Len(t, hist, 7)
	for _, b := range hist {
		assert.Zero(t, b.Sales)
	}
	assert.True(t, TotalRevenue(nil).IsZero())
	assert.Zero(t, agg.TodayCount(nil, time.Now()))
}

func TestAggregator_TodayCount(t *testing.T) {
	now := time.Date(2025, 6, 3, 18, 0, 0, 0, time.UTC)
	agg := unlimited()
	sales := []domain.Sale{
		sale("x", 1, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)),
		sale("x", 1, time.Date(2025, 6, 3, 23, 59, 0, 0, time.UTC)),
		sale("x", 1, time.Date(2025, 6, 2, 23, 59, 0, 0, time.UTC)),
	}
	assert.Equal(t, 2, agg.TodayCount(sales, now))
}
