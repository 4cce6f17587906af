package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/andresuchdata/devicehub/internal/analytics"
	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/format"
)

// salesReport holds the series exported for one window of sales.
type salesReport struct {
	From     time.Time
	To       time.Time
	Currency string
	Daily    []domain.SalesChartPoint
	Brands   []domain.BrandSales
	Weekdays []domain.WeekdayBucket
	Total    int
}

func buildSalesReport(agg *analytics.Aggregator, sales []domain.Sale, from, to time.Time, currency string) salesReport {
	inWindow := make([]domain.Sale, 0, len(sales))
	for i := range sales {
		if !sales[i].DateSold.Before(from) && sales[i].DateSold.Before(to) {
			inWindow = append(inWindow, sales[i])
		}
	}
	return salesReport{
		From:     from,
		To:       to,
		Currency: currency,
		Daily:    agg.DailySeries(inWindow),
		Brands:   agg.BrandSeries(inWindow),
		Weekdays: agg.WeekdayHistogram(inWindow),
		Total:    len(inWindow),
	}
}

func (r salesReport) dailyCSV() ([]byte, error) {
	rows := [][]string{{"date", "sales", "revenue", "revenue_display"}}
	for _, p := range r.Daily {
		rows = append(rows, []string{
			p.Date,
			strconv.Itoa(p.Sales),
			p.Revenue.StringFixed(2),
			format.FormatCurrency(p.Revenue, r.Currency),
		})
	}
	return writeCSV(rows)
}

func (r salesReport) brandsCSV() ([]byte, error) {
	rows := [][]string{{"brand", "sales", "share_pct", "revenue", "revenue_display"}}
	for _, b := range r.Brands {
		share := 0.0
		if r.Total > 0 {
			share = float64(b.Sales) * 100 / float64(r.Total)
		}
		rows = append(rows, []string{
			b.Brand,
			strconv.Itoa(b.Sales),
			strconv.FormatFloat(share, 'f', 1, 64),
			b.Revenue.StringFixed(2),
			format.FormatCurrency(b.Revenue, r.Currency),
		})
	}
	return writeCSV(rows)
}

func (r salesReport) weekdaysCSV() ([]byte, error) {
	rows := [][]string{{"day", "label", "sales"}}
	for _, w := range r.Weekdays {
		rows = append(rows, []string{strconv.Itoa(w.Day), w.Label, strconv.Itoa(w.Sales)})
	}
	return writeCSV(rows)
}

// files maps output file names to their contents, stamped with the window end.
func (r salesReport) files() (map[string][]byte, error) {
	stamp := r.To.Format("20060102")
	out := make(map[string][]byte, 3)
	for name, render := range map[string]func() ([]byte, error){
		"sales_daily":    r.dailyCSV,
		"sales_brands":   r.brandsCSV,
		"sales_weekdays": r.weekdaysCSV,
	} {
		data, err := render()
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", name, err)
		}
		out[fmt.Sprintf("%s_%s.csv", name, stamp)] = data
	}
	return out, nil
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
