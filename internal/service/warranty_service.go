package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/records"
	"github.com/andresuchdata/devicehub/internal/repository"
	"github.com/andresuchdata/devicehub/internal/warranty"
)

// WarrantyFilter selects rows on the warranty page.
type WarrantyFilter string

const (
	WarrantyFilterAll      WarrantyFilter = "all"
	WarrantyFilterActive   WarrantyFilter = "active"
	WarrantyFilterExpired  WarrantyFilter = "expired"
	WarrantyFilterExpiring WarrantyFilter = "expiring"
)

// ParseWarrantyFilter falls back to all for unknown input.
func ParseWarrantyFilter(raw string) WarrantyFilter {
	switch f := WarrantyFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case WarrantyFilterActive, WarrantyFilterExpired, WarrantyFilterExpiring:
		return f
	default:
		return WarrantyFilterAll
	}
}

type WarrantyService struct {
	deps
	calc *warranty.Calculator
}

func NewWarrantyService(store repository.Store, opts ...Option) *WarrantyService {
	d := newDeps(store, opts)
	return &WarrantyService{deps: d, calc: warranty.NewCalculator(d.now)}
}

// ListWarranties derives every warranty's status at read time. The summary
// covers all warranties regardless of filter and search.
func (s *WarrantyService) ListWarranties(ctx context.Context, filter WarrantyFilter, query string) (*domain.WarrantiesPage, error) {
	warranties, err := s.store.ListWarranties(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing warranties: %w", err)
	}

	page := &domain.WarrantiesPage{
		Summary:    s.calc.Summarize(warranties),
		Warranties: []domain.WarrantyRow{},
	}

	warranties = records.Search(warranties, query,
		records.Text(func(w domain.Warranty) string { return w.WarrantyID }),
		records.Text(func(w domain.Warranty) string { return w.CustomerName }),
		records.Text(func(w domain.Warranty) string { return w.DeviceInfo }),
		records.OptionalText(func(w domain.Warranty) *string { return w.IMEISerial }),
	)

	for _, w := range warranties {
		status := s.calc.Status(w.EndDate)
		if !matchesWarrantyFilter(filter, status) {
			continue
		}
		page.Warranties = append(page.Warranties, domain.WarrantyRow{
			Warranty:      w,
			LiveStatus:    status,
			DaysRemaining: s.calc.DaysRemaining(w.EndDate),
			StatusColor:   records.StatusColor(string(status)),
		})
	}
	return page, nil
}

func matchesWarrantyFilter(filter WarrantyFilter, status domain.WarrantyStatus) bool {
	switch filter {
	case WarrantyFilterActive:
		return status != domain.WarrantyExpired
	case WarrantyFilterExpired:
		return status == domain.WarrantyExpired
	case WarrantyFilterExpiring:
		return status == domain.WarrantyExpiringSoon
	default:
		return true
	}
}
