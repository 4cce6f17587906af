package warranty

import (
	"time"

	"github.com/andresuchdata/devicehub/internal/domain"
)

// ExpiringSoonDays is the window in which an active warranty is flagged as expiring.
const ExpiringSoonDays = 30

// EndDate advances start by the plan duration using calendar arithmetic.
// Day overflow rolls forward the way time.AddDate normalises it, so
// 2024-01-31 + 6 months is 2024-07-31 and 2024-08-31 + 6 months is 2025-03-03.
// An unknown plan returns start unchanged.
func EndDate(start time.Time, plan domain.WarrantyPlan) time.Time {
	switch plan {
	case domain.Plan6Months:
		return start.AddDate(0, 6, 0)
	case domain.Plan1Year:
		return start.AddDate(1, 0, 0)
	case domain.Plan2Years:
		return start.AddDate(2, 0, 0)
	default:
		return start
	}
}

// Calculator derives live warranty state relative to its clock.
type Calculator struct {
	now func() time.Time
}

// NewCalculator returns a Calculator on the wall clock when now is nil.
func NewCalculator(now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{now: now}
}

// IsActive is true iff end is a valid time strictly after now.
func (c *Calculator) IsActive(end time.Time) bool {
	return !end.IsZero() && end.After(c.now())
}

// DaysRemaining counts whole days from now until end, floored at zero.
// A zero end time yields zero.
func (c *Calculator) DaysRemaining(end time.Time) int {
	if end.IsZero() {
		return 0
	}
	days := int(end.Sub(c.now()) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}

// Status classifies end: expired once end is not after now, expiring_soon
// within ExpiringSoonDays, otherwise active. A warranty with less than a full
// day left is still expiring_soon, not expired.
func (c *Calculator) Status(end time.Time) domain.WarrantyStatus {
	if !c.IsActive(end) {
		return domain.WarrantyExpired
	}
	if c.DaysRemaining(end) > ExpiringSoonDays {
		return domain.WarrantyActive
	}
	return domain.WarrantyExpiringSoon
}

// Summarize counts warranties per derived status.
func (c *Calculator) Summarize(warranties []domain.Warranty) domain.WarrantySummary {
	var s domain.WarrantySummary
	for _, w := range warranties {
		switch c.Status(w.EndDate) {
		case domain.WarrantyActive:
			s.Active++
		case domain.WarrantyExpiringSoon:
			s.Active++
			s.ExpiringSoon++
		default:
			s.Expired++
		}
	}
	return s
}
