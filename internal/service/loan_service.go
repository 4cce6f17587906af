package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/format"
	"github.com/andresuchdata/devicehub/internal/records"
	"github.com/andresuchdata/devicehub/internal/repository"
	"github.com/rs/zerolog/log"
)

type LoanService struct {
	deps
}

func NewLoanService(store repository.Store, opts ...Option) *LoanService {
	return &LoanService{deps: newDeps(store, opts)}
}

// CreateLoan hands a device or some gadget units to a reseller. The loan row
// is written first, then the stock change; a failed stock change removes the loan.
func (s *LoanService) CreateLoan(ctx context.Context, form domain.CreateLoanForm) (*domain.Loan, error) {
	form.LoanerName = strings.TrimSpace(form.LoanerName)
	form.LoanerContact = strings.TrimSpace(form.LoanerContact)

	verr := validateForm(&form)
	if verr.HasErrors() {
		return nil, verr
	}

	now := s.now()
	loan := &domain.Loan{
		LoanID:             format.NewBusinessID("LOAN"),
		LoanerName:         form.LoanerName,
		LoanerContact:      optional(form.LoanerContact),
		Status:             domain.LoanActive,
		DateLoaned:         now,
		ExpectedReturnDate: form.ExpectedReturnDate,
		Notes:              optional(strings.TrimSpace(form.Notes)),
	}

	var quantity int
	switch form.ItemType {
	case domain.ItemTypeDevice:
		device, err := s.store.GetDevice(ctx, form.ItemID)
		if err != nil {
			return nil, fmt.Errorf("looking up device: %w", err)
		}
		if device.Status != domain.DeviceAvailable {
			return nil, fmt.Errorf("device %s is %s: %w", device.IMEISerial, device.Status, domain.ErrItemUnavailable)
		}
		loan.DeviceID = &device.ID
		loan.ItemDescription = records.ItemDescription(device.Brand, device.Model, device.Capacity, device.Color)
	default:
		gadget, err := s.store.GetGadget(ctx, form.ItemID)
		if err != nil {
			return nil, fmt.Errorf("looking up gadget: %w", err)
		}
		quantity = max(form.GadgetQuantity, 1)
		if gadget.Quantity < quantity {
			return nil, fmt.Errorf("%d requested, %d in stock: %w", quantity, gadget.Quantity, domain.ErrInsufficientStock)
		}
		loan.GadgetID = &gadget.ID
		loan.GadgetQuantity = &quantity
		loan.ItemDescription = records.ItemDescription(gadget.Brand, gadget.Model, nil, nil)
	}

	tx := newSaga("create_loan", s.metrics)

	if err := s.store.CreateLoan(ctx, loan); err != nil {
		return nil, fmt.Errorf("recording loan: %w", err)
	}
	tx.done("loan", func(ctx context.Context) error {
		return s.store.DeleteLoan(ctx, loan.ID)
	})

	if loan.DeviceID != nil {
		if err := s.store.UpdateDeviceStatus(ctx, *loan.DeviceID, domain.DeviceAvailable, domain.DeviceLoaned); err != nil {
			return nil, tx.abort(ctx, fmt.Errorf("marking device loaned: %w", err))
		}
	} else {
		if _, err := s.store.AdjustGadgetQuantity(ctx, *loan.GadgetID, -quantity); err != nil {
			return nil, tx.abort(ctx, fmt.Errorf("reducing gadget stock: %w", err))
		}
	}

	s.invalidateDashboard(ctx)
	log.Info().Str("loan_id", loan.LoanID).Str("loaner", loan.LoanerName).Str("item", loan.ItemDescription).Msg("loan created")
	return loan, nil
}

func (s *LoanService) activeLoan(ctx context.Context, id string) (*domain.Loan, error) {
	loan, err := s.store.GetLoan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("looking up loan: %w", err)
	}
	if loan.Status != domain.LoanActive {
		return nil, fmt.Errorf("loan %s is %s: %w", loan.LoanID, loan.Status, domain.ErrLoanClosed)
	}
	if err := loan.CheckItemRef(); err != nil {
		return nil, err
	}
	return loan, nil
}

// ReturnLoan puts the item back on the shelf and closes the loan.
func (s *LoanService) ReturnLoan(ctx context.Context, id string) (*domain.Loan, error) {
	loan, err := s.activeLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	tx := newSaga("return_loan", s.metrics)
	now := s.now()

	if err := s.store.UpdateLoanStatus(ctx, loan.ID, domain.LoanActive, domain.LoanReturned, &now); err != nil {
		return nil, fmt.Errorf("closing loan: %w", err)
	}
	tx.done("loan_status", func(ctx context.Context) error {
		return s.store.UpdateLoanStatus(ctx, loan.ID, domain.LoanReturned, domain.LoanActive, nil)
	})

	if loan.DeviceID != nil {
		err = s.store.UpdateDeviceStatus(ctx, *loan.DeviceID, domain.DeviceLoaned, domain.DeviceAvailable)
	} else {
		_, err = s.store.AdjustGadgetQuantity(ctx, *loan.GadgetID, loan.ReturnQuantity())
	}
	if err != nil {
		return nil, tx.abort(ctx, fmt.Errorf("restocking loaned item: %w", err))
	}

	loan.Status = domain.LoanReturned
	loan.DateReturned = &now
	s.invalidateDashboard(ctx)
	log.Info().Str("loan_id", loan.LoanID).Msg("loan returned")
	return loan, nil
}

// SellLoan converts an active loan into a sale. The loaned stock already left
// the shelf, so only a loaned device changes status. Loan sales carry no warranty.
func (s *LoanService) SellLoan(ctx context.Context, id string, form domain.SellLoanForm) (*domain.Sale, error) {
	form.CustomerName = strings.TrimSpace(form.CustomerName)

	verr := validateForm(&form)
	requirePositive(verr, "sale_price", form.SalePrice)
	if verr.HasErrors() {
		return nil, verr
	}

	loan, err := s.activeLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sale := &domain.Sale{
		SaleID:          format.NewBusinessID("SALE"),
		CustomerName:    form.CustomerName,
		SaleType:        domain.SaleRetail,
		Price:           form.SalePrice,
		Source:          domain.SourceLoan,
		DeviceID:        loan.DeviceID,
		GadgetID:        loan.GadgetID,
		GadgetQuantity:  loan.GadgetQuantity,
		ItemDescription: loan.ItemDescription,
		LoanID:          &loan.ID,
		DateSold:        now,
	}

	tx := newSaga("sell_loan", s.metrics)

	if err := s.store.CreateSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("recording sale: %w", err)
	}
	tx.done("sale", func(ctx context.Context) error {
		return s.store.DeleteSale(ctx, sale.ID)
	})

	if err := s.store.UpdateLoanStatus(ctx, loan.ID, domain.LoanActive, domain.LoanSold, &now); err != nil {
		return nil, tx.abort(ctx, fmt.Errorf("closing loan: %w", err))
	}
	tx.done("loan_status", func(ctx context.Context) error {
		return s.store.UpdateLoanStatus(ctx, loan.ID, domain.LoanSold, domain.LoanActive, nil)
	})

	if loan.DeviceID != nil {
		if err := s.store.UpdateDeviceStatus(ctx, *loan.DeviceID, domain.DeviceLoaned, domain.DeviceSold); err != nil {
			return nil, tx.abort(ctx, fmt.Errorf("marking device sold: %w", err))
		}
	}

	s.metrics.SaleRecorded(string(sale.Source))
	s.invalidateDashboard(ctx)
	log.Info().Str("sale_id", sale.SaleID).Str("loan_id", loan.LoanID).Msg("loan sold")
	return sale, nil
}

// LoanQuery filters the loans listing. An empty status means all loans.
type LoanQuery struct {
	Status domain.LoanStatus
	Search string
}

// ListLoans returns the filtered rows; the counters always cover every loan.
func (s *LoanService) ListLoans(ctx context.Context, q LoanQuery) (*domain.LoansPage, error) {
	loans, err := s.store.ListLoans(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}

	now := s.now()
	page := &domain.LoansPage{Loans: []domain.LoanRow{}}
	for i := range loans {
		switch loans[i].Status {
		case domain.LoanActive:
			page.Active++
		case domain.LoanReturned:
			page.Returned++
		case domain.LoanSold:
			page.Sold++
		}
		if loans[i].IsOverdue(now) {
			page.Overdue++
		}
	}

	if q.Status != "" {
		loans = records.Filter(loans, func(l domain.Loan) bool { return l.Status == q.Status })
	}
	loans = records.Search(loans, q.Search,
		records.Text(func(l domain.Loan) string { return l.LoanID }),
		records.Text(func(l domain.Loan) string { return l.LoanerName }),
		records.Text(func(l domain.Loan) string { return l.ItemDescription }),
	)

	for _, l := range loans {
		page.Loans = append(page.Loans, domain.LoanRow{
			Loan:        l,
			Overdue:     l.IsOverdue(now),
			StatusColor: records.StatusColor(string(l.Status)),
		})
	}
	return page, nil
}
