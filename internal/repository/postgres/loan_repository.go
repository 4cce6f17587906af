package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/jmoiron/sqlx"
)

const loanColumns = `
	id, loan_id, loaner_name, loaner_contact, device_id, gadget_id, gadget_quantity,
	item_description, status, date_loaned, date_returned, expected_return_date,
	notes, created_at, updated_at`

func (s *Store) ListLoans(ctx context.Context, status domain.LoanStatus) ([]domain.Loan, error) {
	query := `SELECT` + loanColumns + ` FROM loans`

	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY date_loaned DESC`

	loans := []domain.Loan{}
	if err := sqlx.SelectContext(ctx, s.q, &loans, query, args...); err != nil {
		return nil, fmt.Errorf("error listing loans: %w", err)
	}
	return loans, nil
}

func (s *Store) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	var loan domain.Loan
	query := `SELECT` + loanColumns + ` FROM loans WHERE id = $1`
	if err := s.get(ctx, &loan, "error getting loan", query, id); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (s *Store) CreateLoan(ctx context.Context, loan *domain.Loan) error {
	if err := loan.CheckItemRef(); err != nil {
		return err
	}

	query := `
		INSERT INTO loans (
			loan_id, loaner_name, loaner_contact, device_id, gadget_id, gadget_quantity,
			item_description, status, date_loaned, expected_return_date, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := s.q.QueryRowxContext(ctx, query,
		loan.LoanID,
		loan.LoanerName,
		loan.LoanerContact,
		loan.DeviceID,
		loan.GadgetID,
		loan.GadgetQuantity,
		loan.ItemDescription,
		loan.Status,
		loan.DateLoaned,
		loan.ExpectedReturnDate,
		loan.Notes,
	).Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating loan: %w", err)
	}
	return nil
}

func (s *Store) DeleteLoan(ctx context.Context, id string) error {
	return s.exec(ctx, "error deleting loan", `DELETE FROM loans WHERE id = $1`, id)
}

// UpdateLoanStatus moves a loan from one status to another. Reopening a loan
// (to active) clears date_returned; otherwise a nil returnedAt keeps it. A loan
// no longer in status from is reported as domain.ErrLoanClosed.
func (s *Store) UpdateLoanStatus(ctx context.Context, id string, from, to domain.LoanStatus, returnedAt *time.Time) error {
	query := `
		UPDATE loans SET
			status = $3::text,
			date_returned = CASE
				WHEN $3::text = 'active' THEN NULL
				ELSE COALESCE($4, date_returned) END,
			updated_at = NOW()
		WHERE id = $1 AND status = $2`

	return s.transition(ctx, "error updating loan status", "loans", domain.ErrLoanClosed, query, id, from, to, returnedAt)
}
