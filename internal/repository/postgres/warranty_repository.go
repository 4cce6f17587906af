package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/jmoiron/sqlx"
)

func (s *Store) ListWarranties(ctx context.Context) ([]domain.Warranty, error) {
	query := `
		SELECT
			w.id, w.warranty_id, w.sale_id, w.device_id, w.customer_name, w.device_info,
			w.warranty_start_date, w.warranty_end_date, w.warranty_duration, w.status,
			d.imei_serial, w.created_at, w.updated_at
		FROM warranties w
		LEFT JOIN devices d ON d.id = w.device_id
		ORDER BY w.warranty_end_date`

	warranties := []domain.Warranty{}
	if err := sqlx.SelectContext(ctx, s.q, &warranties, query); err != nil {
		return nil, fmt.Errorf("error listing warranties: %w", err)
	}
	return warranties, nil
}

func (s *Store) CreateWarranty(ctx context.Context, w *domain.Warranty) error {
	query := `
		INSERT INTO warranties (
			warranty_id, sale_id, device_id, customer_name, device_info,
			warranty_start_date, warranty_end_date, warranty_duration, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := s.q.QueryRowxContext(ctx, query,
		w.WarrantyID,
		w.SaleID,
		w.DeviceID,
		w.CustomerName,
		w.DeviceInfo,
		w.StartDate,
		w.EndDate,
		w.Duration,
		w.Status,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating warranty: %w", err)
	}
	return nil
}

func (s *Store) DeleteWarranty(ctx context.Context, id string) error {
	return s.exec(ctx, "error deleting warranty", `DELETE FROM warranties WHERE id = $1`, id)
}
