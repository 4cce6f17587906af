package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/jmoiron/sqlx"
)

func (s *Store) ListSales(ctx context.Context, since time.Time) ([]domain.Sale, error) {
	query := `
		SELECT
			id, sale_id, customer_id, customer_name, sale_type, sale_price,
			sale_source, device_id, gadget_id, gadget_quantity, item_description,
			loan_id, date_sold, created_at, updated_at
		FROM sales
		WHERE date_sold >= $1
		ORDER BY date_sold DESC`

	sales := []domain.Sale{}
	if err := sqlx.SelectContext(ctx, s.q, &sales, query, since); err != nil {
		return nil, fmt.Errorf("error listing sales: %w", err)
	}
	return sales, nil
}

func (s *Store) CreateSale(ctx context.Context, sale *domain.Sale) error {
	if err := sale.CheckItemRef(); err != nil {
		return err
	}

	query := `
		INSERT INTO sales (
			sale_id, customer_id, customer_name, sale_type, sale_price, sale_source,
			device_id, gadget_id, gadget_quantity, item_description, loan_id, date_sold
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := s.q.QueryRowxContext(ctx, query,
		sale.SaleID,
		sale.CustomerID,
		sale.CustomerName,
		sale.SaleType,
		sale.Price,
		sale.Source,
		sale.DeviceID,
		sale.GadgetID,
		sale.GadgetQuantity,
		sale.ItemDescription,
		sale.LoanID,
		sale.DateSold,
	).Scan(&sale.ID, &sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating sale: %w", err)
	}
	return nil
}

func (s *Store) DeleteSale(ctx context.Context, id string) error {
	return s.exec(ctx, "error deleting sale", `DELETE FROM sales WHERE id = $1`, id)
}
