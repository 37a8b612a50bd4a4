// internal/repository/postgres/sales_history_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/repository"
)

type salesHistoryRepository struct {
	db *DB
}

// NewSalesHistoryRepository builds the Postgres-backed daily sales history.
func NewSalesHistoryRepository(db *DB) repository.SalesHistoryRepository {
	return &salesHistoryRepository{db: db}
}

type salesHistoryRow struct {
	Day   time.Time `db:"day"`
	Sales float64   `db:"sales"`
	Stock float64   `db:"stock"`
}

func (r *salesHistoryRepository) UpsertDay(ctx context.Context, record domain.DailyRecord) error {
	query := `
        INSERT INTO sales_history (day, sales, stock, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (day)
        DO UPDATE SET
            sales = EXCLUDED.sales,
            stock = EXCLUDED.stock,
            updated_at = NOW()
    `

	if _, err := r.db.ExecContext(ctx, query, record.Date, record.Sales, record.Stock); err != nil {
		return fmt.Errorf("error upserting sales history for %s: %w",
			record.Date.Format(domain.DateLayout), err)
	}
	return nil
}

func (r *salesHistoryRepository) BulkUpsert(ctx context.Context, records []domain.DailyRecord) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
            INSERT INTO sales_history (day, sales, stock, updated_at)
            VALUES ($1, $2, $3, NOW())
            ON CONFLICT (day)
            DO UPDATE SET
                sales = EXCLUDED.sales,
                stock = EXCLUDED.stock,
                updated_at = NOW()
        `)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, record := range records {
			if _, err := stmt.ExecContext(ctx, record.Date, record.Sales, record.Stock); err != nil {
				return fmt.Errorf("failed to insert record for %s: %w",
					record.Date.Format(domain.DateLayout), err)
			}
		}
		return nil
	})
}

func (r *salesHistoryRepository) GetAll(ctx context.Context) ([]domain.DailyRecord, error) {
	query := `
        SELECT day, sales, stock
        FROM sales_history
        ORDER BY day ASC
    `

	var rows []salesHistoryRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error scanning sales history: %w", err)
	}

	records := make([]domain.DailyRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.DailyRecord{
			Date:  row.Day,
			Sales: row.Sales,
			Stock: row.Stock,
		})
	}
	return records, nil
}
