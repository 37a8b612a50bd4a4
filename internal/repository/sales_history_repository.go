// internal/repository/sales_history_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// SalesHistoryRepository is the durable table of observed daily sales/stock
// records. One row per calendar day; writes upsert, reads scan the full
// history for series reconstruction.
type SalesHistoryRepository interface {
	UpsertDay(ctx context.Context, record domain.DailyRecord) error
	GetAll(ctx context.Context) ([]domain.DailyRecord, error)
	BulkUpsert(ctx context.Context, records []domain.DailyRecord) error
}
