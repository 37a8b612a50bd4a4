// internal/store/store.go
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// DataPointStore is the keyed-by-date record store the ingestion surface
// writes into. The pipeline's only contract with it is point writes plus a
// full scan for series reconstruction.
type DataPointStore interface {
	Put(ctx context.Context, record domain.DailyRecord) error
	ScanAll(ctx context.Context) ([]domain.DailyRecord, error)
}

// MemoryStore is an in-process DataPointStore used in tests and when no Redis
// is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.DailyRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]domain.DailyRecord)}
}

func (s *MemoryStore) Put(ctx context.Context, record domain.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Date.Format(domain.DateLayout)] = record
	return nil
}

func (s *MemoryStore) ScanAll(ctx context.Context) ([]domain.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DailyRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

var _ DataPointStore = (*MemoryStore)(nil)
