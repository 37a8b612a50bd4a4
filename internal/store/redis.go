// internal/store/redis.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
)

const scanBatchSize = 100

// RedisStore persists one JSON record per calendar day under
// <prefix>:<YYYY-MM-DD>. Records never expire; the store is the system's
// durable point-write table.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(cfg config.StoreConfig) (*RedisStore, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "stockcast:datapoint"
	}

	return &RedisStore{client: client, prefix: prefix}, nil
}

func buildRedisOptions(cfg config.StoreConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

type storedRecord struct {
	Date  string  `json:"date"`
	Sales float64 `json:"sales"`
	Stock float64 `json:"stock"`
}

func (s *RedisStore) key(date time.Time) string {
	return fmt.Sprintf("%s:%s", s.prefix, date.Format(domain.DateLayout))
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Put upserts the record for its calendar day.
func (s *RedisStore) Put(ctx context.Context, record domain.DailyRecord) error {
	payload, err := json.Marshal(storedRecord{
		Date:  record.Date.Format(domain.DateLayout),
		Sales: record.Sales,
		Stock: record.Stock,
	})
	if err != nil {
		return fmt.Errorf("encode data point: %w", err)
	}

	if err := s.client.Set(ctx, s.key(record.Date), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// ScanAll walks every stored day and returns the records sorted by date. The
// caller rebuilds a DailySeries from the result.
func (s *RedisStore) ScanAll(ctx context.Context) ([]domain.DailyRecord, error) {
	var records []domain.DailyRecord

	var cursor uint64
	pattern := s.prefix + ":*"
	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan failed: %w", err)
		}

		for _, key := range keys {
			payload, err := s.client.Get(ctx, key).Bytes()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("redis get failed: %w", err)
			}

			var stored storedRecord
			if err := json.Unmarshal(payload, &stored); err != nil {
				return nil, fmt.Errorf("decode data point %s: %w", key, err)
			}
			date, err := time.Parse(domain.DateLayout, stored.Date)
			if err != nil {
				return nil, fmt.Errorf("%w: stored key %s", domain.ErrDateParse, key)
			}

			records = append(records, domain.DailyRecord{
				Date:  date,
				Sales: stored.Sales,
				Stock: stored.Stock,
			})
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	// Scan order is unspecified; sort before handing to the loader.
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}

var _ DataPointStore = (*RedisStore)(nil)
