package pricecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/crickex/ledger/internal/domain"
)

// RedisSource implements usecase.PriceSource by reading price snapshots the
// ingest pipeline writes into Redis. Snapshots are external input and are
// validated before any price leaves this package.
type RedisSource struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisSource creates a new RedisSource. Keys are prefix+marketKey.
func NewRedisSource(client *redis.Client, prefix string, timeout time.Duration) *RedisSource {
	return &RedisSource{
		client:  client,
		prefix:  prefix,
		timeout: timeout,
	}
}

// Price returns the current price fraction for one side of a market.
func (s *RedisSource) Price(ctx context.Context, marketKey string, dir domain.Direction) (decimal.Decimal, error) {
	snap, err := s.Snapshot(ctx, marketKey)
	if err != nil {
		return decimal.Zero, err
	}
	return snap.Price(dir), nil
}

// Snapshot fetches and validates the raw snapshot for a market.
func (s *RedisSource) Snapshot(ctx context.Context, marketKey string) (*domain.PriceSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := s.client.Get(ctx, s.prefix+marketKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: no price for market %s", domain.ErrMarketUnavailable, marketKey)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMarketUnavailable, err)
	}

	var snap domain.PriceSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("%w: malformed snapshot for market %s: %v", domain.ErrMarketUnavailable, marketKey, err)
	}
	if snap.MarketKey == "" {
		snap.MarketKey = marketKey
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	return &snap, nil
}
