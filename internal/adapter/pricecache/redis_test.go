package pricecache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	"github.com/crickex/ledger/internal/domain"
)

func newTestSource(t *testing.T) (*RedisSource, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisSource(client, "odds:", 2*time.Second), mr
}

func TestRedisSourcePrice(t *testing.T) {
	src, mr := newTestSource(t)
	mr.Set("odds:match-42", `{"version":1,"market_key":"match-42","team_a":"IND","team_b":"AUS","price_a":62,"price_b":38}`)

	price, err := src.Price(context.Background(), "match-42", domain.DirectionA)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if price.String() != "0.62" {
		t.Fatalf("expected 0.62, got %s", price)
	}

	price, err = src.Price(context.Background(), "match-42", domain.DirectionB)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if price.String() != "0.38" {
		t.Fatalf("expected 0.38, got %s", price)
	}
}

func TestRedisSourceMissingMarket(t *testing.T) {
	src, _ := newTestSource(t)

	_, err := src.Price(context.Background(), "match-gone", domain.DirectionA)
	if !errors.Is(err, domain.ErrMarketUnavailable) {
		t.Fatalf("expected ErrMarketUnavailable, got %v", err)
	}
}

func TestRedisSourceMalformedPayload(t *testing.T) {
	src, mr := newTestSource(t)
	mr.Set("odds:match-42", `{not json`)

	_, err := src.Price(context.Background(), "match-42", domain.DirectionA)
	if !errors.Is(err, domain.ErrMarketUnavailable) {
		t.Fatalf("expected ErrMarketUnavailable, got %v", err)
	}
}

func TestRedisSourceRejectsOutOfRangePrice(t *testing.T) {
	src, mr := newTestSource(t)
	mr.Set("odds:match-42", `{"version":1,"market_key":"match-42","price_a":0,"price_b":100}`)

	_, err := src.Price(context.Background(), "match-42", domain.DirectionA)
	if !errors.Is(err, domain.ErrMarketUnavailable) {
		t.Fatalf("expected ErrMarketUnavailable, got %v", err)
	}
}

func TestRedisSourceRejectsUnknownVersion(t *testing.T) {
	src, mr := newTestSource(t)
	mr.Set("odds:match-42", `{"version":7,"market_key":"match-42","price_a":50,"price_b":50}`)

	_, err := src.Snapshot(context.Background(), "match-42")
	if !errors.Is(err, domain.ErrMarketUnavailable) {
		t.Fatalf("expected ErrMarketUnavailable, got %v", err)
	}
}
