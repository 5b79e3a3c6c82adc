package cached

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/crickex/ledger/internal/adapter/repository/memory"
	"github.com/crickex/ledger/internal/domain"
)

// failingAccountStore simulates a durable store whose writes fail.
type failingAccountStore struct {
	*memory.AccountStore
	failPut bool
}

func (f *failingAccountStore) Put(ctx context.Context, account *domain.Account) error {
	if f.failPut {
		return domain.ErrStoreUnavailable
	}
	return f.AccountStore.Put(ctx, account)
}

func TestAccountStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	durable := memory.NewAccountStore()
	store := NewAccountStore(durable, zerolog.Nop())

	// Present only in the durable tier.
	acc := &domain.Account{UserID: "u1", Balance: decimal.NewFromInt(100)}
	if err := durable.Put(ctx, acc); err != nil {
		t.Fatalf("seed durable: %v", err)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil || !got.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("read-through failed: %v (%v)", got, err)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountStore_DurableFirstWrite(t *testing.T) {
	ctx := context.Background()
	durable := &failingAccountStore{AccountStore: memory.NewAccountStore()}
	store := NewAccountStore(durable, zerolog.Nop())

	acc := &domain.Account{UserID: "u1", Balance: decimal.NewFromInt(100)}
	if err := store.Put(ctx, acc); err != nil {
		t.Fatalf("put: %v", err)
	}

	// A failed durable write surfaces and must not leave a phantom cache
	// entry hiding the durable state.
	durable.failPut = true
	acc.Balance = decimal.NewFromInt(999)
	if err := store.Put(ctx, acc); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get after failed put: %v", err)
	}
	if !got.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("cache served the failed write: %s", got.Balance)
	}
}

func TestPositionStore_MarketEnumerationBypassesCache(t *testing.T) {
	ctx := context.Background()
	durable := memory.NewPositionStore()
	store := NewPositionStore(durable, zerolog.Nop())

	// A position written by another process exists only durably.
	p := &domain.Position{
		ID:        "p1",
		UserID:    "u1",
		MarketKey: "m1",
		Direction: domain.DirectionA,
		Quantity:  10,
		AvgPrice:  decimal.New(50, -2),
		Status:    domain.PositionStatusOpen,
	}
	if err := durable.Upsert(ctx, p); err != nil {
		t.Fatalf("seed durable: %v", err)
	}

	open, err := store.ListOpenByMarket(ctx, "m1")
	if err != nil || len(open) != 1 {
		t.Fatalf("expected the uncached position, got %v (%v)", open, err)
	}
}

func TestPositionStore_Warm(t *testing.T) {
	ctx := context.Background()
	durable := memory.NewPositionStore()
	store := NewPositionStore(durable, zerolog.Nop())

	p := &domain.Position{
		ID:        "p1",
		UserID:    "u1",
		MarketKey: "m1",
		Direction: domain.DirectionA,
		Quantity:  5,
		AvgPrice:  decimal.New(40, -2),
		Status:    domain.PositionStatusOpen,
	}
	if err := durable.Upsert(ctx, p); err != nil {
		t.Fatalf("seed durable: %v", err)
	}

	if err := store.Warm(ctx, "m1"); err != nil {
		t.Fatalf("warm: %v", err)
	}

	// After warming, the memory index can answer FindOpen without the
	// durable read-through.
	found, err := store.cache.FindOpen(ctx, "u1", "m1", domain.DirectionA)
	if err != nil || found == nil || found.ID != "p1" {
		t.Fatalf("expected warmed position in memory tier, got %v (%v)", found, err)
	}
}
