// Package cached composes the in-memory tier with the durable store behind
// the plain store interfaces. Writes go durable-first, then memory, so a
// failed durable write never leaves a phantom cache entry; reads are served
// from memory with read-through to the durable tier.
package cached

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/crickex/ledger/internal/adapter/repository/memory"
	"github.com/crickex/ledger/internal/domain"
	"github.com/crickex/ledger/internal/usecase"
)

// AccountStore is the two-tier account repository.
type AccountStore struct {
	durable usecase.AccountStore
	cache   *memory.AccountStore
	log     zerolog.Logger
}

// NewAccountStore creates a cached account store over a durable one.
func NewAccountStore(durable usecase.AccountStore, log zerolog.Logger) *AccountStore {
	return &AccountStore{
		durable: durable,
		cache:   memory.NewAccountStore(),
		log:     log.With().Str("component", "account-cache").Logger(),
	}
}

// Get serves the account from memory, falling through to the durable store
// and warming the cache on a miss.
func (s *AccountStore) Get(ctx context.Context, userID string) (*domain.Account, error) {
	if acc, err := s.cache.Get(ctx, userID); err == nil {
		return acc, nil
	}

	acc, err := s.durable.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, acc); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("cache warm failed")
	}
	return acc, nil
}

// Put writes the account durable-first. A cache failure after a durable
// write is logged and self-heals on the next read-through.
func (s *AccountStore) Put(ctx context.Context, account *domain.Account) error {
	if err := s.durable.Put(ctx, account); err != nil {
		s.cache.Evict(account.UserID)
		return err
	}

	if err := s.cache.Put(ctx, account); err != nil {
		s.cache.Evict(account.UserID)
		s.log.Warn().Err(err).Str("user_id", account.UserID).Msg("cache update failed")
	}
	return nil
}

// PositionStore is the two-tier position repository. The open indexes live
// in the memory tier; market-wide enumeration always hits the durable store
// so settlement sees positions that were never cached in this process.
type PositionStore struct {
	durable usecase.PositionStore
	cache   *memory.PositionStore
	log     zerolog.Logger
}

// NewPositionStore creates a cached position store over a durable one.
func NewPositionStore(durable usecase.PositionStore, log zerolog.Logger) *PositionStore {
	return &PositionStore{
		durable: durable,
		cache:   memory.NewPositionStore(),
		log:     log.With().Str("component", "position-cache").Logger(),
	}
}

// Warm loads a market's open positions into the memory tier.
func (s *PositionStore) Warm(ctx context.Context, marketKey string) error {
	positions, err := s.durable.ListOpenByMarket(ctx, marketKey)
	if err != nil {
		return err
	}
	for _, p := range positions {
		if err := s.cache.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Get reads through to the durable store on a memory miss.
func (s *PositionStore) Get(ctx context.Context, id string) (*domain.Position, error) {
	if p, err := s.cache.Get(ctx, id); err == nil {
		return p, nil
	}

	p, err := s.durable.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Upsert(ctx, p); err != nil {
		s.log.Warn().Err(err).Str("position_id", id).Msg("cache warm failed")
	}
	return p, nil
}

// FindOpen checks the memory index first, then the durable store.
func (s *PositionStore) FindOpen(ctx context.Context, userID, marketKey string, dir domain.Direction) (*domain.Position, error) {
	if p, err := s.cache.FindOpen(ctx, userID, marketKey, dir); err == nil && p != nil {
		return p, nil
	}

	p, err := s.durable.FindOpen(ctx, userID, marketKey, dir)
	if err != nil || p == nil {
		return p, err
	}

	if err := s.cache.Upsert(ctx, p); err != nil {
		s.log.Warn().Err(err).Str("position_id", p.ID).Msg("cache warm failed")
	}
	return p, nil
}

// Upsert writes durable-first, then maintains the memory indexes.
func (s *PositionStore) Upsert(ctx context.Context, position *domain.Position) error {
	if err := s.durable.Upsert(ctx, position); err != nil {
		return err
	}

	if err := s.cache.Upsert(ctx, position); err != nil {
		s.log.Warn().Err(err).Str("position_id", position.ID).Msg("cache update failed")
	}
	return nil
}

// ListOpenByUser enumerates from the durable store; the result refreshes
// the memory tier.
func (s *PositionStore) ListOpenByUser(ctx context.Context, userID string) ([]*domain.Position, error) {
	positions, err := s.durable.ListOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, p := range positions {
		if err := s.cache.Upsert(ctx, p); err != nil {
			break
		}
	}
	return positions, nil
}

// ListOpenByMarket always enumerates from the durable store: settlement
// must see every open position, cached here or not.
func (s *PositionStore) ListOpenByMarket(ctx context.Context, marketKey string) ([]*domain.Position, error) {
	return s.durable.ListOpenByMarket(ctx, marketKey)
}
