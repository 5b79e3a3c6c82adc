// Package memory provides in-memory implementations of the store
// interfaces. They serve two roles: the fast tier of the two-tier cached
// repositories, and standalone stores for tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/crickex/ledger/internal/domain"
)

// AccountStore is a map-backed account store.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]domain.Account)}
}

// Get returns a copy of the account, or domain.ErrAccountNotFound.
func (s *AccountStore) Get(_ context.Context, userID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &acc, nil
}

// Put inserts or replaces the account.
func (s *AccountStore) Put(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[account.UserID] = *account
	return nil
}

// Evict drops an account from memory. The next read falls through to the
// durable tier when composed; a standalone store simply forgets it.
func (s *AccountStore) Evict(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.accounts, userID)
}

// PositionStore is a map-backed position store with by-user and by-market
// open indexes for O(1) enumeration.
type PositionStore struct {
	mu           sync.RWMutex
	positions    map[string]domain.Position
	openByUser   map[string]map[string]struct{}
	openByMarket map[string]map[string]struct{}
}

// NewPositionStore creates a new in-memory position store.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		positions:    make(map[string]domain.Position),
		openByUser:   make(map[string]map[string]struct{}),
		openByMarket: make(map[string]map[string]struct{}),
	}
}

// Get returns a copy of the position, or domain.ErrPositionNotFound.
func (s *PositionStore) Get(_ context.Context, id string) (*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.positions[id]
	if !ok {
		return nil, domain.ErrPositionNotFound
	}
	return &p, nil
}

// FindOpen returns the open position for (user, market, direction), or nil
// when none exists.
func (s *PositionStore) FindOpen(_ context.Context, userID, marketKey string, dir domain.Direction) (*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id := range s.openByUser[userID] {
		p := s.positions[id]
		if p.MarketKey == marketKey && p.Direction == dir {
			return &p, nil
		}
	}
	return nil, nil
}

// Upsert inserts or replaces the position and maintains the open indexes:
// a non-open status evicts the id from both.
func (s *PositionStore) Upsert(_ context.Context, position *domain.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.positions[position.ID] = *position

	if position.IsOpen() {
		s.index(s.openByUser, position.UserID, position.ID)
		s.index(s.openByMarket, position.MarketKey, position.ID)
	} else {
		s.unindex(s.openByUser, position.UserID, position.ID)
		s.unindex(s.openByMarket, position.MarketKey, position.ID)
	}
	return nil
}

// ListOpenByUser returns the user's open positions, oldest first.
func (s *PositionStore) ListOpenByUser(_ context.Context, userID string) ([]*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.openByUser[userID]), nil
}

// ListOpenByMarket returns all open positions on a market, oldest first.
func (s *PositionStore) ListOpenByMarket(_ context.Context, marketKey string) ([]*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.openByMarket[marketKey]), nil
}

func (s *PositionStore) collect(ids map[string]struct{}) []*domain.Position {
	out := make([]*domain.Position, 0, len(ids))
	for id := range ids {
		p := s.positions[id]
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *PositionStore) index(idx map[string]map[string]struct{}, key, id string) {
	set, ok := idx[key]
	if !ok {
		set = make(map[string]struct{})
		idx[key] = set
	}
	set[id] = struct{}{}
}

func (s *PositionStore) unindex(idx map[string]map[string]struct{}, key, id string) {
	if set, ok := idx[key]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(idx, key)
		}
	}
}

// TransactionStore is an append-only in-memory transaction log.
type TransactionStore struct {
	mu     sync.RWMutex
	byUser map[string][]domain.Transaction
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{byUser: make(map[string][]domain.Transaction)}
}

// Append records a transaction.
func (s *TransactionStore) Append(_ context.Context, txn *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byUser[txn.UserID] = append(s.byUser[txn.UserID], *txn)
	return nil
}

// ListByUser returns a user's transactions, newest first.
func (s *TransactionStore) ListByUser(_ context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.byUser[userID]
	out := make([]*domain.Transaction, 0, limit)
	for i := len(all) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		txn := all[i]
		out = append(out, &txn)
	}
	return out, nil
}

// SettlementStore is a map-backed settlement store enforcing market-key
// uniqueness the way the durable store's constraint does.
type SettlementStore struct {
	mu          sync.RWMutex
	settlements map[string]domain.Settlement
}

// NewSettlementStore creates a new in-memory settlement store.
func NewSettlementStore() *SettlementStore {
	return &SettlementStore{settlements: make(map[string]domain.Settlement)}
}

// Insert records a settlement, rejecting a duplicate market key.
func (s *SettlementStore) Insert(_ context.Context, settlement *domain.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.settlements[settlement.MarketKey]; exists {
		return domain.ErrAlreadySettled
	}
	s.settlements[settlement.MarketKey] = *settlement
	return nil
}

// Get returns the settlement for a market, or domain.ErrSettlementNotFound.
func (s *SettlementStore) Get(_ context.Context, marketKey string) (*domain.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settlement, ok := s.settlements[marketKey]
	if !ok {
		return nil, domain.ErrSettlementNotFound
	}
	return &settlement, nil
}

// PriceSource is a static in-memory price source for tests and local
// development.
type PriceSource struct {
	mu        sync.RWMutex
	snapshots map[string]domain.PriceSnapshot
}

// NewPriceSource creates a new in-memory price source.
func NewPriceSource() *PriceSource {
	return &PriceSource{snapshots: make(map[string]domain.PriceSnapshot)}
}

// SetPrices installs a snapshot for a market, in cents.
func (s *PriceSource) SetPrices(marketKey string, priceA, priceB int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[marketKey] = domain.PriceSnapshot{
		Version:   domain.PriceSnapshotVersion,
		MarketKey: marketKey,
		PriceA:    priceA,
		PriceB:    priceB,
	}
}

// Remove forgets a market, making it unavailable.
func (s *PriceSource) Remove(marketKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, marketKey)
}

// Price returns the current price for a direction as a fraction of one unit.
func (s *PriceSource) Price(_ context.Context, marketKey string, dir domain.Direction) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[marketKey]
	if !ok {
		return decimal.Zero, domain.ErrMarketUnavailable
	}
	return snap.Price(dir), nil
}
