package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/crickex/ledger/internal/domain"
)

// AccountStore defines data access for accounts. Implementations may be the
// durable store, an in-memory tier, or the two-tier composition of both; the
// use cases only ever see this interface.
type AccountStore interface {
	Get(ctx context.Context, userID string) (*domain.Account, error)
	Put(ctx context.Context, account *domain.Account) error
}

// PositionStore defines data access for positions. Upsert with a terminal
// status is how a position leaves the open indexes; rows are never deleted.
type PositionStore interface {
	Get(ctx context.Context, id string) (*domain.Position, error)
	FindOpen(ctx context.Context, userID, marketKey string, dir domain.Direction) (*domain.Position, error)
	Upsert(ctx context.Context, position *domain.Position) error
	ListOpenByUser(ctx context.Context, userID string) ([]*domain.Position, error)
	ListOpenByMarket(ctx context.Context, marketKey string) ([]*domain.Position, error)
}

// TransactionStore defines append-only access to the transaction log.
type TransactionStore interface {
	Append(ctx context.Context, txn *domain.Transaction) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
}

// SettlementStore defines data access for settlement records. Insert must
// reject a duplicate market key with domain.ErrAlreadySettled, backed by a
// store-level uniqueness constraint.
type SettlementStore interface {
	Insert(ctx context.Context, settlement *domain.Settlement) error
	Get(ctx context.Context, marketKey string) (*domain.Settlement, error)
}

// PriceSource supplies the current market price for one direction, as a
// fraction of one unit in (0,1). Returns domain.ErrMarketUnavailable when
// the market is unknown to the odds feed.
type PriceSource interface {
	Price(ctx context.Context, marketKey string, dir domain.Direction) (decimal.Decimal, error)
}

// EventSink accepts ledger events for the external broadcast channel.
// Publish failures are logged by callers, never propagated.
type EventSink interface {
	Publish(ctx context.Context, event domain.Event) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}
