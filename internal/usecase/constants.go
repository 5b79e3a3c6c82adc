package usecase

import "time"

const (
	// DefaultStoreTimeout bounds a single ledger operation's durable store
	// round trips. A timeout means unknown outcome; callers must not blindly
	// re-execute non-idempotent operations.
	DefaultStoreTimeout = 10 * time.Second

	// MaxOrderQuantity caps a single buy/sell so one order cannot overflow
	// quantity arithmetic.
	MaxOrderQuantity = 1_000_000

	// lockShards is the size of the per-user mutex table.
	lockShards = 256
)
