package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/crickex/ledger/internal/domain"
	"github.com/crickex/ledger/internal/infrastructure/metrics"
)

// LedgerUseCase owns every mutation of balance and held balance. The trading
// and settlement engines never touch those fields directly; the ledger is the
// only path that also appends a Transaction.
//
// Exported mutating methods acquire the user's critical section. The
// unexported *Locked forms are for same-package callers that already hold it
// and need several ledger primitives to be atomic as a group.
type LedgerUseCase struct {
	accounts      AccountStore
	transactions  TransactionStore
	locks         *UserLocks
	sink          EventSink
	idGen         IDGenerator
	metrics       *metrics.Metrics
	log           zerolog.Logger
	welcomeCredit decimal.Decimal
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	accounts AccountStore,
	transactions TransactionStore,
	locks *UserLocks,
	sink EventSink,
	idGen IDGenerator,
	m *metrics.Metrics,
	log zerolog.Logger,
	welcomeCredit decimal.Decimal,
) *LedgerUseCase {
	return &LedgerUseCase{
		accounts:      accounts,
		transactions:  transactions,
		locks:         locks,
		sink:          sink,
		idGen:         idGen,
		metrics:       m,
		log:           log.With().Str("component", "ledger").Logger(),
		welcomeCredit: welcomeCredit,
	}
}

// Ensure returns the account for userID, provisioning it with the welcome
// credit on first reference. Idempotent: an existing id is returned as-is.
func (uc *LedgerUseCase) Ensure(ctx context.Context, userID string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultStoreTimeout)
	defer cancel()

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	return uc.ensureLocked(ctx, userID)
}

func (uc *LedgerUseCase) ensureLocked(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := uc.accounts.Get(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	account = &domain.Account{
		UserID:      userID,
		Balance:     uc.welcomeCredit,
		HeldBalance: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.accounts.Put(ctx, account); err != nil {
		return nil, err
	}

	if err := uc.appendTransaction(ctx, account, domain.TransactionTypeBonus, uc.welcomeCredit, nil, "welcome credit"); err != nil {
		return nil, err
	}

	uc.log.Info().Str("user_id", userID).Str("balance", account.Balance.String()).Msg("account provisioned")

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}
	uc.emit(ctx, domain.BalanceChangedEvent(account))

	return account, nil
}

// Hold reserves amount against the user's available balance. Holds are not
// spends, so no transaction is recorded.
func (uc *LedgerUseCase) Hold(ctx context.Context, userID string, amount decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultStoreTimeout)
	defer cancel()

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	return uc.holdLocked(ctx, userID, amount)
}

func (uc *LedgerUseCase) holdLocked(ctx context.Context, userID string, amount decimal.Decimal) error {
	account, err := uc.ensureLocked(ctx, userID)
	if err != nil {
		return err
	}

	if err := account.ValidateHold(amount); err != nil {
		return err
	}

	account.ApplyHold(amount)
	account.UpdatedAt = time.Now().UTC()

	if err := uc.accounts.Put(ctx, account); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.HoldsPlaced.Inc()
	}
	uc.emit(ctx, domain.BalanceChangedEvent(account))

	return nil
}

// Release returns amount from the user's held balance, floored at zero.
func (uc *LedgerUseCase) Release(ctx context.Context, userID string, amount decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultStoreTimeout)
	defer cancel()

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	return uc.releaseLocked(ctx, userID, amount)
}

func (uc *LedgerUseCase) releaseLocked(ctx context.Context, userID string, amount decimal.Decimal) error {
	account, err := uc.ensureLocked(ctx, userID)
	if err != nil {
		return err
	}

	account.ApplyRelease(amount)
	account.UpdatedAt = time.Now().UTC()

	if err := uc.accounts.Put(ctx, account); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.HoldsReleased.Inc()
	}
	uc.emit(ctx, domain.BalanceChangedEvent(account))

	return nil
}

// Credit increases the user's balance and records a transaction.
func (uc *LedgerUseCase) Credit(ctx context.Context, userID string, amount decimal.Decimal, kind domain.TransactionType, description string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultStoreTimeout)
	defer cancel()

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	return uc.creditLocked(ctx, userID, amount, kind, nil, description)
}

func (uc *LedgerUseCase) creditLocked(ctx context.Context, userID string, amount decimal.Decimal, kind domain.TransactionType, positionID *string, description string) (*domain.Account, error) {
	account, err := uc.ensureLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	account.ApplyCredit(amount)
	account.UpdatedAt = time.Now().UTC()

	if err := uc.accounts.Put(ctx, account); err != nil {
		return nil, err
	}

	if err := uc.appendTransaction(ctx, account, kind, amount, positionID, description); err != nil {
		return nil, err
	}

	uc.emit(ctx, domain.BalanceChangedEvent(account))

	return account, nil
}

// Debit removes amount from the user's balance and consumes up to amount of
// any hold backing it, then records a transaction. Fails with
// ErrInsufficientFunds when amount exceeds the balance.
func (uc *LedgerUseCase) Debit(ctx context.Context, userID string, amount decimal.Decimal, kind domain.TransactionType, positionID *string, description string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultStoreTimeout)
	defer cancel()

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	return uc.debitLocked(ctx, userID, amount, kind, positionID, description, amount)
}

// debitLocked removes amount from the balance, consuming at most consumeHold
// of the held balance. The settlement path passes consumeHold == amount so
// the debit unwinds the position's hold; the sell-loss path passes zero
// because its hold was already released and other positions' holds must not
// be touched.
func (uc *LedgerUseCase) debitLocked(ctx context.Context, userID string, amount decimal.Decimal, kind domain.TransactionType, positionID *string, description string, consumeHold decimal.Decimal) (*domain.Account, error) {
	account, err := uc.ensureLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateDebit(amount); err != nil {
		return nil, err
	}

	account.ApplyDebit(amount, consumeHold)
	account.UpdatedAt = time.Now().UTC()

	if err := uc.accounts.Put(ctx, account); err != nil {
		return nil, err
	}

	if err := uc.appendTransaction(ctx, account, kind, amount.Neg(), positionID, description); err != nil {
		return nil, err
	}

	uc.emit(ctx, domain.BalanceChangedEvent(account))

	return account, nil
}

// recordTradeLocked appends a trade transaction that moves no free balance:
// the buy-side cost record (the money only became held) and the zero-P&L
// close record.
func (uc *LedgerUseCase) recordTradeLocked(ctx context.Context, userID string, amount decimal.Decimal, positionID *string, description string) error {
	account, err := uc.ensureLocked(ctx, userID)
	if err != nil {
		return err
	}

	return uc.appendTransaction(ctx, account, domain.TransactionTypeTrade, amount, positionID, description)
}

// Deposit tops up a user's balance.
func (uc *LedgerUseCase) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Account, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidOrder
	}
	return uc.Credit(ctx, userID, amount, domain.TransactionTypeDeposit, "deposit")
}

// Withdraw removes funds from a user's balance. Only the available portion
// may leave; held funds stay behind their positions.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Account, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidOrder
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultStoreTimeout)
	defer cancel()

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	account, err := uc.ensureLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := account.ValidateHold(amount); err != nil {
		return nil, err
	}

	return uc.debitLocked(ctx, userID, amount, domain.TransactionTypeWithdrawal, nil, "withdrawal", decimal.Zero)
}

// GetAccount returns the account without provisioning it.
func (uc *LedgerUseCase) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	return uc.accounts.Get(ctx, userID)
}

// ListTransactions returns a user's transaction history, newest first.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return uc.transactions.ListByUser(ctx, userID, limit, offset)
}

func (uc *LedgerUseCase) appendTransaction(ctx context.Context, account *domain.Account, kind domain.TransactionType, amount decimal.Decimal, positionID *string, description string) error {
	txn := &domain.Transaction{
		ID:           uc.idGen.Generate(),
		UserID:       account.UserID,
		Type:         kind,
		Amount:       amount,
		BalanceAfter: account.Balance,
		PositionID:   positionID,
		Description:  description,
		CreatedAt:    time.Now().UTC(),
	}

	if err := uc.transactions.Append(ctx, txn); err != nil {
		return err
	}

	if uc.metrics != nil {
		bal, _ := account.Balance.Float64()
		uc.metrics.AccountBalance.WithLabelValues(account.UserID).Set(bal)
	}

	return nil
}

func (uc *LedgerUseCase) emit(ctx context.Context, event domain.Event) {
	if uc.sink == nil {
		return
	}
	if err := uc.sink.Publish(ctx, event); err != nil {
		uc.log.Warn().Err(err).Str("event_type", event.Type).Msg("event publish failed")
	}
}
