package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/crickex/ledger/internal/domain"
)

func TestLedgerUseCase_EnsureProvisionsWithWelcomeCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.ledger.Ensure(ctx, "alice")
	require.NoError(t, err)
	require.True(t, account.Balance.Equal(decimal.NewFromInt(100)))
	require.True(t, account.HeldBalance.IsZero())

	txns, err := f.transactions.ListByUser(ctx, "alice", 10, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.Equal(t, domain.TransactionTypeBonus, txns[0].Type)
	require.True(t, txns[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestLedgerUseCase_EnsureIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.ledger.Ensure(ctx, "alice")
	require.NoError(t, err)

	_, err = f.ledger.Debit(ctx, "alice", decimal.NewFromInt(30), domain.TransactionTypeWithdrawal, nil, "spend")
	require.NoError(t, err)

	second, err := f.ledger.Ensure(ctx, "alice")
	require.NoError(t, err)
	require.True(t, second.Balance.Equal(decimal.NewFromInt(70)), "re-ensure must not re-credit")
	require.Equal(t, first.CreatedAt, second.CreatedAt)

	txns, err := f.transactions.ListByUser(ctx, "alice", 10, 0)
	require.NoError(t, err)
	require.Len(t, txns, 2, "only the first ensure writes a bonus transaction")
}

func TestLedgerUseCase_HoldInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.ledger.Hold(ctx, "alice", decimal.NewFromInt(150))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	account, err := f.ledger.GetAccount(ctx, "alice")
	require.NoError(t, err)
	require.True(t, account.HeldBalance.IsZero())
}

func TestLedgerUseCase_HoldCountsExistingHolds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ledger.Hold(ctx, "alice", decimal.NewFromInt(60)))

	// 40 available left; a 50 hold must fail even though balance is 100.
	err := f.ledger.Hold(ctx, "alice", decimal.NewFromInt(50))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	require.NoError(t, f.ledger.Hold(ctx, "alice", decimal.NewFromInt(40)))
}

func TestLedgerUseCase_ReleaseFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ledger.Hold(ctx, "alice", decimal.NewFromInt(10)))
	require.NoError(t, f.ledger.Release(ctx, "alice", decimal.NewFromInt(25)))

	account, err := f.ledger.GetAccount(ctx, "alice")
	require.NoError(t, err)
	require.True(t, account.HeldBalance.IsZero())
	require.True(t, account.Balance.Equal(decimal.NewFromInt(100)))
}

func TestLedgerUseCase_DebitConsumesHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ledger.Hold(ctx, "alice", decimal.NewFromInt(40)))

	account, err := f.ledger.Debit(ctx, "alice", decimal.NewFromInt(40), domain.TransactionTypeSettlement, nil, "loss")
	require.NoError(t, err)
	require.True(t, account.Balance.Equal(decimal.NewFromInt(60)))
	require.True(t, account.HeldBalance.IsZero())
}

func TestLedgerUseCase_DebitBeyondBalanceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Debit(ctx, "alice", decimal.NewFromInt(101), domain.TransactionTypeTrade, nil, "too much")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestLedgerUseCase_WithdrawRespectsHeldBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ledger.Hold(ctx, "alice", decimal.NewFromInt(80)))

	_, err := f.ledger.Withdraw(ctx, "alice", decimal.NewFromInt(30))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds, "held funds may not be withdrawn")

	account, err := f.ledger.Withdraw(ctx, "alice", decimal.NewFromInt(20))
	require.NoError(t, err)
	require.True(t, account.Balance.Equal(decimal.NewFromInt(80)))
	require.True(t, account.HeldBalance.Equal(decimal.NewFromInt(80)), "withdrawal must not touch holds")
}

func TestLedgerUseCase_DepositAndWithdrawValidateAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Deposit(ctx, "alice", decimal.Zero)
	require.ErrorIs(t, err, domain.ErrInvalidOrder)

	_, err = f.ledger.Withdraw(ctx, "alice", decimal.NewFromInt(-5))
	require.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestLedgerUseCase_TransactionsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Deposit(ctx, "alice", decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = f.ledger.Withdraw(ctx, "alice", decimal.NewFromInt(5))
	require.NoError(t, err)

	txns, err := f.ledger.ListTransactions(ctx, "alice", 0, 0)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	require.Equal(t, domain.TransactionTypeWithdrawal, txns[0].Type)
	require.Equal(t, domain.TransactionTypeDeposit, txns[1].Type)
	require.Equal(t, domain.TransactionTypeBonus, txns[2].Type)
	require.True(t, txns[0].BalanceAfter.Equal(decimal.NewFromInt(105)))
}

func TestLedgerUseCase_GetAccountUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.GetAccount(context.Background(), "nobody")
	require.True(t, errors.Is(err, domain.ErrAccountNotFound))
}
