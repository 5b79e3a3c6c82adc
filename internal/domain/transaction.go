package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTrade      TransactionType = "trade"
	TransactionTypeSettlement TransactionType = "settlement"
	TransactionTypeBonus      TransactionType = "bonus"
)

// Transaction is an immutable audit record of a balance change. Amount is
// signed; BalanceAfter is the free balance after the causing operation.
// Append-only: transactions are never updated or deleted.
type Transaction struct {
	ID           string
	UserID       string
	Type         TransactionType
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	PositionID   *string
	Description  string
	CreatedAt    time.Time
}
