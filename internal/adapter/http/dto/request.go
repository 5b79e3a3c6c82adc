package dto

import (
	"github.com/shopspring/decimal"

	"github.com/crickex/ledger/internal/domain"
)

// BuyRequest represents a request to buy into a market outcome.
type BuyRequest struct {
	UserID    string `json:"user_id"`
	MarketKey string `json:"market_key"`
	Direction string `json:"direction"`
	Quantity  int64  `json:"quantity"`
}

// SellRequest represents a request to close all or part of a position.
// Quantity zero means the full remaining position.
type SellRequest struct {
	UserID     string `json:"user_id"`
	PositionID string `json:"position_id"`
	Quantity   int64  `json:"quantity"`
}

// AmountRequest carries a single money amount for deposits and withdrawals.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// SettleRequest represents a request to settle a market.
type SettleRequest struct {
	MarketKey string `json:"market_key"`
	Winner    string `json:"winner"`
	AdminID   string `json:"admin_id"`
}

// ParseDirection converts the wire direction to the domain type. Validity is
// checked by the use case.
func ParseDirection(s string) domain.Direction {
	return domain.Direction(s)
}
