package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/crickex/ledger/internal/domain"
	"github.com/crickex/ledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	UserID      string          `json:"user_id"`
	Balance     decimal.Decimal `json:"balance"`
	HeldBalance decimal.Decimal `json:"held_balance"`
	Available   decimal.Decimal `json:"available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		UserID:      a.UserID,
		Balance:     a.Balance,
		HeldBalance: a.HeldBalance,
		Available:   a.Available(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// PositionResponse represents a position in API responses.
type PositionResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	MarketKey string          `json:"market_key"`
	Direction string          `json:"direction"`
	Quantity  int64           `json:"quantity"`
	AvgPrice  decimal.Decimal `json:"avg_price"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PositionFromDomain converts a domain position to a response.
func PositionFromDomain(p *domain.Position) *PositionResponse {
	return &PositionResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		MarketKey: p.MarketKey,
		Direction: string(p.Direction),
		Quantity:  p.Quantity,
		AvgPrice:  p.AvgPrice,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// TradeResponse represents an executed trade.
type TradeResponse struct {
	Position    *PositionResponse `json:"position"`
	Price       decimal.Decimal   `json:"price"`
	Cost        decimal.Decimal   `json:"cost"`
	PnL         decimal.Decimal   `json:"pnl"`
	Balance     decimal.Decimal   `json:"balance"`
	HeldBalance decimal.Decimal   `json:"held_balance"`
}

// TradeFromResult converts a trade result to a response.
func TradeFromResult(r *usecase.TradeResult) *TradeResponse {
	return &TradeResponse{
		Position:    PositionFromDomain(r.Position),
		Price:       r.Price,
		Cost:        r.Cost,
		PnL:         r.PnL,
		Balance:     r.Balance,
		HeldBalance: r.HeldBalance,
	}
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	PositionID   *string         `json:"position_id,omitempty"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = &TransactionResponse{
			ID:           t.ID,
			Type:         string(t.Type),
			Amount:       t.Amount,
			BalanceAfter: t.BalanceAfter,
			PositionID:   t.PositionID,
			Description:  t.Description,
			CreatedAt:    t.CreatedAt,
		}
	}
	return result
}

// PortfolioEntryResponse is one open position marked at the current price.
type PortfolioEntryResponse struct {
	Position      *PositionResponse `json:"position"`
	CurrentPrice  decimal.Decimal   `json:"current_price"`
	UnrealizedPnL decimal.Decimal   `json:"unrealized_pnl"`
}

// PortfolioFromEntries converts portfolio entries to responses.
func PortfolioFromEntries(entries []*usecase.PortfolioEntry) []*PortfolioEntryResponse {
	result := make([]*PortfolioEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = &PortfolioEntryResponse{
			Position:      PositionFromDomain(e.Position),
			CurrentPrice:  e.CurrentPrice,
			UnrealizedPnL: e.UnrealizedPnL,
		}
	}
	return result
}

// SettlementResponse summarizes a settlement pass.
type SettlementResponse struct {
	MarketKey   string           `json:"market_key"`
	Winner      string           `json:"winner"`
	Processed   int              `json:"processed"`
	Winners     int              `json:"winners"`
	Losers      int              `json:"losers"`
	Failed      []FailedPosition `json:"failed,omitempty"`
	TotalPayout decimal.Decimal  `json:"total_payout"`
}

// FailedPosition identifies a position the settlement pass could not process.
type FailedPosition struct {
	PositionID string `json:"position_id"`
	UserID     string `json:"user_id"`
	Error      string `json:"error"`
}

// SettlementFromResult converts a settlement result to a response.
func SettlementFromResult(r *usecase.SettlementResult) *SettlementResponse {
	resp := &SettlementResponse{
		MarketKey:   r.MarketKey,
		Winner:      string(r.Winner),
		Processed:   r.Processed,
		Winners:     len(r.Winners),
		Losers:      len(r.Losers),
		TotalPayout: r.TotalPayout,
	}
	for _, f := range r.Failed {
		resp.Failed = append(resp.Failed, FailedPosition{
			PositionID: f.PositionID,
			UserID:     f.UserID,
			Error:      f.Err.Error(),
		})
	}
	return resp
}

// SettlementRecordResponse represents a stored settlement record.
type SettlementRecordResponse struct {
	MarketKey string    `json:"market_key"`
	Winner    string    `json:"winner"`
	AdminID   string    `json:"admin_id"`
	SettledAt time.Time `json:"settled_at"`
}

// SettlementRecordFromDomain converts a domain settlement to a response.
func SettlementRecordFromDomain(s *domain.Settlement) *SettlementRecordResponse {
	return &SettlementRecordResponse{
		MarketKey: s.MarketKey,
		Winner:    string(s.Winner),
		AdminID:   s.AdminID,
		SettledAt: s.SettledAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
