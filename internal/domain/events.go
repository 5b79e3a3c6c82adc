package domain

import "time"

// Event types emitted to the broadcast sink after successful mutations.
// Delivery is fire-and-forget and never part of a mutation's outcome.
const (
	EventTypeBalanceChanged = "balance.changed"
	EventTypePositionOpened = "position.opened"
	EventTypePositionClosed = "position.closed"
	EventTypeMarketSettled  = "market.settled"
)

// Event is a ledger notification for the external broadcast channel.
type Event struct {
	Type      string         `json:"type"`
	UserID    string         `json:"user_id,omitempty"`
	MarketKey string         `json:"market_key,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	At        time.Time      `json:"at"`
}

// BalanceChangedEvent builds the balance notification for a user.
func BalanceChangedEvent(a *Account) Event {
	return Event{
		Type:   EventTypeBalanceChanged,
		UserID: a.UserID,
		Payload: map[string]any{
			"balance":      a.Balance.String(),
			"held_balance": a.HeldBalance.String(),
		},
		At: time.Now().UTC(),
	}
}

// PositionOpenedEvent builds the notification for a newly opened position.
func PositionOpenedEvent(p *Position) Event {
	return Event{
		Type:      EventTypePositionOpened,
		UserID:    p.UserID,
		MarketKey: p.MarketKey,
		Payload: map[string]any{
			"position_id": p.ID,
			"direction":   string(p.Direction),
			"quantity":    p.Quantity,
			"avg_price":   p.AvgPrice.String(),
		},
		At: time.Now().UTC(),
	}
}

// PositionClosedEvent builds the notification for a closed or settled position.
func PositionClosedEvent(p *Position) Event {
	return Event{
		Type:      EventTypePositionClosed,
		UserID:    p.UserID,
		MarketKey: p.MarketKey,
		Payload: map[string]any{
			"position_id": p.ID,
			"status":      string(p.Status),
		},
		At: time.Now().UTC(),
	}
}

// MarketSettledEvent builds the notification for a resolved market.
func MarketSettledEvent(s *Settlement) Event {
	return Event{
		Type:      EventTypeMarketSettled,
		MarketKey: s.MarketKey,
		Payload: map[string]any{
			"winner": string(s.Winner),
		},
		At: time.Now().UTC(),
	}
}
