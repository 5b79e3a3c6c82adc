package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a binary match outcome a position bets on.
type Direction string

const (
	DirectionA Direction = "A"
	DirectionB Direction = "B"
)

// Valid reports whether d is one of the two tradable directions.
func (d Direction) Valid() bool {
	return d == DirectionA || d == DirectionB
}

type PositionStatus string

const (
	PositionStatusOpen    PositionStatus = "open"
	PositionStatusClosed  PositionStatus = "closed"
	PositionStatusSettled PositionStatus = "settled"
)

// Position is a user's aggregate stake in one (market, direction) pair.
// At most one open position exists per (user, market, direction); repeat
// buys average into it rather than creating a new row.
type Position struct {
	ID        string
	UserID    string
	MarketKey string
	Direction Direction
	Quantity  int64
	AvgPrice  decimal.Decimal
	Status    PositionStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CostBasis returns quantity x average price, the held funds attributable
// to this position.
func (p *Position) CostBasis() decimal.Decimal {
	return p.AvgPrice.Mul(decimal.NewFromInt(p.Quantity))
}

// CostBasisFor returns the cost basis of a partial quantity.
func (p *Position) CostBasisFor(quantity int64) decimal.Decimal {
	return p.AvgPrice.Mul(decimal.NewFromInt(quantity))
}

// AverageIn folds a new buy into the position: the average price becomes the
// quantity-weighted average of the old and new cost bases.
func (p *Position) AverageIn(quantity int64, price decimal.Decimal) {
	oldCost := p.CostBasis()
	newCost := price.Mul(decimal.NewFromInt(quantity))
	total := p.Quantity + quantity
	p.AvgPrice = oldCost.Add(newCost).Div(decimal.NewFromInt(total))
	p.Quantity = total
}

// Reduce removes quantity from the position after a partial sell. The
// average price is a per-share constant and does not change on exit.
func (p *Position) Reduce(quantity int64) {
	p.Quantity -= quantity
}

// IsOpen reports whether the position still accepts trades. Closed and
// settled are both terminal.
func (p *Position) IsOpen() bool {
	return p.Status == PositionStatusOpen
}
