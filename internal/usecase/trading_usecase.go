package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/crickex/ledger/internal/domain"
	"github.com/crickex/ledger/internal/infrastructure/metrics"
)

// TradingUseCase executes buy and sell intents against the current market
// price, mutating the position store and the balance ledger together under
// the user's critical section.
//
// A position's lifecycle is none -> open -> {closed | settled}; only open
// positions accept trades.
type TradingUseCase struct {
	ledger    *LedgerUseCase
	positions PositionStore
	prices    PriceSource
	locks     *UserLocks
	sink      EventSink
	idGen     IDGenerator
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewTradingUseCase creates a new TradingUseCase.
func NewTradingUseCase(
	ledger *LedgerUseCase,
	positions PositionStore,
	prices PriceSource,
	locks *UserLocks,
	sink EventSink,
	idGen IDGenerator,
	m *metrics.Metrics,
	log zerolog.Logger,
) *TradingUseCase {
	return &TradingUseCase{
		ledger:    ledger,
		positions: positions,
		prices:    prices,
		locks:     locks,
		sink:      sink,
		idGen:     idGen,
		metrics:   m,
		log:       log.With().Str("component", "trading").Logger(),
	}
}

// TradeResult summarizes an executed trade.
type TradeResult struct {
	Position    *domain.Position
	Price       decimal.Decimal
	Cost        decimal.Decimal
	PnL         decimal.Decimal
	Balance     decimal.Decimal
	HeldBalance decimal.Decimal
}

// Buy opens or averages into the user's position on (marketKey, direction)
// at the current market price. The cost is held, not spent; money leaves the
// balance only at close or settlement.
func (uc *TradingUseCase) Buy(ctx context.Context, userID, marketKey string, dir domain.Direction, quantity int64) (*TradeResult, error) {
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: direction must be A or B", domain.ErrInvalidOrder)
	}
	if quantity <= 0 || quantity > MaxOrderQuantity {
		return nil, fmt.Errorf("%w: quantity must be a positive integer up to %d", domain.ErrInvalidOrder, MaxOrderQuantity)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultStoreTimeout)
	defer cancel()

	result, err := uc.buy(ctx, userID, marketKey, dir, quantity)
	if err != nil {
		uc.countTradeError(err)
	}
	return result, err
}

func (uc *TradingUseCase) buy(ctx context.Context, userID, marketKey string, dir domain.Direction, quantity int64) (*TradeResult, error) {
	start := time.Now()

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	account, err := uc.ledger.ensureLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	price, err := uc.prices.Price(ctx, marketKey, dir)
	if err != nil {
		return nil, err
	}

	cost := price.Mul(decimal.NewFromInt(quantity))
	if err := account.ValidateHold(cost); err != nil {
		return nil, err
	}

	position, err := uc.positions.FindOpen(ctx, userID, marketKey, dir)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	opened := position == nil
	if opened {
		position = &domain.Position{
			ID:        uc.idGen.Generate(),
			UserID:    userID,
			MarketKey: marketKey,
			Direction: dir,
			Quantity:  quantity,
			AvgPrice:  price,
			Status:    domain.PositionStatusOpen,
			CreatedAt: now,
		}
	} else {
		position.AverageIn(quantity, price)
	}
	position.UpdatedAt = now

	if err := uc.positions.Upsert(ctx, position); err != nil {
		return nil, err
	}

	if err := uc.ledger.holdLocked(ctx, userID, cost); err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("buy %d %s @ %s on %s", quantity, dir, price, marketKey)
	if err := uc.ledger.recordTradeLocked(ctx, userID, cost.Neg(), &position.ID, desc); err != nil {
		return nil, err
	}

	account, err = uc.ledger.accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("user_id", userID).
		Str("market_key", marketKey).
		Str("direction", string(dir)).
		Int64("quantity", quantity).
		Str("price", price.String()).
		Str("cost", cost.String()).
		Msg("buy executed")

	if uc.metrics != nil {
		uc.metrics.TradesExecuted.WithLabelValues("buy").Inc()
		uc.metrics.TradeDuration.Observe(time.Since(start).Seconds())
		if opened {
			uc.metrics.PositionsOpened.Inc()
		}
	}
	if opened {
		uc.emit(ctx, domain.PositionOpenedEvent(position))
	}

	return &TradeResult{
		Position:    position,
		Price:       price,
		Cost:        cost,
		Balance:     account.Balance,
		HeldBalance: account.HeldBalance,
	}, nil
}

// Sell closes all or part of a position at the current market price. The
// unwound hold is always sized at cost basis; the exit P&L is applied as a
// separate credit or debit so the transaction log shows realized P&L
// explicitly. A flat close still records a zero-amount trade transaction.
func (uc *TradingUseCase) Sell(ctx context.Context, userID, positionID string, quantity int64) (*TradeResult, error) {
	if quantity < 0 || quantity > MaxOrderQuantity {
		return nil, fmt.Errorf("%w: quantity must be a positive integer up to %d", domain.ErrInvalidOrder, MaxOrderQuantity)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultStoreTimeout)
	defer cancel()

	result, err := uc.sell(ctx, userID, positionID, quantity)
	if err != nil {
		uc.countTradeError(err)
	}
	return result, err
}

func (uc *TradingUseCase) sell(ctx context.Context, userID, positionID string, quantity int64) (*TradeResult, error) {
	start := time.Now()

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	position, err := uc.positions.Get(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if position.UserID != userID {
		return nil, domain.ErrPositionNotFound
	}
	if !position.IsOpen() {
		return nil, domain.ErrPositionNotOpen
	}

	// Zero quantity means the full remaining position.
	if quantity == 0 {
		quantity = position.Quantity
	}
	if quantity > position.Quantity {
		return nil, fmt.Errorf("%w: sell quantity %d exceeds held quantity %d", domain.ErrInvalidOrder, quantity, position.Quantity)
	}

	price, err := uc.prices.Price(ctx, position.MarketKey, position.Direction)
	if err != nil {
		return nil, err
	}

	closeValue := price.Mul(decimal.NewFromInt(quantity))
	costBasis := position.CostBasisFor(quantity)
	pnl := closeValue.Sub(costBasis)

	now := time.Now().UTC()
	closed := quantity == position.Quantity
	if closed {
		position.Quantity = 0
		position.Status = domain.PositionStatusClosed
	} else {
		position.Reduce(quantity)
	}
	position.UpdatedAt = now

	if err := uc.positions.Upsert(ctx, position); err != nil {
		return nil, err
	}

	if err := uc.ledger.releaseLocked(ctx, userID, costBasis); err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("sell %d %s @ %s on %s", quantity, position.Direction, price, position.MarketKey)
	switch {
	case pnl.IsPositive():
		if _, err := uc.ledger.creditLocked(ctx, userID, pnl, domain.TransactionTypeTrade, &position.ID, desc); err != nil {
			return nil, err
		}
	case pnl.IsNegative():
		// The hold was released above; this debit must not consume holds
		// backing the user's other positions.
		if _, err := uc.ledger.debitLocked(ctx, userID, pnl.Neg(), domain.TransactionTypeTrade, &position.ID, desc, decimal.Zero); err != nil {
			return nil, err
		}
	default:
		if err := uc.ledger.recordTradeLocked(ctx, userID, decimal.Zero, &position.ID, desc); err != nil {
			return nil, err
		}
	}

	account, err := uc.ledger.accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("user_id", userID).
		Str("position_id", positionID).
		Int64("quantity", quantity).
		Str("price", price.String()).
		Str("pnl", pnl.String()).
		Bool("closed", closed).
		Msg("sell executed")

	if uc.metrics != nil {
		uc.metrics.TradesExecuted.WithLabelValues("sell").Inc()
		uc.metrics.TradeDuration.Observe(time.Since(start).Seconds())
		if closed {
			uc.metrics.PositionsClosed.Inc()
		}
	}
	if closed {
		uc.emit(ctx, domain.PositionClosedEvent(position))
	}

	return &TradeResult{
		Position:    position,
		Price:       price,
		Cost:        costBasis,
		PnL:         pnl,
		Balance:     account.Balance,
		HeldBalance: account.HeldBalance,
	}, nil
}

// PortfolioEntry is one open position marked at the current price.
type PortfolioEntry struct {
	Position      *domain.Position
	CurrentPrice  decimal.Decimal
	UnrealizedPnL decimal.Decimal
}

// Portfolio lists the user's open positions with an unrealized P&L mark.
// Positions whose market has no current quote are listed unmarked.
func (uc *TradingUseCase) Portfolio(ctx context.Context, userID string) ([]*PortfolioEntry, error) {
	positions, err := uc.positions.ListOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]*PortfolioEntry, 0, len(positions))
	for _, p := range positions {
		entry := &PortfolioEntry{Position: p}

		price, err := uc.prices.Price(ctx, p.MarketKey, p.Direction)
		if err == nil {
			entry.CurrentPrice = price
			entry.UnrealizedPnL = price.Mul(decimal.NewFromInt(p.Quantity)).Sub(p.CostBasis())
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func (uc *TradingUseCase) countTradeError(err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.TradeErrors.WithLabelValues(tradeErrorType(err)).Inc()
}

func tradeErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrMarketUnavailable):
		return "market_unavailable"
	case errors.Is(err, domain.ErrInvalidOrder):
		return "invalid_order"
	case errors.Is(err, domain.ErrPositionNotFound):
		return "position_not_found"
	case errors.Is(err, domain.ErrPositionNotOpen):
		return "position_not_open"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}

func (uc *TradingUseCase) emit(ctx context.Context, event domain.Event) {
	if uc.sink == nil {
		return
	}
	if err := uc.sink.Publish(ctx, event); err != nil {
		uc.log.Warn().Err(err).Str("event_type", event.Type).Msg("event publish failed")
	}
}
