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

// SettlementUseCase resolves a market exactly once: every open position on
// it is paid out or forfeited, and a unique settlement record marks the
// market settled. Each position is processed independently under its own
// user's critical section, so a settlement pass never blocks trading on other
// markets and one position's failure never aborts the rest.
type SettlementUseCase struct {
	ledger      *LedgerUseCase
	positions   PositionStore
	settlements SettlementStore
	locks       *UserLocks
	sink        EventSink
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	ledger *LedgerUseCase,
	positions PositionStore,
	settlements SettlementStore,
	locks *UserLocks,
	sink EventSink,
	m *metrics.Metrics,
	log zerolog.Logger,
) *SettlementUseCase {
	return &SettlementUseCase{
		ledger:      ledger,
		positions:   positions,
		settlements: settlements,
		locks:       locks,
		sink:        sink,
		metrics:     m,
		log:         log.With().Str("component", "settlement").Logger(),
	}
}

// PositionOutcome is the per-position result of a settlement pass.
type PositionOutcome struct {
	PositionID string
	UserID     string
	Direction  domain.Direction
	Payout     decimal.Decimal
	Profit     decimal.Decimal
}

// FailedPosition identifies a position the settlement pass could not
// process, so an operator can re-run safely.
type FailedPosition struct {
	PositionID string
	UserID     string
	Err        error
}

// SettlementResult aggregates a full settlement pass.
type SettlementResult struct {
	MarketKey   string
	Winner      domain.Direction
	Processed   int
	Winners     []PositionOutcome
	Losers      []PositionOutcome
	Failed      []FailedPosition
	TotalPayout decimal.Decimal
}

// Settle resolves marketKey with the given winner. Winning shares redeem at
// full unit value; losing holds are consumed. Safe to re-run after partial
// failure: settled positions are terminal and are skipped, and the
// settlement record's store-level uniqueness closes the record race.
func (uc *SettlementUseCase) Settle(ctx context.Context, marketKey string, winner domain.Direction, adminID string) (*SettlementResult, error) {
	if !winner.Valid() {
		return nil, domain.ErrInvalidWinner
	}

	start := time.Now()

	// Check the durable record, not any cache: the settlement record is the
	// single source of truth for "is this market settled".
	if _, err := uc.settlements.Get(ctx, marketKey); err == nil {
		return nil, domain.ErrAlreadySettled
	} else if !errors.Is(err, domain.ErrSettlementNotFound) {
		return nil, err
	}

	open, err := uc.positions.ListOpenByMarket(ctx, marketKey)
	if err != nil {
		return nil, err
	}

	result := &SettlementResult{
		MarketKey:   marketKey,
		Winner:      winner,
		TotalPayout: decimal.Zero,
	}

	for _, position := range open {
		outcome, err := uc.settlePosition(ctx, position.ID, position.UserID, winner)
		if err != nil {
			uc.log.Error().Err(err).
				Str("market_key", marketKey).
				Str("position_id", position.ID).
				Str("user_id", position.UserID).
				Msg("failed to settle position")

			result.Failed = append(result.Failed, FailedPosition{
				PositionID: position.ID,
				UserID:     position.UserID,
				Err:        err,
			})
			if uc.metrics != nil {
				uc.metrics.SettlementFailures.Inc()
			}
			continue
		}
		if outcome == nil {
			// Lost the race to another actor; already terminal.
			continue
		}

		result.Processed++
		if outcome.Direction == winner {
			result.Winners = append(result.Winners, *outcome)
			result.TotalPayout = result.TotalPayout.Add(outcome.Payout)
		} else {
			result.Losers = append(result.Losers, *outcome)
		}
	}

	settlement := &domain.Settlement{
		MarketKey: marketKey,
		Winner:    winner,
		AdminID:   adminID,
		SettledAt: time.Now().UTC(),
	}
	if err := uc.settlements.Insert(ctx, settlement); err != nil {
		// A concurrent settlement won the record race. Positions were not
		// double-paid: each was re-checked under its user lock.
		return nil, err
	}

	uc.log.Info().
		Str("market_key", marketKey).
		Str("winner", string(winner)).
		Int("processed", result.Processed).
		Int("failed", len(result.Failed)).
		Str("total_payout", result.TotalPayout.String()).
		Msg("market settled")

	if uc.metrics != nil {
		uc.metrics.MarketsSettled.Inc()
		uc.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
		payout, _ := result.TotalPayout.Float64()
		uc.metrics.SettlementPayout.Observe(payout)
	}
	uc.emit(ctx, domain.MarketSettledEvent(settlement))

	return result, nil
}

// settlePosition pays out or forfeits one position under its user's critical
// section. Returns (nil, nil) when the position turned terminal since it was
// enumerated, which makes settlement re-runs and races skip, never double-pay.
func (uc *SettlementUseCase) settlePosition(ctx context.Context, positionID, userID string, winner domain.Direction) (*PositionOutcome, error) {
	// Bound each position separately so one slow store call cannot eat the
	// whole pass; the remaining positions still get their chance.
	ctx, cancel := context.WithTimeout(ctx, DefaultStoreTimeout)
	defer cancel()

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	position, err := uc.positions.Get(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if !position.IsOpen() {
		return nil, nil
	}

	costBasis := position.CostBasis()
	quantity := decimal.NewFromInt(position.Quantity)

	outcome := &PositionOutcome{
		PositionID: position.ID,
		UserID:     position.UserID,
		Direction:  position.Direction,
		Payout:     decimal.Zero,
	}

	// The cost-basis debit consumes the position's hold; a winner is then
	// credited the full unit value per share.
	if position.Direction == winner {
		desc := fmt.Sprintf("settlement cost basis on %s", position.MarketKey)
		if _, err := uc.ledger.debitLocked(ctx, userID, costBasis, domain.TransactionTypeSettlement, &position.ID, desc, costBasis); err != nil {
			return nil, err
		}

		payoutDesc := fmt.Sprintf("settlement payout on %s", position.MarketKey)
		if _, err := uc.ledger.creditLocked(ctx, userID, quantity, domain.TransactionTypeSettlement, &position.ID, payoutDesc); err != nil {
			return nil, err
		}

		outcome.Payout = quantity
		outcome.Profit = quantity.Sub(costBasis)
	} else {
		desc := fmt.Sprintf("settlement loss on %s", position.MarketKey)
		if _, err := uc.ledger.debitLocked(ctx, userID, costBasis, domain.TransactionTypeSettlement, &position.ID, desc, costBasis); err != nil {
			return nil, err
		}

		outcome.Profit = costBasis.Neg()
	}

	position.Status = domain.PositionStatusSettled
	position.UpdatedAt = time.Now().UTC()
	if err := uc.positions.Upsert(ctx, position); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PositionsSettled.Inc()
	}
	uc.emit(ctx, domain.PositionClosedEvent(position))

	return outcome, nil
}

// GetSettlement returns the settlement record for a market.
func (uc *SettlementUseCase) GetSettlement(ctx context.Context, marketKey string) (*domain.Settlement, error) {
	return uc.settlements.Get(ctx, marketKey)
}

func (uc *SettlementUseCase) emit(ctx context.Context, event domain.Event) {
	if uc.sink == nil {
		return
	}
	if err := uc.sink.Publish(ctx, event); err != nil {
		uc.log.Warn().Err(err).Str("event_type", event.Type).Msg("event publish failed")
	}
}
