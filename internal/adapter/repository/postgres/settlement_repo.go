package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crickex/ledger/internal/domain"
)

const uniqueViolationCode = "23505"

// SettlementRepository implements usecase.SettlementStore against PostgreSQL.
type SettlementRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewSettlementRepository creates a new SettlementRepository.
func NewSettlementRepository(pool *pgxpool.Pool, retrier *Retrier) *SettlementRepository {
	return &SettlementRepository{pool: pool, retrier: retrier}
}

// Insert records a settlement. The unique constraint on market_key makes the
// second settlement of the same market fail with ErrAlreadySettled.
func (r *SettlementRepository) Insert(ctx context.Context, settlement *domain.Settlement) error {
	query := `
		INSERT INTO settlements (market_key, winner, admin_id, settled_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query,
		settlement.MarketKey,
		settlement.Winner,
		settlement.AdminID,
		timeToPgTimestamptz(settlement.SettledAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.ErrAlreadySettled
		}
		return storeError(err)
	}

	return nil
}

// Get retrieves the settlement record for a market.
func (r *SettlementRepository) Get(ctx context.Context, marketKey string) (*domain.Settlement, error) {
	query := `
		SELECT market_key, winner, admin_id, settled_at
		FROM settlements
		WHERE market_key = $1`

	var settlement *domain.Settlement
	err := r.retrier.Retry(ctx, func() error {
		var (
			s         domain.Settlement
			settledAt pgtype.Timestamptz
		)

		row := r.pool.QueryRow(ctx, query, marketKey)
		if err := row.Scan(&s.MarketKey, &s.Winner, &s.AdminID, &settledAt); err != nil {
			return err
		}

		s.SettledAt = settledAt.Time
		settlement = &s
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettlementNotFound
		}
		return nil, storeError(err)
	}

	return settlement, nil
}
