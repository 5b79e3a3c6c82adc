package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crickex/ledger/internal/domain"
)

// PositionRepository implements usecase.PositionStore against PostgreSQL.
type PositionRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewPositionRepository creates a new PositionRepository.
func NewPositionRepository(pool *pgxpool.Pool, retrier *Retrier) *PositionRepository {
	return &PositionRepository{pool: pool, retrier: retrier}
}

const positionColumns = `id, user_id, market_key, direction, quantity, avg_price, status, created_at, updated_at`

func scanPosition(row pgx.Row) (*domain.Position, error) {
	var (
		pos                  domain.Position
		avgPrice             pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&pos.ID,
		&pos.UserID,
		&pos.MarketKey,
		&pos.Direction,
		&pos.Quantity,
		&avgPrice,
		&pos.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	pos.AvgPrice = numericToDecimal(avgPrice)
	pos.CreatedAt = createdAt.Time
	pos.UpdatedAt = updatedAt.Time
	return &pos, nil
}

// Get retrieves a position by id.
func (r *PositionRepository) Get(ctx context.Context, positionID string) (*domain.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE id = $1`

	var position *domain.Position
	err := r.retrier.Retry(ctx, func() error {
		pos, err := scanPosition(r.pool.QueryRow(ctx, query, positionID))
		if err != nil {
			return err
		}
		position = pos
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPositionNotFound
		}
		return nil, storeError(err)
	}

	return position, nil
}

// FindOpen looks up the open position for a user, market and direction.
// Returns (nil, nil) when no open position exists.
func (r *PositionRepository) FindOpen(ctx context.Context, userID, marketKey string, dir domain.Direction) (*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE user_id = $1 AND market_key = $2 AND direction = $3 AND status = $4`

	var position *domain.Position
	err := r.retrier.Retry(ctx, func() error {
		pos, err := scanPosition(r.pool.QueryRow(ctx, query, userID, marketKey, dir, domain.PositionStatusOpen))
		if err != nil {
			return err
		}
		position = pos
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeError(err)
	}

	return position, nil
}

// Upsert inserts or replaces a position.
func (r *PositionRepository) Upsert(ctx context.Context, position *domain.Position) error {
	query := `
		INSERT INTO positions (` + positionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    avg_price = EXCLUDED.avg_price,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		position.ID,
		position.UserID,
		position.MarketKey,
		position.Direction,
		position.Quantity,
		decimalToNumeric(position.AvgPrice),
		position.Status,
		timeToPgTimestamptz(position.CreatedAt),
		timeToPgTimestamptz(position.UpdatedAt),
	)
	if err != nil {
		return storeError(err)
	}

	return nil
}

// ListOpenByUser returns all open positions for a user, oldest first.
func (r *PositionRepository) ListOpenByUser(ctx context.Context, userID string) ([]*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at`

	return r.list(ctx, query, userID, domain.PositionStatusOpen)
}

// ListOpenByMarket returns all open positions on a market, oldest first.
func (r *PositionRepository) ListOpenByMarket(ctx context.Context, marketKey string) ([]*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE market_key = $1 AND status = $2
		ORDER BY created_at`

	return r.list(ctx, query, marketKey, domain.PositionStatusOpen)
}

// OpenMarkets returns the distinct market keys that still have open
// positions. Used to warm the in-memory tier at startup.
func (r *PositionRepository) OpenMarkets(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT market_key FROM positions WHERE status = $1`

	var markets []string
	err := r.retrier.Retry(ctx, func() error {
		rows, err := r.pool.Query(ctx, query, domain.PositionStatusOpen)
		if err != nil {
			return err
		}
		defer rows.Close()

		var out []string
		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				return err
			}
			out = append(out, key)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		markets = out
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	return markets, nil
}

func (r *PositionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Position, error) {
	var positions []*domain.Position
	err := r.retrier.Retry(ctx, func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		var out []*domain.Position
		for rows.Next() {
			pos, err := scanPosition(rows)
			if err != nil {
				return err
			}
			out = append(out, pos)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		positions = out
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	return positions, nil
}
