package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crickex/ledger/internal/domain"
)

// AccountRepository implements usecase.AccountStore against PostgreSQL.
type AccountRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool, retrier *Retrier) *AccountRepository {
	return &AccountRepository{pool: pool, retrier: retrier}
}

// Get retrieves an account by user id.
func (r *AccountRepository) Get(ctx context.Context, userID string) (*domain.Account, error) {
	query := `
		SELECT user_id, balance, held_balance, created_at, updated_at
		FROM accounts
		WHERE user_id = $1`

	var account *domain.Account
	err := r.retrier.Retry(ctx, func() error {
		var (
			balance, held        pgtype.Numeric
			createdAt, updatedAt pgtype.Timestamptz
		)

		row := r.pool.QueryRow(ctx, query, userID)
		acc := &domain.Account{}
		if err := row.Scan(&acc.UserID, &balance, &held, &createdAt, &updatedAt); err != nil {
			return err
		}

		acc.Balance = numericToDecimal(balance)
		acc.HeldBalance = numericToDecimal(held)
		acc.CreatedAt = createdAt.Time
		acc.UpdatedAt = updatedAt.Time
		account = acc
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storeError(err)
	}

	return account, nil
}

// Put inserts or replaces an account. Write failures surface without retry
// so the caller never assumes success it does not have.
func (r *AccountRepository) Put(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (user_id, balance, held_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = EXCLUDED.balance,
		    held_balance = EXCLUDED.held_balance,
		    updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		account.UserID,
		decimalToNumeric(account.Balance),
		decimalToNumeric(account.HeldBalance),
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)
	if err != nil {
		return storeError(err)
	}

	return nil
}
