package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crickex/ledger/internal/domain"
)

// TransactionRepository implements usecase.TransactionStore against PostgreSQL.
type TransactionRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool, retrier *Retrier) *TransactionRepository {
	return &TransactionRepository{pool: pool, retrier: retrier}
}

// Append records a transaction. The log is append-only.
func (r *TransactionRepository) Append(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, type, amount, balance_after, position_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		txn.ID,
		txn.UserID,
		txn.Type,
		decimalToNumeric(txn.Amount),
		decimalToNumeric(txn.BalanceAfter),
		txn.PositionID,
		txn.Description,
		timeToPgTimestamptz(txn.CreatedAt),
	)
	if err != nil {
		return storeError(err)
	}

	return nil
}

// ListByUser returns a user's transactions, newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, balance_after, position_id, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	var transactions []*domain.Transaction
	err := r.retrier.Retry(ctx, func() error {
		rows, err := r.pool.Query(ctx, query, userID, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		var out []*domain.Transaction
		for rows.Next() {
			var (
				txn                   domain.Transaction
				amount, balanceAfter  pgtype.Numeric
				createdAt             pgtype.Timestamptz
			)

			err := rows.Scan(
				&txn.ID,
				&txn.UserID,
				&txn.Type,
				&amount,
				&balanceAfter,
				&txn.PositionID,
				&txn.Description,
				&createdAt,
			)
			if err != nil {
				return err
			}

			txn.Amount = numericToDecimal(amount)
			txn.BalanceAfter = numericToDecimal(balanceAfter)
			txn.CreatedAt = createdAt.Time
			out = append(out, &txn)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		transactions = out
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	return transactions, nil
}
