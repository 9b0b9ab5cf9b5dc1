package repository

import (
	"context"
	"fmt"

	"jackpot/database"
	"jackpot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// PoolRepository implements the PoolRepository interface
type PoolRepository struct {
	q queryable
}

// NewPoolRepository creates a new pool repository
func NewPoolRepository(db *database.DB) *PoolRepository {
	return &PoolRepository{q: db.Pool}
}

// newPoolRepositoryWithTx creates a new pool repository with a transaction
func newPoolRepositoryWithTx(tx queryable) *PoolRepository {
	return &PoolRepository{q: tx}
}

const poolColumns = `id, status, total_cents, rollover_in_cents, total_distributed_cents, period_start, period_end, created_at`

func scanPool(row pgx.Row) (*entities.Pool, error) {
	var pool entities.Pool
	err := row.Scan(
		&pool.ID,
		&pool.Status,
		&pool.TotalCents,
		&pool.RolloverInCents,
		&pool.TotalDistributedCents,
		&pool.PeriodStart,
		&pool.PeriodEnd,
		&pool.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// GetOpenPool retrieves the pool currently accepting tickets
func (r *PoolRepository) GetOpenPool(ctx context.Context) (*entities.Pool, error) {
	query := fmt.Sprintf(`SELECT %s FROM pools WHERE status = 'open'`, poolColumns)

	pool, err := scanPool(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to get open pool: %w", err)
	}
	return pool, nil
}

// GetCurrentPoolForUpdate retrieves the non-closed pool and locks its row
// for the duration of the transaction
func (r *PoolRepository) GetCurrentPoolForUpdate(ctx context.Context) (*entities.Pool, error) {
	query := fmt.Sprintf(`SELECT %s FROM pools WHERE status <> 'closed' FOR UPDATE`, poolColumns)

	pool, err := scanPool(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to lock current pool: %w", err)
	}
	return pool, nil
}

// GetByID retrieves a pool by its id
func (r *PoolRepository) GetByID(ctx context.Context, id int64) (*entities.Pool, error) {
	query := fmt.Sprintf(`SELECT %s FROM pools WHERE id = $1`, poolColumns)

	pool, err := scanPool(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get pool %d: %w", id, err)
	}
	return pool, nil
}

// Create inserts a new pool and populates its generated fields
func (r *PoolRepository) Create(ctx context.Context, pool *entities.Pool) error {
	query := `
		INSERT INTO pools (status, total_cents, rollover_in_cents, total_distributed_cents, period_start, period_end)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		pool.Status,
		pool.TotalCents,
		pool.RolloverInCents,
		pool.TotalDistributedCents,
		pool.PeriodStart,
		pool.PeriodEnd,
	).Scan(&pool.ID, &pool.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	return nil
}

// Update persists a pool's mutable fields
func (r *PoolRepository) Update(ctx context.Context, pool *entities.Pool) error {
	query := `
		UPDATE pools
		SET status = $1,
		    total_cents = $2,
		    rollover_in_cents = $3,
		    total_distributed_cents = $4,
		    period_start = $5,
		    period_end = $6,
		    updated_at = NOW()
		WHERE id = $7
	`

	result, err := r.q.Exec(ctx, query,
		pool.Status,
		pool.TotalCents,
		pool.RolloverInCents,
		pool.TotalDistributedCents,
		pool.PeriodStart,
		pool.PeriodEnd,
		pool.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pool %d: %w", pool.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("pool %d not found", pool.ID)
	}
	return nil
}

// IncrementTotal adds to the maintained pool total atomically. Only an open
// pool accepts increments.
func (r *PoolRepository) IncrementTotal(ctx context.Context, poolID, amountCents int64) error {
	if amountCents <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE pools
		SET total_cents = total_cents + $1, updated_at = NOW()
		WHERE id = $2 AND status = 'open'
	`

	result, err := r.q.Exec(ctx, query, amountCents, poolID)
	if err != nil {
		return fmt.Errorf("failed to increment pool %d total: %w", poolID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("pool %d is not open", poolID)
	}
	return nil
}

// SumPaymentTotals recomputes a pool's tip value from the payments behind its
// tickets, used when the maintained aggregate is suspect
func (r *PoolRepository) SumPaymentTotals(ctx context.Context, poolID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(p.amount_cents), 0)
		FROM payments p
		WHERE p.id IN (SELECT DISTINCT payment_id FROM tickets WHERE pool_id = $1)
	`

	var total int64
	if err := r.q.QueryRow(ctx, query, poolID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum payment totals for pool %d: %w", poolID, err)
	}
	return total, nil
}
