package repository

import (
	"context"
	"fmt"

	"jackpot/database"
	"jackpot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// DrawRepository implements the DrawRepository interface
type DrawRepository struct {
	q queryable
}

// NewDrawRepository creates a new draw repository
func NewDrawRepository(db *database.DB) *DrawRepository {
	return &DrawRepository{q: db.Pool}
}

// newDrawRepositoryWithTx creates a new draw repository with a transaction
func newDrawRepositoryWithTx(tx queryable) *DrawRepository {
	return &DrawRepository{q: tx}
}

// Create inserts a draw. The unique constraint on pool_id rejects a second
// draw for the same pool.
func (r *DrawRepository) Create(ctx context.Context, draw *entities.Draw) error {
	query := `
		INSERT INTO draws (public_id, pool_id, drawn_code, forced, executed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		draw.PublicID,
		draw.PoolID,
		draw.DrawnCode,
		draw.Forced,
		draw.ExecutedAt,
	).Scan(&draw.ID)

	if err != nil {
		return fmt.Errorf("failed to create draw for pool %d: %w", draw.PoolID, err)
	}
	return nil
}

// GetByPoolID retrieves the draw executed against a pool, if any
func (r *DrawRepository) GetByPoolID(ctx context.Context, poolID int64) (*entities.Draw, error) {
	query := `
		SELECT id, public_id, pool_id, drawn_code, forced, executed_at
		FROM draws
		WHERE pool_id = $1
	`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, poolID))
	if err != nil {
		return nil, fmt.Errorf("failed to get draw for pool %d: %w", poolID, err)
	}
	return draw, nil
}

// GetByID retrieves a draw by its id
func (r *DrawRepository) GetByID(ctx context.Context, id int64) (*entities.Draw, error) {
	query := `
		SELECT id, public_id, pool_id, drawn_code, forced, executed_at
		FROM draws
		WHERE id = $1
	`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get draw %d: %w", id, err)
	}
	return draw, nil
}

func scanDraw(row pgx.Row) (*entities.Draw, error) {
	var draw entities.Draw
	err := row.Scan(
		&draw.ID,
		&draw.PublicID,
		&draw.PoolID,
		&draw.DrawnCode,
		&draw.Forced,
		&draw.ExecutedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draw, nil
}
