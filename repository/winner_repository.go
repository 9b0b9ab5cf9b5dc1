package repository

import (
	"context"
	"fmt"
	"strings"

	"jackpot/database"
	"jackpot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// WinnerRepository implements the WinnerRepository interface
type WinnerRepository struct {
	q queryable
}

// NewWinnerRepository creates a new winner repository
func NewWinnerRepository(db *database.DB) *WinnerRepository {
	return &WinnerRepository{q: db.Pool}
}

// newWinnerRepositoryWithTx creates a new winner repository with a transaction
func newWinnerRepositoryWithTx(tx queryable) *WinnerRepository {
	return &WinnerRepository{q: tx}
}

// CreateBatch inserts all winner rows in one statement and populates their ids
func (r *WinnerRepository) CreateBatch(ctx context.Context, winners []*entities.Winner) error {
	if len(winners) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO winners (draw_id, user_id, role, place, percentage, amount_cents, status) VALUES `)

	args := make([]any, 0, len(winners)*7)
	for i, w := range winners {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 7
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, w.DrawID, w.UserID, w.Role, w.Place, w.Percentage, w.AmountCents, w.Status)
	}
	sb.WriteString(` RETURNING id, created_at, updated_at`)

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return fmt.Errorf("failed to create winner rows: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if err := rows.Scan(&winners[i].ID, &winners[i].CreatedAt, &winners[i].UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan created winner: %w", err)
		}
		i++
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate created winners: %w", err)
	}
	if i != len(winners) {
		return fmt.Errorf("created %d winner rows, expected %d", i, len(winners))
	}
	return nil
}

// GetByDraw retrieves all winner rows for a draw
func (r *WinnerRepository) GetByDraw(ctx context.Context, drawID int64) ([]*entities.Winner, error) {
	query := winnerSelect + ` WHERE draw_id = $1 ORDER BY place, role`

	rows, err := r.q.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners for draw %d: %w", drawID, err)
	}
	defer rows.Close()

	return scanWinners(rows)
}

// GetByDrawAndUser retrieves a user's winner rows in a draw
func (r *WinnerRepository) GetByDrawAndUser(ctx context.Context, drawID, userID int64) ([]*entities.Winner, error) {
	query := winnerSelect + ` WHERE draw_id = $1 AND user_id = $2 ORDER BY place, role`

	rows, err := r.q.Query(ctx, query, drawID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners for draw %d user %d: %w", drawID, userID, err)
	}
	defer rows.Close()

	return scanWinners(rows)
}

// GetByStatus retrieves winner rows in a given approval state
func (r *WinnerRepository) GetByStatus(ctx context.Context, status entities.WinnerStatus, limit int) ([]*entities.Winner, error) {
	query := winnerSelect + ` WHERE status = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.q.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners by status %s: %w", status, err)
	}
	defer rows.Close()

	return scanWinners(rows)
}

// GetByUser retrieves a user's winner rows, newest first
func (r *WinnerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.Winner, error) {
	query := winnerSelect + ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners for user %d: %w", userID, err)
	}
	defer rows.Close()

	return scanWinners(rows)
}

// ListLatest returns the newest winner rows enriched with username and draw
// context
func (r *WinnerRepository) ListLatest(ctx context.Context, limit int) ([]*entities.WinnerDetail, error) {
	query := `
		SELECT w.id, w.draw_id, w.user_id, w.role, w.place, w.percentage, w.amount_cents, w.status, w.created_at, w.updated_at,
		       u.username, d.drawn_code, d.executed_at
		FROM winners w
		JOIN users u ON u.id = w.user_id
		JOIN draws d ON d.id = w.draw_id
		ORDER BY w.created_at DESC, w.id DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest winners: %w", err)
	}
	defer rows.Close()

	var details []*entities.WinnerDetail
	for rows.Next() {
		var d entities.WinnerDetail
		err := rows.Scan(
			&d.ID,
			&d.DrawID,
			&d.UserID,
			&d.Role,
			&d.Place,
			&d.Percentage,
			&d.AmountCents,
			&d.Status,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.Username,
			&d.DrawnCode,
			&d.DrawnAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan winner detail: %w", err)
		}
		details = append(details, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate winner details: %w", err)
	}
	return details, nil
}

// UpdateStatus advances a user's winner rows in a draw from one status to
// another, returning the number of rows moved. The guard on the current
// status makes the update a compare-and-swap.
func (r *WinnerRepository) UpdateStatus(ctx context.Context, drawID, userID int64, from, to entities.WinnerStatus) (int64, error) {
	query := `
		UPDATE winners
		SET status = $1, updated_at = NOW()
		WHERE draw_id = $2 AND user_id = $3 AND status = $4
	`

	result, err := r.q.Exec(ctx, query, to, drawID, userID, from)
	if err != nil {
		return 0, fmt.Errorf("failed to update winner status: %w", err)
	}
	return result.RowsAffected(), nil
}

const winnerSelect = `
	SELECT id, draw_id, user_id, role, place, percentage, amount_cents, status, created_at, updated_at
	FROM winners`

func scanWinners(rows pgx.Rows) ([]*entities.Winner, error) {
	var winners []*entities.Winner
	for rows.Next() {
		var w entities.Winner
		err := rows.Scan(
			&w.ID,
			&w.DrawID,
			&w.UserID,
			&w.Role,
			&w.Place,
			&w.Percentage,
			&w.AmountCents,
			&w.Status,
			&w.CreatedAt,
			&w.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		winners = append(winners, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate winners: %w", err)
	}
	return winners, nil
}
