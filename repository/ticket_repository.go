package repository

import (
	"context"
	"fmt"
	"strings"

	"jackpot/database"
	"jackpot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// TicketRepository implements the TicketRepository interface
type TicketRepository struct {
	q queryable
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{q: db.Pool}
}

// newTicketRepositoryWithTx creates a new ticket repository with a transaction
func newTicketRepositoryWithTx(tx queryable) *TicketRepository {
	return &TicketRepository{q: tx}
}

// CreateBatch inserts all tickets in one statement and populates their ids
func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []*entities.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO tickets (pool_id, payment_id, tipper_id, code) VALUES `)

	args := make([]any, 0, len(tickets)*4)
	for i, ticket := range tickets {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 4
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, ticket.PoolID, ticket.PaymentID, ticket.TipperID, ticket.Code)
	}
	sb.WriteString(` RETURNING id, created_at`)

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return fmt.Errorf("failed to create tickets: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if err := rows.Scan(&tickets[i].ID, &tickets[i].CreatedAt); err != nil {
			return fmt.Errorf("failed to scan created ticket: %w", err)
		}
		i++
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate created tickets: %w", err)
	}
	if i != len(tickets) {
		return fmt.Errorf("created %d tickets, expected %d", i, len(tickets))
	}
	return nil
}

// GetByPaymentID retrieves all tickets minted for a payment
func (r *TicketRepository) GetByPaymentID(ctx context.Context, paymentID string) ([]*entities.Ticket, error) {
	query := `
		SELECT id, pool_id, payment_id, tipper_id, code, created_at
		FROM tickets
		WHERE payment_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets for payment %s: %w", paymentID, err)
	}
	defer rows.Close()

	return scanTickets(rows)
}

// CountForPool returns the number of tickets in a pool
func (r *TicketRepository) CountForPool(ctx context.Context, poolID int64) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE pool_id = $1`, poolID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets for pool %d: %w", poolID, err)
	}
	return count, nil
}

// GetByOffset returns the ticket at a stable offset into the pool, used for
// uniform random selection
func (r *TicketRepository) GetByOffset(ctx context.Context, poolID, offset int64) (*entities.Ticket, error) {
	query := `
		SELECT id, pool_id, payment_id, tipper_id, code, created_at
		FROM tickets
		WHERE pool_id = $1
		ORDER BY id
		OFFSET $2
		LIMIT 1
	`

	ticket, err := scanTicket(r.q.QueryRow(ctx, query, poolID, offset))
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket at offset %d: %w", offset, err)
	}
	return ticket, nil
}

// CountForPoolExcludingCode counts a pool's tickets not carrying the given code
func (r *TicketRepository) CountForPoolExcludingCode(ctx context.Context, poolID int64, code string) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM tickets WHERE pool_id = $1 AND code <> $2`,
		poolID, code,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets for pool %d excluding code: %w", poolID, err)
	}
	return count, nil
}

// GetByOffsetExcludingCode returns the ticket at a stable offset among those
// not carrying the given code
func (r *TicketRepository) GetByOffsetExcludingCode(ctx context.Context, poolID int64, code string, offset int64) (*entities.Ticket, error) {
	query := `
		SELECT id, pool_id, payment_id, tipper_id, code, created_at
		FROM tickets
		WHERE pool_id = $1 AND code <> $2
		ORDER BY id
		OFFSET $3
		LIMIT 1
	`

	ticket, err := scanTicket(r.q.QueryRow(ctx, query, poolID, code, offset))
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket at offset %d excluding code: %w", offset, err)
	}
	return ticket, nil
}

// GetByCode retrieves the ticket carrying a code in a pool
func (r *TicketRepository) GetByCode(ctx context.Context, poolID int64, code string) (*entities.Ticket, error) {
	query := `
		SELECT id, pool_id, payment_id, tipper_id, code, created_at
		FROM tickets
		WHERE pool_id = $1 AND code = $2
	`

	ticket, err := scanTicket(r.q.QueryRow(ctx, query, poolID, code))
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket by code in pool %d: %w", poolID, err)
	}
	return ticket, nil
}

// FilterExistingCodes returns the subset of candidate codes already minted in
// the pool
func (r *TicketRepository) FilterExistingCodes(ctx context.Context, poolID int64, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	query := `SELECT code FROM tickets WHERE pool_id = $1 AND code = ANY($2)`

	rows, err := r.q.Query(ctx, query, poolID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to filter existing codes for pool %d: %w", poolID, err)
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan existing code: %w", err)
		}
		existing = append(existing, code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate existing codes: %w", err)
	}
	return existing, nil
}

// ListRecent returns the newest tickets in a pool with their tipper usernames,
// optionally filtered to one tipper
func (r *TicketRepository) ListRecent(ctx context.Context, poolID int64, tipperUsername string, limit int) ([]*entities.TicketDetail, error) {
	query := `
		SELECT t.id, t.pool_id, t.payment_id, t.tipper_id, t.code, t.created_at, u.username
		FROM tickets t
		JOIN users u ON u.id = t.tipper_id
		WHERE t.pool_id = $1
		  AND ($2 = '' OR u.username = $2)
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, poolID, tipperUsername, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent tickets for pool %d: %w", poolID, err)
	}
	defer rows.Close()

	var details []*entities.TicketDetail
	for rows.Next() {
		var d entities.TicketDetail
		err := rows.Scan(
			&d.ID,
			&d.PoolID,
			&d.PaymentID,
			&d.TipperID,
			&d.Code,
			&d.CreatedAt,
			&d.TipperUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket detail: %w", err)
		}
		details = append(details, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticket details: %w", err)
	}
	return details, nil
}

func scanTicket(row pgx.Row) (*entities.Ticket, error) {
	var ticket entities.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.PoolID,
		&ticket.PaymentID,
		&ticket.TipperID,
		&ticket.Code,
		&ticket.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]*entities.Ticket, error) {
	var tickets []*entities.Ticket
	for rows.Next() {
		var ticket entities.Ticket
		err := rows.Scan(
			&ticket.ID,
			&ticket.PoolID,
			&ticket.PaymentID,
			&ticket.TipperID,
			&ticket.Code,
			&ticket.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}
	return tickets, nil
}
