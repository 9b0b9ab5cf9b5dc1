package entities

import (
	"time"

	"github.com/google/uuid"
)

// Draw represents a single executed draw against a pool.
// At most one draw ever exists per pool, enforced by a unique constraint
// on pool_id in addition to the pool row lock taken during execution.
type Draw struct {
	ID         int64     `db:"id" json:"id"`
	PublicID   uuid.UUID `db:"public_id" json:"public_id"` // External reference for reporting
	PoolID     int64     `db:"pool_id" json:"pool_id"`
	DrawnCode  string    `db:"drawn_code" json:"drawn_code"`
	Forced     bool      `db:"forced" json:"forced"` // True when the code was operator-supplied
	ExecutedAt time.Time `db:"executed_at" json:"executed_at"`
}

// NewDraw constructs a draw record for the given pool and code
func NewDraw(poolID int64, drawnCode string, forced bool, executedAt time.Time) *Draw {
	return &Draw{
		PublicID:   uuid.New(),
		PoolID:     poolID,
		DrawnCode:  drawnCode,
		Forced:     forced,
		ExecutedAt: executedAt,
	}
}
