package entities

import "time"

// PoolStatus represents the lifecycle state of a prize pool
type PoolStatus string

const (
	// PoolStatusOpen means the pool is accumulating tickets
	PoolStatusOpen PoolStatus = "open"
	// PoolStatusReady means the pool is staged for operator review before drawing
	PoolStatusReady PoolStatus = "ready"
	// PoolStatusDrawn means a draw has been executed against the pool
	PoolStatusDrawn PoolStatus = "drawn"
	// PoolStatusClosed means the pool has been closed and rolled over
	PoolStatusClosed PoolStatus = "closed"
)

// IsValid checks if the pool status is a known value
func (s PoolStatus) IsValid() bool {
	switch s {
	case PoolStatusOpen, PoolStatusReady, PoolStatusDrawn, PoolStatusClosed:
		return true
	}
	return false
}

// Pool represents the accumulating prize fund for one draw period
type Pool struct {
	ID                    int64      `db:"id" json:"id"`
	Status                PoolStatus `db:"status" json:"status"`
	TotalCents            int64      `db:"total_cents" json:"total_cents"`                         // Maintained aggregate of tip value plus rollover
	RolloverInCents       int64      `db:"rollover_in_cents" json:"rollover_in_cents"`             // Carried in from the previous pool at open time
	TotalDistributedCents int64      `db:"total_distributed_cents" json:"total_distributed_cents"` // Sum of winner amounts once drawn
	PeriodStart           time.Time  `db:"period_start" json:"period_start"`
	PeriodEnd             *time.Time `db:"period_end" json:"period_end,omitempty"` // NULL until closed
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
}

// IsOpen returns true if the pool is accepting tickets
func (p *Pool) IsOpen() bool {
	return p.Status == PoolStatusOpen
}

// IsDrawable returns true if a draw may be executed against the pool
func (p *Pool) IsDrawable() bool {
	return p.Status == PoolStatusOpen || p.Status == PoolStatusReady
}

// Stage moves an open pool into the ready state for operator review
func (p *Pool) Stage() bool {
	if p.Status != PoolStatusOpen {
		return false
	}
	p.Status = PoolStatusReady
	return true
}

// MarkDrawn records a completed draw against the pool
func (p *Pool) MarkDrawn(distributedCents int64) {
	p.Status = PoolStatusDrawn
	p.TotalDistributedCents = distributedCents
}

// Close finalizes the pool at the given time and returns the rollover amount
// carried into the successor pool
func (p *Pool) Close(now time.Time) int64 {
	p.Status = PoolStatusClosed
	p.PeriodEnd = &now

	rollover := p.TotalCents - p.TotalDistributedCents
	if rollover < 0 {
		rollover = 0
	}
	return rollover
}
