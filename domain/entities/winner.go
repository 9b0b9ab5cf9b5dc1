package entities

import "time"

// WinnerRole is the relationship of a winner to the winning ticket
type WinnerRole string

const (
	// RoleTipper is the owner of the winning ticket
	RoleTipper WinnerRole = "tipper"
	// RoleDime is the performer the winning tip was sent to
	RoleDime WinnerRole = "dime"
	// RoleReferredDime is the user who referred that performer
	RoleReferredDime WinnerRole = "referred_dime"
	// RoleReferredTipper is the user who referred the winning tipper (third place)
	RoleReferredTipper WinnerRole = "referred_tipper"
)

// IsValid checks if the role is a known value
func (r WinnerRole) IsValid() bool {
	switch r {
	case RoleTipper, RoleDime, RoleReferredDime, RoleReferredTipper:
		return true
	}
	return false
}

// WinnerStatus is the payout approval state of a winner row
type WinnerStatus string

const (
	WinnerStatusPending  WinnerStatus = "pending"
	WinnerStatusApproved WinnerStatus = "approved"
	WinnerStatusPaid     WinnerStatus = "paid"
	WinnerStatusVoid     WinnerStatus = "void"
)

// IsValid checks if the status is a known value
func (s WinnerStatus) IsValid() bool {
	switch s {
	case WinnerStatusPending, WinnerStatusApproved, WinnerStatusPaid, WinnerStatusVoid:
		return true
	}
	return false
}

// winnerTransitions is the approval state machine. Only forward transitions
// are permitted; paid and void are terminal.
var winnerTransitions = map[WinnerStatus][]WinnerStatus{
	WinnerStatusPending:  {WinnerStatusApproved, WinnerStatusVoid},
	WinnerStatusApproved: {WinnerStatusPaid, WinnerStatusVoid},
}

// CanTransition reports whether from may advance to to
func CanTransition(from, to WinnerStatus) bool {
	for _, next := range winnerTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Winner represents one prize-role winner of a draw
type Winner struct {
	ID          int64        `db:"id" json:"id"`
	DrawID      int64        `db:"draw_id" json:"draw_id"`
	UserID      int64        `db:"user_id" json:"user_id"`
	Role        WinnerRole   `db:"role" json:"role"`
	Place       int          `db:"place" json:"place"` // Prize tier 1-3
	Percentage  float64      `db:"percentage" json:"percentage"`
	AmountCents int64        `db:"amount_cents" json:"amount_cents"`
	Status      WinnerStatus `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// WinnerDetail is a winner enriched with user identity and draw context
type WinnerDetail struct {
	Winner
	Username  string    `db:"username" json:"username"`
	DrawnCode string    `db:"drawn_code" json:"drawn_code"`
	DrawnAt   time.Time `db:"drawn_at" json:"drawn_at"`
}
