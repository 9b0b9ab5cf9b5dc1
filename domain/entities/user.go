package entities

import "time"

// MembershipTier is a user's current membership level, which drives
// the commission rate their referrals earn them
type MembershipTier string

const (
	TierPaid MembershipTier = "paid"
	TierFree MembershipTier = "free"
)

// User is a platform account as seen by this core. The users table is owned
// by the registration/auth service; this core only reads it.
type User struct {
	ID             int64          `db:"id"`
	Username       string         `db:"username"`
	ReferredBy     *string        `db:"referred_by"` // Username of the user's referrer
	MembershipTier MembershipTier `db:"membership_tier"`
	CreatedAt      time.Time      `db:"created_at"`
}

// IsPaid returns true if the user holds a paid membership
func (u *User) IsPaid() bool {
	return u.MembershipTier == TierPaid
}

// HasReferrer returns true if the user was referred by someone
func (u *User) HasReferrer() bool {
	return u.ReferredBy != nil && *u.ReferredBy != ""
}
