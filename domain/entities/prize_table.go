package entities

import (
	"fmt"
	"strconv"
)

// PrizeShare is the configured payout rule for one (place, role) pair.
// Percent is applied to the pool total, the result clamped to
// [FloorCents, CapCents], and BonusAtCapCents added once the raw share
// reaches the cap (a company-funded top-up).
type PrizeShare struct {
	Percent         float64 `toml:"percent" validate:"gte=0,lte=1"`
	FloorCents      int64   `toml:"floor_cents" validate:"gte=0"`
	CapCents        int64   `toml:"cap_cents" validate:"gte=0"`
	BonusAtCapCents int64   `toml:"bonus_at_cap_cents" validate:"gte=0"`
}

// PrizeTable maps place number ("1".."3") and role to a prize share.
// All percentages, floors, caps and bonuses are configuration, never code.
type PrizeTable map[string]map[WinnerRole]PrizeShare

// Share looks up the configured share for a place and role
func (t PrizeTable) Share(place int, role WinnerRole) (PrizeShare, bool) {
	roles, ok := t[strconv.Itoa(place)]
	if !ok {
		return PrizeShare{}, false
	}
	share, ok := roles[role]
	return share, ok
}

// Validate checks structural rules the tag validator cannot express
func (t PrizeTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("prize table is empty")
	}
	for placeKey, roles := range t {
		place, err := strconv.Atoi(placeKey)
		if err != nil || place < 1 || place > 3 {
			return fmt.Errorf("invalid prize place %q: places are 1-3", placeKey)
		}
		for role, share := range roles {
			if !role.IsValid() {
				return fmt.Errorf("unknown role %q in prize place %s", role, placeKey)
			}
			if share.CapCents > 0 && share.FloorCents > share.CapCents {
				return fmt.Errorf("prize share %s/%s: floor %d exceeds cap %d",
					placeKey, role, share.FloorCents, share.CapCents)
			}
		}
	}
	return nil
}

// CommissionRates is the two-tier referral rate table. Direct rates depend
// on the referrer's current membership tier; the upline override applies to
// the referrer's own referrer regardless of tier.
type CommissionRates struct {
	DirectPaidPercent float64 `toml:"direct_paid_percent" validate:"gte=0,lte=1"`
	DirectFreePercent float64 `toml:"direct_free_percent" validate:"gte=0,lte=1"`
	UplinePercent     float64 `toml:"upline_percent" validate:"gte=0,lte=1"`
}

// DirectPercent returns the direct commission rate for a referrer's tier
func (r CommissionRates) DirectPercent(tier MembershipTier) float64 {
	if tier == TierPaid {
		return r.DirectPaidPercent
	}
	return r.DirectFreePercent
}
