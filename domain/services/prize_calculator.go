package services

import (
	"math"

	"jackpot/domain/entities"
)

// CalculatePrize computes the payout for one (place, role) winner from the
// pool total and the configured share. Pure function: the raw percentage
// share is clamped to [floor, cap], and the configured bonus is added once
// the raw share reaches the cap. A cap of zero means uncapped.
//
// Returns the amount in cents and the percentage that was applied. The
// second return is false when no share is configured for the pair, in which
// case no winner row should be written.
func CalculatePrize(poolTotalCents int64, place int, role entities.WinnerRole, table entities.PrizeTable) (int64, float64, bool) {
	share, ok := table.Share(place, role)
	if !ok {
		return 0, 0, false
	}

	raw := int64(math.Floor(float64(poolTotalCents) * share.Percent))

	amount := raw
	if amount < share.FloorCents {
		amount = share.FloorCents
	}
	if share.CapCents > 0 && amount > share.CapCents {
		amount = share.CapCents
	}
	if share.CapCents > 0 && raw >= share.CapCents {
		amount += share.BonusAtCapCents
	}

	return amount, share.Percent, true
}
