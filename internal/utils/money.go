package utils

import (
	"consultly-backend/internal/domain"
)

// SplitCommission divides a gross amount into platform commission and
// provider net using a basis-point rate. Commission rounds down, so the
// provider never loses a cent to rounding, and the parts always sum back to
// the gross exactly.
func SplitCommission(grossCents int64, rateBps int32) (commissionCents, netCents int64) {
	commissionCents = grossCents * int64(rateBps) / 10000
	netCents = grossCents - commissionCents
	return commissionCents, netCents
}

// AvailableEarning is an APPROVED earning viewed through its remaining
// unallocated amount, ordered oldest-first by the caller.
type AvailableEarning struct {
	EarningID      int64
	AvailableCents int64
}

// Allocation is one payout funding line: how much to draw from which
// earning, and whether the draw exhausts the earning.
type Allocation struct {
	EarningID     int64
	AmountCents   int64
	FullyConsumed bool
}

// AllocateFIFO greedily consumes earnings oldest-first until the requested
// amount is covered, splitting the final earning when it exceeds the
// remainder. Insufficient total fails the whole allocation; no partial
// result is returned.
func AllocateFIFO(earnings []AvailableEarning, requestedCents int64) ([]Allocation, error) {
	if requestedCents <= 0 {
		return nil, domain.Validationf("requested amount must be positive")
	}

	remaining := requestedCents
	var allocations []Allocation
	for _, e := range earnings {
		if remaining == 0 {
			break
		}
		if e.AvailableCents <= 0 {
			continue
		}

		draw := e.AvailableCents
		if draw > remaining {
			draw = remaining
		}
		allocations = append(allocations, Allocation{
			EarningID:     e.EarningID,
			AmountCents:   draw,
			FullyConsumed: draw == e.AvailableCents,
		})
		remaining -= draw
	}

	if remaining > 0 {
		return nil, domain.Preconditionf("insufficient approved balance: short by %d cents", remaining)
	}
	return allocations, nil
}
