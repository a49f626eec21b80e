package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"consultly-backend/internal/domain"
)

func TestSplitCommission(t *testing.T) {
	t.Run("SplitsAtFifteenPercent", func(t *testing.T) {
		commission, net := SplitCommission(10000, 1500)
		assert.Equal(t, int64(1500), commission)
		assert.Equal(t, int64(8500), net)
	})

	t.Run("CommissionRoundsDown", func(t *testing.T) {
		// 15% of 99 cents is 14.85, the provider keeps the fraction.
		commission, net := SplitCommission(99, 1500)
		assert.Equal(t, int64(14), commission)
		assert.Equal(t, int64(85), net)
	})

	t.Run("PartsAlwaysSumToGross", func(t *testing.T) {
		for _, gross := range []int64{1, 99, 100, 101, 12345, 999999} {
			for _, rate := range []int32{0, 1, 333, 1500, 9999, 10000} {
				commission, net := SplitCommission(gross, rate)
				assert.Equal(t, gross, commission+net, "gross=%d rate=%d", gross, rate)
				assert.GreaterOrEqual(t, commission, int64(0))
				assert.GreaterOrEqual(t, net, int64(0))
			}
		}
	})
}

func TestAllocateFIFO(t *testing.T) {
	earnings := []AvailableEarning{
		{EarningID: 1, AvailableCents: 100},
		{EarningID: 2, AvailableCents: 50},
		{EarningID: 3, AvailableCents: 30},
	}

	t.Run("SplitsTheLastEarning", func(t *testing.T) {
		allocations, err := AllocateFIFO(earnings, 120)
		assert.NoError(t, err)
		assert.Len(t, allocations, 2)

		assert.Equal(t, int64(1), allocations[0].EarningID)
		assert.Equal(t, int64(100), allocations[0].AmountCents)
		assert.True(t, allocations[0].FullyConsumed)

		assert.Equal(t, int64(2), allocations[1].EarningID)
		assert.Equal(t, int64(20), allocations[1].AmountCents)
		assert.False(t, allocations[1].FullyConsumed)
	})

	t.Run("ExactConsumption", func(t *testing.T) {
		allocations, err := AllocateFIFO(earnings, 180)
		assert.NoError(t, err)
		assert.Len(t, allocations, 3)
		for _, a := range allocations {
			assert.True(t, a.FullyConsumed)
		}
	})

	t.Run("AllocationsSumToRequested", func(t *testing.T) {
		for _, requested := range []int64{1, 50, 99, 100, 101, 150, 180} {
			allocations, err := AllocateFIFO(earnings, requested)
			assert.NoError(t, err)
			var total int64
			for _, a := range allocations {
				total += a.AmountCents
			}
			assert.Equal(t, requested, total)
		}
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		allocations, err := AllocateFIFO(earnings, 181)
		assert.Nil(t, allocations)
		assert.True(t, domain.IsPrecondition(err))
	})

	t.Run("RejectsNonPositiveAmounts", func(t *testing.T) {
		_, err := AllocateFIFO(earnings, 0)
		assert.True(t, domain.IsValidation(err))
		_, err = AllocateFIFO(earnings, -5)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("SkipsExhaustedEarnings", func(t *testing.T) {
		withExhausted := []AvailableEarning{
			{EarningID: 1, AvailableCents: 0},
			{EarningID: 2, AvailableCents: 40},
		}
		allocations, err := AllocateFIFO(withExhausted, 40)
		assert.NoError(t, err)
		assert.Len(t, allocations, 1)
		assert.Equal(t, int64(2), allocations[0].EarningID)
	})
}
