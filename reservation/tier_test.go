package reservation_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gvan1961/hotel-ledger/reservation"
	"github.com/gvan1961/hotel-ledger/reservation/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func standardTiers() []reservation.Tier {
	return []reservation.Tier{
		{ID: "t1", CategoryID: "standard", MinNights: 1, UnitPrice: decimal.NewFromInt(100)},
		{ID: "t3", CategoryID: "standard", MinNights: 3, UnitPrice: decimal.NewFromInt(90)},
		{ID: "t7", CategoryID: "standard", MinNights: 7, UnitPrice: decimal.NewFromInt(80)},
	}
}

// =============================================================================
// BEST-FIT-FROM-BELOW SELECTION
// =============================================================================

func TestSelectTier_BestFitFromBelow(t *testing.T) {
	// GIVEN: Tier ladder at 1, 3, and 7 nights
	// WHEN: Selecting for a 5-night stay
	// THEN: The 3-night tier applies (largest threshold not above the stay)

	tier, err := reservation.SelectTier(standardTiers(), 5, "standard")
	require.NoError(t, err)
	assert.Equal(t, "t3", tier.ID)
	assert.True(t, tier.UnitPrice.Equal(decimal.NewFromInt(90)))
}

func TestSelectTier_ExactThreshold(t *testing.T) {
	// GIVEN: Tier ladder at 1, 3, and 7 nights
	// WHEN: Selecting for exactly 3 nights
	// THEN: The 3-night tier applies

	tier, err := reservation.SelectTier(standardTiers(), 3, "standard")
	require.NoError(t, err)
	assert.Equal(t, "t3", tier.ID)
}

func TestSelectTier_LongStayUsesTopTier(t *testing.T) {
	// GIVEN: Tier ladder topping out at 7 nights
	// WHEN: Selecting for a 10-night stay
	// THEN: The 7-night tier applies

	tier, err := reservation.SelectTier(standardTiers(), 10, "standard")
	require.NoError(t, err)
	assert.Equal(t, "t7", tier.ID)
	assert.True(t, tier.UnitPrice.Equal(decimal.NewFromInt(80)))
}

func TestSelectTier_ShortStayFallsBackToSmallest(t *testing.T) {
	// GIVEN: Tier ladder starting at 3 nights
	// WHEN: Selecting for a 1-night stay (below every threshold)
	// THEN: The smallest tier applies as fallback

	tiers := []reservation.Tier{
		{ID: "t7", CategoryID: "standard", MinNights: 7, UnitPrice: decimal.NewFromInt(80)},
		{ID: "t3", CategoryID: "standard", MinNights: 3, UnitPrice: decimal.NewFromInt(90)},
	}

	tier, err := reservation.SelectTier(tiers, 1, "standard")
	require.NoError(t, err)
	assert.Equal(t, "t3", tier.ID)
}

func TestSelectTier_UnorderedInput(t *testing.T) {
	// GIVEN: Tiers supplied out of threshold order
	// WHEN: Selecting for a 5-night stay
	// THEN: Selection is unaffected by input order

	tiers := []reservation.Tier{
		{ID: "t7", CategoryID: "standard", MinNights: 7, UnitPrice: decimal.NewFromInt(80)},
		{ID: "t1", CategoryID: "standard", MinNights: 1, UnitPrice: decimal.NewFromInt(100)},
		{ID: "t3", CategoryID: "standard", MinNights: 3, UnitPrice: decimal.NewFromInt(90)},
	}

	tier, err := reservation.SelectTier(tiers, 5, "standard")
	require.NoError(t, err)
	assert.Equal(t, "t3", tier.ID)
}

func TestSelectTier_NoTiersConfigured(t *testing.T) {
	// GIVEN: A category with no tiers
	// WHEN: Selecting a tier
	// THEN: ErrNoTierConfigured

	_, err := reservation.SelectTier(nil, 2, "standard")
	assert.ErrorIs(t, err, reservation.ErrNoTierConfigured)
}

func TestTierResolver_ResolvesFromDirectory(t *testing.T) {
	// GIVEN: A directory holding the standard ladder
	// WHEN: Resolving a 4-night stay
	// THEN: The 3-night tier comes back

	mem := store.NewMemory()
	for _, tier := range standardTiers() {
		mem.PutTier(tier)
	}

	resolver := reservation.NewTierResolver(mem)
	tier, err := resolver.Resolve(context.Background(), "standard", 4)
	require.NoError(t, err)
	assert.Equal(t, "t3", tier.ID)
}

func TestTierResolver_UnknownCategory(t *testing.T) {
	// GIVEN: An empty directory
	// WHEN: Resolving any stay
	// THEN: ErrNoTierConfigured

	resolver := reservation.NewTierResolver(store.NewMemory())
	_, err := resolver.Resolve(context.Background(), "penthouse", 2)
	assert.ErrorIs(t, err, reservation.ErrNoTierConfigured)
}

// =============================================================================
// NIGHT COUNTING
// =============================================================================

func TestNightsBetween_WholeDays(t *testing.T) {
	checkin := date(2025, 6, 10, 14)
	checkout := date(2025, 6, 13, 14)
	assert.Equal(t, 3, reservation.NightsBetween(checkin, checkout))
}

func TestNightsBetween_PartialDayRoundsUp(t *testing.T) {
	// A 2.5-day span bills as 3 nights.
	checkin := date(2025, 6, 10, 14)
	checkout := date(2025, 6, 13, 2)
	assert.Equal(t, 3, reservation.NightsBetween(checkin, checkout))
}

func TestNightsBetween_NonPositiveSpan(t *testing.T) {
	checkin := date(2025, 6, 10, 14)
	assert.Equal(t, 0, reservation.NightsBetween(checkin, checkin))
	assert.Equal(t, 0, reservation.NightsBetween(checkin, date(2025, 6, 9, 14)))
}
