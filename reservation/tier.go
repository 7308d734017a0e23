/*
tier.go - Daily-rate tier selection

PURPOSE:
  Picks the applicable pricing tier for a room category and a stay length.
  This policy determines what the guest pays per night, so it must be
  reproduced exactly:

    best-fit-from-below, else smallest

  Among the category's tiers with MinNights <= nights, the one with the
  LARGEST MinNights wins (a 5-night tier beats a 1-night tier for a
  6-night stay). If the stay is shorter than every tier's threshold, the
  tier with the smallest MinNights applies as fallback.

SEE ALSO:
  - service.go: Runs the resolver at booking time to seed the lodging charge
*/
package reservation

import (
	"context"
	"fmt"
	"sort"
)

// TierResolver selects the pricing tier for a stay.
type TierResolver struct {
	Rooms RoomDirectory
}

func NewTierResolver(rooms RoomDirectory) *TierResolver {
	return &TierResolver{Rooms: rooms}
}

// Resolve returns the tier applicable to a stay of the given night count.
// Fails with ErrNoTierConfigured when the category has zero tiers.
func (tr *TierResolver) Resolve(ctx context.Context, categoryID CategoryID, nights int) (Tier, error) {
	if nights < 1 {
		return Tier{}, fmt.Errorf("%w: nights must be at least 1, got %d", ErrInvalidQuantity, nights)
	}

	tiers, err := tr.Rooms.GetTiers(ctx, categoryID)
	if err != nil {
		return Tier{}, err
	}

	return SelectTier(tiers, nights, categoryID)
}

// SelectTier applies the best-fit-from-below policy to an in-memory tier
// set. Exposed separately so statements and tests can price without a
// directory round trip.
func SelectTier(tiers []Tier, nights int, categoryID CategoryID) (Tier, error) {
	if len(tiers) == 0 {
		return Tier{}, fmt.Errorf("%w: %s", ErrNoTierConfigured, categoryID)
	}

	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinNights < sorted[j].MinNights })

	// Largest MinNights that still qualifies.
	best := -1
	for i, t := range sorted {
		if t.MinNights <= nights {
			best = i
		}
	}

	if best == -1 {
		// Stay shorter than every threshold: smallest tier applies.
		return sorted[0], nil
	}
	return sorted[best], nil
}
