/*
amendment.go - Guest-count and checkout-date amendment audit trail

PURPOSE:
  Records changes to the two amendable booking fields as immutable history
  entries alongside the ledger. The auditor is the only writer of
  GuestCount and Checkout on the aggregate.

  Amending the checkout date does NOT re-price already-charged nights:
  the seeded lodging charge stands and the new date only affects future
  nightly-rate computation.
*/
package reservation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// AmendmentAuditor validates and records amendments for active reservations.
type AmendmentAuditor struct {
	Store Store
	Rooms RoomDirectory
}

func NewAmendmentAuditor(store Store, rooms RoomDirectory) *AmendmentAuditor {
	return &AmendmentAuditor{Store: store, Rooms: rooms}
}

// AmendGuestCount changes the guest count. Fails with ErrInvalidQuantity
// below one and ErrCapacityExceeded above the room's capacity.
func (a *AmendmentAuditor) AmendGuestCount(ctx context.Context, r *Reservation, newCount int, reason string) (AmendmentRecord, error) {
	if newCount < 1 {
		return AmendmentRecord{}, fmt.Errorf("%w: guest count must be at least 1, got %d", ErrInvalidQuantity, newCount)
	}

	room, err := a.Rooms.GetRoom(ctx, r.RoomID)
	if err != nil {
		return AmendmentRecord{}, err
	}
	if newCount > room.Capacity {
		return AmendmentRecord{}, &CapacityExceededError{RoomID: room.ID, Capacity: room.Capacity, Requested: newCount}
	}

	rec := AmendmentRecord{
		ID:            AmendmentID(uuid.NewString()),
		ReservationID: r.ID,
		Timestamp:     time.Now().UTC(),
		Field:         FieldGuestCount,
		PreviousValue: strconv.Itoa(r.GuestCount),
		NewValue:      strconv.Itoa(newCount),
		Reason:        reason,
	}
	if err := a.Store.AppendAmendment(ctx, rec); err != nil {
		return AmendmentRecord{}, err
	}

	r.GuestCount = newCount
	return rec, nil
}

// AmendCheckout changes the checkout date. Fails with ErrInvalidDateRange
// when the new date is not after checkin. Already-charged nights are not
// recomputed.
func (a *AmendmentAuditor) AmendCheckout(ctx context.Context, r *Reservation, newCheckout time.Time, reason string) (AmendmentRecord, error) {
	if !newCheckout.After(r.Checkin) {
		return AmendmentRecord{}, fmt.Errorf("%w: new checkout %s is not after checkin %s",
			ErrInvalidDateRange, newCheckout.Format(time.RFC3339), r.Checkin.Format(time.RFC3339))
	}

	rec := AmendmentRecord{
		ID:            AmendmentID(uuid.NewString()),
		ReservationID: r.ID,
		Timestamp:     time.Now().UTC(),
		Field:         FieldCheckoutDate,
		PreviousValue: r.Checkout.UTC().Format(time.RFC3339),
		NewValue:      newCheckout.UTC().Format(time.RFC3339),
		Reason:        reason,
	}
	if err := a.Store.AppendAmendment(ctx, rec); err != nil {
		return AmendmentRecord{}, err
	}

	r.Checkout = newCheckout
	r.NightsCount = NightsBetween(r.Checkin, newCheckout)
	return rec, nil
}
