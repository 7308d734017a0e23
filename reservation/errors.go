/*
errors.go - Centralized error kinds for the reservation engine

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  Every kind is terminal for the attempted operation: nothing is retried
  internally and no partial state is written before the error surfaces.

ERROR CATEGORIES:
  1. Admission errors - A guard rejected the operation (client errors)
  2. Not-found errors - A referenced reservation/room/product is missing
  3. Collaborator errors - A directory or the store was unavailable;
     safe to retry from the caller since no write occurred

USAGE:
  if errors.Is(err, reservation.ErrPaymentExceedsBalance) { ... }

SEE ALSO:
  - lifecycle.go: Produces the admission errors
  - service.go: Wraps infrastructure failures as ErrCollaboratorUnavailable
*/
package reservation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoTierConfigured is returned when a room category has zero tiers.
	ErrNoTierConfigured = errors.New("no tier configured for category")

	// ErrReservationClosed is returned for any mutation attempted on a
	// finalized or cancelled reservation.
	ErrReservationClosed = errors.New("reservation is closed")

	// ErrOutstandingBalance is returned when finalizing with balance due > 0.
	ErrOutstandingBalance = errors.New("outstanding balance")

	// ErrMissingReason is returned when cancelling without a reason.
	ErrMissingReason = errors.New("cancellation reason is required")

	// ErrPaymentExceedsBalance is returned when a payment is larger than
	// the balance due. Payments are rejected up front, never clamped.
	ErrPaymentExceedsBalance = errors.New("payment exceeds balance due")

	// ErrInvalidAmount is returned for non-positive payments, negative
	// discounts, and entries whose sign contradicts their kind.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientStock is returned when consumption exceeds the
	// product directory's available quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned for non-positive consumption
	// quantities and guest counts below one.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrCapacityExceeded is returned when the guest count would exceed
	// the room's capacity.
	ErrCapacityExceeded = errors.New("guest count exceeds room capacity")

	// ErrInvalidDateRange is returned when checkout is not after checkin.
	ErrInvalidDateRange = errors.New("checkout must be after checkin")

	// ErrReservationNotFound is returned for an unknown reservation id.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrRoomNotFound is returned by the room directory.
	ErrRoomNotFound = errors.New("room not found")

	// ErrProductNotFound is returned by the product directory.
	ErrProductNotFound = errors.New("product not found")

	// ErrCollaboratorUnavailable marks failures of an external collaborator
	// (directory or persistence). The attempted operation wrote nothing,
	// so the caller may retry.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PaymentExceedsBalanceError reports how far a payment overshot the balance.
type PaymentExceedsBalanceError struct {
	ReservationID ReservationID
	BalanceDue    decimal.Decimal
	Requested     decimal.Decimal
}

func (e *PaymentExceedsBalanceError) Error() string {
	return fmt.Sprintf("payment of %s exceeds balance due %s on reservation %s",
		e.Requested, e.BalanceDue, e.ReservationID)
}

func (e *PaymentExceedsBalanceError) Unwrap() error { return ErrPaymentExceedsBalance }

// InsufficientStockError reports the shortage for a consumption request.
type InsufficientStockError struct {
	ProductID ProductID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// CapacityExceededError reports a guest count above the room's capacity.
type CapacityExceededError struct {
	RoomID    RoomID
	Capacity  int
	Requested int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("room %s holds %d guests, requested %d", e.RoomID, e.Capacity, e.Requested)
}

func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid input or a
// rejected guard, i.e. retrying the same request cannot succeed.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoTierConfigured) ||
		errors.Is(err, ErrReservationClosed) ||
		errors.Is(err, ErrOutstandingBalance) ||
		errors.Is(err, ErrMissingReason) ||
		errors.Is(err, ErrPaymentExceedsBalance) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrInvalidDateRange)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrProductNotFound)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCollaboratorUnavailable)
}
