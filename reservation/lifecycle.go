/*
lifecycle.go - Reservation state machine guards

PURPOSE:
  Gates every mutation behind the reservation's current status and
  balance. States:

    ACTIVE (initial) -> FINALIZED (terminal)
                     -> CANCELLED (terminal)

  Mutations (consumption, payment, amendments, discount) are legal only
  from ACTIVE and leave the state unchanged. Finalize requires a zero
  balance; cancel requires a reason but is unconditional on balance.
  Terminal states reject everything with ErrReservationClosed - status is
  monotonic.

  Admission rules for payments and consumption live here too: they are
  guard logic, not ledger logic, and run before anything is written.
*/
package reservation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Lifecycle holds the guard logic of the reservation state machine.
// Stateless; every check reads the aggregate it is given.
type Lifecycle struct{}

// EnsureActive rejects any mutation on a closed reservation.
func (Lifecycle) EnsureActive(r *Reservation) error {
	if r.Status != StatusActive {
		return fmt.Errorf("%w: %s is %s", ErrReservationClosed, r.ID, r.Status)
	}
	return nil
}

// AdmitPayment applies the payment admission rule: positive amount, never
// more than the balance due. Overdraft is rejected here, not clamped later.
func (lc Lifecycle) AdmitPayment(r *Reservation, amount decimal.Decimal) error {
	if err := lc.EnsureActive(r); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: payment must be positive, got %s", ErrInvalidAmount, amount)
	}
	if amount.GreaterThan(r.Totals.BalanceDue) {
		return &PaymentExceedsBalanceError{
			ReservationID: r.ID,
			BalanceDue:    r.Totals.BalanceDue,
			Requested:     amount,
		}
	}
	return nil
}

// AdmitConsumption applies the consumption admission rule against the
// product directory's reported availability.
func (lc Lifecycle) AdmitConsumption(r *Reservation, p Product, qty int) error {
	if err := lc.EnsureActive(r); err != nil {
		return err
	}
	if qty <= 0 {
		return fmt.Errorf("%w: consumption quantity must be positive, got %d", ErrInvalidQuantity, qty)
	}
	if qty > p.Available {
		return &InsufficientStockError{ProductID: p.ID, Available: p.Available, Requested: qty}
	}
	return nil
}

// AdmitDiscount gates the summary-level discount: non-negative and never
// enough to drive the balance below zero.
func (lc Lifecycle) AdmitDiscount(r *Reservation, amount decimal.Decimal) error {
	if err := lc.EnsureActive(r); err != nil {
		return err
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: discount must not be negative, got %s", ErrInvalidAmount, amount)
	}
	remaining := r.Totals.GrossDue.Sub(r.Totals.Received).Sub(amount)
	if remaining.IsNegative() {
		return fmt.Errorf("%w: discount %s exceeds the remaining balance", ErrInvalidAmount, amount)
	}
	return nil
}

// CanFinalize guards the ACTIVE -> FINALIZED transition. A finalized
// reservation triggers the room-cleaning signal; nothing may still be owed.
func (lc Lifecycle) CanFinalize(r *Reservation) error {
	if err := lc.EnsureActive(r); err != nil {
		return err
	}
	if r.Totals.BalanceDue.IsPositive() {
		return fmt.Errorf("%w: %s still owes %s", ErrOutstandingBalance, r.ID, r.Totals.BalanceDue)
	}
	return nil
}

// CanCancel guards the ACTIVE -> CANCELLED transition. Cancellation is
// unconditional on balance but requires a reason.
func (lc Lifecycle) CanCancel(r *Reservation, reason string) error {
	if err := lc.EnsureActive(r); err != nil {
		return err
	}
	if reason == "" {
		return ErrMissingReason
	}
	return nil
}
