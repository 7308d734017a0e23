/*
Package reservation provides the reservation ledger and lifecycle engine.

PURPOSE:
  This package contains the domain types and algorithms for managing hotel
  reservations: multi-night pricing tiers, an append-only financial ledger
  per reservation, a guarded lifecycle state machine, and the amendment
  audit trail for guest-count and checkout changes.

KEY CONCEPTS IN THIS FILE (types.go):
  - LedgerEntry: An immutable, signed financial fact (charge, payment, reversal)
  - Reservation: Read-mostly aggregate rebuilt from the entry and amendment logs
  - Tier: A priced bracket of consecutive-night stays for a room category
  - AmendmentRecord: A recorded guest-count or checkout-date change
  - Totals: Aggregates derived from the entry log plus the discount field

DESIGN PRINCIPLES:
  1. Immutability: Ledger entries are never edited, only reversed
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Type Safety: Strong typing for IDs and tagged variants for kind/status
  4. Derivability: Totals and statements are pure functions of the logs

SIGN CONVENTION:
  Charges are negative (debit to the guest), payments and reversals of
  charges are positive. The running balance of a statement is the plain
  sum of signed amounts, so the final value equals received - grossDue.

SEE ALSO:
  - ledger.go: Aggregation and append admission
  - lifecycle.go: State machine guards
  - service.go: The orchestrating service
*/
package reservation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ReservationID string
type RoomID string
type GuestID string
type CategoryID string
type ProductID string
type EntryID string
type AmendmentID string

// =============================================================================
// LEDGER ENTRY - One dated, signed financial fact
// =============================================================================

type EntryKind string

const (
	ChargeLodging EntryKind = "charge_lodging" // nightly-rate charge (negative)
	ChargeProduct EntryKind = "charge_product" // product consumption (negative)
	Payment       EntryKind = "payment"        // guest payment (positive)
	Reversal      EntryKind = "reversal"       // correction of a prior entry (opposite sign)
)

// PaymentMethod identifies how a payment was made. Descriptive only;
// it never affects totals.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodPix          PaymentMethod = "pix"
	MethodDebitCard    PaymentMethod = "debit_card"
	MethodCreditCard   PaymentMethod = "credit_card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodInvoiced     PaymentMethod = "invoiced"
)

// LedgerEntry is one immutable row of the reservation's financial log.
//
// Seq is assigned by the store at append time and is strictly increasing
// per reservation. Statement ordering is (Timestamp, Seq); the Seq
// tie-break makes the running-balance report deterministic when several
// entries share a timestamp.
type LedgerEntry struct {
	ID            EntryID
	ReservationID ReservationID
	Seq           int64
	Timestamp     time.Time
	Kind          EntryKind

	// Reverses is set only on reversal entries and names the kind of the
	// entry being reversed, so aggregation nets the reversal against the
	// correct bucket.
	Reverses EntryKind

	Quantity    decimal.Decimal
	UnitValue   decimal.Decimal
	Amount      decimal.Decimal // signed: charges < 0, payments > 0
	Description string
	Method      PaymentMethod // payments only
	ReversesID  EntryID       // reversal entries only
}

// Validate enforces construction-time consistency between Kind and Amount.
// No entry may be appended with a sign that contradicts its kind.
func (e LedgerEntry) Validate() error {
	switch e.Kind {
	case ChargeLodging, ChargeProduct:
		if !e.Amount.IsNegative() {
			return fmt.Errorf("%w: %s amount must be negative, got %s", ErrInvalidAmount, e.Kind, e.Amount)
		}
	case Payment:
		if !e.Amount.IsPositive() {
			return fmt.Errorf("%w: payment amount must be positive, got %s", ErrInvalidAmount, e.Amount)
		}
	case Reversal:
		if e.Amount.IsZero() {
			return fmt.Errorf("%w: reversal amount must be non-zero", ErrInvalidAmount)
		}
		switch e.Reverses {
		case ChargeLodging, ChargeProduct:
			if !e.Amount.IsPositive() {
				return fmt.Errorf("%w: reversal of a charge must be positive", ErrInvalidAmount)
			}
		case Payment:
			if !e.Amount.IsNegative() {
				return fmt.Errorf("%w: reversal of a payment must be negative", ErrInvalidAmount)
			}
		default:
			return fmt.Errorf("%w: reversal must name the reversed kind", ErrInvalidAmount)
		}
	default:
		return fmt.Errorf("%w: unknown entry kind %q", ErrInvalidAmount, e.Kind)
	}
	return nil
}

// =============================================================================
// TIER - Daily-rate plan for a room category
// =============================================================================

// Tier prices a stay of at least MinNights nights in a room category.
// For a given category no two tiers share the same MinNights.
type Tier struct {
	ID         string
	CategoryID CategoryID
	MinNights  int
	UnitPrice  decimal.Decimal // per night, >= 0
}

// =============================================================================
// AMENDMENT RECORD - Guest-count / checkout-date change history
// =============================================================================

type AmendmentField string

const (
	FieldGuestCount   AmendmentField = "guest_count"
	FieldCheckoutDate AmendmentField = "checkout_date"
)

// AmendmentRecord is one immutable row of the amendment history.
// Records are created only while the reservation is active and never removed.
type AmendmentRecord struct {
	ID            AmendmentID
	ReservationID ReservationID
	Timestamp     time.Time
	Field         AmendmentField
	PreviousValue string
	NewValue      string
	Reason        string
}

// =============================================================================
// RESERVATION - Read-mostly aggregate
// =============================================================================

type Status string

const (
	StatusActive    Status = "active"
	StatusFinalized Status = "finalized" // terminal
	StatusCancelled Status = "cancelled" // terminal
)

// IsTerminal reports whether no further entries or amendments may be appended.
func (s Status) IsTerminal() bool {
	return s == StatusFinalized || s == StatusCancelled
}

// Totals are the summary aggregates derived from the entry log.
// Invariant: BalanceDue = GrossDue - Received - Discount, clamped at 0.
// The clamp is defensive only: payments that would drive the balance
// negative are rejected before they reach the ledger.
type Totals struct {
	Lodging    decimal.Decimal
	Products   decimal.Decimal
	GrossDue   decimal.Decimal
	Received   decimal.Decimal
	Discount   decimal.Decimal
	BalanceDue decimal.Decimal
}

// Reservation is the aggregate view of one stay. It is rebuilt from the
// entry and amendment logs plus the static booking fields; Totals is
// written only by the ledger engine, GuestCount and Checkout only by the
// amendment auditor.
type Reservation struct {
	ID          ReservationID
	RoomID      RoomID
	GuestID     GuestID
	GuestCount  int
	Checkin     time.Time
	Checkout    time.Time
	Status      Status
	NightsCount int
	AppliedTier Tier
	Discount    decimal.Decimal
	Totals      Totals

	CancelReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns an independent copy, used for immutable snapshots.
func (r *Reservation) Clone() *Reservation {
	cp := *r
	return &cp
}

// =============================================================================
// COLLABORATOR DATA - Rooms and products (owned by the directories)
// =============================================================================

type RoomStatus string

const (
	RoomAvailable RoomStatus = "available"
	RoomOccupied  RoomStatus = "occupied"
	RoomCleaning  RoomStatus = "cleaning"
)

// Room is the directory's view of a bookable unit.
type Room struct {
	ID         RoomID
	Number     string
	CategoryID CategoryID
	Capacity   int
	Beds       int
	Status     RoomStatus
}

// Product is the directory's view of a consumable item.
type Product struct {
	ID        ProductID
	Name      string
	UnitPrice decimal.Decimal
	Available int
}

// =============================================================================
// TIME HELPERS
// =============================================================================

// NightsBetween computes the billable night count for a stay: the elapsed
// time from checkin to checkout in days, rounded up. Partial nights bill
// as whole nights.
func NightsBetween(checkin, checkout time.Time) int {
	if !checkout.After(checkin) {
		return 0
	}
	hours := checkout.Sub(checkin).Hours()
	nights := int(hours / 24)
	if hours > float64(nights)*24 {
		nights++
	}
	return nights
}
