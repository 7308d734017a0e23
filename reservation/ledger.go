/*
ledger.go - Append-only financial log per reservation

PURPOSE:
  The ledger is the immutable source of truth for everything the guest
  owes or has paid. Nightly charges, product consumption, payments, and
  reversals are recorded here. Totals are always computed by replaying
  entries - there is no separately maintained balance that can drift.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No Update, No Delete. EVER.
  2. IMMUTABLE: Once written, entries cannot be modified
  3. CLOSED IS CLOSED: Nothing is appended to a finalized or cancelled
     reservation
  4. ORDERED: Aggregation and statements replay entries by (Timestamp, Seq)

CORRECTIONS:
  Mistakes are never edited. A reversal entry with the opposite sign is
  appended instead; both rows remain and the net effect is the correction.

AGGREGATION:
  lodging    = |sum of lodging charges|, net of their reversals
  products   = |sum of product charges|, net of their reversals
  grossDue   = lodging + products
  received   = sum of payments, net of payment reversals
  balanceDue = grossDue - received - discount, clamped at 0

  The clamp is defensive: payments that would overdraw the balance are
  rejected at admission, so a negative pre-clamp value indicates a bug.
  Discount is a summary-level field with no originating ledger entry.

SEE ALSO:
  - statement.go: Running-balance projection over the same log
  - store.go: Persistence contract for the entry log
*/
package reservation

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER ENGINE
// =============================================================================

// LedgerEngine owns the entry log of a reservation and is the only writer
// of its Totals.
type LedgerEngine struct {
	Store Store
}

func NewLedgerEngine(store Store) *LedgerEngine {
	return &LedgerEngine{Store: store}
}

// Append validates the entry, appends it, and returns the reservation's
// recomputed totals. Rejected with ErrReservationClosed unless the
// reservation is active.
func (le *LedgerEngine) Append(ctx context.Context, r *Reservation, e LedgerEntry) (Totals, error) {
	if r.Status != StatusActive {
		return Totals{}, fmt.Errorf("%w: %s is %s", ErrReservationClosed, r.ID, r.Status)
	}
	if err := e.Validate(); err != nil {
		return Totals{}, err
	}

	if _, err := le.Store.AppendEntry(ctx, e); err != nil {
		return Totals{}, err
	}

	return le.Recompute(ctx, r)
}

// Recompute replays the full entry log and writes fresh totals onto the
// aggregate.
func (le *LedgerEngine) Recompute(ctx context.Context, r *Reservation) (Totals, error) {
	entries, err := le.Store.Entries(ctx, r.ID)
	if err != nil {
		return Totals{}, err
	}

	totals := ComputeTotals(entries, r.Discount)
	r.Totals = totals
	return totals, nil
}

// =============================================================================
// PURE AGGREGATION
// =============================================================================

// ComputeTotals derives the summary aggregates from an entry log. Pure and
// deterministic: the same log and discount always produce the same totals.
func ComputeTotals(entries []LedgerEntry, discount decimal.Decimal) Totals {
	lodging := decimal.Zero  // signed sum, <= 0
	products := decimal.Zero // signed sum, <= 0
	received := decimal.Zero // signed sum, >= 0

	for _, e := range entries {
		switch e.Kind {
		case ChargeLodging:
			lodging = lodging.Add(e.Amount)
		case ChargeProduct:
			products = products.Add(e.Amount)
		case Payment:
			received = received.Add(e.Amount)
		case Reversal:
			// Net the reversal against the bucket it corrects.
			switch e.Reverses {
			case ChargeLodging:
				lodging = lodging.Add(e.Amount)
			case ChargeProduct:
				products = products.Add(e.Amount)
			case Payment:
				received = received.Add(e.Amount)
			}
		}
	}

	t := Totals{
		Lodging:  lodging.Abs(),
		Products: products.Abs(),
		Received: received,
		Discount: discount,
	}
	t.GrossDue = t.Lodging.Add(t.Products)

	balance := t.GrossDue.Sub(t.Received).Sub(t.Discount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	t.BalanceDue = balance
	return t
}

// SortEntries orders a log by Timestamp ascending, ties broken by Seq
// ascending (insertion order). This ordering is a correctness requirement
// for the running-balance statement, not cosmetic.
func SortEntries(entries []LedgerEntry) []LedgerEntry {
	sorted := make([]LedgerEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].Seq < sorted[j].Seq
	})
	return sorted
}
