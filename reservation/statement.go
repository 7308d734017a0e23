/*
statement.go - Derived financial reports

PURPOSE:
  Two bit-reproducible reports derived from the same entry log:

  SummaryStatement:  the six summary aggregates (lodging, products,
                     grossDue, received, discount, balanceDue)
  DetailedStatement: every entry with its running balance, plus total
                     debits, total credits, and the final balance due

  Both are pure projections of the log. The running balance is re-derived
  on every call rather than stored, so it can never drift from the log of
  record. The final running balance always equals received - grossDue.
*/
package reservation

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REPORT TYPES
// =============================================================================

// SummaryStatement mirrors Totals for presentation consumers.
type SummaryStatement struct {
	ReservationID ReservationID
	Lodging       decimal.Decimal
	Products      decimal.Decimal
	GrossDue      decimal.Decimal
	Received      decimal.Decimal
	Discount      decimal.Decimal
	BalanceDue    decimal.Decimal
}

// StatementLine is one entry paired with the balance accumulated up to and
// including it.
type StatementLine struct {
	Entry          LedgerEntry
	RunningBalance decimal.Decimal
}

// DetailedStatement is the chronological running-balance report.
//
// TotalDebits is the signed sum of all non-payment entries (negative),
// TotalCredits the sum of payment amounts net of payment reversals.
// Discount is surfaced separately: it has no ledger entry and therefore
// no statement line.
type DetailedStatement struct {
	ReservationID ReservationID
	Lines         []StatementLine
	TotalDebits   decimal.Decimal
	TotalCredits  decimal.Decimal
	Discount      decimal.Decimal
	BalanceDue    decimal.Decimal
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// BuildDetailed projects an entry log into the running-balance report.
// Pure: sorts internally, accumulates signed amounts left to right.
func BuildDetailed(id ReservationID, entries []LedgerEntry, discount decimal.Decimal) DetailedStatement {
	sorted := SortEntries(entries)

	lines := make([]StatementLine, 0, len(sorted))
	running := decimal.Zero
	debits := decimal.Zero
	credits := decimal.Zero

	for _, e := range sorted {
		running = running.Add(e.Amount)
		lines = append(lines, StatementLine{Entry: e, RunningBalance: running})

		if e.Kind == Payment || (e.Kind == Reversal && e.Reverses == Payment) {
			credits = credits.Add(e.Amount)
		} else {
			debits = debits.Add(e.Amount)
		}
	}

	totals := ComputeTotals(sorted, discount)

	return DetailedStatement{
		ReservationID: id,
		Lines:         lines,
		TotalDebits:   debits,
		TotalCredits:  credits,
		Discount:      discount,
		BalanceDue:    totals.BalanceDue,
	}
}

// Summary reads the log and derives the summary statement.
func (le *LedgerEngine) Summary(ctx context.Context, r *Reservation) (SummaryStatement, error) {
	entries, err := le.Store.Entries(ctx, r.ID)
	if err != nil {
		return SummaryStatement{}, err
	}

	t := ComputeTotals(entries, r.Discount)
	return SummaryStatement{
		ReservationID: r.ID,
		Lodging:       t.Lodging,
		Products:      t.Products,
		GrossDue:      t.GrossDue,
		Received:      t.Received,
		Discount:      t.Discount,
		BalanceDue:    t.BalanceDue,
	}, nil
}

// Detailed reads the log and derives the running-balance statement.
func (le *LedgerEngine) Detailed(ctx context.Context, r *Reservation) (DetailedStatement, error) {
	entries, err := le.Store.Entries(ctx, r.ID)
	if err != nil {
		return DetailedStatement{}, err
	}
	return BuildDetailed(r.ID, entries, r.Discount), nil
}
