package reservation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gvan1961/hotel-ledger/reservation"
)

// =============================================================================
// RUNNING BALANCE
// =============================================================================

func TestBuildDetailed_RunningBalanceAccumulates(t *testing.T) {
	// GIVEN: Charge, consumption, partial payment
	// WHEN: Building the detailed statement
	// THEN: Each line carries the cumulative signed sum

	entries := []reservation.LedgerEntry{
		lodgingCharge("e1", 1, date(2025, 6, 10, 12), "-200"),
		productCharge("e2", 2, date(2025, 6, 10, 18), "-35.50"),
		payment("e3", 3, date(2025, 6, 11, 9), "100"),
	}

	st := reservation.BuildDetailed("res-1", entries, decimal.Zero)

	require.Len(t, st.Lines, 3)
	assertMoney(t, "-200", st.Lines[0].RunningBalance)
	assertMoney(t, "-235.50", st.Lines[1].RunningBalance)
	assertMoney(t, "-135.50", st.Lines[2].RunningBalance)
}

func TestBuildDetailed_FinalBalanceEqualsReceivedMinusGrossDue(t *testing.T) {
	// The last running balance and the summary totals must describe the
	// same money: running = received - grossDue.

	entries := []reservation.LedgerEntry{
		lodgingCharge("e1", 1, date(2025, 6, 10, 12), "-300"),
		productCharge("e2", 2, date(2025, 6, 10, 18), "-45"),
		payment("e3", 3, date(2025, 6, 11, 9), "120"),
		payment("e4", 4, date(2025, 6, 12, 9), "80"),
	}

	st := reservation.BuildDetailed("res-1", entries, decimal.Zero)
	totals := reservation.ComputeTotals(entries, decimal.Zero)

	final := st.Lines[len(st.Lines)-1].RunningBalance
	assert.True(t, final.Equal(totals.Received.Sub(totals.GrossDue)),
		"final running balance %s, received-grossDue %s", final, totals.Received.Sub(totals.GrossDue))
}

func TestBuildDetailed_SortsInternally(t *testing.T) {
	// GIVEN: Entries supplied out of order
	// WHEN: Building the statement
	// THEN: Lines come out chronological regardless of input order

	entries := []reservation.LedgerEntry{
		payment("e3", 3, date(2025, 6, 11, 9), "100"),
		lodgingCharge("e1", 1, date(2025, 6, 10, 12), "-200"),
		productCharge("e2", 2, date(2025, 6, 10, 18), "-35.50"),
	}

	st := reservation.BuildDetailed("res-1", entries, decimal.Zero)

	require.Len(t, st.Lines, 3)
	assert.Equal(t, reservation.EntryID("e1"), st.Lines[0].Entry.ID)
	assert.Equal(t, reservation.EntryID("e2"), st.Lines[1].Entry.ID)
	assert.Equal(t, reservation.EntryID("e3"), st.Lines[2].Entry.ID)
	assertMoney(t, "-135.50", st.Lines[2].RunningBalance)
}

// =============================================================================
// DEBIT AND CREDIT BUCKETS
// =============================================================================

func TestBuildDetailed_DebitsAndCredits(t *testing.T) {
	entries := []reservation.LedgerEntry{
		lodgingCharge("e1", 1, date(2025, 6, 10, 12), "-200"),
		productCharge("e2", 2, date(2025, 6, 10, 18), "-35.50"),
		payment("e3", 3, date(2025, 6, 11, 9), "100"),
	}

	st := reservation.BuildDetailed("res-1", entries, decimal.Zero)

	assertMoney(t, "-235.50", st.TotalDebits)
	assertMoney(t, "100", st.TotalCredits)
	assertMoney(t, "135.50", st.BalanceDue)
}

func TestBuildDetailed_PaymentReversalCountsAsCredit(t *testing.T) {
	// A reversed payment nets credits back down instead of inflating debits.
	pay := payment("e2", 2, date(2025, 6, 11, 9), "100")
	entries := []reservation.LedgerEntry{
		lodgingCharge("e1", 1, date(2025, 6, 10, 12), "-200"),
		pay,
		reversalOf("e3", 3, date(2025, 6, 12, 9), pay),
	}

	st := reservation.BuildDetailed("res-1", entries, decimal.Zero)

	assertMoney(t, "0", st.TotalCredits)
	assertMoney(t, "-200", st.TotalDebits)
	assertMoney(t, "200", st.BalanceDue)
}

func TestBuildDetailed_ChargeReversalAppearsAsLine(t *testing.T) {
	// A reversed charge still produces a statement line; the running
	// balance walks down and back up.
	charge := productCharge("e1", 1, date(2025, 6, 10, 18), "-35.50")
	entries := []reservation.LedgerEntry{
		charge,
		reversalOf("e2", 2, date(2025, 6, 10, 19), charge),
	}

	st := reservation.BuildDetailed("res-1", entries, decimal.Zero)

	require.Len(t, st.Lines, 2)
	assertMoney(t, "-35.50", st.Lines[0].RunningBalance)
	assertMoney(t, "0", st.Lines[1].RunningBalance)
}

func TestBuildDetailed_DiscountHasNoLine(t *testing.T) {
	// The discount reduces the balance but never appears in the log.
	entries := []reservation.LedgerEntry{
		lodgingCharge("e1", 1, date(2025, 6, 10, 12), "-200"),
	}

	st := reservation.BuildDetailed("res-1", entries, money("50"))

	require.Len(t, st.Lines, 1)
	assertMoney(t, "50", st.Discount)
	assertMoney(t, "150", st.BalanceDue)
}

func TestBuildDetailed_EmptyLog(t *testing.T) {
	st := reservation.BuildDetailed("res-1", nil, decimal.Zero)
	assert.Empty(t, st.Lines)
	assertMoney(t, "0", st.BalanceDue)
}
