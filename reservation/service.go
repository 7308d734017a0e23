/*
service.go - Reservation orchestrator

PURPOSE:
  Composes the tier resolver, ledger engine, lifecycle guards, and
  amendment auditor into the public mutating operations. Every operation
  is one atomic unit: validation, log append, and aggregate recomputation
  happen under a per-reservation lock, and nothing is written before all
  pre-condition checks have passed.

OPERATION FLOW:
  1. Acquire the reservation's lock
  2. Load the aggregate
  3. Run every guard (lifecycle + admission rules)
  4. Append to the relevant log, recompute totals, persist the aggregate
  5. Return a fresh immutable snapshot

CONCURRENCY:
  At most one writer per reservation at a time; operations on different
  reservations are independent. Reads observe a consistent snapshot via
  the store's own locking.

ERRORS:
  Guard rejections surface unchanged (see errors.go). Failures of the
  store or a directory during validation are wrapped as
  ErrCollaboratorUnavailable, and are safe to retry since nothing was
  written.
*/
package reservation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service is the reservation orchestrator.
type Service struct {
	store    Store
	rooms    RoomDirectory
	products ProductDirectory
	notifier RoomStatusNotifier

	tiers     *TierResolver
	ledger    *LedgerEngine
	auditor   *AmendmentAuditor
	lifecycle Lifecycle

	locks lockTable
}

// NewService wires the engine components around a store and its
// collaborators. The notifier may be nil when no room-status consumer
// exists (tests, batch tooling).
func NewService(store Store, rooms RoomDirectory, products ProductDirectory, notifier RoomStatusNotifier) *Service {
	return &Service{
		store:    store,
		rooms:    rooms,
		products: products,
		notifier: notifier,
		tiers:    NewTierResolver(rooms),
		ledger:   NewLedgerEngine(store),
		auditor:  NewAmendmentAuditor(store, rooms),
		locks:    lockTable{locks: make(map[ReservationID]*sync.Mutex)},
	}
}

// =============================================================================
// BOOKING
// =============================================================================

// CreateReservation books a stay: validates dates and capacity, resolves
// the pricing tier, and seeds the ledger with the lodging charge for the
// full night count, all as one write.
func (s *Service) CreateReservation(ctx context.Context, roomID RoomID, guestID GuestID, guestCount int, checkin, checkout time.Time) (*Reservation, error) {
	if guestCount < 1 {
		return nil, fmt.Errorf("%w: guest count must be at least 1, got %d", ErrInvalidQuantity, guestCount)
	}
	nights := NightsBetween(checkin, checkout)
	if nights < 1 {
		return nil, fmt.Errorf("%w: checkin %s, checkout %s",
			ErrInvalidDateRange, checkin.Format(time.RFC3339), checkout.Format(time.RFC3339))
	}

	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, collaborator(err)
	}
	if guestCount > room.Capacity {
		return nil, &CapacityExceededError{RoomID: room.ID, Capacity: room.Capacity, Requested: guestCount}
	}

	tier, err := s.tiers.Resolve(ctx, room.CategoryID, nights)
	if err != nil {
		return nil, collaborator(err)
	}

	now := time.Now().UTC()
	r := &Reservation{
		ID:          ReservationID(uuid.NewString()),
		RoomID:      roomID,
		GuestID:     guestID,
		GuestCount:  guestCount,
		Checkin:     checkin,
		Checkout:    checkout,
		Status:      StatusActive,
		NightsCount: nights,
		AppliedTier: tier,
		Discount:    decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	seed := LedgerEntry{
		ID:            EntryID(uuid.NewString()),
		ReservationID: r.ID,
		Timestamp:     now,
		Kind:          ChargeLodging,
		Quantity:      decimal.NewFromInt(int64(nights)),
		UnitValue:     tier.UnitPrice,
		Amount:        tier.UnitPrice.Mul(decimal.NewFromInt(int64(nights))).Neg(),
		Description:   fmt.Sprintf("lodging: %d night(s) at %s", nights, tier.UnitPrice),
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	r.Totals = ComputeTotals([]LedgerEntry{seed}, r.Discount)

	if _, err := s.store.CreateReservation(ctx, r, seed); err != nil {
		return nil, collaborator(err)
	}

	if err := s.notifyRoom(ctx, roomID, RoomOccupied); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// =============================================================================
// LEDGER MUTATIONS
// =============================================================================

// AddConsumption charges a product consumption to the reservation.
// Admission: active reservation, positive quantity, enough stock. On
// success the product directory's availability is decremented.
func (s *Service) AddConsumption(ctx context.Context, id ReservationID, productID ProductID, qty int, note string) (*Reservation, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, collaborator(err)
	}
	if err := s.lifecycle.AdmitConsumption(r, product, qty); err != nil {
		return nil, err
	}

	desc := product.Name
	if note != "" {
		desc = fmt.Sprintf("%s (%s)", product.Name, note)
	}
	entry := LedgerEntry{
		ID:            EntryID(uuid.NewString()),
		ReservationID: id,
		Timestamp:     time.Now().UTC(),
		Kind:          ChargeProduct,
		Quantity:      decimal.NewFromInt(int64(qty)),
		UnitValue:     product.UnitPrice,
		Amount:        product.UnitPrice.Mul(decimal.NewFromInt(int64(qty))).Neg(),
		Description:   desc,
	}

	if _, err := s.ledger.Append(ctx, r, entry); err != nil {
		return nil, collaborator(err)
	}
	if err := s.save(ctx, r); err != nil {
		return nil, err
	}
	if err := s.products.DecrementStock(ctx, productID, qty); err != nil {
		return nil, collaborator(err)
	}
	return r.Clone(), nil
}

// AddPayment records a guest payment. Admission: active reservation,
// positive amount, never more than the balance due - overdraft is
// rejected before anything is written, so no entry appears on rejection.
func (s *Service) AddPayment(ctx context.Context, id ReservationID, amount decimal.Decimal, method PaymentMethod, note string) (*Reservation, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.AdmitPayment(r, amount); err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("payment (%s)", method)
	if note != "" {
		desc = fmt.Sprintf("%s: %s", desc, note)
	}
	entry := LedgerEntry{
		ID:            EntryID(uuid.NewString()),
		ReservationID: id,
		Timestamp:     time.Now().UTC(),
		Kind:          Payment,
		Amount:        amount,
		Description:   desc,
		Method:        method,
	}

	if _, err := s.ledger.Append(ctx, r, entry); err != nil {
		return nil, collaborator(err)
	}
	if err := s.save(ctx, r); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// ReverseEntry corrects a prior charge or payment by appending a reversal
// with the opposite sign. The original entry stands; the net effect is
// the correction. An entry can be reversed once, and reversals themselves
// cannot be reversed.
func (s *Service) ReverseEntry(ctx context.Context, id ReservationID, entryID EntryID, reason string) (*Reservation, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.EnsureActive(r); err != nil {
		return nil, err
	}

	entries, err := s.store.Entries(ctx, id)
	if err != nil {
		return nil, collaborator(err)
	}

	var original *LedgerEntry
	for i := range entries {
		if entries[i].ID == entryID {
			original = &entries[i]
		}
		if entries[i].Kind == Reversal && entries[i].ReversesID == entryID {
			return nil, fmt.Errorf("%w: entry %s is already reversed", ErrInvalidAmount, entryID)
		}
	}
	if original == nil {
		return nil, fmt.Errorf("%w: entry %s", ErrReservationNotFound, entryID)
	}
	if original.Kind == Reversal {
		return nil, fmt.Errorf("%w: cannot reverse a reversal", ErrInvalidAmount)
	}

	entry := LedgerEntry{
		ID:            EntryID(uuid.NewString()),
		ReservationID: id,
		Timestamp:     time.Now().UTC(),
		Kind:          Reversal,
		Reverses:      original.Kind,
		Amount:        original.Amount.Neg(),
		Description:   fmt.Sprintf("reversal of %s: %s", original.Description, reason),
		ReversesID:    entryID,
	}

	if _, err := s.ledger.Append(ctx, r, entry); err != nil {
		return nil, collaborator(err)
	}
	if err := s.save(ctx, r); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// ApplyDiscount sets the summary-level discount. Discount never appears
// in the entry log; it is applied only in the summary aggregate.
func (s *Service) ApplyDiscount(ctx context.Context, id ReservationID, amount decimal.Decimal) (*Reservation, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.AdmitDiscount(r, amount); err != nil {
		return nil, err
	}

	r.Discount = amount
	if _, err := s.ledger.Recompute(ctx, r); err != nil {
		return nil, collaborator(err)
	}
	if err := s.save(ctx, r); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// =============================================================================
// AMENDMENTS
// =============================================================================

// AmendGuestCount changes the guest count of an active reservation and
// records the change in the amendment history.
func (s *Service) AmendGuestCount(ctx context.Context, id ReservationID, newCount int, reason string) (*Reservation, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.EnsureActive(r); err != nil {
		return nil, err
	}

	if _, err := s.auditor.AmendGuestCount(ctx, r, newCount, reason); err != nil {
		return nil, collaborator(err)
	}
	if err := s.save(ctx, r); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// AmendCheckout changes the checkout date of an active reservation.
// Already-charged nights are not re-priced; only future nightly-rate
// computation sees the new date.
func (s *Service) AmendCheckout(ctx context.Context, id ReservationID, newCheckout time.Time, reason string) (*Reservation, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.EnsureActive(r); err != nil {
		return nil, err
	}

	if _, err := s.auditor.AmendCheckout(ctx, r, newCheckout, reason); err != nil {
		return nil, collaborator(err)
	}
	if err := s.save(ctx, r); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// =============================================================================
// TERMINAL TRANSITIONS
// =============================================================================

// Finalize closes a fully paid reservation and signals that the room
// needs cleaning. Fails with ErrOutstandingBalance while anything is owed.
func (s *Service) Finalize(ctx context.Context, id ReservationID) (*Reservation, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.CanFinalize(r); err != nil {
		return nil, err
	}

	r.Status = StatusFinalized
	if err := s.save(ctx, r); err != nil {
		return nil, err
	}
	s.locks.release(id)
	if err := s.notifyRoom(ctx, r.RoomID, RoomCleaning); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// Cancel closes a reservation regardless of balance. A non-empty reason
// is required; the room returns to the available pool.
func (s *Service) Cancel(ctx context.Context, id ReservationID, reason string) (*Reservation, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.CanCancel(r, reason); err != nil {
		return nil, err
	}

	r.Status = StatusCancelled
	r.CancelReason = reason
	if err := s.save(ctx, r); err != nil {
		return nil, err
	}
	s.locks.release(id)
	if err := s.notifyRoom(ctx, r.RoomID, RoomAvailable); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// =============================================================================
// READS
// =============================================================================

// Get returns an immutable snapshot of the reservation.
func (s *Service) Get(ctx context.Context, id ReservationID) (*Reservation, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// List returns snapshots of all reservations.
func (s *Service) List(ctx context.Context) ([]*Reservation, error) {
	rs, err := s.store.ListReservations(ctx)
	if err != nil {
		return nil, collaborator(err)
	}
	out := make([]*Reservation, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out, nil
}

// GetSummaryStatement derives the summary aggregates from the entry log.
func (s *Service) GetSummaryStatement(ctx context.Context, id ReservationID) (SummaryStatement, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return SummaryStatement{}, err
	}
	st, err := s.ledger.Summary(ctx, r)
	if err != nil {
		return SummaryStatement{}, collaborator(err)
	}
	return st, nil
}

// GetDetailedStatement derives the running-balance report from the entry log.
func (s *Service) GetDetailedStatement(ctx context.Context, id ReservationID) (DetailedStatement, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return DetailedStatement{}, err
	}
	st, err := s.ledger.Detailed(ctx, r)
	if err != nil {
		return DetailedStatement{}, collaborator(err)
	}
	return st, nil
}

// GetAmendments returns the amendment history, oldest first.
func (s *Service) GetAmendments(ctx context.Context, id ReservationID) ([]AmendmentRecord, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	recs, err := s.store.Amendments(ctx, id)
	if err != nil {
		return nil, collaborator(err)
	}
	return recs, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (s *Service) load(ctx context.Context, id ReservationID) (*Reservation, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, collaborator(err)
	}
	return r, nil
}

func (s *Service) save(ctx context.Context, r *Reservation) error {
	r.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveReservation(ctx, r); err != nil {
		return collaborator(err)
	}
	return nil
}

func (s *Service) notifyRoom(ctx context.Context, id RoomID, status RoomStatus) error {
	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.RoomStatusChanged(ctx, id, status); err != nil {
		return collaborator(err)
	}
	return nil
}

// collaborator wraps infrastructure failures so callers can distinguish
// them from guard rejections. Domain errors pass through unchanged.
func collaborator(err error) error {
	if err == nil || IsClientError(err) || IsNotFound(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
}

// =============================================================================
// PER-RESERVATION LOCKING
// =============================================================================

// lockTable hands out one mutex per reservation id: at most one writer at
// a time per reservation, independent across reservations.
type lockTable struct {
	mu    sync.Mutex
	locks map[ReservationID]*sync.Mutex
}

func (t *lockTable) acquire(id ReservationID) func() {
	t.mu.Lock()
	l, ok := t.locks[id]
	if !ok {
		l = &sync.Mutex{}
		t.locks[id] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// release drops the id's mutex once the reservation is terminal, so the
// table does not grow with every reservation the process ever touched.
// A writer that raced the transition gets a fresh mutex and is rejected
// by the status guard when it reloads the aggregate.
func (t *lockTable) release(id ReservationID) {
	t.mu.Lock()
	delete(t.locks, id)
	t.mu.Unlock()
}
