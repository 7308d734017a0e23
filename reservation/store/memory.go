// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/gvan1961/hotel-ledger/reservation"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements reservation.Store plus the directory and notifier
// collaborators, so a complete engine can run without a database.
type Memory struct {
	mu           sync.RWMutex
	reservations map[reservation.ReservationID]*reservation.Reservation
	entries      map[reservation.ReservationID][]reservation.LedgerEntry
	amendments   map[reservation.ReservationID][]reservation.AmendmentRecord
	seq          map[reservation.ReservationID]int64

	rooms    map[reservation.RoomID]reservation.Room
	tiers    map[reservation.CategoryID][]reservation.Tier
	products map[reservation.ProductID]reservation.Product

	order []reservation.ReservationID
}

func NewMemory() *Memory {
	return &Memory{
		reservations: make(map[reservation.ReservationID]*reservation.Reservation),
		entries:      make(map[reservation.ReservationID][]reservation.LedgerEntry),
		amendments:   make(map[reservation.ReservationID][]reservation.AmendmentRecord),
		seq:          make(map[reservation.ReservationID]int64),
		rooms:        make(map[reservation.RoomID]reservation.Room),
		tiers:        make(map[reservation.CategoryID][]reservation.Tier),
		products:     make(map[reservation.ProductID]reservation.Product),
	}
}

// =============================================================================
// RESERVATION STORE (reservation.Store interface)
// =============================================================================

// CreateReservation persists the aggregate and its seeding lodging charge
// as one atomic write.
func (m *Memory) CreateReservation(_ context.Context, r *reservation.Reservation, seed reservation.LedgerEntry) (reservation.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reservations[r.ID] = r.Clone()
	m.order = append(m.order, r.ID)
	return m.appendLocked(seed), nil
}

func (m *Memory) GetReservation(_ context.Context, id reservation.ReservationID) (*reservation.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reservations[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	return r.Clone(), nil
}

func (m *Memory) ListReservations(_ context.Context) ([]*reservation.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*reservation.Reservation, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.reservations[m.order[i]].Clone())
	}
	return out, nil
}

func (m *Memory) SaveReservation(_ context.Context, r *reservation.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reservations[r.ID]; !ok {
		return reservation.ErrReservationNotFound
	}
	m.reservations[r.ID] = r.Clone()
	return nil
}

// AppendEntry appends one ledger entry. Append-only: entries are never
// updated or removed.
func (m *Memory) AppendEntry(_ context.Context, e reservation.LedgerEntry) (reservation.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reservations[e.ReservationID]; !ok {
		return reservation.LedgerEntry{}, reservation.ErrReservationNotFound
	}
	return m.appendLocked(e), nil
}

func (m *Memory) appendLocked(e reservation.LedgerEntry) reservation.LedgerEntry {
	m.seq[e.ReservationID]++
	e.Seq = m.seq[e.ReservationID]
	m.entries[e.ReservationID] = append(m.entries[e.ReservationID], e)
	return e
}

func (m *Memory) Entries(_ context.Context, id reservation.ReservationID) ([]reservation.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return reservation.SortEntries(m.entries[id]), nil
}

func (m *Memory) AppendAmendment(_ context.Context, rec reservation.AmendmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reservations[rec.ReservationID]; !ok {
		return reservation.ErrReservationNotFound
	}
	m.amendments[rec.ReservationID] = append(m.amendments[rec.ReservationID], rec)
	return nil
}

func (m *Memory) Amendments(_ context.Context, id reservation.ReservationID) ([]reservation.AmendmentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]reservation.AmendmentRecord, len(m.amendments[id]))
	copy(out, m.amendments[id])
	return out, nil
}

// =============================================================================
// DIRECTORIES (RoomDirectory, ProductDirectory)
// =============================================================================

func (m *Memory) PutRoom(r reservation.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.ID] = r
}

func (m *Memory) GetRoom(_ context.Context, id reservation.RoomID) (reservation.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[id]
	if !ok {
		return reservation.Room{}, reservation.ErrRoomNotFound
	}
	return r, nil
}

func (m *Memory) PutTier(t reservation.Tier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiers[t.CategoryID] = append(m.tiers[t.CategoryID], t)
}

func (m *Memory) GetTiers(_ context.Context, categoryID reservation.CategoryID) ([]reservation.Tier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]reservation.Tier, len(m.tiers[categoryID]))
	copy(out, m.tiers[categoryID])
	return out, nil
}

func (m *Memory) PutProduct(p reservation.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *Memory) GetProduct(_ context.Context, id reservation.ProductID) (reservation.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return reservation.Product{}, reservation.ErrProductNotFound
	}
	return p, nil
}

func (m *Memory) DecrementStock(_ context.Context, id reservation.ProductID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return reservation.ErrProductNotFound
	}
	if qty > p.Available {
		return &reservation.InsufficientStockError{ProductID: id, Available: p.Available, Requested: qty}
	}
	p.Available -= qty
	m.products[id] = p
	return nil
}

// =============================================================================
// ROOM STATUS (RoomStatusNotifier)
// =============================================================================

func (m *Memory) RoomStatusChanged(_ context.Context, id reservation.RoomID, status reservation.RoomStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[id]
	if !ok {
		return reservation.ErrRoomNotFound
	}
	r.Status = status
	m.rooms[id] = r
	return nil
}

// RoomStatus reports the current status, for assertions in tests.
func (m *Memory) RoomStatus(id reservation.RoomID) reservation.RoomStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[id].Status
}
