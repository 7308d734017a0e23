/*
store.go - Persistence and collaborator interfaces

PURPOSE:
  Defines the interface between the engine and its collaborators: durable
  storage of reservations plus their two logs, the room and product
  directories, and the room-status signal raised on lifecycle transitions.

APPEND-ONLY CONTRACT:
  The entry and amendment logs are append-only. The Store exposes no way
  to update or delete a logged row; corrections are reversal entries.
  AppendEntry assigns a per-reservation sequence number at write time so
  insertion order survives round trips through storage.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store (also backs the directories)
  - reservation/store: in-memory store for tests and development

SEE ALSO:
  - service.go: The only caller that writes through these interfaces
*/
package reservation

import "context"

// =============================================================================
// STORE - Durable reservation state (append-only logs)
// =============================================================================

// Store persists reservations, the ledger entry log, and the amendment log.
//
// Writes to the two logs are append-only: no update or delete exists.
// SaveReservation persists only the aggregate (totals, status, guest count,
// checkout) and never touches logged rows.
type Store interface {
	// CreateReservation persists a new reservation together with its
	// seeding lodging charge as one atomic write.
	CreateReservation(ctx context.Context, r *Reservation, seed LedgerEntry) (LedgerEntry, error)

	// GetReservation returns the aggregate, or ErrReservationNotFound.
	GetReservation(ctx context.Context, id ReservationID) (*Reservation, error)

	// ListReservations returns all reservations, newest first.
	ListReservations(ctx context.Context) ([]*Reservation, error)

	// SaveReservation persists the aggregate fields of an existing
	// reservation (totals, status, guest count, checkout, discount).
	SaveReservation(ctx context.Context, r *Reservation) error

	// AppendEntry appends one ledger entry, assigning its Seq.
	// Returns the stored entry.
	AppendEntry(ctx context.Context, e LedgerEntry) (LedgerEntry, error)

	// Entries returns the full entry log for a reservation in (Timestamp,
	// Seq) order.
	Entries(ctx context.Context, id ReservationID) ([]LedgerEntry, error)

	// AppendAmendment appends one amendment record.
	AppendAmendment(ctx context.Context, rec AmendmentRecord) error

	// Amendments returns the amendment history, oldest first.
	Amendments(ctx context.Context, id ReservationID) ([]AmendmentRecord, error)
}

// =============================================================================
// DIRECTORIES - External lookups consumed by the engine
// =============================================================================

// RoomDirectory resolves rooms and the pricing tiers of their categories.
type RoomDirectory interface {
	GetRoom(ctx context.Context, id RoomID) (Room, error)
	GetTiers(ctx context.Context, categoryID CategoryID) ([]Tier, error)
}

// ProductDirectory resolves consumable products and owns their stock.
type ProductDirectory interface {
	GetProduct(ctx context.Context, id ProductID) (Product, error)

	// DecrementStock reduces availability after an accepted consumption.
	DecrementStock(ctx context.Context, id ProductID, qty int) error
}

// RoomStatusNotifier receives room-status side effects of lifecycle
// transitions: occupied on booking, cleaning on finalize, available on
// cancellation. The engine signals; it does not own room state.
type RoomStatusNotifier interface {
	RoomStatusChanged(ctx context.Context, id RoomID, status RoomStatus) error
}
