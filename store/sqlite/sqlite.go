/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the reservation engine's persistence (reservation.Store) and
  its collaborator directories (RoomDirectory, ProductDirectory,
  RoomStatusNotifier) using SQLite. In production the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The ledger_entries and amendments tables are append-only:
  - No UPDATE statements exist for them
  - No DELETE statements exist for them
  - Corrections are reversal entries only

KEY TABLES:
  reservations:    Aggregate state (totals, status, amendable fields)
  ledger_entries:  Immutable financial log, per-reservation sequence
  amendments:      Immutable guest-count/checkout change history
  rooms, tiers:    Room directory with per-category pricing tiers
  products:        Product directory with stock

SEQUENCING:
  Each entry gets seq = MAX(seq)+1 within its reservation, assigned inside
  the insert transaction, so insertion order survives storage round trips
  and ties on timestamp stay deterministic.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, a single writer at a time, better crash
  recovery.

USAGE:
  store, err := sqlite.New("./data/hotel.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := reservation.NewService(store, store, store, store)

SEE ALSO:
  - reservation/store.go: Interface definitions
  - reservation/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/gvan1961/hotel-ledger/reservation"
)

// ErrDuplicate reports a row that collides with an existing unique key
// (room number, tier ladder slot, or an explicit id).
var ErrDuplicate = errors.New("duplicate record")

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Reservations (aggregate state)
	CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		room_id TEXT NOT NULL,
		guest_id TEXT NOT NULL,
		guest_count INTEGER NOT NULL,
		checkin TEXT NOT NULL,
		checkout TEXT NOT NULL,
		status TEXT NOT NULL,
		nights_count INTEGER NOT NULL,
		tier_id TEXT NOT NULL,
		tier_category_id TEXT NOT NULL,
		tier_min_nights INTEGER NOT NULL,
		tier_unit_price TEXT NOT NULL,
		discount TEXT NOT NULL,
		total_lodging TEXT NOT NULL,
		total_products TEXT NOT NULL,
		total_gross_due TEXT NOT NULL,
		total_received TEXT NOT NULL,
		total_balance_due TEXT NOT NULL,
		cancel_reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reservations_status
		ON reservations(status);
	CREATE INDEX IF NOT EXISTS idx_reservations_room
		ON reservations(room_id);

	-- Ledger entries (append-only financial log)
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		reservation_id TEXT NOT NULL REFERENCES reservations(id),
		seq INTEGER NOT NULL,
		timestamp TEXT NOT NULL,
		kind TEXT NOT NULL,
		reverses TEXT,
		reverses_id TEXT,
		quantity TEXT NOT NULL,
		unit_value TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT,
		method TEXT,
		UNIQUE(reservation_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_reservation
		ON ledger_entries(reservation_id, timestamp, seq);
	CREATE INDEX IF NOT EXISTS idx_entries_kind
		ON ledger_entries(kind);

	-- Amendments (append-only change history)
	CREATE TABLE IF NOT EXISTS amendments (
		id TEXT PRIMARY KEY,
		reservation_id TEXT NOT NULL REFERENCES reservations(id),
		timestamp TEXT NOT NULL,
		field TEXT NOT NULL,
		previous_value TEXT NOT NULL,
		new_value TEXT NOT NULL,
		reason TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_amendments_reservation
		ON amendments(reservation_id, timestamp);

	-- Rooms
	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		category_id TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		beds INTEGER NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'available'
	);

	CREATE INDEX IF NOT EXISTS idx_rooms_category
		ON rooms(category_id);

	-- Pricing tiers. For one category, tiers are distinguishable by
	-- min_nights: no two tiers share the same threshold.
	CREATE TABLE IF NOT EXISTS tiers (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL,
		min_nights INTEGER NOT NULL CHECK(min_nights >= 1),
		unit_price TEXT NOT NULL,
		UNIQUE(category_id, min_nights)
	);

	CREATE INDEX IF NOT EXISTS idx_tiers_category
		ON tiers(category_id);

	-- Products
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		available INTEGER NOT NULL DEFAULT 0
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RESERVATION STORE (reservation.Store interface)
// =============================================================================

// CreateReservation persists the aggregate and its seeding lodging charge
// in one database transaction.
func (s *Store) CreateReservation(ctx context.Context, r *reservation.Reservation, seed reservation.LedgerEntry) (reservation.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return reservation.LedgerEntry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertReservation(ctx, tx, r); err != nil {
		return reservation.LedgerEntry{}, err
	}
	stored, err := s.insertEntry(ctx, tx, seed)
	if err != nil {
		return reservation.LedgerEntry{}, err
	}

	if err := tx.Commit(); err != nil {
		return reservation.LedgerEntry{}, fmt.Errorf("failed to commit: %w", err)
	}
	return stored, nil
}

func (s *Store) insertReservation(ctx context.Context, tx *sql.Tx, r *reservation.Reservation) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO reservations
		(id, room_id, guest_id, guest_count, checkin, checkout, status, nights_count,
		 tier_id, tier_category_id, tier_min_nights, tier_unit_price, discount,
		 total_lodging, total_products, total_gross_due, total_received, total_balance_due,
		 cancel_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RoomID, r.GuestID, r.GuestCount,
		r.Checkin.UTC().Format(time.RFC3339Nano), r.Checkout.UTC().Format(time.RFC3339Nano),
		r.Status, r.NightsCount,
		r.AppliedTier.ID, r.AppliedTier.CategoryID, r.AppliedTier.MinNights, r.AppliedTier.UnitPrice.String(),
		r.Discount.String(),
		r.Totals.Lodging.String(), r.Totals.Products.String(), r.Totals.GrossDue.String(),
		r.Totals.Received.String(), r.Totals.BalanceDue.String(),
		r.CancelReason,
		r.CreatedAt.UTC().Format(time.RFC3339Nano), r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

func (s *Store) GetReservation(ctx context.Context, id reservation.ReservationID) (*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, reservationSelect+` WHERE id = ?`, id)
	r, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, reservation.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	return r, nil
}

func (s *Store) ListReservations(ctx context.Context) ([]*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, reservationSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveReservation persists the aggregate fields. It never touches the
// entry or amendment logs.
func (s *Store) SaveReservation(ctx context.Context, r *reservation.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE reservations SET
			guest_count = ?, checkout = ?, status = ?, nights_count = ?, discount = ?,
			total_lodging = ?, total_products = ?, total_gross_due = ?,
			total_received = ?, total_balance_due = ?,
			cancel_reason = ?, updated_at = ?
		WHERE id = ?`,
		r.GuestCount, r.Checkout.UTC().Format(time.RFC3339Nano), r.Status, r.NightsCount,
		r.Discount.String(),
		r.Totals.Lodging.String(), r.Totals.Products.String(), r.Totals.GrossDue.String(),
		r.Totals.Received.String(), r.Totals.BalanceDue.String(),
		r.CancelReason, r.UpdatedAt.UTC().Format(time.RFC3339Nano),
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	if n == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// AppendEntry appends one ledger entry, assigning its per-reservation
// sequence number inside the insert transaction.
func (s *Store) AppendEntry(ctx context.Context, e reservation.LedgerEntry) (reservation.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return reservation.LedgerEntry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stored, err := s.insertEntry(ctx, tx, e)
	if err != nil {
		return reservation.LedgerEntry{}, err
	}
	if err := tx.Commit(); err != nil {
		return reservation.LedgerEntry{}, fmt.Errorf("failed to commit: %w", err)
	}
	return stored, nil
}

func (s *Store) insertEntry(ctx context.Context, tx *sql.Tx, e reservation.LedgerEntry) (reservation.LedgerEntry, error) {
	var seq int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM ledger_entries WHERE reservation_id = ?`,
		e.ReservationID,
	).Scan(&seq)
	if err != nil {
		return reservation.LedgerEntry{}, fmt.Errorf("failed to assign sequence: %w", err)
	}
	e.Seq = seq

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entries
		(id, reservation_id, seq, timestamp, kind, reverses, reverses_id,
		 quantity, unit_value, amount, description, method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ReservationID, e.Seq,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.Kind, nullString(string(e.Reverses)), nullString(string(e.ReversesID)),
		e.Quantity.String(), e.UnitValue.String(), e.Amount.String(),
		e.Description, nullString(string(e.Method)),
	)
	if err != nil {
		return reservation.LedgerEntry{}, fmt.Errorf("failed to append entry: %w", err)
	}
	return e, nil
}

func (s *Store) Entries(ctx context.Context, id reservation.ReservationID) ([]reservation.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reservation_id, seq, timestamp, kind, reverses, reverses_id,
		       quantity, unit_value, amount, description, method
		FROM ledger_entries
		WHERE reservation_id = ?
		ORDER BY timestamp ASC, seq ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	defer rows.Close()

	var out []reservation.LedgerEntry
	for rows.Next() {
		var e reservation.LedgerEntry
		var ts, quantity, unitValue, amount string
		var reverses, reversesID, description, method sql.NullString

		if err := rows.Scan(&e.ID, &e.ReservationID, &e.Seq, &ts, &e.Kind,
			&reverses, &reversesID, &quantity, &unitValue, &amount, &description, &method); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse entry timestamp: %w", err)
		}
		e.Reverses = reservation.EntryKind(reverses.String)
		e.ReversesID = reservation.EntryID(reversesID.String)
		e.Description = description.String
		e.Method = reservation.PaymentMethod(method.String)
		if e.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("failed to parse quantity: %w", err)
		}
		if e.UnitValue, err = decimal.NewFromString(unitValue); err != nil {
			return nil, fmt.Errorf("failed to parse unit value: %w", err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) AppendAmendment(ctx context.Context, rec reservation.AmendmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO amendments
		(id, reservation_id, timestamp, field, previous_value, new_value, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ReservationID, rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.Field, rec.PreviousValue, rec.NewValue, rec.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to append amendment: %w", err)
	}
	return nil
}

func (s *Store) Amendments(ctx context.Context, id reservation.ReservationID) ([]reservation.AmendmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reservation_id, timestamp, field, previous_value, new_value, reason
		FROM amendments
		WHERE reservation_id = ?
		ORDER BY timestamp ASC, id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load amendments: %w", err)
	}
	defer rows.Close()

	var out []reservation.AmendmentRecord
	for rows.Next() {
		var rec reservation.AmendmentRecord
		var ts string
		var reason sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ReservationID, &ts, &rec.Field,
			&rec.PreviousValue, &rec.NewValue, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan amendment: %w", err)
		}
		rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amendment timestamp: %w", err)
		}
		rec.Reason = reason.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// ROOM DIRECTORY (reservation.RoomDirectory interface)
// =============================================================================

func (s *Store) CreateRoom(ctx context.Context, r reservation.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Status == "" {
		r.Status = reservation.RoomAvailable
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, number, category_id, capacity, beds, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Number, r.CategoryID, r.Capacity, r.Beds, r.Status,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("room %s: %w", r.Number, ErrDuplicate)
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id reservation.RoomID) (reservation.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r reservation.Room
	err := s.db.QueryRowContext(ctx, `
		SELECT id, number, category_id, capacity, beds, status
		FROM rooms WHERE id = ?`, id,
	).Scan(&r.ID, &r.Number, &r.CategoryID, &r.Capacity, &r.Beds, &r.Status)
	if err == sql.ErrNoRows {
		return reservation.Room{}, reservation.ErrRoomNotFound
	}
	if err != nil {
		return reservation.Room{}, fmt.Errorf("failed to load room: %w", err)
	}
	return r, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]reservation.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, category_id, capacity, beds, status
		FROM rooms ORDER BY number ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var out []reservation.Room
	for rows.Next() {
		var r reservation.Room
		if err := rows.Scan(&r.ID, &r.Number, &r.CategoryID, &r.Capacity, &r.Beds, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateTier(ctx context.Context, t reservation.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tiers (id, category_id, min_nights, unit_price)
		VALUES (?, ?, ?, ?)`,
		t.ID, t.CategoryID, t.MinNights, t.UnitPrice.String(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("tier for category %s at %d nights: %w", t.CategoryID, t.MinNights, ErrDuplicate)
		}
		return fmt.Errorf("failed to create tier: %w", err)
	}
	return nil
}

func (s *Store) GetTiers(ctx context.Context, categoryID reservation.CategoryID) ([]reservation.Tier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, min_nights, unit_price
		FROM tiers WHERE category_id = ?
		ORDER BY min_nights ASC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiers: %w", err)
	}
	defer rows.Close()

	var out []reservation.Tier
	for rows.Next() {
		var t reservation.Tier
		var price string
		if err := rows.Scan(&t.ID, &t.CategoryID, &t.MinNights, &price); err != nil {
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		if t.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("failed to parse tier price: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// =============================================================================
// PRODUCT DIRECTORY (reservation.ProductDirectory interface)
// =============================================================================

func (s *Store) CreateProduct(ctx context.Context, p reservation.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, unit_price, available)
		VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.UnitPrice.String(), p.Available,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("product %s: %w", p.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id reservation.ProductID) (reservation.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p reservation.Product
	var price string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, unit_price, available
		FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &price, &p.Available)
	if err == sql.ErrNoRows {
		return reservation.Product{}, reservation.ErrProductNotFound
	}
	if err != nil {
		return reservation.Product{}, fmt.Errorf("failed to load product: %w", err)
	}
	if p.UnitPrice, err = decimal.NewFromString(price); err != nil {
		return reservation.Product{}, fmt.Errorf("failed to parse product price: %w", err)
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]reservation.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unit_price, available
		FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var out []reservation.Product
	for rows.Next() {
		var p reservation.Product
		var price string
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Available); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if p.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("failed to parse product price: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) DecrementStock(ctx context.Context, id reservation.ProductID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Guarded subtraction: never drive stock negative.
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET available = available - ?
		WHERE id = ? AND available >= ?`, qty, id, qty)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if n == 0 {
		var available int
		err := s.db.QueryRowContext(ctx,
			`SELECT available FROM products WHERE id = ?`, id).Scan(&available)
		if err == sql.ErrNoRows {
			return reservation.ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		return &reservation.InsufficientStockError{ProductID: id, Available: available, Requested: qty}
	}
	return nil
}

// =============================================================================
// ROOM STATUS (reservation.RoomStatusNotifier interface)
// =============================================================================

func (s *Store) RoomStatusChanged(ctx context.Context, id reservation.RoomID, status reservation.RoomStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE rooms SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	if n == 0 {
		return reservation.ErrRoomNotFound
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

const reservationSelect = `
	SELECT id, room_id, guest_id, guest_count, checkin, checkout, status, nights_count,
	       tier_id, tier_category_id, tier_min_nights, tier_unit_price, discount,
	       total_lodging, total_products, total_gross_due, total_received, total_balance_due,
	       cancel_reason, created_at, updated_at
	FROM reservations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*reservation.Reservation, error) {
	var r reservation.Reservation
	var checkin, checkout, createdAt, updatedAt string
	var tierPrice, discount, lodging, products, gross, received, balance string
	var cancelReason sql.NullString

	err := row.Scan(&r.ID, &r.RoomID, &r.GuestID, &r.GuestCount,
		&checkin, &checkout, &r.Status, &r.NightsCount,
		&r.AppliedTier.ID, &r.AppliedTier.CategoryID, &r.AppliedTier.MinNights, &tierPrice,
		&discount, &lodging, &products, &gross, &received, &balance,
		&cancelReason, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	r.CancelReason = cancelReason.String
	for _, p := range []struct {
		dst *time.Time
		src string
	}{
		{&r.Checkin, checkin}, {&r.Checkout, checkout},
		{&r.CreatedAt, createdAt}, {&r.UpdatedAt, updatedAt},
	} {
		t, err := time.Parse(time.RFC3339Nano, p.src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse reservation time: %w", err)
		}
		*p.dst = t
	}
	for _, p := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&r.AppliedTier.UnitPrice, tierPrice}, {&r.Discount, discount},
		{&r.Totals.Lodging, lodging}, {&r.Totals.Products, products},
		{&r.Totals.GrossDue, gross}, {&r.Totals.Received, received},
		{&r.Totals.BalanceDue, balance},
	} {
		d, err := decimal.NewFromString(p.src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse reservation amount: %w", err)
		}
		*p.dst = d
	}
	r.Totals.Discount = r.Discount
	return &r, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
