/*
seed.go - Demo data loader for testing and demonstrations

PURPOSE:
  Populates the database with a realistic directory for demos: a handful
  of rooms across two categories, the tier ladders that price them, and a
  small minibar catalogue. Reservations are not seeded; create them
  through the API so the ledger history is real.

USAGE VIA API:
  POST /api/seed

NOTE:
  Seeding is additive and idempotent-ish: rows that already exist are
  skipped. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Directory management handlers
  - server.go: Route registration
*/
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/gvan1961/hotel-ledger/reservation"
	"github.com/gvan1961/hotel-ledger/store/sqlite"
)

func isDuplicate(err error) bool {
	return errors.Is(err, sqlite.ErrDuplicate)
}

// LoadSeedData populates rooms, tiers, and products for demos.
func (h *Handler) LoadSeedData(w http.ResponseWriter, r *http.Request) {
	if err := h.seedDirectory(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed demo data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

func (h *Handler) seedDirectory(ctx context.Context) error {
	rooms := []reservation.Room{
		{ID: "room-101", Number: "101", CategoryID: "standard", Capacity: 2, Beds: 1, Status: reservation.RoomAvailable},
		{ID: "room-102", Number: "102", CategoryID: "standard", Capacity: 2, Beds: 2, Status: reservation.RoomAvailable},
		{ID: "room-103", Number: "103", CategoryID: "standard", Capacity: 3, Beds: 2, Status: reservation.RoomAvailable},
		{ID: "room-201", Number: "201", CategoryID: "suite", Capacity: 4, Beds: 2, Status: reservation.RoomAvailable},
		{ID: "room-202", Number: "202", CategoryID: "suite", Capacity: 4, Beds: 3, Status: reservation.RoomAvailable},
	}
	for _, room := range rooms {
		if err := h.Store.CreateRoom(ctx, room); err != nil && !isDuplicate(err) {
			return err
		}
	}

	// Longer stays price at the cheaper nightly rate.
	tiers := []reservation.Tier{
		{ID: "std-1", CategoryID: "standard", MinNights: 1, UnitPrice: decimal.NewFromInt(100)},
		{ID: "std-3", CategoryID: "standard", MinNights: 3, UnitPrice: decimal.NewFromInt(90)},
		{ID: "std-7", CategoryID: "standard", MinNights: 7, UnitPrice: decimal.NewFromInt(80)},
		{ID: "ste-1", CategoryID: "suite", MinNights: 1, UnitPrice: decimal.NewFromInt(180)},
		{ID: "ste-5", CategoryID: "suite", MinNights: 5, UnitPrice: decimal.NewFromInt(150)},
	}
	for _, tier := range tiers {
		if err := h.Store.CreateTier(ctx, tier); err != nil && !isDuplicate(err) {
			return err
		}
	}

	products := []reservation.Product{
		{ID: "prod-water", Name: "Mineral water", UnitPrice: decimal.NewFromFloat(3.50), Available: 200},
		{ID: "prod-soda", Name: "Soda can", UnitPrice: decimal.NewFromFloat(5.00), Available: 150},
		{ID: "prod-snack", Name: "Snack bar", UnitPrice: decimal.NewFromFloat(7.25), Available: 80},
		{ID: "prod-breakfast", Name: "Breakfast", UnitPrice: decimal.NewFromInt(25), Available: 500},
	}
	for _, p := range products {
		if err := h.Store.CreateProduct(ctx, p); err != nil && !isDuplicate(err) {
			return err
		}
	}
	return nil
}
