/*
handlers_test.go - HTTP-level tests for the reservation API

Tests for:
- Booking/consumption/payment/finalize flow end to end
- Domain error to HTTP status mapping
- Directory management and seeding
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gvan1961/hotel-ledger/reservation"
	"github.com/gvan1961/hotel-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) (http.Handler, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.CreateRoom(ctx, reservation.Room{
		ID: "room-1", Number: "101", CategoryID: "standard", Capacity: 2}))
	require.NoError(t, store.CreateTier(ctx, reservation.Tier{
		ID: "std-1", CategoryID: "standard", MinNights: 1,
		UnitPrice: decimal.NewFromInt(100)}))
	require.NoError(t, store.CreateProduct(ctx, reservation.Product{
		ID: "water", Name: "Mineral water",
		UnitPrice: decimal.NewFromFloat(3.50), Available: 10}))

	svc := reservation.NewService(store, store, store, store)
	return NewRouter(NewHandler(svc, store)), store
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func bookOneNight(t *testing.T, router http.Handler) ReservationDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/reservations", CreateReservationRequest{
		RoomID:     "room-1",
		GuestID:    "guest-1",
		GuestCount: 2,
		Checkin:    time.Date(2025, time.June, 10, 14, 0, 0, 0, time.UTC),
		Checkout:   time.Date(2025, time.June, 11, 14, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ReservationDTO](t, rec)
}

// =============================================================================
// FULL FLOW
// =============================================================================

func TestAPI_BookConsumePayFinalize(t *testing.T) {
	// GIVEN: A seeded directory
	// WHEN: Walking the whole reservation lifecycle over HTTP
	// THEN: Each step returns the updated aggregate

	router, store := newTestRouter(t)
	r := bookOneNight(t, router)
	assert.Equal(t, "active", r.Status)
	assert.Equal(t, "100", r.Totals.BalanceDue)

	rec := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/reservations/%s/consumptions", r.ID),
		ConsumptionRequest{ProductID: "water", Quantity: 2, Note: "minibar"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	r = decode[ReservationDTO](t, rec)
	assert.Equal(t, "107", r.Totals.BalanceDue)

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/reservations/%s/payments", r.ID),
		PaymentRequest{Amount: "107", Method: "pix"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	r = decode[ReservationDTO](t, rec)
	assert.Equal(t, "0", r.Totals.BalanceDue)

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/reservations/%s/finalize", r.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	r = decode[ReservationDTO](t, rec)
	assert.Equal(t, "finalized", r.Status)

	room, err := store.GetRoom(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Equal(t, reservation.RoomCleaning, room.Status)
}

func TestAPI_DetailedStatement(t *testing.T) {
	router, _ := newTestRouter(t)
	r := bookOneNight(t, router)

	rec := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/reservations/%s/payments", r.ID),
		PaymentRequest{Amount: "40", Method: "cash"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/reservations/%s/statement/detailed", r.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[DetailedStatementDTO](t, rec)

	require.Len(t, st.Lines, 2)
	assert.Equal(t, "-100", st.Lines[0].RunningBalance)
	assert.Equal(t, "-60", st.Lines[1].RunningBalance)
	assert.Equal(t, "60", st.BalanceDue)
}

func TestAPI_AmendmentsFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	r := bookOneNight(t, router)

	rec := doJSON(t, router, http.MethodPut,
		fmt.Sprintf("/api/reservations/%s/guest-count", r.ID),
		AmendGuestCountRequest{GuestCount: 1, Reason: "guest left early"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/reservations/%s/amendments", r.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recs := decode[[]AmendmentDTO](t, rec)

	require.Len(t, recs, 1)
	assert.Equal(t, "guest_count", recs[0].Field)
	assert.Equal(t, "2", recs[0].PreviousValue)
	assert.Equal(t, "1", recs[0].NewValue)
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestAPI_OverpaymentIs400(t *testing.T) {
	router, _ := newTestRouter(t)
	r := bookOneNight(t, router)

	rec := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/reservations/%s/payments", r.ID),
		PaymentRequest{Amount: "150", Method: "cash"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_FinalizeWithBalanceIs409(t *testing.T) {
	router, _ := newTestRouter(t)
	r := bookOneNight(t, router)

	rec := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/reservations/%s/finalize", r.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_MutationOnClosedReservationIs409(t *testing.T) {
	router, _ := newTestRouter(t)
	r := bookOneNight(t, router)

	rec := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/reservations/%s/cancel", r.ID),
		CancelRequest{Reason: "guest request"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/reservations/%s/payments", r.ID),
		PaymentRequest{Amount: "10", Method: "cash"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_CancelWithoutReasonIs400(t *testing.T) {
	router, _ := newTestRouter(t)
	r := bookOneNight(t, router)

	rec := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/reservations/%s/cancel", r.ID), CancelRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_UnknownReservationIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/reservations/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_MalformedBodyIs400(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/reservations",
		bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_ErrorBodyShape(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/reservations/nope", nil)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Not found", body.Error)
	assert.NotEmpty(t, body.Details)
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

func TestAPI_CreateRoomAndDuplicate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/rooms", CreateRoomRequest{
		Number: "202", CategoryID: "suite", Capacity: 4, Beds: 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	room := decode[RoomDTO](t, rec)
	assert.NotEmpty(t, room.ID, "omitted id is generated")
	assert.Equal(t, "available", room.Status)

	rec = doJSON(t, router, http.MethodPost, "/api/rooms", CreateRoomRequest{
		Number: "202", CategoryID: "suite", Capacity: 4})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_RoomTiersListLadder(t *testing.T) {
	router, store := newTestRouter(t)
	require.NoError(t, store.CreateTier(context.Background(), reservation.Tier{
		ID: "std-3", CategoryID: "standard", MinNights: 3,
		UnitPrice: decimal.NewFromInt(90)}))

	rec := doJSON(t, router, http.MethodGet, "/api/rooms/room-1/tiers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tiers := decode[[]TierDTO](t, rec)
	assert.Len(t, tiers, 2)
}

func TestAPI_ReverseEntryFlow(t *testing.T) {
	router, store := newTestRouter(t)
	r := bookOneNight(t, router)

	entries, err := store.Entries(context.Background(), reservation.ReservationID(r.ID))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	rec := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/reservations/%s/reversals", r.ID),
		ReverseEntryRequest{EntryID: string(entries[0].ID), Reason: "rebooked"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	r = decode[ReservationDTO](t, rec)
	assert.Equal(t, "0", r.Totals.BalanceDue)
}

func TestAPI_SeedPopulatesDirectory(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/seed", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/rooms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rooms := decode[[]RoomDTO](t, rec)
	assert.GreaterOrEqual(t, len(rooms), 5)

	rec = doJSON(t, router, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[[]ProductDTO](t, rec)
	assert.GreaterOrEqual(t, len(products), 4)

	// Seeding twice is safe
	rec = doJSON(t, router, http.MethodPost, "/api/seed", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
