/*
handlers.go - HTTP API handlers for the reservation ledger

PURPOSE:
  Exposes the reservation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Reservations:
    GET    /api/reservations                      List all reservations
    POST   /api/reservations                      Create reservation (prices the stay)
    GET    /api/reservations/{id}                 Get reservation snapshot
    POST   /api/reservations/{id}/consumptions    Charge a product
    POST   /api/reservations/{id}/payments        Record a payment
    POST   /api/reservations/{id}/reversals       Reverse a prior entry
    POST   /api/reservations/{id}/discount        Apply summary discount
    PUT    /api/reservations/{id}/guest-count     Amend guest count
    PUT    /api/reservations/{id}/checkout        Amend checkout date
    POST   /api/reservations/{id}/finalize        Finalize (requires zero balance)
    POST   /api/reservations/{id}/cancel          Cancel (requires reason)
    GET    /api/reservations/{id}/statement       Summary statement
    GET    /api/reservations/{id}/statement/detailed  Running-balance statement
    GET    /api/reservations/{id}/amendments      Amendment history

  Directory:
    GET    /api/rooms                 List rooms with status
    POST   /api/rooms                 Register a room
    GET    /api/rooms/{id}/tiers      List the room category's ladder
    POST   /api/tiers                 Register a pricing tier
    GET    /api/products              List products
    POST   /api/products              Register a product

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input shape (amounts parse, IDs present)
  3. Call domain logic (service, store)
  4. Serialize response
  5. Map domain errors to HTTP status

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Reservation/room/product not found
  - 409: Lifecycle conflicts (closed reservation, outstanding balance)
  - 503: Storage or downstream collaborator unavailable
  - 500: Everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gvan1961/hotel-ledger/reservation"
	"github.com/gvan1961/hotel-ledger/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *reservation.Service
	Store   *sqlite.Store
}

// NewHandler wires the service and store into a handler.
func NewHandler(svc *reservation.Service, store *sqlite.Store) *Handler {
	return &Handler{Service: svc, Store: store}
}

// =============================================================================
// RESERVATION LIFECYCLE
// =============================================================================

// ListReservations returns every reservation snapshot.
func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.Service.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]ReservationDTO, 0, len(reservations))
	for _, res := range reservations {
		dtos = append(dtos, toReservationDTO(res))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetReservation returns one reservation snapshot.
func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id := reservation.ReservationID(chi.URLParam(r, "id"))

	res, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(res))
}

// CreateReservation books a stay: resolves the tier, seeds the lodging
// charge, and marks the room occupied.
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.RoomID == "" || req.GuestID == "" {
		writeError(w, http.StatusBadRequest, "room_id and guest_id are required", nil)
		return
	}

	res, err := h.Service.CreateReservation(r.Context(),
		reservation.RoomID(req.RoomID),
		reservation.GuestID(req.GuestID),
		req.GuestCount,
		req.Checkin,
		req.Checkout,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationDTO(res))
}

// AddConsumption charges a product to the reservation and decrements stock.
func (h *Handler) AddConsumption(w http.ResponseWriter, r *http.Request) {
	id := reservation.ReservationID(chi.URLParam(r, "id"))

	var req ConsumptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required", nil)
		return
	}

	res, err := h.Service.AddConsumption(r.Context(), id,
		reservation.ProductID(req.ProductID), req.Quantity, req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationDTO(res))
}

// AddPayment records a guest payment against the open balance.
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	id := reservation.ReservationID(chi.URLParam(r, "id"))

	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount (use a decimal string)", err)
		return
	}

	res, err := h.Service.AddPayment(r.Context(), id, amount,
		reservation.PaymentMethod(req.Method), req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationDTO(res))
}

// ReverseEntry appends a compensating entry for a prior charge or payment.
func (h *Handler) ReverseEntry(w http.ResponseWriter, r *http.Request) {
	id := reservation.ReservationID(chi.URLParam(r, "id"))

	var req ReverseEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EntryID == "" {
		writeError(w, http.StatusBadRequest, "entry_id is required", nil)
		return
	}

	res, err := h.Service.ReverseEntry(r.Context(), id,
		reservation.EntryID(req.EntryID), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationDTO(res))
}

// ApplyDiscount sets the summary-level discount.
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	id := reservation.ReservationID(chi.URLParam(r, "id"))

	var req DiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount (use a decimal string)", err)
		return
	}

	res, err := h.Service.ApplyDiscount(r.Context(), id, amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(res))
}

// AmendGuestCount changes the guest count with an audit record.
func (h *Handler) AmendGuestCount(w http.ResponseWriter, r *http.Request) {
	id := reservation.ReservationID(chi.URLParam(r, "id"))

	var req AmendGuestCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.Service.AmendGuestCount(r.Context(), id, req.GuestCount, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(res))
}

// AmendCheckout changes the checkout date with an audit record.
func (h *Handler) AmendCheckout(w http.ResponseWriter, r *http.Request) {
	id := reservation.ReservationID(chi.URLParam(r, "id"))

	var req AmendCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.Service.AmendCheckout(r.Context(), id, req.Checkout, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(res))
}

// Finalize closes the reservation. The balance must be settled and the
// room moves to cleaning.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	id := reservation.ReservationID(chi.URLParam(r, "id"))

	res, err := h.Service.Finalize(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(res))
}

// Cancel cancels the reservation. A reason is required and the room
// returns to available.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := reservation.ReservationID(chi.URLParam(r, "id"))

	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.Service.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(res))
}

// =============================================================================
// STATEMENTS AND HISTORY
// =============================================================================

// GetSummaryStatement returns the aggregate totals.
func (h *Handler) GetSummaryStatement(w http.ResponseWriter, r *http.Request) {
	id := reservation.ReservationID(chi.URLParam(r, "id"))

	st, err := h.Service.GetSummaryStatement(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(st))
}

// GetDetailedStatement returns the chronological entries with running balance.
func (h *Handler) GetDetailedStatement(w http.ResponseWriter, r *http.Request) {
	id := reservation.ReservationID(chi.URLParam(r, "id"))

	st, err := h.Service.GetDetailedStatement(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDetailedStatementDTO(st))
}

// GetAmendments returns the amendment history, oldest first.
func (h *Handler) GetAmendments(w http.ResponseWriter, r *http.Request) {
	id := reservation.ReservationID(chi.URLParam(r, "id"))

	recs, err := h.Service.GetAmendments(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]AmendmentDTO, 0, len(recs))
	for _, rec := range recs {
		dtos = append(dtos, toAmendmentDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// ListRooms returns every room with its housekeeping status.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Store.ListRooms(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rooms", err)
		return
	}

	dtos := make([]RoomDTO, 0, len(rooms))
	for _, room := range rooms {
		dtos = append(dtos, toRoomDTO(room))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRoom registers a room in the directory.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Number == "" || req.CategoryID == "" {
		writeError(w, http.StatusBadRequest, "number and category_id are required", nil)
		return
	}
	if req.Capacity < 1 {
		writeError(w, http.StatusBadRequest, "capacity must be at least 1", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	room := reservation.Room{
		ID:         reservation.RoomID(req.ID),
		Number:     req.Number,
		CategoryID: reservation.CategoryID(req.CategoryID),
		Capacity:   req.Capacity,
		Beds:       req.Beds,
		Status:     reservation.RoomAvailable,
	}
	if err := h.Store.CreateRoom(r.Context(), room); err != nil {
		if errors.Is(err, sqlite.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Room already exists", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create room", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomDTO(room))
}

// ListRoomTiers returns the pricing ladder of the room's category.
func (h *Handler) ListRoomTiers(w http.ResponseWriter, r *http.Request) {
	id := reservation.RoomID(chi.URLParam(r, "id"))

	room, err := h.Store.GetRoom(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	tiers, err := h.Store.GetTiers(r.Context(), room.CategoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tiers", err)
		return
	}

	dtos := make([]TierDTO, 0, len(tiers))
	for _, tier := range tiers {
		dtos = append(dtos, TierDTO{
			ID:         tier.ID,
			CategoryID: string(tier.CategoryID),
			MinNights:  tier.MinNights,
			UnitPrice:  tier.UnitPrice.String(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTier registers a pricing tier for a category.
func (h *Handler) CreateTier(w http.ResponseWriter, r *http.Request) {
	var req CreateTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CategoryID == "" {
		writeError(w, http.StatusBadRequest, "category_id is required", nil)
		return
	}
	if req.MinNights < 1 {
		writeError(w, http.StatusBadRequest, "min_nights must be at least 1", nil)
		return
	}
	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid unit_price (use a decimal string)", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	tier := reservation.Tier{
		ID:         req.ID,
		CategoryID: reservation.CategoryID(req.CategoryID),
		MinNights:  req.MinNights,
		UnitPrice:  price,
	}
	if err := h.Store.CreateTier(r.Context(), tier); err != nil {
		if errors.Is(err, sqlite.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Tier already exists", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create tier", err)
		return
	}
	writeJSON(w, http.StatusCreated, TierDTO{
		ID:         tier.ID,
		CategoryID: string(tier.CategoryID),
		MinNights:  tier.MinNights,
		UnitPrice:  tier.UnitPrice.String(),
	})
}

// ListProducts returns the product catalogue with stock levels.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products", err)
		return
	}

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProduct registers a consumable product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid unit_price (use a decimal string)", err)
		return
	}
	if req.Available < 0 {
		writeError(w, http.StatusBadRequest, "available must not be negative", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	p := reservation.Product{
		ID:        reservation.ProductID(req.ID),
		Name:      req.Name,
		UnitPrice: price,
		Available: req.Available,
	}
	if err := h.Store.CreateProduct(r.Context(), p); err != nil {
		if errors.Is(err, sqlite.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Product already exists", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(p))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP status codes. Guard
// violations that conflict with reservation state are 409, bad input is
// 400, missing aggregates are 404, storage trouble is 503.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case reservation.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, reservation.ErrReservationClosed),
		errors.Is(err, reservation.ErrOutstandingBalance):
		writeError(w, http.StatusConflict, "Reservation state conflict", err)
	case reservation.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case reservation.IsRetryable(err):
		writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
