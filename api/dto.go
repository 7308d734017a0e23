/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract: field renames
  don't break clients and monetary values cross the wire as strings to
  keep decimal precision.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the domain, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/gvan1961/hotel-ledger/reservation"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateReservationRequest books a stay.
type CreateReservationRequest struct {
	RoomID     string    `json:"room_id"`
	GuestID    string    `json:"guest_id"`
	GuestCount int       `json:"guest_count"`
	Checkin    time.Time `json:"checkin"`
	Checkout   time.Time `json:"checkout"`
}

// ConsumptionRequest charges a product to the reservation.
type ConsumptionRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
}

// PaymentRequest records a guest payment. Amount is a decimal string.
type PaymentRequest struct {
	Amount string `json:"amount"`
	Method string `json:"method"`
	Note   string `json:"note,omitempty"`
}

// DiscountRequest sets the summary-level discount.
type DiscountRequest struct {
	Amount string `json:"amount"`
}

// AmendGuestCountRequest changes the guest count.
type AmendGuestCountRequest struct {
	GuestCount int    `json:"guest_count"`
	Reason     string `json:"reason,omitempty"`
}

// AmendCheckoutRequest changes the checkout date.
type AmendCheckoutRequest struct {
	Checkout time.Time `json:"checkout"`
	Reason   string    `json:"reason,omitempty"`
}

// CancelRequest cancels the reservation. Reason is required.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// ReverseEntryRequest reverses a prior ledger entry.
type ReverseEntryRequest struct {
	EntryID string `json:"entry_id"`
	Reason  string `json:"reason,omitempty"`
}

// CreateRoomRequest registers a room.
type CreateRoomRequest struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	CategoryID string `json:"category_id"`
	Capacity   int    `json:"capacity"`
	Beds       int    `json:"beds"`
}

// CreateTierRequest registers a pricing tier for a category.
type CreateTierRequest struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	MinNights  int    `json:"min_nights"`
	UnitPrice  string `json:"unit_price"`
}

// CreateProductRequest registers a consumable product.
type CreateProductRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Available int    `json:"available"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// TotalsDTO carries the six summary aggregates as decimal strings.
type TotalsDTO struct {
	Lodging    string `json:"lodging"`
	Products   string `json:"products"`
	GrossDue   string `json:"gross_due"`
	Received   string `json:"received"`
	Discount   string `json:"discount"`
	BalanceDue string `json:"balance_due"`
}

// TierDTO describes the tier applied to a stay.
type TierDTO struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	MinNights  int    `json:"min_nights"`
	UnitPrice  string `json:"unit_price"`
}

// ReservationDTO is the aggregate snapshot returned by every mutation.
type ReservationDTO struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"room_id"`
	GuestID      string    `json:"guest_id"`
	GuestCount   int       `json:"guest_count"`
	Checkin      time.Time `json:"checkin"`
	Checkout     time.Time `json:"checkout"`
	Status       string    `json:"status"`
	NightsCount  int       `json:"nights_count"`
	AppliedTier  TierDTO   `json:"applied_tier"`
	Totals       TotalsDTO `json:"totals"`
	CancelReason string    `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EntryDTO is one ledger entry.
type EntryDTO struct {
	ID          string    `json:"id"`
	Seq         int64     `json:"seq"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        string    `json:"kind"`
	Reverses    string    `json:"reverses,omitempty"`
	ReversesID  string    `json:"reverses_id,omitempty"`
	Quantity    string    `json:"quantity"`
	UnitValue   string    `json:"unit_value"`
	Amount      string    `json:"amount"`
	Description string    `json:"description,omitempty"`
	Method      string    `json:"method,omitempty"`
}

// SummaryStatementDTO is the aggregate totals report.
type SummaryStatementDTO struct {
	ReservationID string    `json:"reservation_id"`
	Totals        TotalsDTO `json:"totals"`
}

// StatementLineDTO pairs an entry with its running balance.
type StatementLineDTO struct {
	Entry          EntryDTO `json:"entry"`
	RunningBalance string   `json:"running_balance"`
}

// DetailedStatementDTO is the running-balance report.
type DetailedStatementDTO struct {
	ReservationID string             `json:"reservation_id"`
	Lines         []StatementLineDTO `json:"lines"`
	TotalDebits   string             `json:"total_debits"`
	TotalCredits  string             `json:"total_credits"`
	Discount      string             `json:"discount"`
	BalanceDue    string             `json:"balance_due"`
}

// AmendmentDTO is one amendment history row.
type AmendmentDTO struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Field         string    `json:"field"`
	PreviousValue string    `json:"previous_value"`
	NewValue      string    `json:"new_value"`
	Reason        string    `json:"reason,omitempty"`
}

// RoomDTO is the directory's view of a room.
type RoomDTO struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	CategoryID string `json:"category_id"`
	Capacity   int    `json:"capacity"`
	Beds       int    `json:"beds"`
	Status     string `json:"status"`
}

// ProductDTO is the directory's view of a product.
type ProductDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Available int    `json:"available"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toReservationDTO(r *reservation.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:          string(r.ID),
		RoomID:      string(r.RoomID),
		GuestID:     string(r.GuestID),
		GuestCount:  r.GuestCount,
		Checkin:     r.Checkin,
		Checkout:    r.Checkout,
		Status:      string(r.Status),
		NightsCount: r.NightsCount,
		AppliedTier: TierDTO{
			ID:         r.AppliedTier.ID,
			CategoryID: string(r.AppliedTier.CategoryID),
			MinNights:  r.AppliedTier.MinNights,
			UnitPrice:  r.AppliedTier.UnitPrice.String(),
		},
		Totals: TotalsDTO{
			Lodging:    r.Totals.Lodging.String(),
			Products:   r.Totals.Products.String(),
			GrossDue:   r.Totals.GrossDue.String(),
			Received:   r.Totals.Received.String(),
			Discount:   r.Totals.Discount.String(),
			BalanceDue: r.Totals.BalanceDue.String(),
		},
		CancelReason: r.CancelReason,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toEntryDTO(e reservation.LedgerEntry) EntryDTO {
	return EntryDTO{
		ID:          string(e.ID),
		Seq:         e.Seq,
		Timestamp:   e.Timestamp,
		Kind:        string(e.Kind),
		Reverses:    string(e.Reverses),
		ReversesID:  string(e.ReversesID),
		Quantity:    e.Quantity.String(),
		UnitValue:   e.UnitValue.String(),
		Amount:      e.Amount.String(),
		Description: e.Description,
		Method:      string(e.Method),
	}
}

func toDetailedStatementDTO(st reservation.DetailedStatement) DetailedStatementDTO {
	lines := make([]StatementLineDTO, len(st.Lines))
	for i, l := range st.Lines {
		lines[i] = StatementLineDTO{
			Entry:          toEntryDTO(l.Entry),
			RunningBalance: l.RunningBalance.String(),
		}
	}
	return DetailedStatementDTO{
		ReservationID: string(st.ReservationID),
		Lines:         lines,
		TotalDebits:   st.TotalDebits.String(),
		TotalCredits:  st.TotalCredits.String(),
		Discount:      st.Discount.String(),
		BalanceDue:    st.BalanceDue.String(),
	}
}

func toSummaryDTO(st reservation.SummaryStatement) SummaryStatementDTO {
	return SummaryStatementDTO{
		ReservationID: string(st.ReservationID),
		Totals: TotalsDTO{
			Lodging:    st.Lodging.String(),
			Products:   st.Products.String(),
			GrossDue:   st.GrossDue.String(),
			Received:   st.Received.String(),
			Discount:   st.Discount.String(),
			BalanceDue: st.BalanceDue.String(),
		},
	}
}

func toAmendmentDTO(rec reservation.AmendmentRecord) AmendmentDTO {
	return AmendmentDTO{
		ID:            string(rec.ID),
		Timestamp:     rec.Timestamp,
		Field:         string(rec.Field),
		PreviousValue: rec.PreviousValue,
		NewValue:      rec.NewValue,
		Reason:        rec.Reason,
	}
}

func toRoomDTO(r reservation.Room) RoomDTO {
	return RoomDTO{
		ID:         string(r.ID),
		Number:     r.Number,
		CategoryID: string(r.CategoryID),
		Capacity:   r.Capacity,
		Beds:       r.Beds,
		Status:     string(r.Status),
	}
}

func toProductDTO(p reservation.Product) ProductDTO {
	return ProductDTO{
		ID:        string(p.ID),
		Name:      p.Name,
		UnitPrice: p.UnitPrice.String(),
		Available: p.Available,
	}
}
