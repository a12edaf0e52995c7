package http

import (
	"fmt"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
	roomHttp "github.com/nekogravitycat/hotel-booking-backend/internal/room/http"
	userHttp "github.com/nekogravitycat/hotel-booking-backend/internal/user/http"
)

const dateLayout = "2006-01-02"

// ListBookingsRequest defines query parameters for listing bookings.
// UserID is honoured for administrators only.
type ListBookingsRequest struct {
	request.ListParams
	Status string     `form:"status" binding:"omitempty,oneof=confirmed checked_in checked_out cancelled"`
	RoomID string     `form:"room_id" binding:"omitempty,uuid"`
	UserID string     `form:"user_id" binding:"omitempty,uuid"`
	From   *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To     *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
	SortBy string     `form:"sort_by" binding:"omitempty,oneof=check_in_date created_at total_price"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return fmt.Errorf("to must not be before from")
	}
	return nil
}

// ByCodeRequest binds the booking code path parameter.
type ByCodeRequest struct {
	Code string `uri:"code" binding:"required,alphanum,max=20"`
}

// CreateBookingRequest is the payload for POST /bookings.
type CreateBookingRequest struct {
	RoomID          string  `json:"room_id" binding:"required,uuid"`
	CheckIn         string  `json:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut        string  `json:"check_out" binding:"required,datetime=2006-01-02"`
	NumGuests       int     `json:"num_guests" binding:"required,min=1"`
	SpecialRequests *string `json:"special_requests" binding:"omitempty,max=1000"`
}

// Dates parses the stay dates as UTC calendar dates.
func (r *CreateBookingRequest) Dates() (checkIn, checkOut time.Time, err error) {
	checkIn, err = time.Parse(dateLayout, r.CheckIn)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid check_in: %w", err)
	}
	checkOut, err = time.Parse(dateLayout, r.CheckOut)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid check_out: %w", err)
	}
	return checkIn, checkOut, nil
}

// CancelBookingRequest is the optional payload for POST /bookings/:id/cancel.
type CancelBookingRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

type BookingResponse struct {
	ID                 string           `json:"id"`
	Code               string           `json:"booking_code"`
	Guest              userHttp.UserTag `json:"guest"`
	Room               roomHttp.RoomTag `json:"room"`
	CheckIn            string           `json:"check_in"`
	CheckOut           string           `json:"check_out"`
	NumGuests          int              `json:"num_guests"`
	Nights             int              `json:"nights"`
	PricePerNight      int64            `json:"price_per_night"`
	TotalPrice         int64            `json:"total_price"`
	Status             string           `json:"status"`
	SpecialRequests    *string          `json:"special_requests"`
	CheckedInAt        *time.Time       `json:"checked_in_at"`
	CheckedOutAt       *time.Time       `json:"checked_out_at"`
	CancelledAt        *time.Time       `json:"cancelled_at"`
	CancellationReason *string          `json:"cancellation_reason"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:   b.ID,
		Code: b.Code,
		Guest: userHttp.UserTag{
			ID:    b.UserID,
			Email: b.GuestEmail,
		},
		Room: roomHttp.RoomTag{
			ID:       b.RoomID,
			Number:   b.RoomNumber,
			Category: b.CategoryName,
		},
		CheckIn:            b.CheckIn.Format(dateLayout),
		CheckOut:           b.CheckOut.Format(dateLayout),
		NumGuests:          b.NumGuests,
		Nights:             b.Nights,
		PricePerNight:      b.PricePerNight,
		TotalPrice:         b.TotalPrice,
		Status:             string(b.Status),
		SpecialRequests:    b.SpecialRequests,
		CheckedInAt:        b.CheckedInAt,
		CheckedOutAt:       b.CheckedOutAt,
		CancelledAt:        b.CancelledAt,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}
