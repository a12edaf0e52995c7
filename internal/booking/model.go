package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrRoomNotFound      = apperror.New(http.StatusNotFound, "room not found")
	ErrInvalidDateRange  = apperror.New(http.StatusBadRequest, "check-out date must be at least one night after check-in date")
	ErrRoomUnavailable   = apperror.New(http.StatusConflict, "room is not available for the selected dates")
	ErrInvalidTransition = apperror.New(http.StatusConflict, "invalid booking status transition")
	ErrNotCheckInDay     = apperror.New(http.StatusUnprocessableEntity, "check-in is only allowed on the check-in date")
	ErrCheckInPast       = apperror.New(http.StatusBadRequest, "check-in date cannot be in the past")
	ErrInvalidGuestCount = apperror.New(http.StatusBadRequest, "guest count must be at least 1")
	ErrTooManyGuests     = apperror.New(http.StatusBadRequest, "guest count exceeds room capacity")
	ErrInvalidStatus     = apperror.New(http.StatusBadRequest, "invalid booking status")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
	ErrCodeExhausted     = apperror.New(http.StatusInternalServerError, "could not generate a unique booking code")
)

type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
)

// ActiveStatuses are the statuses that hold a room's dates.
var ActiveStatuses = []Status{StatusConfirmed, StatusCheckedIn}

// transitions lists the legal next statuses. Checked-out and cancelled are terminal.
var transitions = map[Status][]Status{
	StatusConfirmed: {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusCheckedOut},
}

func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsActive() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is a guest's claim on a room for a range of calendar dates.
// CheckIn and CheckOut are dates at UTC midnight. Prices are in the smallest
// currency unit and fixed at creation.
type Booking struct {
	ID                 string
	Code               string
	UserID             string
	RoomID             string
	CheckIn            time.Time
	CheckOut           time.Time
	NumGuests          int
	Nights             int
	PricePerNight      int64
	TotalPrice         int64
	Status             Status
	SpecialRequests    *string
	CheckedInAt        *time.Time
	CheckedOutAt       *time.Time
	CancelledAt        *time.Time
	CancellationReason *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined on read paths only.
	RoomNumber   string
	CategoryName string
	GuestEmail   string
}

// Filter defines parameters for listing bookings.
type Filter struct {
	UserID    string
	RoomID    string
	Status    Status
	From      *time.Time // bookings checking out on or after this date
	To        *time.Time // bookings checking in on or before this date
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Overlaps is the conflict test between two stays. Both ranges are closed, so
// a checkout and a check-in on the same day conflict.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return !aIn.After(bOut) && !bIn.After(aOut)
}

// Nights returns the number of nights between two calendar dates.
func Nights(checkIn, checkOut time.Time) int {
	return int(DateOf(checkOut).Sub(DateOf(checkIn)).Hours() / 24)
}
