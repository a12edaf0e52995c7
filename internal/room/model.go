package room

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "room not found")
	ErrEmptyNumber        = apperror.New(http.StatusBadRequest, "room number cannot be empty")
	ErrDuplicateNumber    = apperror.New(http.StatusConflict, "room number already exists")
	ErrInvalidCategory    = apperror.New(http.StatusBadRequest, "invalid category_id")
	ErrInvalidSize        = apperror.New(http.StatusBadRequest, "size must be positive")
	ErrHasActiveBookings  = apperror.New(http.StatusConflict, "room has active bookings")
	ErrHasBookingHistory  = apperror.New(http.StatusConflict, "room has booking history and cannot be deleted")
	ErrInvalidStatusQuery = apperror.New(http.StatusBadRequest, "invalid room status")
	ErrOccupied           = apperror.New(http.StatusConflict, "room is occupied by a checked-in guest")
)

// Status is the coarse operational state of a room. Except for maintenance it
// is a cached summary of the room's active bookings.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusReserved    Status = "reserved"
	StatusOccupied    Status = "occupied"
	StatusMaintenance Status = "maintenance"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusOccupied, StatusMaintenance:
		return true
	}
	return false
}

// DeriveStatus recomputes a room's status from the number of checked-in and
// confirmed bookings it currently has. Maintenance is an administrative
// override that no booking transition clears.
func DeriveStatus(current Status, checkedIn, confirmed int) Status {
	switch {
	case current == StatusMaintenance:
		return StatusMaintenance
	case checkedIn > 0:
		return StatusOccupied
	case confirmed > 0:
		return StatusReserved
	}
	return StatusAvailable
}

// MaintenanceStatus is the status a room takes when maintenance is switched on
// or off. Maintenance cannot start while a guest is checked in.
func MaintenanceStatus(enabled bool, checkedIn, confirmed int) (Status, error) {
	if !enabled {
		return DeriveStatus(StatusAvailable, checkedIn, confirmed), nil
	}
	if checkedIn > 0 {
		return "", ErrOccupied
	}
	return StatusMaintenance, nil
}

// Room is a bookable unit. The category fields are joined in on read and
// carry what booking needs: the nightly price and guest capacity.
type Room struct {
	ID          string
	CategoryID  string
	RoomNumber  string
	Floor       *int
	Status      Status
	Description string
	SizeSqm     *float64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	CategoryName   string
	BasePrice      int64
	MaxGuests      int
	CategoryActive bool
}

// Filter defines parameters for listing rooms.
type Filter struct {
	CategoryID string
	Status     Status
	Floor      *int
	Keyword    string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// AvailableFilter narrows the search for rooms free over a stay.
type AvailableFilter struct {
	CheckIn    time.Time
	CheckOut   time.Time
	CategoryID string
	Guests     int
}
