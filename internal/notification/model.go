package notification

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound       = apperror.New(http.StatusNotFound, "notification not found")
	ErrUserRequired   = apperror.New(http.StatusBadRequest, "notification recipient is required")
	ErrTitleRequired  = apperror.New(http.StatusBadRequest, "notification title is required")
	ErrUnknownType    = apperror.New(http.StatusBadRequest, "unknown notification type")
)

// EventType names a booking lifecycle event.
type EventType string

const (
	EventReservationConfirmed EventType = "reservation_confirmed"
	EventCheckedIn            EventType = "checked_in"
	EventCheckedOut           EventType = "checked_out"
	EventReservationCancelled EventType = "reservation_cancelled"
)

func (t EventType) Valid() bool {
	switch t {
	case EventReservationConfirmed, EventCheckedIn, EventCheckedOut, EventReservationCancelled:
		return true
	}
	return false
}

// Event is what the booking lifecycle hands to an Emitter after a transition
// has committed. ReferenceID is the booking id.
type Event struct {
	UserID      string    `json:"user_id"`
	Type        EventType `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	ReferenceID string    `json:"reference_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notification is an in-app message stored for a user.
type Notification struct {
	ID          string
	UserID      string
	Title       string
	Message     string
	Type        EventType
	ReferenceID *string
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// Filter defines parameters for listing a user's notifications.
type Filter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	PageSize   int
}
