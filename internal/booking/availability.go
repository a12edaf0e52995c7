package booking

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

const dateLayout = "2006-01-02"

// IsAvailable reports whether r can take a stay over [checkIn, checkOut]
// given the bookings already held on it.
func IsAvailable(r *room.Room, checkIn, checkOut time.Time, existing []*Booking) bool {
	return checkAvailability(r, checkIn, checkOut, existing) == nil
}

// checkAvailability returns nil when the stay fits, or ErrRoomUnavailable
// naming the reason. Only confirmed and checked-in bookings hold dates.
func checkAvailability(r *room.Room, checkIn, checkOut time.Time, existing []*Booking) error {
	if r.Status == room.StatusMaintenance {
		return ErrRoomUnavailable.Detail("room %s is under maintenance", r.RoomNumber)
	}
	if !r.CategoryActive {
		return ErrRoomUnavailable.Detail("room category %s is not open for booking", r.CategoryName)
	}
	for _, b := range existing {
		if b.Status.IsActive() && Overlaps(checkIn, checkOut, b.CheckIn, b.CheckOut) {
			return ErrRoomUnavailable.Detail("already booked from %s to %s",
				b.CheckIn.Format(dateLayout), b.CheckOut.Format(dateLayout))
		}
	}
	return nil
}
