package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/notification"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

// createAttempts bounds how often Create restarts after losing a booking code
// race to a concurrent transaction.
const createAttempts = 3

type CreateRequest struct {
	UserID          string
	RoomID          string
	CheckIn         time.Time
	CheckOut        time.Time
	NumGuests       int
	SpecialRequests *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	CheckIn(ctx context.Context, id, actorID string, isAdmin bool) (*Booking, error)
	CheckOut(ctx context.Context, id, actorID string, isAdmin bool) (*Booking, error)
	Cancel(ctx context.Context, id string, reason *string, actorID string, isAdmin bool) (*Booking, error)
	IsRoomAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)

	GetByID(ctx context.Context, id, actorID string, isAdmin bool) (*Booking, error)
	GetByCode(ctx context.Context, code, actorID string, isAdmin bool) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
}

type service struct {
	repo    Repository
	codes   *CodeGenerator
	clock   Clock
	emitter notification.Emitter
}

func NewService(repo Repository, codes *CodeGenerator, clock Clock, emitter notification.Emitter) Service {
	if emitter == nil {
		emitter = notification.NopEmitter{}
	}
	return &service{
		repo:    repo,
		codes:   codes,
		clock:   clock,
		emitter: emitter,
	}
}

func stayRange(checkIn, checkOut time.Time) (time.Time, time.Time, error) {
	in, out := DateOf(checkIn), DateOf(checkOut)
	if Nights(in, out) < 1 {
		return in, out, ErrInvalidDateRange.Detail("%s to %s", in.Format(dateLayout), out.Format(dateLayout))
	}
	return in, out, nil
}

// syncRoomStatus re-derives the room's cached status from its active bookings.
func syncRoomStatus(ctx context.Context, st Store, r *room.Room) error {
	checkedIn, confirmed, err := st.CountActiveBookings(ctx, r.ID)
	if err != nil {
		return err
	}
	next := room.DeriveStatus(r.Status, checkedIn, confirmed)
	if err := st.UpdateRoomStatus(ctx, r.ID, next); err != nil {
		return err
	}
	r.Status = next
	return nil
}

// Create validates the request before touching the room, so malformed dates
// or guest counts are reported even when the room does not exist.
func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	checkIn, checkOut, err := stayRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if today := Today(s.clock); checkIn.Before(today) {
		return nil, ErrCheckInPast.Detail("%s is before %s", checkIn.Format(dateLayout), today.Format(dateLayout))
	}
	if req.NumGuests < 1 {
		return nil, ErrInvalidGuestCount
	}

	var created *Booking
	for attempt := 0; attempt < createAttempts; attempt++ {
		err = s.repo.WithTx(ctx, func(st Store) error {
			r, err := st.GetRoom(ctx, req.RoomID)
			if err != nil {
				return err
			}
			if req.NumGuests > r.MaxGuests {
				return ErrTooManyGuests.Detail("room %s takes at most %d guests", r.RoomNumber, r.MaxGuests)
			}

			existing, err := st.FindConflictingBookings(ctx, r.ID, checkIn, checkOut, ActiveStatuses)
			if err != nil {
				return err
			}
			if err := checkAvailability(r, checkIn, checkOut, existing); err != nil {
				return err
			}

			code, err := s.codes.Generate(ctx, st.CodeExists)
			if err != nil {
				return err
			}

			nights := Nights(checkIn, checkOut)
			b := &Booking{
				Code:            code,
				UserID:          req.UserID,
				RoomID:          r.ID,
				CheckIn:         checkIn,
				CheckOut:        checkOut,
				NumGuests:       req.NumGuests,
				Nights:          nights,
				PricePerNight:   r.BasePrice,
				TotalPrice:      int64(nights) * r.BasePrice,
				Status:          StatusConfirmed,
				SpecialRequests: req.SpecialRequests,
				RoomNumber:      r.RoomNumber,
				CategoryName:    r.CategoryName,
			}
			if err := st.InsertBooking(ctx, b); err != nil {
				return err
			}
			if err := syncRoomStatus(ctx, st, r); err != nil {
				return err
			}

			created = b
			return nil
		})
		if !errors.Is(err, errCodeTaken) {
			break
		}
	}
	if errors.Is(err, errCodeTaken) {
		return nil, ErrCodeExhausted.Detail("code collided %d times", createAttempts)
	}
	if err != nil {
		return nil, err
	}

	s.emit(ctx, created, notification.EventReservationConfirmed, "Reservation confirmed",
		fmt.Sprintf("Your reservation %s is confirmed for %s to %s. Total: %d. Payment is settled at check-in.",
			created.Code, created.CheckIn.Format(dateLayout), created.CheckOut.Format(dateLayout), created.TotalPrice))

	return created, nil
}

// transition moves one booking to next under a row lock and re-derives its
// room's status in the same transaction. guard runs after the state machine
// check and may veto the move.
func (s *service) transition(ctx context.Context, id, actorID string, isAdmin bool, next Status, guard func(b *Booking) error, apply func(b *Booking, now time.Time)) (*Booking, error) {
	var result *Booking
	err := s.repo.WithTx(ctx, func(st Store) error {
		b, err := st.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if !isAdmin && b.UserID != actorID {
			return ErrPermissionDenied
		}
		if !b.Status.CanTransitionTo(next) {
			return ErrInvalidTransition.Detail("booking %s is %s and cannot become %s", b.Code, b.Status, next)
		}
		if guard != nil {
			if err := guard(b); err != nil {
				return err
			}
		}

		b.Status = next
		apply(b, s.clock.Now().UTC())
		if err := st.UpdateBooking(ctx, b); err != nil {
			return err
		}

		r, err := st.GetRoom(ctx, b.RoomID)
		if err != nil {
			return err
		}
		if err := syncRoomStatus(ctx, st, r); err != nil {
			return err
		}
		b.RoomNumber = r.RoomNumber
		b.CategoryName = r.CategoryName

		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) CheckIn(ctx context.Context, id, actorID string, isAdmin bool) (*Booking, error) {
	onCheckInDay := func(b *Booking) error {
		today := Today(s.clock)
		if !today.Equal(DateOf(b.CheckIn)) {
			return ErrNotCheckInDay.Detail("booking %s checks in on %s, today is %s",
				b.Code, b.CheckIn.Format(dateLayout), today.Format(dateLayout))
		}
		return nil
	}

	b, err := s.transition(ctx, id, actorID, isAdmin, StatusCheckedIn, onCheckInDay, func(b *Booking, now time.Time) {
		b.CheckedInAt = &now
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, b, notification.EventCheckedIn, "Check-in complete",
		fmt.Sprintf("Welcome! Check-in for reservation %s is complete. Enjoy your stay.", b.Code))
	return b, nil
}

func (s *service) CheckOut(ctx context.Context, id, actorID string, isAdmin bool) (*Booking, error) {
	b, err := s.transition(ctx, id, actorID, isAdmin, StatusCheckedOut, nil, func(b *Booking, now time.Time) {
		b.CheckedOutAt = &now
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, b, notification.EventCheckedOut, "Check-out complete",
		fmt.Sprintf("Thank you for staying with us. Check-out for reservation %s is complete.", b.Code))
	return b, nil
}

func (s *service) Cancel(ctx context.Context, id string, reason *string, actorID string, isAdmin bool) (*Booking, error) {
	if reason != nil {
		trimmed := strings.TrimSpace(*reason)
		if trimmed == "" {
			reason = nil
		} else {
			reason = &trimmed
		}
	}

	b, err := s.transition(ctx, id, actorID, isAdmin, StatusCancelled, nil, func(b *Booking, now time.Time) {
		b.CancelledAt = &now
		b.CancellationReason = reason
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, b, notification.EventReservationCancelled, "Reservation cancelled",
		fmt.Sprintf("Reservation %s has been cancelled.", b.Code))
	return b, nil
}

// IsRoomAvailable runs the same check Create does, without booking anything.
// It reads committed state without locks, so the answer is only a snapshot:
// Create repeats the check under the room lock.
func (s *service) IsRoomAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	in, out, err := stayRange(checkIn, checkOut)
	if err != nil {
		return false, err
	}

	r, err := s.repo.PeekRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	existing, err := s.repo.FindActiveBookings(ctx, r.ID, in, out)
	if err != nil {
		return false, err
	}
	return IsAvailable(r, in, out, existing), nil
}

func (s *service) GetByID(ctx context.Context, id, actorID string, isAdmin bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.UserID != actorID {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) GetByCode(ctx context.Context, code, actorID string, isAdmin bool) (*Booking, error) {
	b, err := s.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.UserID != actorID {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

// emit hands a committed transition to the emitter. Failures are logged and
// dropped; the transition stands regardless.
func (s *service) emit(ctx context.Context, b *Booking, typ notification.EventType, title, message string) {
	err := s.emitter.Emit(context.WithoutCancel(ctx), notification.Event{
		UserID:      b.UserID,
		Type:        typ,
		Title:       title,
		Message:     message,
		ReferenceID: b.ID,
		OccurredAt:  s.clock.Now().UTC(),
	})
	if err != nil {
		log.Printf("warning: failed to emit %s for booking %s: %v", typ, b.ID, err)
	}
}
