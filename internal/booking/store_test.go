package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

// memRepo is an in-memory Repository. WithTx holds a store-wide lock for the
// whole callback and rolls every change back when the callback fails.
type memRepo struct {
	mu       sync.Mutex
	rooms    map[string]*room.Room
	bookings map[string]*Booking
	seq      int

	// insertHook, when set, runs before InsertBooking stores the row.
	insertHook func(b *Booking) error
	// txCount counts WithTx calls, the only path that takes locks.
	txCount int
}

func newMemRepo() *memRepo {
	return &memRepo{
		rooms:    make(map[string]*room.Room),
		bookings: make(map[string]*Booking),
	}
}

func (m *memRepo) addRoom(r room.Room) *room.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Status == "" {
		r.Status = room.StatusAvailable
	}
	if r.MaxGuests == 0 {
		r.MaxGuests = 2
	}
	r.CategoryActive = true
	m.rooms[r.ID] = &r
	cp := r
	return &cp
}

func (m *memRepo) room(id string) room.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rooms[id]
}

func (m *memRepo) booking(id string) Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.bookings[id]
}

func (m *memRepo) WithTx(_ context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	rooms := make(map[string]*room.Room, len(m.rooms))
	for k, v := range m.rooms {
		cp := *v
		rooms[k] = &cp
	}
	bookings := make(map[string]*Booking, len(m.bookings))
	for k, v := range m.bookings {
		cp := *v
		bookings[k] = &cp
	}
	seq := m.seq

	if err := fn(&memStore{m: m}); err != nil {
		m.rooms, m.bookings, m.seq = rooms, bookings, seq
		return err
	}
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memRepo) GetByCode(_ context.Context, code string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.Code == code {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Booking
	for _, b := range m.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *memRepo) transactions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txCount
}

func (m *memRepo) PeekRoom(ctx context.Context, roomID string) (*room.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memStore{m: m}).GetRoom(ctx, roomID)
}

func (m *memRepo) FindActiveBookings(ctx context.Context, roomID string, checkIn, checkOut time.Time) ([]*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memStore{m: m}).FindConflictingBookings(ctx, roomID, checkIn, checkOut, ActiveStatuses)
}

// memStore is only used while memRepo.mu is held.
type memStore struct {
	m *memRepo
}

func (s *memStore) GetRoom(_ context.Context, roomID string) (*room.Room, error) {
	r, ok := s.m.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) GetBooking(_ context.Context, id string) (*Booking, error) {
	b, ok := s.m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *memStore) FindConflictingBookings(_ context.Context, roomID string, checkIn, checkOut time.Time, statuses []Status) ([]*Booking, error) {
	var out []*Booking
	for _, b := range s.m.bookings {
		if b.RoomID != roomID || !Overlaps(checkIn, checkOut, b.CheckIn, b.CheckOut) {
			continue
		}
		for _, st := range statuses {
			if b.Status == st {
				cp := *b
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (s *memStore) InsertBooking(_ context.Context, b *Booking) error {
	if s.m.insertHook != nil {
		if err := s.m.insertHook(b); err != nil {
			return err
		}
	}
	for _, existing := range s.m.bookings {
		if existing.Code == b.Code {
			return errCodeTaken
		}
	}
	s.m.seq++
	b.ID = fmt.Sprintf("booking-%d", s.m.seq)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	s.m.bookings[b.ID] = &cp
	return nil
}

func (s *memStore) UpdateBooking(_ context.Context, b *Booking) error {
	if _, ok := s.m.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	b.UpdatedAt = time.Now()
	cp := *b
	s.m.bookings[b.ID] = &cp
	return nil
}

func (s *memStore) CountActiveBookings(_ context.Context, roomID string) (int, int, error) {
	var checkedIn, confirmed int
	for _, b := range s.m.bookings {
		if b.RoomID != roomID {
			continue
		}
		switch b.Status {
		case StatusCheckedIn:
			checkedIn++
		case StatusConfirmed:
			confirmed++
		}
	}
	return checkedIn, confirmed, nil
}

func (s *memStore) UpdateRoomStatus(_ context.Context, roomID string, status room.Status) error {
	r, ok := s.m.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	r.Status = status
	return nil
}

func (s *memStore) CodeExists(_ context.Context, code string) (bool, error) {
	for _, b := range s.m.bookings {
		if b.Code == code {
			return true, nil
		}
	}
	return false, nil
}
