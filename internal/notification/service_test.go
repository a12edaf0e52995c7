package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu    sync.Mutex
	items []*Notification
}

func (r *memRepo) Create(_ context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	cp := *n
	r.items = append(r.items, &cp)
	return nil
}

func (r *memRepo) List(_ context.Context, filter Filter) ([]*Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Notification
	for _, n := range r.items {
		if n.UserID != filter.UserID || (filter.UnreadOnly && n.IsRead) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *memRepo) CountUnread(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memRepo) MarkRead(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return ErrNotFound
}

func (r *memRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (r *memRepo) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.items {
		if n.ID == id && n.UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func confirmedEvent(userID string) Event {
	return Event{
		UserID:      userID,
		Type:        EventReservationConfirmed,
		Title:       "Reservation confirmed",
		Message:     "Your booking HTL0A1B2C3D4E is confirmed.",
		ReferenceID: "booking-1",
		OccurredAt:  time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC),
	}
}

func TestServiceEmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Emit: Stores Notification", func(t *testing.T) {
		repo := &memRepo{}
		svc := NewService(repo)

		require.NoError(t, svc.Emit(ctx, confirmedEvent("user-1")))

		items, total, err := svc.List(ctx, Filter{UserID: "user-1"})
		require.NoError(t, err)
		require.Equal(t, 1, total)
		assert.Equal(t, EventReservationConfirmed, items[0].Type)
		require.NotNil(t, items[0].ReferenceID)
		assert.Equal(t, "booking-1", *items[0].ReferenceID)
		assert.False(t, items[0].IsRead)
	})

	t.Run("Emit: Validation", func(t *testing.T) {
		svc := NewService(&memRepo{})

		e := confirmedEvent("")
		assert.ErrorIs(t, svc.Emit(ctx, e), ErrUserRequired)

		e = confirmedEvent("user-1")
		e.Title = "  "
		assert.ErrorIs(t, svc.Emit(ctx, e), ErrTitleRequired)

		e = confirmedEvent("user-1")
		e.Type = "room_upgraded"
		assert.ErrorIs(t, svc.Emit(ctx, e), ErrUnknownType)
	})

	t.Run("Emit: Without Reference", func(t *testing.T) {
		repo := &memRepo{}
		svc := NewService(repo)

		e := confirmedEvent("user-1")
		e.ReferenceID = ""
		require.NoError(t, svc.Emit(ctx, e))
		assert.Nil(t, repo.items[0].ReferenceID)
	})
}

func TestServiceReadState(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	svc := NewService(repo)

	for n := 0; n < 3; n++ {
		require.NoError(t, svc.Emit(ctx, confirmedEvent("user-1")))
	}
	require.NoError(t, svc.Emit(ctx, confirmedEvent("user-2")))

	count, err := svc.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	first := repo.items[0].ID
	require.NoError(t, svc.MarkRead(ctx, "user-1", first))

	// Another user's notification is not visible.
	assert.ErrorIs(t, svc.MarkRead(ctx, "user-2", first), ErrNotFound)

	unread, _, err := svc.List(ctx, Filter{UserID: "user-1", UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	updated, err := svc.MarkAllRead(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err = svc.UnreadCount(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, svc.Delete(ctx, "user-1", first))
	assert.ErrorIs(t, svc.Delete(ctx, "user-1", first), ErrNotFound)

	_, _, err = svc.List(ctx, Filter{})
	assert.ErrorIs(t, err, ErrUserRequired)
}

type recordingEmitter struct {
	events []Event
	err    error
}

func (r *recordingEmitter) Emit(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestMultiEmitter(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("broker down")

	first := &recordingEmitter{err: boom}
	second := &recordingEmitter{}
	m := MultiEmitter{first, nil, second}

	err := m.Emit(ctx, confirmedEvent("user-1"))
	assert.ErrorIs(t, err, boom)

	// A failing emitter does not stop the next one.
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)

	assert.NoError(t, MultiEmitter{}.Emit(ctx, confirmedEvent("user-1")))
	assert.NoError(t, NopEmitter{}.Emit(ctx, confirmedEvent("user-1")))
}

func TestEncodeEvent(t *testing.T) {
	e := confirmedEvent("user-1")

	msg, err := encodeEvent(e)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "reservation_confirmed", msg.Type)
	assert.Equal(t, "booking-1:reservation_confirmed", msg.MessageId)
	assert.Equal(t, e.OccurredAt, msg.Timestamp)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, e, decoded)
}
