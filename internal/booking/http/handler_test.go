package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
)

const (
	guestID = "7d1b2a4e-3c5f-4e6a-9b8c-0d1e2f3a4b5c"
	otherID = "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
	roomID  = "9f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a"
	bookID  = "2b3c4d5e-6f7a-4b8c-9d0e-1f2a3b4c5d6e"
)

// stubService records what the handler passed in and returns canned results.
type stubService struct {
	booking.Service

	created  booking.CreateRequest
	filter   booking.Filter
	reason   *string
	actor    string
	isAdmin  bool
	err      error
	response *booking.Booking
}

func (s *stubService) Create(_ context.Context, req booking.CreateRequest) (*booking.Booking, error) {
	s.created = req
	return s.response, s.err
}

func (s *stubService) Cancel(_ context.Context, _ string, reason *string, actorID string, isAdmin bool) (*booking.Booking, error) {
	s.reason = reason
	s.actor = actorID
	s.isAdmin = isAdmin
	return s.response, s.err
}

func (s *stubService) CheckIn(_ context.Context, _, actorID string, isAdmin bool) (*booking.Booking, error) {
	s.actor = actorID
	s.isAdmin = isAdmin
	return s.response, s.err
}

func (s *stubService) GetByCode(_ context.Context, _, actorID string, isAdmin bool) (*booking.Booking, error) {
	s.actor = actorID
	return s.response, s.err
}

func (s *stubService) List(_ context.Context, filter booking.Filter) ([]*booking.Booking, int, error) {
	s.filter = filter
	if s.response == nil {
		return nil, 0, s.err
	}
	return []*booking.Booking{s.response}, 1, s.err
}

func sampleBooking() *booking.Booking {
	return &booking.Booking{
		ID:            bookID,
		Code:          "HTL0A1B2C3D4E",
		UserID:        guestID,
		RoomID:        roomID,
		CheckIn:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:      time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		NumGuests:     2,
		Nights:        2,
		PricePerNight: 500000,
		TotalPrice:    1000000,
		Status:        booking.StatusConfirmed,
		RoomNumber:    "101",
		CategoryName:  "Deluxe",
		GuestEmail:    "guest@example.com",
	}
}

// setupRouter authenticates every request as the user named in X-Test-User.
func setupRouter(svc booking.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	fakeAuth := func(c *gin.Context) {
		c.Set("userID", c.GetHeader("X-Test-User"))
		c.Next()
	}
	fakeRole := func(c *gin.Context) {
		auth.SetIsAdmin(c, c.GetHeader("X-Test-Admin") == "1")
		c.Next()
	}
	noLimit := func(c *gin.Context) { c.Next() }

	RegisterRoutes(r.Group("/v1"), NewHandler(svc), fakeAuth, fakeRole, noLimit)
	return r
}

func executeRequest(r *gin.Engine, method, path string, body any, userID string, admin bool) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", userID)
	if admin {
		req.Header.Set("X-Test-Admin", "1")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBooking(t *testing.T) {
	t.Run("Create Booking: Success", func(t *testing.T) {
		svc := &stubService{response: sampleBooking()}
		r := setupRouter(svc)

		w := executeRequest(r, http.MethodPost, "/v1/bookings", gin.H{
			"room_id":          roomID,
			"check_in":         "2025-06-01",
			"check_out":        "2025-06-03",
			"num_guests":       2,
			"special_requests": "late arrival",
		}, guestID, false)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		assert.Equal(t, guestID, svc.created.UserID)
		assert.Equal(t, roomID, svc.created.RoomID)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), svc.created.CheckIn)
		assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), svc.created.CheckOut)
		require.NotNil(t, svc.created.SpecialRequests)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "HTL0A1B2C3D4E", resp.Code)
		assert.Equal(t, "2025-06-01", resp.CheckIn)
		assert.Equal(t, "2025-06-03", resp.CheckOut)
		assert.Equal(t, int64(1000000), resp.TotalPrice)
		assert.Equal(t, "101", resp.Room.Number)
		assert.Equal(t, "guest@example.com", resp.Guest.Email)
	})

	t.Run("Create Booking: Invalid Payload", func(t *testing.T) {
		r := setupRouter(&stubService{})

		tests := []struct {
			name string
			body gin.H
		}{
			{"bad date", gin.H{"room_id": roomID, "check_in": "01/06/2025", "check_out": "2025-06-03", "num_guests": 1}},
			{"bad room id", gin.H{"room_id": "101", "check_in": "2025-06-01", "check_out": "2025-06-03", "num_guests": 1}},
			{"zero guests", gin.H{"room_id": roomID, "check_in": "2025-06-01", "check_out": "2025-06-03", "num_guests": 0}},
			{"missing dates", gin.H{"room_id": roomID, "num_guests": 1}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := executeRequest(r, http.MethodPost, "/v1/bookings", tt.body, guestID, false)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})

	t.Run("Create Booking: Conflict Maps To 409", func(t *testing.T) {
		svc := &stubService{err: booking.ErrRoomUnavailable.Detail("booked from 2025-06-02 to 2025-06-04")}
		r := setupRouter(svc)

		w := executeRequest(r, http.MethodPost, "/v1/bookings", gin.H{
			"room_id":    roomID,
			"check_in":   "2025-06-01",
			"check_out":  "2025-06-03",
			"num_guests": 1,
		}, guestID, false)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "2025-06-02")
	})
}

func TestListBookings(t *testing.T) {
	t.Run("List Bookings: Guest Sees Own Only", func(t *testing.T) {
		svc := &stubService{response: sampleBooking()}
		r := setupRouter(svc)

		w := executeRequest(r, http.MethodGet, "/v1/bookings?user_id="+otherID+"&status=confirmed", nil, guestID, false)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, guestID, svc.filter.UserID)
		assert.Equal(t, booking.StatusConfirmed, svc.filter.Status)

		var resp struct {
			Items []BookingResponse `json:"items"`
			Total int               `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
		assert.Len(t, resp.Items, 1)
	})

	t.Run("List Bookings: Admin Filters By Guest", func(t *testing.T) {
		svc := &stubService{}
		r := setupRouter(svc)

		w := executeRequest(r, http.MethodGet, "/v1/bookings?user_id="+otherID+"&from=2025-06-01&to=2025-06-30&sort_by=check_in_date&sort_order=asc", nil, guestID, true)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, otherID, svc.filter.UserID)
		require.NotNil(t, svc.filter.From)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *svc.filter.From)
		assert.Equal(t, "ASC", svc.filter.SortOrder)
	})

	t.Run("List Bookings: Invalid Window", func(t *testing.T) {
		r := setupRouter(&stubService{})

		w := executeRequest(r, http.MethodGet, "/v1/bookings?from=2025-06-30&to=2025-06-01", nil, guestID, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = executeRequest(r, http.MethodGet, "/v1/bookings?status=pending", nil, guestID, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookingTransitions(t *testing.T) {
	t.Run("Cancel: Without Body", func(t *testing.T) {
		b := sampleBooking()
		b.Status = booking.StatusCancelled
		svc := &stubService{response: b}
		r := setupRouter(svc)

		w := executeRequest(r, http.MethodPost, "/v1/bookings/"+bookID+"/cancel", nil, guestID, false)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Nil(t, svc.reason)
		assert.Equal(t, guestID, svc.actor)
	})

	t.Run("Cancel: With Reason As Admin", func(t *testing.T) {
		svc := &stubService{response: sampleBooking()}
		r := setupRouter(svc)

		w := executeRequest(r, http.MethodPost, "/v1/bookings/"+bookID+"/cancel", gin.H{"reason": "flight cancelled"}, otherID, true)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, svc.reason)
		assert.Equal(t, "flight cancelled", *svc.reason)
		assert.True(t, svc.isAdmin)
	})

	t.Run("Check In: Wrong Day Maps To 422", func(t *testing.T) {
		svc := &stubService{err: booking.ErrNotCheckInDay}
		r := setupRouter(svc)

		w := executeRequest(r, http.MethodPost, "/v1/bookings/"+bookID+"/check-in", nil, guestID, false)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Check In: Invalid Transition Maps To 409", func(t *testing.T) {
		svc := &stubService{err: booking.ErrInvalidTransition}
		r := setupRouter(svc)

		w := executeRequest(r, http.MethodPost, "/v1/bookings/"+bookID+"/check-in", nil, guestID, false)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Check In: Malformed ID", func(t *testing.T) {
		r := setupRouter(&stubService{})

		w := executeRequest(r, http.MethodPost, "/v1/bookings/42/check-in", nil, guestID, false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetBookingByCode(t *testing.T) {
	t.Run("Get By Code: Forbidden For Other Guest", func(t *testing.T) {
		svc := &stubService{err: booking.ErrPermissionDenied}
		r := setupRouter(svc)

		w := executeRequest(r, http.MethodGet, "/v1/bookings/code/HTL0A1B2C3D4E", nil, otherID, false)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, otherID, svc.actor)
	})

	t.Run("Get By Code: Malformed Code", func(t *testing.T) {
		r := setupRouter(&stubService{})

		w := executeRequest(r, http.MethodGet, "/v1/bookings/code/HTL-0A1B", nil, guestID, false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
