package http

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

const dateLayout = "2006-01-02"

// ListRoomsRequest defines query parameters for listing rooms.
type ListRoomsRequest struct {
	request.ListParams
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=available reserved occupied maintenance"`
	Floor      *int   `form:"floor"`
	Keyword    string `form:"keyword" binding:"omitempty,max=20"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=room_number floor status created_at"`
}

// StayQuery is the date range of a prospective stay.
type StayQuery struct {
	CheckIn  time.Time `form:"check_in" binding:"required" time_format:"2006-01-02" time_utc:"1"`
	CheckOut time.Time `form:"check_out" binding:"required" time_format:"2006-01-02" time_utc:"1"`
}

// ListAvailableRequest defines query parameters for the availability search.
type ListAvailableRequest struct {
	StayQuery
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Guests     int    `form:"guests" binding:"omitempty,min=1"`
}

type RoomResponse struct {
	ID           string    `json:"id"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	RoomNumber   string    `json:"room_number"`
	Floor        *int      `json:"floor"`
	Status       string    `json:"status"`
	Description  string    `json:"description"`
	SizeSqm      *float64  `json:"size_sqm"`
	BasePrice    int64     `json:"base_price"`
	MaxGuests    int       `json:"max_guests"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewResponse(r *room.Room) RoomResponse {
	return RoomResponse{
		ID:           r.ID,
		CategoryID:   r.CategoryID,
		CategoryName: r.CategoryName,
		RoomNumber:   r.RoomNumber,
		Floor:        r.Floor,
		Status:       string(r.Status),
		Description:  r.Description,
		SizeSqm:      r.SizeSqm,
		BasePrice:    r.BasePrice,
		MaxGuests:    r.MaxGuests,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type AvailabilityResponse struct {
	RoomID    string `json:"room_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Available bool   `json:"available"`
}

type CreateBody struct {
	CategoryID  string   `json:"category_id" binding:"required,uuid"`
	RoomNumber  string   `json:"room_number" binding:"required,max=20"`
	Floor       *int     `json:"floor"`
	Description string   `json:"description"`
	SizeSqm     *float64 `json:"size_sqm" binding:"omitempty,gt=0"`
}

type UpdateBody struct {
	CategoryID  *string  `json:"category_id" binding:"omitempty,uuid"`
	RoomNumber  *string  `json:"room_number" binding:"omitempty,max=20"`
	Floor       *int     `json:"floor"`
	Description *string  `json:"description"`
	SizeSqm     *float64 `json:"size_sqm" binding:"omitempty,gt=0"`
}

type MaintenanceBody struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// RoomTag is a brief representation of a room embedded in other resources.
type RoomTag struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Category string `json:"category"`
}
