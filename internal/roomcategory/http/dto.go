package http

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-booking-backend/internal/roomcategory"
)

// ListCategoriesRequest defines query parameters for listing room categories.
type ListCategoriesRequest struct {
	request.ListParams
	Keyword         string `form:"keyword" binding:"omitempty,max=100"`
	MinPrice        *int64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice        *int64 `form:"max_price" binding:"omitempty,min=0"`
	IncludeInactive bool   `form:"include_inactive"`
	SortBy          string `form:"sort_by" binding:"omitempty,oneof=name base_price max_guests created_at"`
}

// Validate performs custom validation for ListCategoriesRequest.
func (r *ListCategoriesRequest) Validate() error {
	if r.MinPrice != nil && r.MaxPrice != nil && *r.MinPrice > *r.MaxPrice {
		return roomcategory.ErrInvalidPrice.Detail("min_price is greater than max_price")
	}
	return nil
}

// CategoryTag is the short form embedded in room responses.
type CategoryTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CategoryResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	BasePrice     int64     `json:"base_price"`
	MaxGuests     int       `json:"max_guests"`
	Amenities     []string  `json:"amenities"`
	ImagePath     *string   `json:"image_path,omitempty"`
	ThumbnailPath *string   `json:"thumbnail_path,omitempty"`
	IsActive      bool      `json:"is_active"`
	RoomCount     int       `json:"room_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewResponse(c *roomcategory.Category) CategoryResponse {
	amenities := c.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return CategoryResponse{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		BasePrice:     c.BasePrice,
		MaxGuests:     c.MaxGuests,
		Amenities:     amenities,
		ImagePath:     c.ImagePath,
		ThumbnailPath: c.ThumbnailPath,
		IsActive:      c.IsActive,
		RoomCount:     c.RoomCount,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

type CreateBody struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Description string   `json:"description"`
	BasePrice   int64    `json:"base_price" binding:"min=0"`
	MaxGuests   int      `json:"max_guests" binding:"omitempty,min=1,max=20"`
	Amenities   []string `json:"amenities" binding:"omitempty,dive,min=1,max=100"`
	IsActive    *bool    `json:"is_active"`
}

type UpdateBody struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string   `json:"description"`
	BasePrice   *int64    `json:"base_price" binding:"omitempty,min=0"`
	MaxGuests   *int      `json:"max_guests" binding:"omitempty,min=1,max=20"`
	Amenities   *[]string `json:"amenities"`
	IsActive    *bool     `json:"is_active"`
}

// ImageQuery selects the original image or its thumbnail.
type ImageQuery struct {
	Size string `form:"size" binding:"omitempty,oneof=original thumb"`
}
