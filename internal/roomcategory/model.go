package roomcategory

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "room category not found")
	ErrNameRequired     = apperror.New(http.StatusBadRequest, "name is required")
	ErrInvalidPrice     = apperror.New(http.StatusBadRequest, "base price must not be negative")
	ErrInvalidMaxGuests = apperror.New(http.StatusBadRequest, "max guests must be at least 1")
	ErrInUse            = apperror.New(http.StatusConflict, "room category still has rooms")
	ErrInvalidImage     = apperror.New(http.StatusBadRequest, "file is not a supported image")
	ErrNoImage          = apperror.New(http.StatusNotFound, "room category has no image")
)

// Category groups rooms sharing a nightly base price and a guest capacity.
// BasePrice is in the smallest currency unit.
type Category struct {
	ID            string
	Name          string
	Description   string
	BasePrice     int64
	MaxGuests     int
	Amenities     []string
	ImagePath     *string
	ThumbnailPath *string
	IsActive      bool
	RoomCount     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Filter defines parameters for listing room categories.
type Filter struct {
	ActiveOnly bool
	Keyword    string
	MinPrice   *int64
	MaxPrice   *int64
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
