package room

import (
	"context"
	"errors"
	"strings"

	"github.com/nekogravitycat/hotel-booking-backend/internal/roomcategory"
)

type CreateRequest struct {
	CategoryID  string
	RoomNumber  string
	Floor       *int
	Description string
	SizeSqm     *float64
}

type UpdateRequest struct {
	CategoryID  *string
	RoomNumber  *string
	Floor       *int
	Description *string
	SizeSqm     *float64
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	ListAvailable(ctx context.Context, filter AvailableFilter) ([]*Room, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Room, error)
	SetMaintenance(ctx context.Context, id string, enabled bool) (*Room, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo       Repository
	catService roomcategory.Service
}

func NewService(repo Repository, catService roomcategory.Service) Service {
	return &service{
		repo:       repo,
		catService: catService,
	}
}

// checkCategory maps a missing category to ErrInvalidCategory.
func (s *service) checkCategory(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidCategory
	}
	if _, err := s.catService.GetByID(ctx, id); err != nil {
		if errors.Is(err, roomcategory.ErrNotFound) {
			return ErrInvalidCategory
		}
		return err
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	number := strings.TrimSpace(req.RoomNumber)
	if number == "" {
		return nil, ErrEmptyNumber
	}
	if req.SizeSqm != nil && *req.SizeSqm <= 0 {
		return nil, ErrInvalidSize
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	r := &Room{
		CategoryID:  req.CategoryID,
		RoomNumber:  number,
		Floor:       req.Floor,
		Description: req.Description,
		SizeSqm:     req.SizeSqm,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	// Re-read to pick up the joined category fields.
	return s.repo.GetByID(ctx, r.ID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatusQuery
	}
	return s.repo.List(ctx, filter)
}

func (s *service) ListAvailable(ctx context.Context, filter AvailableFilter) ([]*Room, error) {
	return s.repo.ListAvailable(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Room, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil && *req.CategoryID != r.CategoryID {
		if err := s.checkCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		r.CategoryID = *req.CategoryID
	}
	if req.RoomNumber != nil {
		number := strings.TrimSpace(*req.RoomNumber)
		if number == "" {
			return nil, ErrEmptyNumber
		}
		r.RoomNumber = number
	}
	if req.Floor != nil {
		r.Floor = req.Floor
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.SizeSqm != nil {
		if *req.SizeSqm <= 0 {
			return nil, ErrInvalidSize
		}
		r.SizeSqm = req.SizeSqm
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) SetMaintenance(ctx context.Context, id string, enabled bool) (*Room, error) {
	return s.repo.SetMaintenance(ctx, id, enabled)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
