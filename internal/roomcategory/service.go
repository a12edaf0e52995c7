package roomcategory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/storage"
)

type CreateRequest struct {
	Name        string
	Description string
	BasePrice   int64
	MaxGuests   int
	Amenities   []string
	IsActive    *bool
}

type UpdateRequest struct {
	Name        *string
	Description *string
	BasePrice   *int64
	MaxGuests   *int
	Amenities   *[]string
	IsActive    *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context, filter Filter) ([]*Category, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Category, error)
	ToggleActive(ctx context.Context, id string) (*Category, error)
	SetImage(ctx context.Context, id string, content io.Reader) (*Category, error)
	OpenImage(ctx context.Context, id string, thumbnail bool) (io.ReadCloser, string, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
}

func NewService(repo Repository, store storage.Storage) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
	}
}

func validate(name string, basePrice int64, maxGuests int) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if basePrice < 0 {
		return ErrInvalidPrice
	}
	if maxGuests < 1 {
		return ErrInvalidMaxGuests
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Category, error) {
	if req.MaxGuests == 0 {
		req.MaxGuests = 2
	}
	if err := validate(req.Name, req.BasePrice, req.MaxGuests); err != nil {
		return nil, err
	}

	c := &Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		BasePrice:   req.BasePrice,
		MaxGuests:   req.MaxGuests,
		Amenities:   req.Amenities,
		IsActive:    true,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Category, int, error) {
	return s.repo.List(ctx, filter)
}

// Update changes category attributes. A new base price only affects bookings
// created afterwards; existing bookings keep their price snapshot.
func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.BasePrice != nil {
		c.BasePrice = *req.BasePrice
	}
	if req.MaxGuests != nil {
		c.MaxGuests = *req.MaxGuests
	}
	if req.Amenities != nil {
		c.Amenities = *req.Amenities
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := validate(c.Name, c.BasePrice, c.MaxGuests); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) ToggleActive(ctx context.Context, id string) (*Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.IsActive = !c.IsActive
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetImage replaces the category image and its thumbnail. The stored extension
// follows the decoded format, never the uploaded file name.
func (s *service) SetImage(ctx context.Context, id string, content io.Reader) (*Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read image content: %w", err)
	}

	// Decoding for the thumbnail doubles as format validation.
	thumb, format, err := s.imgProc.Thumbnail(data)
	if err != nil {
		return nil, ErrInvalidImage
	}
	ext, ok := storage.ImageExtension(format)
	if !ok {
		return nil, ErrInvalidImage
	}

	fileID := uuid.New().String()
	imagePath := fmt.Sprintf("categories/%s/%s%s", c.ID, fileID, ext)
	thumbPath := fmt.Sprintf("categories/%s/%s_thumb.jpg", c.ID, fileID)

	if err := s.storage.Save(ctx, imagePath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	if err := s.storage.Save(ctx, thumbPath, bytes.NewReader(thumb)); err != nil {
		s.removeFiles(ctx, &imagePath)
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}

	if err := s.repo.UpdateImage(ctx, c.ID, &imagePath, &thumbPath); err != nil {
		s.removeFiles(ctx, &imagePath, &thumbPath)
		return nil, err
	}

	s.removeFiles(ctx, c.ImagePath, c.ThumbnailPath)
	c.ImagePath = &imagePath
	c.ThumbnailPath = &thumbPath
	return c, nil
}

// OpenImage returns the stored image or thumbnail and its file name.
// The caller closes the reader.
func (s *service) OpenImage(ctx context.Context, id string, thumbnail bool) (io.ReadCloser, string, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	p := c.ImagePath
	if thumbnail {
		p = c.ThumbnailPath
	}
	if p == nil || *p == "" {
		return nil, "", ErrNoImage
	}

	rc, err := s.storage.Get(ctx, *p)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image %s: %w", *p, err)
	}
	return rc, filepath.Base(*p), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.RoomCount > 0 {
		return ErrInUse
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeFiles(ctx, c.ImagePath, c.ThumbnailPath)
	return nil
}

// removeFiles deletes stored files on a best-effort basis.
func (s *service) removeFiles(ctx context.Context, paths ...*string) {
	for _, p := range paths {
		if p == nil || *p == "" {
			continue
		}
		if err := s.storage.Delete(ctx, *p); err != nil {
			log.Printf("warning: failed to delete stored file %s: %v", *p, err)
		}
	}
}
