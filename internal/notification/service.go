package notification

import (
	"context"
	"strings"
)

type Service interface {
	Emitter

	List(ctx context.Context, filter Filter) ([]*Notification, int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Emit stores the event as an in-app notification for its user.
func (s *service) Emit(ctx context.Context, e Event) error {
	if e.UserID == "" {
		return ErrUserRequired
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrTitleRequired
	}
	if !e.Type.Valid() {
		return ErrUnknownType
	}

	n := &Notification{
		UserID:  e.UserID,
		Title:   e.Title,
		Message: e.Message,
		Type:    e.Type,
	}
	if e.ReferenceID != "" {
		ref := e.ReferenceID
		n.ReferenceID = &ref
	}
	return s.repo.Create(ctx, n)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Notification, int, error) {
	if filter.UserID == "" {
		return nil, 0, ErrUserRequired
	}
	return s.repo.List(ctx, filter)
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
