package notification

import (
	"context"
	"strings"
	"time"

	"propcare/internal/pkg/actor"
	"propcare/internal/pkg/apperr"
)

// Service stores in-app notifications. It is also a Notifier sink.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// RecipientID is the inbox an actor reads from.
func RecipientID(a actor.Actor) string {
	if a.IsContractor() && a.ContractorID != "" {
		return a.ContractorID
	}
	return a.UserID
}

func (s *Service) Notify(ctx context.Context, recipientID, message string) error {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return apperr.Validation("recipient is required")
	}
	return s.repo.Create(ctx, &Notification{RecipientID: recipientID, Message: message})
}

func (s *Service) List(ctx context.Context, recipientID string, limit, offset int) ([]Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.repo.ListByRecipient(ctx, recipientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, 0, err
	}
	return list, unread, nil
}

func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

func (s *Service) MarkAsRead(ctx context.Context, id uint64, recipientID string) error {
	return s.repo.MarkAsRead(ctx, id, recipientID, s.now())
}

func (s *Service) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, recipientID, s.now())
}
