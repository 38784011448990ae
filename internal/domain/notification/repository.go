package notification

import (
	"context"
	"time"

	"gorm.io/gorm"

	"propcare/internal/pkg/apperr"
)

var ErrNotificationNotFound = apperr.NotFound("notification not found")

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, id uint64, recipientID string, at time.Time) error
	MarkAllAsRead(ctx context.Context, recipientID string, at time.Time) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, n *Notification) error {
	return apperr.Storage("create notification", r.db.WithContext(ctx).Create(n).Error)
}

func (r *GormRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]Notification, error) {
	var out []Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, apperr.Storage("list notifications", err)
}

func (r *GormRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&n).Error
	return n, apperr.Storage("count unread notifications", err)
}

func (r *GormRepository) MarkAsRead(ctx context.Context, id uint64, recipientID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Updates(map[string]any{"is_read": true, "read_at": at})
	if res.Error != nil {
		return apperr.Storage("mark notification read", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *GormRepository) MarkAllAsRead(ctx context.Context, recipientID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, apperr.Storage("mark notifications read", res.Error)
}

func (r *GormRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&Notification{})
	return res.RowsAffected, apperr.Storage("delete old notifications", res.Error)
}
