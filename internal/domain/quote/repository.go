package quote

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"propcare/internal/database"
	"propcare/internal/pkg/apperr"
)

type Repository interface {
	// Create inserts the quote together with its line items.
	Create(ctx context.Context, q *Quote) error
	// GetByID returns ErrQuoteNotFound when no quote has id.
	GetByID(ctx context.Context, id string) (*Quote, error)
	ListByCase(ctx context.Context, caseID string, includeArchived bool) ([]Quote, error)
	// UpdateIfStatus applies updates to a non-archived quote whose status is
	// one of expected. It reports whether a row changed.
	UpdateIfStatus(ctx context.Context, id string, expected []Status, updates map[string]any) (bool, error)
	// DeclineOthers declines every open, non-archived quote of the case except keepID.
	DeclineOthers(ctx context.Context, caseID, keepID string, at time.Time) (int64, error)
	CountApproved(ctx context.Context, caseID string) (int64, error)
	// ArchiveOpen archives the contractor's open quotes for the case.
	ArchiveOpen(ctx context.Context, caseID, contractorID string, at time.Time) (int64, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]Quote, error)
	AddCounterProposal(ctx context.Context, cp *CounterProposal) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func statusStrings(in []Status) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func (r *GormRepository) Create(ctx context.Context, q *Quote) error {
	err := database.Conn(ctx, r.db).Create(q).Error
	if database.IsUniqueViolation(err) {
		return ErrMultipleApproved
	}
	return apperr.Storage("create quote", err)
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (*Quote, error) {
	var q Quote
	err := database.Conn(ctx, r.db).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, apperr.Storage("load quote", err)
	}
	return &q, nil
}

func (r *GormRepository) ListByCase(ctx context.Context, caseID string, includeArchived bool) ([]Quote, error) {
	q := database.Conn(ctx, r.db).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("CounterProposals", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("case_id = ?", caseID)
	if !includeArchived {
		q = q.Where("archived_at IS NULL")
	}
	var out []Quote
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, apperr.Storage("list quotes", err)
	}
	return out, nil
}

func (r *GormRepository) UpdateIfStatus(ctx context.Context, id string, expected []Status, updates map[string]any) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&Quote{}).
		Where("id = ? AND archived_at IS NULL AND status IN ?", id, statusStrings(expected)).
		Updates(updates)
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return false, ErrMultipleApproved
		}
		return false, apperr.Storage("update quote", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepository) DeclineOthers(ctx context.Context, caseID, keepID string, at time.Time) (int64, error) {
	res := database.Conn(ctx, r.db).
		Model(&Quote{}).
		Where("case_id = ? AND id <> ? AND archived_at IS NULL AND status IN ?", caseID, keepID, statusStrings(openStatuses)).
		Updates(map[string]any{"status": string(StatusDeclined), "declined_at": at})
	return res.RowsAffected, apperr.Storage("decline sibling quotes", res.Error)
}

func (r *GormRepository) CountApproved(ctx context.Context, caseID string) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).
		Model(&Quote{}).
		Where("case_id = ? AND status = ?", caseID, string(StatusApproved)).
		Count(&n).Error
	return n, apperr.Storage("count approved quotes", err)
}

func (r *GormRepository) ArchiveOpen(ctx context.Context, caseID, contractorID string, at time.Time) (int64, error) {
	res := database.Conn(ctx, r.db).
		Model(&Quote{}).
		Where("case_id = ? AND contractor_id = ? AND archived_at IS NULL AND status IN ?", caseID, contractorID, statusStrings(openStatuses)).
		Update("archived_at", at)
	return res.RowsAffected, apperr.Storage("archive quotes", res.Error)
}

func (r *GormRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]Quote, error) {
	if limit <= 0 {
		limit = 500
	}
	var out []Quote
	err := database.Conn(ctx, r.db).
		Where("archived_at IS NULL AND status IN ? AND expires_at IS NOT NULL AND expires_at < ?", statusStrings(pendingStatuses), now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, apperr.Storage("list overdue quotes", err)
}

func (r *GormRepository) AddCounterProposal(ctx context.Context, cp *CounterProposal) error {
	return apperr.Storage("create counter proposal", database.Conn(ctx, r.db).Create(cp).Error)
}
