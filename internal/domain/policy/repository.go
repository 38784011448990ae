package policy

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"propcare/internal/database"
	"propcare/internal/pkg/apperr"
)

type Repository interface {
	// GetActive returns nil, nil when the organization has no active policy.
	GetActive(ctx context.Context, orgID string) (*Policy, error)
	// Activate deactivates the current policy and stores p as the active one.
	Activate(ctx context.Context, p *Policy) error
	ListByOrg(ctx context.Context, orgID string) ([]Policy, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetActive(ctx context.Context, orgID string) (*Policy, error) {
	var p Policy
	err := database.Conn(ctx, r.db).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("load active policy", err)
	}
	return &p, nil
}

func (r *GormRepository) Activate(ctx context.Context, p *Policy) error {
	p.IsActive = true
	err := database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Policy{}).
			Where("organization_id = ? AND is_active = ?", p.OrganizationID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(p).Error
	})
	if database.IsUniqueViolation(err) {
		return apperr.Conflict("policy changed concurrently, retry")
	}
	return apperr.Storage("activate policy", err)
}

func (r *GormRepository) ListByOrg(ctx context.Context, orgID string) ([]Policy, error) {
	var out []Policy
	err := database.Conn(ctx, r.db).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Storage("list policies", err)
	}
	return out, nil
}
