package cases

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"propcare/internal/database"
	"propcare/internal/pkg/apperr"
)

type ListFilter struct {
	Status               Status
	AssignedContractorID string
	Limit                int
	Offset               int
}

type Repository interface {
	Create(ctx context.Context, c *Case) error
	// GetByID returns ErrCaseNotFound when no case has id.
	GetByID(ctx context.Context, id string) (*Case, error)
	List(ctx context.Context, orgID string, f ListFilter) ([]Case, error)
	// UpdateIfStatus applies updates only while the case still has status
	// expected. It reports whether a row changed.
	UpdateIfStatus(ctx context.Context, id, orgID string, expected Status, updates map[string]any) (bool, error)
	// AssignIfOpen sets the contractor and status only on a New, unassigned case.
	AssignIfOpen(ctx context.Context, id, orgID, contractorID string, to Status) (bool, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, c *Case) error {
	return apperr.Storage("create case", database.Conn(ctx, r.db).Create(c).Error)
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (*Case, error) {
	var c Case
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, apperr.Storage("load case", err)
	}
	return &c, nil
}

func (r *GormRepository) List(ctx context.Context, orgID string, f ListFilter) ([]Case, error) {
	q := database.Conn(ctx, r.db).Where("organization_id = ?", orgID)
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.AssignedContractorID != "" {
		q = q.Where("assigned_contractor_id = ?", f.AssignedContractorID)
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var out []Case
	if err := q.Order("created_at DESC").Limit(limit).Offset(f.Offset).Find(&out).Error; err != nil {
		return nil, apperr.Storage("list cases", err)
	}
	return out, nil
}

func (r *GormRepository) UpdateIfStatus(ctx context.Context, id, orgID string, expected Status, updates map[string]any) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&Case{}).
		Where("id = ? AND organization_id = ? AND status = ?", id, orgID, string(expected)).
		Updates(updates)
	if res.Error != nil {
		return false, apperr.Storage("update case", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepository) AssignIfOpen(ctx context.Context, id, orgID, contractorID string, to Status) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&Case{}).
		Where("id = ? AND organization_id = ? AND status = ? AND assigned_contractor_id IS NULL", id, orgID, string(StatusNew)).
		Updates(map[string]any{
			"status":                 string(to),
			"assigned_contractor_id": contractorID,
		})
	if res.Error != nil {
		return false, apperr.Storage("assign case", res.Error)
	}
	return res.RowsAffected == 1, nil
}
