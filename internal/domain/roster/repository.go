package roster

import (
	"context"

	"gorm.io/gorm"

	"propcare/internal/database"
	"propcare/internal/pkg/apperr"
)

type Repository interface {
	ListVendors(ctx context.Context, orgID string) ([]Vendor, error)
	ListActiveLinks(ctx context.Context, orgID string) ([]ContractorLink, error)
	ProfilesByUser(ctx context.Context, userIDs []string) (map[string]ContractorProfile, error)
	SpecialtiesByUser(ctx context.Context, userIDs []string) (map[string][]string, error)
	FavoriteIDs(ctx context.Context, orgID string) (map[string]bool, error)
	AddFavorite(ctx context.Context, fav *FavoriteContractor) error
	RemoveFavorite(ctx context.Context, orgID, contractorID string) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) ListVendors(ctx context.Context, orgID string) ([]Vendor, error) {
	var vendors []Vendor
	err := database.Conn(ctx, r.db).
		Where("organization_id = ?", orgID).
		Order("created_at ASC, id ASC").
		Find(&vendors).Error
	if err != nil {
		return nil, apperr.Storage("list vendors", err)
	}
	return vendors, nil
}

func (r *GormRepository) ListActiveLinks(ctx context.Context, orgID string) ([]ContractorLink, error) {
	var links []ContractorLink
	err := database.Conn(ctx, r.db).
		Where("organization_id = ? AND status = ?", orgID, LinkStatusActive).
		Order("created_at ASC, id ASC").
		Find(&links).Error
	if err != nil {
		return nil, apperr.Storage("list contractor links", err)
	}
	return links, nil
}

func (r *GormRepository) ProfilesByUser(ctx context.Context, userIDs []string) (map[string]ContractorProfile, error) {
	out := make(map[string]ContractorProfile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var profiles []ContractorProfile
	if err := database.Conn(ctx, r.db).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, apperr.Storage("load contractor profiles", err)
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out, nil
}

func (r *GormRepository) SpecialtiesByUser(ctx context.Context, userIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		UserID string
		Name   string
	}
	err := database.Conn(ctx, r.db).
		Table("contractor_specialties").
		Select("contractor_specialties.user_id, specialties.name").
		Joins("JOIN specialties ON specialties.id = contractor_specialties.specialty_id").
		Where("contractor_specialties.user_id IN ?", userIDs).
		Order("specialties.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("load contractor specialties", err)
	}
	for _, row := range rows {
		out[row.UserID] = append(out[row.UserID], row.Name)
	}
	return out, nil
}

func (r *GormRepository) FavoriteIDs(ctx context.Context, orgID string) (map[string]bool, error) {
	var ids []string
	err := database.Conn(ctx, r.db).
		Model(&FavoriteContractor{}).
		Where("organization_id = ?", orgID).
		Pluck("contractor_id", &ids).Error
	if err != nil {
		return nil, apperr.Storage("load favorites", err)
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *GormRepository) AddFavorite(ctx context.Context, fav *FavoriteContractor) error {
	err := database.Conn(ctx, r.db).Create(fav).Error
	if database.IsUniqueViolation(err) {
		return ErrFavoriteExists
	}
	return apperr.Storage("add favorite", err)
}

func (r *GormRepository) RemoveFavorite(ctx context.Context, orgID, contractorID string) error {
	res := database.Conn(ctx, r.db).
		Where("organization_id = ? AND contractor_id = ?", orgID, contractorID).
		Delete(&FavoriteContractor{})
	if res.Error != nil {
		return apperr.Storage("remove favorite", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrContractorNotFound
	}
	return nil
}
