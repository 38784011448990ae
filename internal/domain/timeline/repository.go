package timeline

import (
	"context"

	"gorm.io/gorm"

	"propcare/internal/database"
	"propcare/internal/pkg/apperr"
)

// EventLog is append-only: there is no update or delete.
type EventLog interface {
	Append(ctx context.Context, ev *CaseEvent) error
	ListByCase(ctx context.Context, caseID string) ([]CaseEvent, error)
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append joins the transaction carried by ctx, if any.
func (r *Repository) Append(ctx context.Context, ev *CaseEvent) error {
	return apperr.Storage("append case event", database.Conn(ctx, r.db).Create(ev).Error)
}

func (r *Repository) ListByCase(ctx context.Context, caseID string) ([]CaseEvent, error) {
	var events []CaseEvent
	err := database.Conn(ctx, r.db).
		Where("case_id = ?", caseID).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, apperr.Storage("list case events", err)
	}
	return events, nil
}
