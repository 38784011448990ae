package cases

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Case is a maintenance request raised against a property.
type Case struct {
	ID                   string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID       string            `gorm:"type:varchar(36);not null;index" json:"organizationId"`
	PropertyID           *string           `gorm:"type:varchar(36);index" json:"propertyId,omitempty"`
	Title                string            `gorm:"type:varchar(255);not null" json:"title"`
	Description          string            `gorm:"type:text" json:"description"`
	Category             string            `gorm:"type:varchar(100)" json:"category"`
	Priority             Priority          `gorm:"type:varchar(20);not null" json:"priority"`
	IsUrgent             bool              `gorm:"not null" json:"isUrgent"`
	Status               Status            `gorm:"type:varchar(20);not null;index" json:"status"`
	EstimatedCost        *float64          `json:"estimatedCost,omitempty"`
	AITriage             datatypes.JSONMap `gorm:"column:ai_triage" json:"aiTriage,omitempty"`
	AssignedContractorID *string           `gorm:"type:varchar(36);index" json:"assignedContractorId,omitempty"`
	ReportedBy           string            `gorm:"type:varchar(36)" json:"reportedBy"`
	ResolvedAt           *time.Time        `json:"resolvedAt,omitempty"`
	ClosedAt             *time.Time        `json:"closedAt,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
}

func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsEmergency is true for Urgent priority or an explicit urgent flag.
func (c *Case) IsEmergency() bool {
	return c.Priority == PriorityUrgent || c.IsUrgent
}

func (c *Case) IsAssignedTo(contractorID string) bool {
	return contractorID != "" && c.AssignedContractorID != nil && *c.AssignedContractorID == contractorID
}

func Models() []any {
	return []any{&Case{}}
}
