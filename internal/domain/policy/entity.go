package policy

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InvolvementMode string

const (
	ModeHandsOff InvolvementMode = "hands-off"
	ModeBalanced InvolvementMode = "balanced"
	ModeHandsOn  InvolvementMode = "hands-on"
)

const (
	DefaultAutoApproveCostLimit   = 500.0
	DefaultAutoApproveEmergencies = true
)

// ParseMode accepts the canonical names plus snake and camel spellings.
func ParseMode(s string) (InvolvementMode, bool) {
	switch strings.ToLower(strings.NewReplacer("_", "-", " ", "-").Replace(strings.TrimSpace(s))) {
	case "hands-off", "handsoff":
		return ModeHandsOff, true
	case "balanced":
		return ModeBalanced, true
	case "hands-on", "handson":
		return ModeHandsOn, true
	}
	return "", false
}

// Policy is an organization's approval policy. At most one row per
// organization has IsActive set.
type Policy struct {
	ID                     string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID         string                      `gorm:"type:varchar(36);not null;index" json:"organizationId"`
	InvolvementMode        InvolvementMode             `gorm:"type:varchar(20);not null" json:"involvementMode"`
	TrustedContractorIDs   datatypes.JSONSlice[string] `json:"trustedContractorIds"`
	AutoApproveCostLimit   float64                     `gorm:"not null" json:"autoApproveCostLimit"`
	AutoApproveEmergencies bool                        `gorm:"not null" json:"autoApproveEmergencies"`
	IsActive               bool                        `gorm:"not null;index" json:"isActive"`
	CreatedBy              string                      `gorm:"type:varchar(36)" json:"createdBy,omitempty"`
	CreatedAt              time.Time                   `json:"createdAt"`
	UpdatedAt              time.Time                   `json:"updatedAt"`
}

func (Policy) TableName() string { return "approval_policies" }

func (p *Policy) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Default is the policy an organization runs under until it activates its own.
func Default(orgID string) *Policy {
	return &Policy{
		OrganizationID:         orgID,
		InvolvementMode:        ModeBalanced,
		TrustedContractorIDs:   datatypes.JSONSlice[string]{},
		AutoApproveCostLimit:   DefaultAutoApproveCostLimit,
		AutoApproveEmergencies: DefaultAutoApproveEmergencies,
		IsActive:               true,
	}
}

// Trusts reports whether any of ids is in the trusted set.
func (p *Policy) Trusts(ids ...string) bool {
	for _, trusted := range p.TrustedContractorIDs {
		for _, id := range ids {
			if id != "" && id == trusted {
				return true
			}
		}
	}
	return false
}
