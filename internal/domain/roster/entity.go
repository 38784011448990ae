package roster

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SourceVendor = "vendor"
	SourceLinked = "linked"

	LinkStatusActive  = "active"
	LinkStatusPending = "pending"
	LinkStatusRevoked = "revoked"
)

// Vendor is a contractor record owned by one organization. UserID links it to
// a platform person when the vendor also has an account.
type Vendor struct {
	ID                 string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID     string    `gorm:"type:varchar(36);not null;index" json:"organizationId"`
	UserID             *string   `gorm:"type:varchar(36);index" json:"userId,omitempty"`
	Name               string    `gorm:"type:varchar(255);not null" json:"name"`
	Category           string    `gorm:"type:varchar(100)" json:"category"`
	Rating             float64   `json:"rating"`
	ResponseTimeHours  float64   `json:"responseTimeHours"`
	EmergencyAvailable bool      `json:"emergencyAvailable"`
	IsPreferred        bool      `json:"isPreferred"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// ContractorProfile is the platform-wide profile of a contractor person.
type ContractorProfile struct {
	UserID             string    `gorm:"type:varchar(36);primaryKey" json:"userId"`
	DisplayName        string    `gorm:"type:varchar(255)" json:"displayName"`
	Category           string    `gorm:"type:varchar(100)" json:"category"`
	Rating             float64   `json:"rating"`
	ResponseTimeHours  float64   `json:"responseTimeHours"`
	EmergencyAvailable bool      `json:"emergencyAvailable"`
	IsAvailable        bool      `gorm:"not null" json:"isAvailable"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ContractorLink connects a platform contractor to an organization.
type ContractorLink struct {
	ID               string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID   string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_contractor_links_org_user" json:"organizationId"`
	ContractorUserID string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_contractor_links_org_user" json:"contractorUserId"`
	Status           string    `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (l *ContractorLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

type Specialty struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
}

type ContractorSpecialty struct {
	UserID      string `gorm:"type:varchar(36);primaryKey"`
	SpecialtyID uint   `gorm:"primaryKey"`
}

// FavoriteContractor marks a contractor as an organization favorite.
// ContractorID is either a vendor id or a person id.
type FavoriteContractor struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_favorite_contractors_org_contractor" json:"organizationId"`
	ContractorID   string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_favorite_contractors_org_contractor" json:"contractorId"`
	CreatedBy      string    `gorm:"type:varchar(36)" json:"createdBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (f *FavoriteContractor) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// Contractor is a dispatch candidate assembled from vendors, linked
// contractors, profiles, specialties, favorites and the active policy.
type Contractor struct {
	ID                 string   `json:"id"`
	PersonID           string   `json:"personId,omitempty"`
	OrganizationID     string   `json:"organizationId"`
	Source             string   `json:"source"`
	Name               string   `json:"name"`
	Category           string   `json:"category"`
	Rating             float64  `json:"rating"`
	ResponseTimeHours  float64  `json:"responseTimeHours"`
	EmergencyAvailable bool     `json:"emergencyAvailable"`
	IsPreferred        bool     `json:"isPreferred"`
	Specialties        []string `json:"specialties"`
	IsFavorite         bool     `json:"isFavorite"`
	// InTrustedSet is policy membership alone; IsTrusted also counts favorites.
	InTrustedSet bool `json:"inTrustedSet"`
	IsTrusted    bool `json:"isTrusted"`
	IsAvailable  bool `json:"isAvailable"`
}

// Models lists the tables owned by this package.
func Models() []any {
	return []any{
		&Vendor{},
		&ContractorProfile{},
		&ContractorLink{},
		&Specialty{},
		&ContractorSpecialty{},
		&FavoriteContractor{},
	}
}
