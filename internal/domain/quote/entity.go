package quote

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft            Status = "draft"
	StatusSent             Status = "sent"
	StatusAwaitingResponse Status = "awaiting_response"
	StatusApproved         Status = "approved"
	StatusDeclined         Status = "declined"
	StatusCancelled        Status = "cancelled"
	StatusExpired          Status = "expired"
)

// IsPending is true while the landlord can still act on the quote.
func (s Status) IsPending() bool {
	return s == StatusSent || s == StatusAwaitingResponse
}

// IsOpen is true for quotes the contractor has not withdrawn and nobody has decided.
func (s Status) IsOpen() bool {
	return s == StatusDraft || s.IsPending()
}

func (s Status) IsFinal() bool {
	switch s {
	case StatusApproved, StatusDeclined, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

var (
	openStatuses    = []Status{StatusDraft, StatusSent, StatusAwaitingResponse}
	pendingStatuses = []Status{StatusSent, StatusAwaitingResponse}
)

// Quote is a contractor's priced proposal for a case.
type Quote struct {
	ID                   string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	CaseID               string     `gorm:"type:varchar(36);not null;index" json:"caseId"`
	OrganizationID       string     `gorm:"type:varchar(36);not null;index" json:"organizationId"`
	ContractorID         string     `gorm:"type:varchar(36);not null;index" json:"contractorId"`
	Status               Status     `gorm:"type:varchar(30);not null;index" json:"status"`
	Subtotal             float64    `gorm:"not null" json:"subtotal"`
	Tax                  float64    `gorm:"not null" json:"tax"`
	Total                float64    `gorm:"not null" json:"total"`
	Notes                string     `gorm:"type:text" json:"notes,omitempty"`
	InternalNotes        string     `gorm:"type:text" json:"internalNotes,omitempty"`
	Availability         string     `gorm:"type:varchar(255)" json:"availability,omitempty"`
	ValidDays            int        `gorm:"not null" json:"validDays"`
	CounterProposalCount int        `gorm:"not null" json:"counterProposalCount"`
	HasCounterProposal   bool       `gorm:"not null" json:"hasCounterProposal"`
	SentAt               *time.Time `json:"sentAt,omitempty"`
	ApprovedAt           *time.Time `json:"approvedAt,omitempty"`
	DeclinedAt           *time.Time `json:"declinedAt,omitempty"`
	ExpiresAt            *time.Time `gorm:"index" json:"expiresAt,omitempty"`
	ArchivedAt           *time.Time `gorm:"index" json:"archivedAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`

	LineItems        []LineItem        `gorm:"foreignKey:QuoteID" json:"lineItems"`
	CounterProposals []CounterProposal `gorm:"foreignKey:QuoteID" json:"counterProposals,omitempty"`
}

func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

func (q *Quote) IsArchived() bool { return q.ArchivedAt != nil }

type LineItem struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	QuoteID     string  `gorm:"type:varchar(36);not null;index" json:"quoteId"`
	Position    int     `gorm:"not null" json:"position"`
	Description string  `gorm:"type:varchar(500);not null" json:"description"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unitPrice"`
	Amount      float64 `gorm:"not null" json:"amount"`
}

func (LineItem) TableName() string { return "quote_line_items" }

const CounterStatusPending = "pending"

// CounterProposal is a revision offered by either party against a quote.
type CounterProposal struct {
	ID             string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	QuoteID        string            `gorm:"type:varchar(36);not null;index" json:"quoteId"`
	ProposedBy     string            `gorm:"type:varchar(36);not null" json:"proposedBy"`
	ProposedByRole string            `gorm:"type:varchar(20);not null" json:"proposedByRole"`
	Status         string            `gorm:"type:varchar(20);not null" json:"status"`
	ProposedTotal  *float64          `json:"proposedTotal,omitempty"`
	Message        string            `gorm:"type:text" json:"message,omitempty"`
	Payload        datatypes.JSONMap `json:"payload,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

func (cp *CounterProposal) BeforeCreate(tx *gorm.DB) error {
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	return nil
}
