package timeline

import (
	"time"

	"gorm.io/datatypes"
)

// Event types recorded against a case.
const (
	EventCaseCreated         = "case_created"
	EventContractorAssigned  = "contractor_assigned"
	EventJobAutoConfirmed    = "job_auto_confirmed"
	EventStatusChanged       = "status_changed"
	EventPriorityChanged     = "priority_changed"
	EventCaseClosed          = "case_closed"
	EventQuoteSubmitted      = "quote_submitted"
	EventQuoteSent           = "quote_sent"
	EventQuoteAccepted       = "quote_accepted"
	EventQuoteDeclined       = "quote_declined"
	EventQuoteCancelled      = "quote_cancelled"
	EventQuoteExpired        = "quote_expired"
	EventCounterProposed     = "counter_proposed"
	EventContractorConfirmed = "contractor_confirmed"
	EventLandlordNote        = "landlord_note"
)

// CaseEvent is one append-only entry in a case's history. ID is monotonic and
// defines the order of events within a case.
type CaseEvent struct {
	ID             uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	CaseID         string            `gorm:"type:varchar(36);not null;index" json:"caseId"`
	OrganizationID string            `gorm:"type:varchar(36);not null;index" json:"organizationId"`
	Type           string            `gorm:"type:varchar(50);not null" json:"type"`
	Description    string            `gorm:"type:text" json:"description"`
	ActorID        string            `gorm:"type:varchar(36)" json:"actorId,omitempty"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

func (CaseEvent) TableName() string { return "case_events" }
