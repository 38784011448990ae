package cases

type CreateCaseRequest struct {
	Title         string         `json:"title" validate:"required,max=255"`
	Description   string         `json:"description"`
	Category      string         `json:"category" validate:"max=100"`
	Priority      string         `json:"priority"`
	IsUrgent      bool           `json:"isUrgent"`
	EstimatedCost *float64       `json:"estimatedCost" validate:"omitempty,gte=0"`
	AITriage      map[string]any `json:"aiTriage"`
	PropertyID    *string        `json:"propertyId"`
}

type PriorityRequest struct {
	Priority string `json:"priority" validate:"required"`
	IsUrgent *bool  `json:"isUrgent"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=2000"`
}

type CloseRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

// CaseResponse adds the contractor-surface label for contractor callers.
type CaseResponse struct {
	*Case
	ContractorStatus string `json:"contractorStatus,omitempty"`
}
