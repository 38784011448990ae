package quote

import "propcare/internal/domain/roster"

type LineItemInput struct {
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    float64 `json:"quantity" validate:"gte=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
}

// SubmitQuoteRequest creates a quote. Without line items, Subtotal is taken as given.
type SubmitQuoteRequest struct {
	LineItems    []LineItemInput `json:"lineItems" validate:"omitempty,dive"`
	Subtotal     float64         `json:"subtotal" validate:"gte=0"`
	Tax          float64         `json:"tax" validate:"gte=0"`
	Notes        string          `json:"notes" validate:"max=4000"`
	Availability string          `json:"availability" validate:"max=255"`
	ValidDays    int             `json:"validDays" validate:"gte=0,lte=365"`
	Draft        bool            `json:"draft"`
}

type DeclineRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

type CounterRequest struct {
	ProposedTotal *float64       `json:"proposedTotal" validate:"omitempty,gte=0"`
	Message       string         `json:"message" validate:"max=4000"`
	Payload       map[string]any `json:"payload"`
}

// AcceptCaseRequest is the contractor's "accept & estimate" answer to an assignment.
type AcceptCaseRequest struct {
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	Availability string   `json:"availability" validate:"max=255"`
	Message      string   `json:"message" validate:"max=4000"`
}

// QuoteView is a quote with the contractor's display record when known.
type QuoteView struct {
	Quote
	Contractor *roster.Contractor `json:"contractor,omitempty"`
}

type AcceptCaseResult struct {
	CaseStatus string `json:"caseStatus"`
	Quote      *Quote `json:"quote,omitempty"`
}
