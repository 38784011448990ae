package quote

import "propcare/internal/pkg/apperr"

var (
	ErrQuoteNotFound      = apperr.NotFound("quote not found")
	ErrForeignQuote       = apperr.Authorization("quote belongs to another organization")
	ErrNotQuoteContractor = apperr.Authorization("quote belongs to another contractor")
	ErrLandlordOnly       = apperr.Authorization("only landlords can decide on quotes")
	ErrContractorOnly     = apperr.Authorization("only contractors can submit quotes")
	ErrQuoteArchived      = apperr.InvalidTransition("quote is archived")
	ErrQuoteNotPending    = apperr.InvalidTransition("quote is not awaiting a decision")
	ErrQuoteClosed        = apperr.InvalidTransition("quote can no longer be negotiated")
	ErrCaseNotQuotable    = apperr.InvalidTransition("case is no longer accepting quotes")
	ErrQuoteConflict      = apperr.Conflict("quote was modified concurrently")
	ErrCaseConflict       = apperr.Conflict("case was modified concurrently")
	ErrMultipleApproved   = apperr.Conflict("case already has an approved quote")
	ErrEmptyCounter       = apperr.Validation("counter proposal needs a proposed total or a message")
	ErrPriceRequired      = apperr.Validation("price is required")
	ErrNothingToAccept    = apperr.InvalidTransition("case is not awaiting the contractor")
)
