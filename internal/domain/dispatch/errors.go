package dispatch

import "propcare/internal/pkg/apperr"

var (
	ErrContractorRequired = apperr.Validation("vendorId is required")
	ErrAlreadyAssigned    = apperr.Conflict("case is no longer open for assignment")
	ErrAssignForbidden    = apperr.Authorization("only landlords can assign contractors")
)
