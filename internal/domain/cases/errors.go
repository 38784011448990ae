package cases

import "propcare/internal/pkg/apperr"

var (
	ErrCaseNotFound      = apperr.NotFound("case not found")
	ErrConcurrentUpdate  = apperr.Conflict("case was modified concurrently")
	ErrNotCaseContractor = apperr.Authorization("case is not assigned to this contractor")
	ErrInvalidPriority   = apperr.Validation("priority must be one of Normal, High, Urgent")
	ErrInvalidStatus     = apperr.Validation("unknown case status")
	ErrCaseNotDispatched = apperr.InvalidTransition("case has no assigned contractor yet")
)
