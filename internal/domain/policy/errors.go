package policy

import "propcare/internal/pkg/apperr"

var (
	ErrInvalidMode  = apperr.Validation("involvement mode must be one of hands-off, balanced, hands-on")
	ErrInvalidLimit = apperr.Validation("auto approve cost limit must not be negative")
)
