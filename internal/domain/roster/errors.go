package roster

import "propcare/internal/pkg/apperr"

var (
	ErrContractorNotFound = apperr.NotFound("contractor not found")
	ErrFavoriteExists     = apperr.Conflict("contractor already a favorite")
)
