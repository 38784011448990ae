package roster

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"propcare/internal/pkg/actor"
	"propcare/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListContractors handles GET /contractors
// @Summary Dispatchable contractors of the caller's organization
// @Tags Contractors
// @Produce json
// @Success 200 {object} response.Response{data=[]Contractor}
// @Router /contractors [get]
func (h *Handler) ListContractors(c *gin.Context) {
	contractors, err := h.service.ListCandidates(c.Request.Context(), actor.FromGin(c).OrgID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"contractors": contractors})
}

// AddFavorite handles POST /contractors/:id/favorite
func (h *Handler) AddFavorite(c *gin.Context) {
	fav, err := h.service.AddFavorite(c.Request.Context(), actor.FromGin(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, fav)
}

// RemoveFavorite handles DELETE /contractors/:id/favorite
func (h *Handler) RemoveFavorite(c *gin.Context) {
	if err := h.service.RemoveFavorite(c.Request.Context(), actor.FromGin(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
