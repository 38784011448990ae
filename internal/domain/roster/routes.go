package roster

import (
	"github.com/gin-gonic/gin"

	"propcare/internal/middleware"
	"propcare/internal/pkg/actor"
)

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	contractors := r.Group("/contractors", middleware.RequireRole(actor.RoleLandlord))
	{
		contractors.GET("", h.ListContractors)
		contractors.POST("/:id/favorite", h.AddFavorite)
		contractors.DELETE("/:id/favorite", h.RemoveFavorite)
	}
}
