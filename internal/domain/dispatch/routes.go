package dispatch

import (
	"github.com/gin-gonic/gin"

	"propcare/internal/middleware"
	"propcare/internal/pkg/actor"
)

// RegisterRoutes expects r to be behind auth and org middleware.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	landlord := r.Group("", middleware.RequireRole(actor.RoleLandlord))
	{
		landlord.GET("/maya/recommendations/:caseId", h.Recommendations)
		landlord.POST("/cases/:caseId/assign", h.Assign)
	}
}
