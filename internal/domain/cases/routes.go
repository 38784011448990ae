package cases

import (
	"github.com/gin-gonic/gin"

	"propcare/internal/middleware"
	"propcare/internal/pkg/actor"
)

// RegisterRoutes expects r to be behind auth and org middleware.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/cases", h.ListCases)
	r.GET("/cases/:caseId", h.GetCase)
	r.POST("/cases/:caseId/status", h.UpdateStatus)

	landlord := r.Group("", middleware.RequireRole(actor.RoleLandlord))
	{
		landlord.POST("/cases", h.CreateCase)
		landlord.POST("/cases/:caseId/priority", h.UpdatePriority)
		landlord.POST("/cases/:caseId/close", h.CloseCase)
	}
}
