package policy

import (
	"github.com/gin-gonic/gin"

	"propcare/internal/middleware"
	"propcare/internal/pkg/actor"
)

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/policy", h.GetPolicy)

	managed := r.Group("/policy", middleware.RequireRole(actor.RoleLandlord))
	{
		managed.PUT("", h.UpdatePolicy)
		managed.GET("/history", h.ListPolicies)
	}
}
