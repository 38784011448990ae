package quote

import (
	"github.com/gin-gonic/gin"

	"propcare/internal/middleware"
	"propcare/internal/pkg/actor"
)

// RegisterRoutes expects r to be behind auth and org middleware.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/cases/:caseId/quotes", h.ListQuotes)
	r.GET("/quotes/:id", h.GetQuote)
	r.POST("/quotes/:id/counter", h.CounterQuote)

	landlord := r.Group("", middleware.RequireRole(actor.RoleLandlord))
	{
		landlord.POST("/quotes/:id/accept", h.AcceptQuote)
		landlord.POST("/quotes/:id/decline", h.DeclineQuote)
	}

	contractor := r.Group("", middleware.RequireRole(actor.RoleContractor))
	{
		contractor.POST("/cases/:caseId/quotes", h.SubmitQuote)
		contractor.POST("/cases/:caseId/accept-case", h.AcceptCase)
		contractor.POST("/quotes/:id/send", h.SendQuote)
		contractor.POST("/quotes/:id/cancel", h.CancelQuote)
	}
}
