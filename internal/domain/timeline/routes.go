package timeline

import "github.com/gin-gonic/gin"

// RegisterRoutes expects r to be behind auth and org middleware.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/cases/:caseId/events", h.ListEvents)
	r.GET("/cases/:caseId/events/ws", h.StreamEvents)
}
