package timeline

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"propcare/internal/pkg/actor"
	"propcare/internal/pkg/response"
)

// CaseAccess confirms the caller may read a case.
type CaseAccess interface {
	EnsureCaseAccess(ctx context.Context, a actor.Actor, caseID string) error
}

type Handler struct {
	log    EventLog
	access CaseAccess
	hub    *Hub
	logger *zap.Logger
}

func NewHandler(log EventLog, access CaseAccess, hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{log: log, access: access, hub: hub, logger: logger}
}

// ListEvents handles GET /cases/:caseId/events
// @Summary Case timeline
// @Tags Cases
// @Produce json
// @Param caseId path string true "Case ID"
// @Success 200 {object} response.Response{data=[]CaseEvent}
// @Failure 404 {object} response.Response
// @Router /cases/{caseId}/events [get]
func (h *Handler) ListEvents(c *gin.Context) {
	caseID := c.Param("caseId")
	if err := h.access.EnsureCaseAccess(c.Request.Context(), actor.FromGin(c), caseID); err != nil {
		response.FromError(c, err)
		return
	}

	events, err := h.log.ListByCase(c.Request.Context(), caseID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"events": events})
}

// StreamEvents handles GET /cases/:caseId/events/ws
func (h *Handler) StreamEvents(c *gin.Context) {
	caseID := c.Param("caseId")
	if err := h.access.EnsureCaseAccess(c.Request.Context(), actor.FromGin(c), caseID); err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request, caseID); err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("case_id", caseID), zap.Error(err))
	}
}
