package dispatch

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

// Recommendations handles GET /maya/recommendations/:caseId
// @Summary Ranked contractor recommendations for a case
// @Tags Dispatch
// @Produce json
// @Param caseId path string true "Case ID"
// @Success 200 {object} response.Response{data=Recommendations}
// @Failure 404 {object} response.Response
// @Router /maya/recommendations/{caseId} [get]
func (h *Handler) Recommendations(c *gin.Context) {
	recs, err := h.service.Recommend(c.Request.Context(), actor.FromGin(c), c.Param("caseId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, recs)
}

// Assign handles POST /cases/:caseId/assign
// @Summary Assign a contractor to a case
// @Tags Dispatch
// @Accept json
// @Produce json
// @Param caseId path string true "Case ID"
// @Param request body AssignRequest true "Contractor"
// @Success 200 {object} response.Response{data=AssignResult}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /cases/{caseId}/assign [post]
func (h *Handler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body")
		return
	}
	result, err := h.service.Assign(c.Request.Context(), actor.FromGin(c), c.Param("caseId"), req.Target())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
