package policy

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"propcare/internal/pkg/actor"
	"propcare/internal/pkg/response"
	"propcare/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetPolicy handles GET /policy
// @Summary Active approval policy
// @Tags Policy
// @Produce json
// @Success 200 {object} response.Response{data=Policy}
// @Router /policy [get]
func (h *Handler) GetPolicy(c *gin.Context) {
	p, err := h.service.GetActivePolicy(c.Request.Context(), actor.FromGin(c).OrgID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// UpdatePolicy handles PUT /policy
// @Summary Replace the active approval policy
// @Tags Policy
// @Accept json
// @Produce json
// @Param request body UpdatePolicyRequest true "Policy"
// @Success 200 {object} response.Response{data=Policy}
// @Failure 400 {object} response.Response
// @Router /policy [put]
func (h *Handler) UpdatePolicy(c *gin.Context) {
	var req UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid policy", errs)
		return
	}

	p, err := h.service.ActivatePolicy(c.Request.Context(), actor.FromGin(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// ListPolicies handles GET /policy/history
func (h *Handler) ListPolicies(c *gin.Context) {
	policies, err := h.service.ListPolicies(c.Request.Context(), actor.FromGin(c).OrgID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"policies": policies})
}
