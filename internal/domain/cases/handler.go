package cases

import (
	"net/http"
	"strconv"

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

func present(a actor.Actor, c *Case) CaseResponse {
	out := CaseResponse{Case: c}
	if a.IsContractor() {
		out.ContractorStatus = ContractorLabel(c.Status)
	}
	return out
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.Summary(errs), errs)
		return false
	}
	return true
}

// CreateCase handles POST /cases
// @Summary Report a maintenance case
// @Tags Cases
// @Accept json
// @Produce json
// @Param request body CreateCaseRequest true "Case"
// @Success 201 {object} response.Response{data=Case}
// @Failure 400 {object} response.Response
// @Router /cases [post]
func (h *Handler) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if !bindJSON(c, &req) {
		return
	}
	a := actor.FromGin(c)
	created, err := h.service.Create(c.Request.Context(), a, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, present(a, created))
}

// GetCase handles GET /cases/:caseId
func (h *Handler) GetCase(c *gin.Context) {
	a := actor.FromGin(c)
	found, err := h.service.Load(c.Request.Context(), a, c.Param("caseId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, present(a, found))
}

// ListCases handles GET /cases?status=&limit=&offset=
func (h *Handler) ListCases(c *gin.Context) {
	var f ListFilter
	if raw := c.Query("status"); raw != "" {
		status, ok := ParseStatus(raw)
		if !ok {
			response.FromError(c, ErrInvalidStatus)
			return
		}
		f.Status = status
	}
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	a := actor.FromGin(c)
	list, err := h.service.List(c.Request.Context(), a, f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	out := make([]CaseResponse, 0, len(list))
	for i := range list {
		out = append(out, present(a, &list[i]))
	}
	response.Success(c, http.StatusOK, gin.H{"cases": out})
}

// UpdateStatus handles POST /cases/:caseId/status
// @Summary Move a case along its lifecycle
// @Tags Cases
// @Accept json
// @Produce json
// @Param caseId path string true "Case ID"
// @Param request body StatusRequest true "Target status"
// @Success 200 {object} response.Response{data=Case}
// @Failure 409 {object} response.Response
// @Router /cases/{caseId}/status [post]
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	to, ok := ParseStatus(req.Status)
	if !ok {
		response.FromError(c, ErrInvalidStatus)
		return
	}
	a := actor.FromGin(c)
	updated, err := h.service.Transition(c.Request.Context(), a, c.Param("caseId"), to, req.Note)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, present(a, updated))
}

// UpdatePriority handles POST /cases/:caseId/priority
func (h *Handler) UpdatePriority(c *gin.Context) {
	var req PriorityRequest
	if !bindJSON(c, &req) {
		return
	}
	a := actor.FromGin(c)
	updated, err := h.service.SetPriority(c.Request.Context(), a, c.Param("caseId"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, present(a, updated))
}

// CloseCase handles POST /cases/:caseId/close
// @Summary Close a case (moves it to Resolved)
// @Tags Cases
// @Produce json
// @Param caseId path string true "Case ID"
// @Success 200 {object} response.Response{data=Case}
// @Router /cases/{caseId}/close [post]
func (h *Handler) CloseCase(c *gin.Context) {
	var req CloseRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	a := actor.FromGin(c)
	updated, err := h.service.Close(c.Request.Context(), a, c.Param("caseId"), req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, present(a, updated))
}
