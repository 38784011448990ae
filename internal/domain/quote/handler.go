package quote

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

// bindJSON treats an empty body as an empty request.
func bindJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body")
			return false
		}
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.Summary(errs), errs)
		return false
	}
	return true
}

// ListQuotes handles GET /cases/:caseId/quotes?include_archived=true
// @Summary Quotes submitted for a case
// @Tags Quotes
// @Produce json
// @Param caseId path string true "Case ID"
// @Param include_archived query bool false "Include superseded quotes"
// @Success 200 {object} response.Response{data=[]QuoteView}
// @Failure 404 {object} response.Response
// @Router /cases/{caseId}/quotes [get]
func (h *Handler) ListQuotes(c *gin.Context) {
	includeArchived, _ := strconv.ParseBool(c.DefaultQuery("include_archived", "false"))
	quotes, err := h.service.List(c.Request.Context(), actor.FromGin(c), c.Param("caseId"), includeArchived)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, quotes)
}

// GetQuote handles GET /quotes/:id
func (h *Handler) GetQuote(c *gin.Context) {
	q, err := h.service.Get(c.Request.Context(), actor.FromGin(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// SubmitQuote handles POST /cases/:caseId/quotes
// @Summary Submit a quote for a case
// @Tags Quotes
// @Accept json
// @Produce json
// @Param caseId path string true "Case ID"
// @Param request body SubmitQuoteRequest true "Quote"
// @Success 201 {object} response.Response{data=Quote}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /cases/{caseId}/quotes [post]
func (h *Handler) SubmitQuote(c *gin.Context) {
	var req SubmitQuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.service.Submit(c.Request.Context(), actor.FromGin(c), c.Param("caseId"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, q)
}

// AcceptCase handles POST /cases/:caseId/accept-case
func (h *Handler) AcceptCase(c *gin.Context) {
	var req AcceptCaseRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.AcceptCase(c.Request.Context(), actor.FromGin(c), c.Param("caseId"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// AcceptQuote handles POST /quotes/:id/accept
// @Summary Accept a quote; competing quotes are declined
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} response.Response{data=Quote}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /quotes/{id}/accept [post]
func (h *Handler) AcceptQuote(c *gin.Context) {
	q, err := h.service.Accept(c.Request.Context(), actor.FromGin(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// DeclineQuote handles POST /quotes/:id/decline
func (h *Handler) DeclineQuote(c *gin.Context) {
	var req DeclineRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.service.Decline(c.Request.Context(), actor.FromGin(c), c.Param("id"), req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// CounterQuote handles POST /quotes/:id/counter
// @Summary Propose revised terms for a quote
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body CounterRequest true "Proposal"
// @Success 201 {object} response.Response{data=CounterProposal}
// @Failure 400 {object} response.Response
// @Router /quotes/{id}/counter [post]
func (h *Handler) CounterQuote(c *gin.Context) {
	var req CounterRequest
	if !bindJSON(c, &req) {
		return
	}
	cp, err := h.service.CounterPropose(c.Request.Context(), actor.FromGin(c), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cp)
}

// SendQuote handles POST /quotes/:id/send
func (h *Handler) SendQuote(c *gin.Context) {
	q, err := h.service.Send(c.Request.Context(), actor.FromGin(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// CancelQuote handles POST /quotes/:id/cancel
func (h *Handler) CancelQuote(c *gin.Context) {
	q, err := h.service.Cancel(c.Request.Context(), actor.FromGin(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}
