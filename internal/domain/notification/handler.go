package notification

import (
	"net/http"
	"strconv"

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

type ListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unreadCount"`
}

// GetNotifications handles GET /notifications?limit=&offset=
// @Summary Notifications for the caller
// @Tags Notifications
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Response{data=ListResponse}
// @Router /notifications [get]
func (h *Handler) GetNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, unread, err := h.service.List(c.Request.Context(), RecipientID(actor.FromGin(c)), limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ListResponse{Notifications: items, UnreadCount: unread})
}

// GetUnreadCount handles GET /notifications/unread-count
func (h *Handler) GetUnreadCount(c *gin.Context) {
	n, err := h.service.UnreadCount(c.Request.Context(), RecipientID(actor.FromGin(c)))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unreadCount": n})
}

// MarkAsRead handles PATCH /notifications/:id/read
func (h *Handler) MarkAsRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid notification id")
		return
	}
	if err := h.service.MarkAsRead(c.Request.Context(), id, RecipientID(actor.FromGin(c))); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "isRead": true})
}

// MarkAllAsRead handles POST /notifications/read-all
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	n, err := h.service.MarkAllAsRead(c.Request.Context(), RecipientID(actor.FromGin(c)))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": n})
}
