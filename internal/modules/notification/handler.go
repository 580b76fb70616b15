package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trafficportal/internal/pkg/response"
	"trafficportal/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetNotifications returns one page of the current user's notification log
// together with the counts used for the badge.
// GET /notifications?onlyUnread=false&page=1&pageSize=20
func (h *Handler) GetNotifications(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	onlyUnread := c.Query("onlyUnread") == "true"
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "pageSize", 20)

	items, err := h.service.List(c.Request.Context(), userID, onlyUnread, page, pageSize)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get notifications")
		return
	}

	counts, err := h.service.Counts(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get notification counts")
		return
	}

	response.Success(c, http.StatusOK, ListResponse{
		Notifications: items,
		UnreadCount:   counts.Unread,
		Total:         counts.Total,
	})
}

// GetUnreadCount returns the unread badge number.
// GET /notifications/unread-count
func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	unread, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get unread count")
		return
	}

	response.Success(c, http.StatusOK, UnreadCountResponse{UnreadCount: unread})
}

// GetCounts returns total and unread together.
// GET /notifications/count
func (h *Handler) GetCounts(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	counts, err := h.service.Counts(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get notification counts")
		return
	}

	response.Success(c, http.StatusOK, counts)
}

// MarkAsRead flips a single notification; absent or foreign-owned ids map
// to 404. Re-reading an already-read record still succeeds.
// PATCH /notifications/:id/read
func (h *Handler) MarkAsRead(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}

	found, err := h.service.MarkRead(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark as read")
		return
	}
	if !found {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "read"})
}

// MarkAllAsRead flips every unread notification of the current user.
// PATCH /notifications/read-all
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	updated, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark all as read")
		return
	}

	response.Success(c, http.StatusOK, MarkAllReadResponse{Updated: updated})
}

// CreateNotification appends a record for a target user. Restricted to
// producer roles by the route registration.
// POST /notifications
func (h *Handler) CreateNotification(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing or invalid fields", details)
		return
	}

	dto, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create notification")
		return
	}

	response.Success(c, http.StatusCreated, dto)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	s := c.Query(name)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
