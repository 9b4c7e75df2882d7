package inbox

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/handler"
	inboxService "github.com/orvium/orvium-api/internal/service/inbox"
	"github.com/orvium/orvium-api/pkg/errors"
	"github.com/orvium/orvium-api/pkg/httputil"
)

type Handler struct {
	service *inboxService.Service
}

func NewHandler(service *inboxService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.POST("/:id/read", h.MarkRead)
		notifications.POST("/read-all", h.MarkAllRead)
	}
}

func (h *Handler) ListNotifications(c *gin.Context) {
	userID, err := handler.CurrentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return
	}

	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.service.List(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, notifications)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	userID, err := handler.CurrentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"unread": count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid notification ID", err))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, nil)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	userID, err := handler.CurrentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return
	}

	if err := h.service.MarkAllRead(c.Request.Context(), userID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, nil)
}
