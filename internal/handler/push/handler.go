package push

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/handler"
	pushService "github.com/orvium/orvium-api/internal/push"
	"github.com/orvium/orvium-api/pkg/errors"
	"github.com/orvium/orvium-api/pkg/httputil"
)

type Handler struct {
	service        *pushService.Service
	vapidPublicKey string
}

func NewHandler(service *pushService.Service, vapidPublicKey string) *Handler {
	return &Handler{service: service, vapidPublicKey: vapidPublicKey}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	subscriptions := r.Group("/push-subscriptions")
	{
		subscriptions.GET("/key", h.PublicKey)
		subscriptions.POST("", h.Subscribe)
		subscriptions.DELETE("/:id", h.Unsubscribe)
	}
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

// PublicKey exposes the VAPID public key the browser needs to subscribe.
func (h *Handler) PublicKey(c *gin.Context) {
	httputil.RespondWithSuccess(c, gin.H{"public_key": h.vapidPublicKey})
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	userID, err := handler.CurrentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return
	}

	sub, err := h.service.Subscribe(c.Request.Context(), userID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, sub)
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid subscription ID", err))
		return
	}

	if err := h.service.Unsubscribe(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, nil)
}
