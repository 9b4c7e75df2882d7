package user

import (
	"github.com/gin-gonic/gin"

	"github.com/orvium/orvium-api/internal/handler"
	userService "github.com/orvium/orvium-api/internal/service/user"
	"github.com/orvium/orvium-api/pkg/errors"
	"github.com/orvium/orvium-api/pkg/httputil"
)

type Handler struct {
	service *userService.Service
}

func NewHandler(service *userService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/me", h.GetProfile)
		users.POST("/me/confirm-email", h.RequestConfirmation)
		users.POST("/me/confirm-email/verify", h.ConfirmEmail)
	}
}

type confirmEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID, err := handler.CurrentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return
	}

	u, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, u)
}

func (h *Handler) RequestConfirmation(c *gin.Context) {
	userID, err := handler.CurrentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return
	}

	if err := h.service.RequestEmailConfirmation(c.Request.Context(), userID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"status": "confirmation email sent"})
}

func (h *Handler) ConfirmEmail(c *gin.Context) {
	userID, err := handler.CurrentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return
	}

	var req confirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	if err := h.service.ConfirmEmail(c.Request.Context(), userID, req.Token); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"status": "email confirmed"})
}
