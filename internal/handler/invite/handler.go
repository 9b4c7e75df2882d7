package invite

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/handler"
	"github.com/orvium/orvium-api/internal/model"
	inviteService "github.com/orvium/orvium-api/internal/service/invite"
	"github.com/orvium/orvium-api/pkg/errors"
	"github.com/orvium/orvium-api/pkg/httputil"
)

type Handler struct {
	service *inviteService.Service
}

func NewHandler(service *inviteService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	invites := r.Group("/invites")
	{
		invites.POST("", h.CreateInvite)
		invites.POST("/:id/accept", h.AcceptInvite)
	}
	r.GET("/deposits/:id/invites", h.ListByDeposit)
}

type createInviteRequest struct {
	DepositID  string     `json:"deposit_id" binding:"required"`
	InviteType string     `json:"invite_type" binding:"omitempty,oneof=review copy_edit"`
	Addressee  string     `json:"addressee" binding:"required,email"`
	Message    string     `json:"message"`
	DateLimit  *time.Time `json:"date_limit"`
}

type acceptInviteRequest struct {
	Token string `json:"token" binding:"required"`
}

type inviteResponse struct {
	Invite *model.Invite `json:"invite"`
	// Token is returned once at creation for the accept link.
	Token string `json:"token,omitempty"`
}

func (h *Handler) CreateInvite(c *gin.Context) {
	var req createInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	depositID, err := uuid.Parse(req.DepositID)
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid deposit ID", err))
		return
	}

	senderID, err := handler.CurrentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return
	}

	inv, token, err := h.service.Create(c.Request.Context(), inviteService.CreateRequest{
		DepositID:  depositID,
		SenderID:   senderID,
		InviteType: model.InviteType(req.InviteType),
		Addressee:  req.Addressee,
		Message:    req.Message,
		DateLimit:  req.DateLimit,
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, inviteResponse{Invite: inv, Token: token})
}

func (h *Handler) AcceptInvite(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid invite ID", err))
		return
	}

	var req acceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	reviewerID, err := handler.CurrentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return
	}

	inv, err := h.service.Accept(c.Request.Context(), id, req.Token, reviewerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, inviteResponse{Invite: inv})
}

func (h *Handler) ListByDeposit(c *gin.Context) {
	depositID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid deposit ID", err))
		return
	}

	invites, err := h.service.ListByDeposit(c.Request.Context(), depositID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, invites)
}
