package deposit

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/handler"
	"github.com/orvium/orvium-api/internal/model"
	depositService "github.com/orvium/orvium-api/internal/service/deposit"
	"github.com/orvium/orvium-api/pkg/errors"
	"github.com/orvium/orvium-api/pkg/httputil"
)

type Handler struct {
	service *depositService.Service
}

func NewHandler(service *depositService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	deposits := r.Group("/deposits")
	{
		deposits.POST("", h.CreateDeposit)
		deposits.GET("/:id", h.GetDeposit)
		deposits.GET("/:id/history", h.ListHistory)
		deposits.POST("/:id/submit", h.SubmitDeposit)
		deposits.POST("/:id/publish", h.PublishDeposit)
		deposits.POST("/:id/reject", h.RejectDeposit)
	}
}

type createDepositRequest struct {
	Title       string         `json:"title" binding:"required"`
	Abstract    string         `json:"abstract"`
	CommunityID string         `json:"community_id" binding:"required"`
	Authors     []model.Author `json:"authors"`
}

type rejectDepositRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) CreateDeposit(c *gin.Context) {
	var req createDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	communityID, err := uuid.Parse(req.CommunityID)
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid community ID", err))
		return
	}

	ownerID, err := handler.CurrentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return
	}

	d := &model.Deposit{
		Title:       req.Title,
		Abstract:    req.Abstract,
		CommunityID: communityID,
		OwnerID:     ownerID,
		Authors:     req.Authors,
	}
	if err := h.service.Create(c.Request.Context(), d); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, d)
}

func (h *Handler) GetDeposit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid deposit ID", err))
		return
	}

	d, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, d)
}

func (h *Handler) ListHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid deposit ID", err))
		return
	}

	entries, err := h.service.ListHistory(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entries)
}

func (h *Handler) SubmitDeposit(c *gin.Context) {
	h.transition(c, h.service.Submit)
}

func (h *Handler) PublishDeposit(c *gin.Context) {
	h.transition(c, h.service.Publish)
}

func (h *Handler) RejectDeposit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid deposit ID", err))
		return
	}

	var req rejectDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	actorID, err := handler.CurrentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return
	}

	d, err := h.service.Reject(c.Request.Context(), id, actorID, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, d)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, depositID, actorID uuid.UUID) (*model.Deposit, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid deposit ID", err))
		return
	}

	actorID, err := handler.CurrentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return
	}

	d, err := fn(c.Request.Context(), id, actorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, d)
}
