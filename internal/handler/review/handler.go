package review

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/handler"
	"github.com/orvium/orvium-api/internal/model"
	reviewService "github.com/orvium/orvium-api/internal/service/review"
	"github.com/orvium/orvium-api/pkg/errors"
	"github.com/orvium/orvium-api/pkg/httputil"
)

type Handler struct {
	service *reviewService.Service
}

func NewHandler(service *reviewService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reviews := r.Group("/reviews")
	{
		reviews.POST("", h.CreateReview)
		reviews.GET("/:id", h.GetReview)
		reviews.POST("/:id/publish", h.PublishReview)
	}
}

type createReviewRequest struct {
	DepositID string `json:"deposit_id" binding:"required"`
	Comments  string `json:"comments"`
	Decision  string `json:"decision"`
}

func (h *Handler) CreateReview(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	depositID, err := uuid.Parse(req.DepositID)
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid deposit ID", err))
		return
	}

	ownerID, err := handler.CurrentUserID(c)
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized(err))
		return
	}

	r := &model.Review{
		DepositID: depositID,
		OwnerID:   ownerID,
		Comments:  req.Comments,
		Decision:  model.ReviewDecision(req.Decision),
	}
	if err := h.service.Create(c.Request.Context(), r); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, r)
}

func (h *Handler) GetReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid review ID", err))
		return
	}

	r, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, r)
}

func (h *Handler) PublishReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid review ID", err))
		return
	}

	r, err := h.service.Publish(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, r)
}
