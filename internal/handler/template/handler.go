package template

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/model"
	templateService "github.com/orvium/orvium-api/internal/service/template"
	"github.com/orvium/orvium-api/pkg/errors"
	"github.com/orvium/orvium-api/pkg/httputil"
)

type Handler struct {
	service *templateService.Service
}

func NewHandler(service *templateService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	templates := r.Group("/templates")
	{
		templates.POST("", h.CreateTemplate)
		templates.GET("", h.ListTemplates)
		templates.GET("/:id", h.GetTemplate)
		templates.PUT("/:id", h.UpdateTemplate)
	}
}

type createTemplateRequest struct {
	Name           string `json:"name" binding:"required"`
	Category       string `json:"category" binding:"required,oneof=system email"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Template       string `json:"template" binding:"required,handlebars"`
	CommunityID    string `json:"community_id"`
	IsCustomizable bool   `json:"is_customizable"`
}

type updateTemplateRequest struct {
	Template string `json:"template" binding:"required,handlebars"`
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	t := &model.Template{
		Name:           req.Name,
		Category:       model.TemplateCategory(req.Category),
		Title:          req.Title,
		Description:    req.Description,
		Template:       req.Template,
		IsCustomizable: req.IsCustomizable,
	}
	if req.CommunityID != "" {
		communityID, err := uuid.Parse(req.CommunityID)
		if err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid community ID", err))
			return
		}
		t.CommunityID = &communityID
	}

	if err := h.service.Create(c.Request.Context(), t); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, t)
}

func (h *Handler) GetTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid template ID", err))
		return
	}

	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, t)
}

// ListTemplates lists system templates, or a community's overrides when the
// community query parameter is set.
func (h *Handler) ListTemplates(c *gin.Context) {
	var communityID *uuid.UUID
	if raw := c.Query("community"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid community ID", err))
			return
		}
		communityID = &id
	}

	templates, err := h.service.List(c.Request.Context(), communityID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, templates)
}

func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid template ID", err))
		return
	}

	var req updateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	t, err := h.service.Update(c.Request.Context(), id, req.Template)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, t)
}
