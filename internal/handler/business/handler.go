package business

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agendahub/booking-api/internal/handler"
	"github.com/agendahub/booking-api/internal/middleware"
	businessService "github.com/agendahub/booking-api/internal/service/business"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
	"github.com/agendahub/booking-api/pkg/httputil"
)

type Handler struct {
	service businessService.Servicer
}

func NewHandler(service businessService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authn gin.HandlerFunc) {
	r.POST("/owner/business", authn, h.Create)
	r.GET("/business", h.List)
	r.GET("/business/:id", h.Get)
	r.GET("/business/:id/stats", authn, h.GetStats)
	r.PUT("/business/:id", authn, h.Update)
	r.DELETE("/business/:id", authn, h.Delete)
}

// Create accepts a multipart form. The workingHours field carries raw
// JSON in either of the two accepted shapes.
func (h *Handler) Create(c *gin.Context) {
	externalID, ok := middleware.ExternalID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated("missing identity", nil))
		return
	}

	name := c.PostForm("name")
	if name == "" {
		httputil.RespondWithError(c, apperrors.Validation("business name is required"))
		return
	}

	image, closeImage, err := handler.FormImage(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	defer closeImage()

	in := businessService.CreateInput{
		Name:         name,
		Description:  handler.FormString(c, "description"),
		Address:      handler.FormString(c, "address"),
		Phone:        handler.FormString(c, "phone"),
		CategoryID:   c.PostForm("categoryId"),
		WorkingHours: json.RawMessage(c.PostForm("workingHours")),
		Image:        image,
	}

	business, err := h.service.Create(c.Request.Context(), externalID, in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, business)
}

// Get accepts either a store id or an owner's external auth id.
func (h *Handler) Get(c *gin.Context) {
	business, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if business == nil {
		httputil.RespondWithError(c, apperrors.NotFound("business"))
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, business)
}

func (h *Handler) List(c *gin.Context) {
	businesses, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, businesses)
}

func (h *Handler) Update(c *gin.Context) {
	image, closeImage, err := handler.FormImage(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	defer closeImage()

	in := businessService.UpdateInput{
		Name:        handler.FormString(c, "name"),
		Description: handler.FormString(c, "description"),
		Address:     handler.FormString(c, "address"),
		Phone:       handler.FormString(c, "phone"),
		CategoryID:  handler.FormString(c, "categoryId"),
		Image:       image,
	}
	if raw := c.PostForm("workingHours"); raw != "" {
		in.WorkingHours = json.RawMessage(raw)
	}

	business, err := h.service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, business)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, stats)
}
