package service

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agendahub/booking-api/internal/handler"
	"github.com/agendahub/booking-api/internal/middleware"
	svcService "github.com/agendahub/booking-api/internal/service/service"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
	"github.com/agendahub/booking-api/pkg/httputil"
)

type Handler struct {
	service svcService.Servicer
}

func NewHandler(service svcService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authn gin.HandlerFunc) {
	r.POST("/services", authn, h.Create)
	r.PUT("/services/:id", authn, h.Update)
	r.GET("/services/:id", h.Get)
	r.DELETE("/services/:id", authn, h.Delete)
	r.GET("/businesses/:businessId/services", h.ListByBusiness)
}

func (h *Handler) Create(c *gin.Context) {
	externalID, ok := middleware.ExternalID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated("missing identity", nil))
		return
	}

	businessID := c.PostForm("businessId")
	name := c.PostForm("name")
	if businessID == "" || name == "" {
		httputil.RespondWithError(c, apperrors.Validation("businessId and name are required"))
		return
	}

	duration, err := strconv.Atoi(c.PostForm("duration"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("duration must be an integer"))
		return
	}
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("price must be a number"))
		return
	}

	image, closeImage, err := handler.FormImage(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	defer closeImage()

	in := svcService.CreateInput{
		BusinessID:      businessID,
		Name:            name,
		Description:     handler.FormString(c, "description"),
		DurationMinutes: duration,
		Price:           price,
		Image:           image,
	}

	svc, err := h.service.Create(c.Request.Context(), externalID, in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, svc)
}

func (h *Handler) Get(c *gin.Context) {
	svc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, svc)
}

func (h *Handler) ListByBusiness(c *gin.Context) {
	services, err := h.service.ListByBusiness(c.Request.Context(), c.Param("businessId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, services)
}

// Update parses numeric fields only when supplied, so an absent field
// is never mistaken for an explicit zero.
func (h *Handler) Update(c *gin.Context) {
	externalID, ok := middleware.ExternalID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated("missing identity", nil))
		return
	}

	image, closeImage, err := handler.FormImage(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	defer closeImage()

	in := svcService.UpdateInput{
		Name:        handler.FormString(c, "name"),
		Description: handler.FormString(c, "description"),
		Image:       image,
	}

	if raw, present := c.GetPostForm("duration"); present {
		duration, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("duration must be an integer"))
			return
		}
		in.DurationMinutes = &duration
	}
	if raw, present := c.GetPostForm("price"); present {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("price must be a number"))
			return
		}
		in.Price = &price
	}

	svc, err := h.service.Update(c.Request.Context(), externalID, c.Param("id"), in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, svc)
}

func (h *Handler) Delete(c *gin.Context) {
	externalID, ok := middleware.ExternalID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated("missing identity", nil))
		return
	}

	if err := h.service.Delete(c.Request.Context(), externalID, c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
