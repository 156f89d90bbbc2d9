package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agendahub/booking-api/internal/middleware"
	"github.com/agendahub/booking-api/internal/model"
	appointmentService "github.com/agendahub/booking-api/internal/service/appointment"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
	"github.com/agendahub/booking-api/pkg/httputil"
)

type Handler struct {
	service appointmentService.Servicer
}

func NewHandler(service appointmentService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authn gin.HandlerFunc) {
	r.POST("/user/appointment", authn, h.Create)
	r.GET("/user/appointments", authn, h.ListForRequester)
	r.PUT("/user/appointment/:id", authn, h.Update)
	r.DELETE("/user/appointment/:id", authn, h.Delete)
	r.GET("/businesses/:businessId/appointments", h.ListByBusiness)
	r.GET("/clients/:clientId/appointments", h.ListByClient)
}

func (h *Handler) Create(c *gin.Context) {
	externalID, ok := middleware.ExternalID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated("missing identity", nil))
		return
	}

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	apt, err := h.service.Create(c.Request.Context(), externalID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, apt)
}

func (h *Handler) ListForRequester(c *gin.Context) {
	externalID, ok := middleware.ExternalID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated("missing identity", nil))
		return
	}

	appointments, err := h.service.ListForRequester(c.Request.Context(), externalID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, appointments)
}

func (h *Handler) ListByBusiness(c *gin.Context) {
	appointments, err := h.service.ListByBusiness(c.Request.Context(), c.Param("businessId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, appointments)
}

func (h *Handler) ListByClient(c *gin.Context) {
	appointments, err := h.service.ListByClient(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, appointments)
}

func (h *Handler) Update(c *gin.Context) {
	var patch model.AppointmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	apt, err := h.service.Update(c.Request.Context(), c.Param("id"), &patch)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, apt)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
