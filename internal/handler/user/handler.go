package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agendahub/booking-api/internal/handler"
	"github.com/agendahub/booking-api/internal/middleware"
	userService "github.com/agendahub/booking-api/internal/service/user"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
	"github.com/agendahub/booking-api/pkg/httputil"
)

type Handler struct {
	service userService.Servicer
}

func NewHandler(service userService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authn gin.HandlerFunc) {
	r.PUT("/user/profile", authn, h.UpdateProfile)
	r.GET("/users", h.List)
	r.GET("/user/:id", h.Get)
	r.DELETE("/user/:id", authn, h.Delete)
}

// UpdateProfile accepts a multipart form with optional name, role and
// image fields, applied to the authenticated caller's own record.
func (h *Handler) UpdateProfile(c *gin.Context) {
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

	in := userService.ProfileInput{
		Name:  handler.FormString(c, "name"),
		Role:  handler.FormString(c, "role"),
		Image: image,
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), externalID, in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, user)
}

func (h *Handler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, users)
}

func (h *Handler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, user)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
