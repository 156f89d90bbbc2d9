package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agendahub/booking-api/internal/middleware"
	"github.com/agendahub/booking-api/internal/model"
	authService "github.com/agendahub/booking-api/internal/service/auth"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
	"github.com/agendahub/booking-api/pkg/httputil"
)

type Handler struct {
	service authService.Servicer
}

func NewHandler(service authService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authn gin.HandlerFunc) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/google-login", h.GoogleLogin)
		auth.GET("/me", authn, h.Me)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	session, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, session)
}

func (h *Handler) GoogleLogin(c *gin.Context) {
	var req model.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	session, err := h.service.GoogleLogin(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, session)
}

func (h *Handler) Me(c *gin.Context) {
	externalID, ok := middleware.ExternalID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthenticated("missing identity", nil))
		return
	}

	user, err := h.service.Me(c.Request.Context(), externalID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, user)
}
