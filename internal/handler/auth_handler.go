package handler

import (
	"net/http"

	"github.com/edusync/edusync-portal/internal/model"
	"github.com/edusync/edusync-portal/internal/response"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/edusync/edusync-portal/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// Login godoc
// POST /api/v1/auth/login
// Verifies credentials with EduSync, opens a session, returns a portal JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Register godoc
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	profile, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": profile})
}

// ForgotPassword godoc
// POST /api/v1/auth/forgot-password
// Relays the backend message; the dev reset token is passed through when present.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.authService.ForgotPassword(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, msg)
}

// ResetPassword godoc
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.authService.ResetPassword(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, msg)
}

// Me godoc
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	u, _ := sc.Current()
	response.Success(c, http.StatusOK, gin.H{"user": model.NewUserProfile(u)})
}

// Logout godoc
// POST /api/v1/auth/logout
// Deletes the session record; the token is rejected from then on.
func (h *AuthHandler) Logout(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), sc); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
