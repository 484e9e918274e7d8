package handlers

import (
	"net/http"
	"time"

	"github.com/axioniz/axioniz-api/internal/middleware"
	"github.com/axioniz/axioniz-api/internal/services"
	apperrors "github.com/axioniz/axioniz-api/pkg/errors"
	"github.com/gin-gonic/gin"
)

type adminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminAuthHandler handles admin authentication endpoints.
type AdminAuthHandler struct {
	service services.AdminAuthServiceInterface
}

func NewAdminAuthHandler(service services.AdminAuthServiceInterface) *AdminAuthHandler {
	return &AdminAuthHandler{service: service}
}

func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Password is required", err)
		return
	}

	token, expiresAt, err := h.service.Login(c.Request.Context(), req.Password)
	if err != nil {
		switch status := apperrors.HTTPStatus(err); status {
		case http.StatusUnauthorized:
			respondError(c, status, "Invalid credentials", err)
		case http.StatusServiceUnavailable:
			respondError(c, status, "Admin login is not configured", err)
		default:
			respondError(c, http.StatusInternalServerError, "Failed to create session", err)
		}
		return
	}

	middleware.SetAdminSessionCookie(
		c,
		token,
		h.service.GetSessionTTL(),
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     token,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *AdminAuthHandler) Logout(c *gin.Context) {
	middleware.ClearAdminSessionCookie(
		c,
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
