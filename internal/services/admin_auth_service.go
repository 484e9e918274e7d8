package services

import (
	"context"
	"fmt"
	"time"

	"github.com/axioniz/axioniz-api/config"
	apperrors "github.com/axioniz/axioniz-api/pkg/errors"
	"github.com/axioniz/axioniz-api/pkg/jwt"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
	"golang.org/x/crypto/bcrypt"
)

const adminSubject = "admin"

var (
	ErrAdminAuthDisabled  = apperrors.NotConfiguredError("admin authentication")
	ErrInvalidCredentials = apperrors.UnauthorizedError("invalid admin credentials")
)

// AdminAuthService exchanges the shared admin password for a session token.
type AdminAuthService struct {
	config       *config.Config
	tokenManager *jwt.TokenManager
}

func NewAdminAuthService(cfg *config.Config) *AdminAuthService {
	var tokenManager *jwt.TokenManager
	if cfg.Admin.JWTSecret != "" {
		tokenManager = jwt.NewTokenManager(
			cfg.Admin.JWTSecret,
			cfg.Admin.JWTIssuer,
			time.Duration(cfg.Admin.SessionTTLHours)*time.Hour,
		)
	}

	return &AdminAuthService{
		config:       cfg,
		tokenManager: tokenManager,
	}
}

// Enabled reports whether both the password and the signing secret are set.
func (s *AdminAuthService) Enabled() bool {
	return s.tokenManager != nil && s.config.Admin.Password != ""
}

func (s *AdminAuthService) Login(ctx context.Context, password string) (string, time.Time, error) {
	if !s.Enabled() {
		metrics.AdminLogins.WithLabelValues("disabled").Inc()
		return "", time.Time{}, ErrAdminAuthDisabled
	}

	if !s.passwordMatches(password) {
		metrics.AdminLogins.WithLabelValues("invalid_credentials").Inc()
		logger.Warn("Admin login with wrong password")
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokenManager.GenerateToken(adminSubject, adminSubject)
	if err != nil {
		metrics.AdminLogins.WithLabelValues("error").Inc()
		return "", time.Time{}, fmt.Errorf("failed to generate admin session token: %w", err)
	}

	metrics.AdminLogins.WithLabelValues("success").Inc()
	logger.Info("Admin logged in")
	return token, expiresAt, nil
}

// passwordMatches accepts ADMIN_PASSWORD either as a bcrypt hash or as
// plain text.
func (s *AdminAuthService) passwordMatches(password string) bool {
	stored := s.config.Admin.Password
	if _, err := bcrypt.Cost([]byte(stored)); err == nil {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return jwt.TimingSafeCompare(password, stored)
}

func (s *AdminAuthService) GetSessionTTL() int {
	return s.config.Admin.SessionTTLHours * 3600
}

func (s *AdminAuthService) GetCookieDomain() string {
	return s.config.Admin.CookieDomain
}

func (s *AdminAuthService) GetCookieSecure() bool {
	return s.config.Admin.CookieSecure
}

func (s *AdminAuthService) GetTokenManager() *jwt.TokenManager {
	return s.tokenManager
}
