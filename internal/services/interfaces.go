package services

import (
	"context"
	"time"

	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/axioniz/axioniz-api/internal/notification"
	"github.com/axioniz/axioniz-api/pkg/jwt"
)

// Notifier sends the consultation e-mails.
type Notifier interface {
	SendConfirmation(ctx context.Context, c *models.Consultation) notification.Result
	SendTeamNotification(ctx context.Context, c *models.Consultation) notification.Result
	SendTest(ctx context.Context) notification.Result
}

// Archiver stores a JSON snapshot of a saved consultation.
type Archiver interface {
	Put(ctx context.Context, id int64, createdAt time.Time, record any) (string, error)
}

// ConsultationServiceInterface defines the submission pipeline
type ConsultationServiceInterface interface {
	Submit(ctx context.Context, req *models.ConsultationRequest) (*SubmissionOutcome, error)
}

// AdminConsultationsServiceInterface defines admin operations on stored consultations
type AdminConsultationsServiceInterface interface {
	List(ctx context.Context) (*models.ConsultationListResponse, error)
	UpdateStatus(ctx context.Context, id int64, status models.ConsultationStatus) error
	SendTestEmail(ctx context.Context) notification.Result
}

// AdminAuthServiceInterface defines password login for the admin dashboard
type AdminAuthServiceInterface interface {
	Enabled() bool
	Login(ctx context.Context, password string) (token string, expiresAt time.Time, err error)
	GetSessionTTL() int
	GetCookieDomain() string
	GetCookieSecure() bool
	GetTokenManager() *jwt.TokenManager
}

var (
	_ ConsultationServiceInterface       = (*ConsultationService)(nil)
	_ AdminConsultationsServiceInterface = (*AdminConsultationsService)(nil)
	_ AdminAuthServiceInterface          = (*AdminAuthService)(nil)
	_ Notifier                           = (*notification.Dispatcher)(nil)
)
