package handlers

import (
	"context"
	"time"

	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/axioniz/axioniz-api/internal/notification"
	"github.com/axioniz/axioniz-api/internal/services"
	"github.com/axioniz/axioniz-api/pkg/jwt"
	"github.com/stretchr/testify/mock"
)

type mockConsultationService struct {
	mock.Mock
}

func (m *mockConsultationService) Submit(ctx context.Context, req *models.ConsultationRequest) (*services.SubmissionOutcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SubmissionOutcome), args.Error(1)
}

type mockAdminConsultationsService struct {
	mock.Mock
}

func (m *mockAdminConsultationsService) List(ctx context.Context) (*models.ConsultationListResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConsultationListResponse), args.Error(1)
}

func (m *mockAdminConsultationsService) UpdateStatus(ctx context.Context, id int64, status models.ConsultationStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockAdminConsultationsService) SendTestEmail(ctx context.Context) notification.Result {
	return m.Called(ctx).Get(0).(notification.Result)
}

type mockAdminAuthService struct {
	mock.Mock
}

func (m *mockAdminAuthService) Enabled() bool { return true }

func (m *mockAdminAuthService) Login(ctx context.Context, password string) (string, time.Time, error) {
	args := m.Called(ctx, password)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockAdminAuthService) GetSessionTTL() int { return 3600 }
func (m *mockAdminAuthService) GetCookieDomain() string { return "" }
func (m *mockAdminAuthService) GetCookieSecure() bool { return true }
func (m *mockAdminAuthService) GetTokenManager() *jwt.TokenManager { return nil }
