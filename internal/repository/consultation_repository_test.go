package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/axioniz/axioniz-api/config"
	"github.com/axioniz/axioniz-api/internal/cache"
	"github.com/axioniz/axioniz-api/internal/database/memory"
	"github.com/axioniz/axioniz-api/internal/models"
	apperrors "github.com/axioniz/axioniz-api/pkg/errors"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	if err := logger.Initialize(logger.Config{Level: "debug", Environment: "development"}); err != nil {
		panic(err)
	}
}

type mockDataSource struct {
	mock.Mock
}

func (m *mockDataSource) Initialize(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockDataSource) Save(ctx context.Context, req *models.ConsultationRequest) (*models.Consultation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Consultation), args.Error(1)
}

func (m *mockDataSource) List(ctx context.Context) ([]*models.Consultation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Consultation), args.Error(1)
}

func (m *mockDataSource) UpdateStatus(ctx context.Context, id int64, status models.ConsultationStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockDataSource) Close() error   { return nil }
func (m *mockDataSource) Backend() string { return "mock" }

func validRequest() *models.ConsultationRequest {
	return &models.ConsultationRequest{
		Services:  []string{"ai-integration"},
		Date:      "2026-11-02",
		Time:      "10:00 AM",
		FirstName: "Ann",
		LastName:  "Tester",
		Email:     "ann@example.com",
		Phone:     "+1234567890",
	}
}

func TestConsultationRepository_GetAllUsesCache(t *testing.T) {
	ds := new(mockDataSource)
	ctx := context.Background()
	ds.On("List", ctx).Return([]*models.Consultation{{ID: 1}}, nil).Once()

	repo := NewConsultationRepository(ds, cache.NewConsultationsCache(60, false))

	first, err := repo.GetAll(ctx)
	require.NoError(t, err)
	second, err := repo.GetAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)
	ds.AssertExpectations(t)
}

func TestConsultationRepository_WritesInvalidateCache(t *testing.T) {
	store := memory.NewConsultationStore()
	repo := NewConsultationRepository(store, cache.NewConsultationsCache(60, false))
	ctx := context.Background()

	list, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := repo.Create(ctx, validRequest())
	require.NoError(t, err)

	list, err = repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.UpdateStatus(ctx, created.ID, models.StatusScheduled))

	list, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, list[0].Status)
}

// stallingDataSource holds its first List call after reading, so a write can
// land between the read and the cache fill.
type stallingDataSource struct {
	*memory.ConsultationStore

	once    sync.Once
	listed  chan struct{}
	release chan struct{}
}

func newStallingDataSource() *stallingDataSource {
	return &stallingDataSource{
		ConsultationStore: memory.NewConsultationStore(),
		listed:            make(chan struct{}),
		release:           make(chan struct{}),
	}
}

func (s *stallingDataSource) List(ctx context.Context) ([]*models.Consultation, error) {
	list, err := s.ConsultationStore.List(ctx)
	s.once.Do(func() {
		close(s.listed)
		<-s.release
	})
	return list, err
}

func TestConsultationRepository_WriteDuringListingIsNotMasked(t *testing.T) {
	ds := newStallingDataSource()
	repo := NewConsultationRepository(ds, cache.NewConsultationsCache(60, false))
	ctx := context.Background()

	type result struct {
		list []*models.Consultation
		err  error
	}
	inFlight := make(chan result, 1)
	go func() {
		list, err := repo.GetAll(ctx)
		inFlight <- result{list, err}
	}()

	select {
	case <-ds.listed:
	case <-time.After(5 * time.Second):
		t.Fatal("listing never reached the data source")
	}

	_, err := repo.Create(ctx, validRequest())
	require.NoError(t, err)
	close(ds.release)

	stale := <-inFlight
	require.NoError(t, stale.err)
	assert.Empty(t, stale.list)

	list, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestConsultationRepository_UpdateStatusNotFound(t *testing.T) {
	repo := NewConsultationRepository(memory.NewConsultationStore(), nil)

	err := repo.UpdateStatus(context.Background(), 7, models.StatusContacted)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConsultationRepository_CreateErrorKeepsCache(t *testing.T) {
	ds := new(mockDataSource)
	ctx := context.Background()
	req := validRequest()
	ds.On("List", ctx).Return([]*models.Consultation{{ID: 1}}, nil).Once()
	ds.On("Save", ctx, req).Return(nil, errors.New("disk full")).Once()

	repo := NewConsultationRepository(ds, cache.NewConsultationsCache(60, false))
	_, _ = repo.GetAll(ctx)

	_, err := repo.Create(ctx, req)
	require.Error(t, err)

	list, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	ds.AssertExpectations(t)
}

func TestNewConsultationDataSource_MemoryOutsideDevelopment(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{AppEnv: "production", GinMode: "release"}}

	ds, err := NewConsultationDataSource(context.Background(), cfg)
	require.NoError(t, err)
	defer ds.Close()

	assert.Equal(t, "memory", ds.Backend())
}

func TestNewConsultationDataSource_SQLiteInDevelopment(t *testing.T) {
	cfg := &config.Config{
		Server:   config.ServerConfig{AppEnv: "development"},
		Database: config.DatabaseConfig{SQLitePath: filepath.Join(t.TempDir(), "data", "consultations.db")},
	}

	ds, err := NewConsultationDataSource(context.Background(), cfg)
	require.NoError(t, err)
	defer ds.Close()

	assert.Equal(t, "sqlite", ds.Backend())
	require.NoError(t, ds.Initialize(context.Background()))
}
