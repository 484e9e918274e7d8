package repository

import (
	"context"
	"sync"

	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"go.uber.org/zap"
)

type consultationsCache interface {
	Get() ([]*models.Consultation, bool)
	Set(list []*models.Consultation)
	Invalidate()
}

// ConsultationRepository is the typed facade over the selected data source.
// It caches the admin listing and drops the cache on every write.
type ConsultationRepository struct {
	dataSource ConsultationDataSource
	cache      consultationsCache

	// generation is bumped on every invalidation so a listing read before a
	// write is never stored after that write dropped the cache.
	cacheMu    sync.Mutex
	generation uint64
}

// NewConsultationRepository creates a repository. cache may be nil.
func NewConsultationRepository(dataSource ConsultationDataSource, cache consultationsCache) *ConsultationRepository {
	return &ConsultationRepository{dataSource: dataSource, cache: cache}
}

func (r *ConsultationRepository) Backend() string {
	return r.dataSource.Backend()
}

func (r *ConsultationRepository) Initialize(ctx context.Context) error {
	return r.dataSource.Initialize(ctx)
}

// Create persists a submission.
func (r *ConsultationRepository) Create(ctx context.Context, req *models.ConsultationRequest) (*models.Consultation, error) {
	consultation, err := r.dataSource.Save(ctx, req)
	if err != nil {
		return nil, err
	}
	r.invalidate()
	return consultation, nil
}

// GetAll returns every consultation newest first.
func (r *ConsultationRepository) GetAll(ctx context.Context) ([]*models.Consultation, error) {
	if r.cache != nil {
		if list, found := r.cache.Get(); found {
			logger.Debug("Consultations cache hit", zap.Int("count", len(list)))
			return list, nil
		}
	}

	generation := r.currentGeneration()

	list, err := r.dataSource.List(ctx)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cacheMu.Lock()
		if r.generation == generation {
			r.cache.Set(list)
		} else {
			logger.Debug("Consultations changed during listing, skipping cache")
		}
		r.cacheMu.Unlock()
	}
	return list, nil
}

// UpdateStatus changes the status of a stored consultation.
func (r *ConsultationRepository) UpdateStatus(ctx context.Context, id int64, status models.ConsultationStatus) error {
	if err := r.dataSource.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

func (r *ConsultationRepository) currentGeneration() uint64 {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	return r.generation
}

func (r *ConsultationRepository) invalidate() {
	if r.cache == nil {
		return
	}
	r.cacheMu.Lock()
	r.generation++
	r.cache.Invalidate()
	r.cacheMu.Unlock()
}
