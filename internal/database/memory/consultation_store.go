package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/axioniz/axioniz-api/internal/models"
	apperrors "github.com/axioniz/axioniz-api/pkg/errors"
	"github.com/axioniz/axioniz-api/pkg/metrics"
)

const backendName = "memory"

// ConsultationStore keeps consultations in process memory. Contents are lost
// on restart.
type ConsultationStore struct {
	mu            sync.RWMutex
	consultations []*models.Consultation
	nextID        int64
	now           func() time.Time
}

// NewConsultationStore returns an empty store whose first id is 1.
func NewConsultationStore() *ConsultationStore {
	return NewConsultationStoreWithClock(time.Now)
}

// NewConsultationStoreWithClock is NewConsultationStore with an injectable clock.
func NewConsultationStoreWithClock(now func() time.Time) *ConsultationStore {
	return &ConsultationStore{nextID: 1, now: now}
}

func (s *ConsultationStore) Backend() string { return backendName }

// Initialize is a no-op; the store is ready on construction.
func (s *ConsultationStore) Initialize(ctx context.Context) error {
	return nil
}

func (s *ConsultationStore) Save(ctx context.Context, req *models.ConsultationRequest) (*models.Consultation, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		metrics.RecordDBOperation(backendName, "save", "error", metrics.MeasureDuration(start))
		return nil, err
	}

	s.mu.Lock()
	now := s.now().UTC()
	c := &models.Consultation{
		ID:          s.nextID,
		Services:    append(models.ServiceList{}, req.Services...),
		Date:        req.Date,
		Time:        req.Time,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		Message:     req.Message,
		GDPRConsent: req.GDPRConsent,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.nextID++
	s.consultations = append(s.consultations, c)
	s.mu.Unlock()

	metrics.RecordDBOperation(backendName, "save", "success", metrics.MeasureDuration(start))
	return c.Clone(), nil
}

// List returns copies ordered newest first; ties on CreatedAt go to the higher id.
func (s *ConsultationStore) List(ctx context.Context) ([]*models.Consultation, error) {
	start := time.Now()

	s.mu.RLock()
	out := make([]*models.Consultation, 0, len(s.consultations))
	for i := len(s.consultations) - 1; i >= 0; i-- {
		out = append(out, s.consultations[i].Clone())
	}
	s.mu.RUnlock()

	// Insertion order already matches id order; a stable sort handles a clock
	// that moved backwards.
	sortNewestFirst(out)

	metrics.RecordDBOperation(backendName, "list", "success", metrics.MeasureDuration(start))
	return out, nil
}

func (s *ConsultationStore) UpdateStatus(ctx context.Context, id int64, status models.ConsultationStatus) error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.consultations {
		if c.ID == id {
			c.Status = status
			c.UpdatedAt = s.now().UTC()
			metrics.RecordDBOperation(backendName, "update_status", "success", metrics.MeasureDuration(start))
			return nil
		}
	}

	metrics.RecordDBOperation(backendName, "update_status", "not_found", metrics.MeasureDuration(start))
	return apperrors.NotFoundError("consultation")
}

func (s *ConsultationStore) Close() error {
	return nil
}

func sortNewestFirst(list []*models.Consultation) {
	sort.SliceStable(list, func(i, j int) bool { return newer(list[i], list[j]) })
}

func newer(a, b *models.Consultation) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
