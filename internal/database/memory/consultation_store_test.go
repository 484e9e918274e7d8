package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/axioniz/axioniz-api/internal/models"
	apperrors "github.com/axioniz/axioniz-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest(first string) *models.ConsultationRequest {
	return &models.ConsultationRequest{
		Services:  []string{"ai-integration"},
		Date:      "2026-11-02",
		Time:      "10:00 AM",
		FirstName: first,
		LastName:  "Tester",
		Email:     "t@example.com",
		Phone:     "+1234567890",
	}
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestConsultationStore_SaveAssignsSequentialIDs(t *testing.T) {
	s := NewConsultationStore()
	ctx := context.Background()

	first, err := s.Save(ctx, sampleRequest("Ann"))
	require.NoError(t, err)
	second, err := s.Save(ctx, sampleRequest("Bob"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, models.StatusPending, first.Status)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)
}

func TestConsultationStore_ListNewestFirst(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	s := NewConsultationStoreWithClock(clock.now)
	ctx := context.Background()

	_, _ = s.Save(ctx, sampleRequest("Ann"))
	clock.t = clock.t.Add(time.Minute)
	_, _ = s.Save(ctx, sampleRequest("Bob"))
	_, _ = s.Save(ctx, sampleRequest("Cat")) // same instant as Bob

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Cat", "Bob", "Ann"}, []string{list[0].FirstName, list[1].FirstName, list[2].FirstName})
}

func TestConsultationStore_ListReturnsCopies(t *testing.T) {
	s := NewConsultationStore()
	ctx := context.Background()
	_, _ = s.Save(ctx, sampleRequest("Ann"))

	list, _ := s.List(ctx)
	list[0].Status = models.StatusCompleted
	list[0].Services[0] = "customer-support"

	again, _ := s.List(ctx)
	assert.Equal(t, models.StatusPending, again[0].Status)
	assert.Equal(t, "ai-integration", again[0].Services[0])
}

func TestConsultationStore_UpdateStatus(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	s := NewConsultationStoreWithClock(clock.now)
	ctx := context.Background()
	saved, _ := s.Save(ctx, sampleRequest("Ann"))

	clock.t = clock.t.Add(time.Hour)
	require.NoError(t, s.UpdateStatus(ctx, saved.ID, models.StatusContacted))

	list, _ := s.List(ctx)
	assert.Equal(t, models.StatusContacted, list[0].Status)
	assert.True(t, list[0].UpdatedAt.After(list[0].CreatedAt))
}

func TestConsultationStore_UpdateStatusUnknownID(t *testing.T) {
	s := NewConsultationStore()

	err := s.UpdateStatus(context.Background(), 99, models.StatusContacted)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConsultationStore_ConcurrentSavesGetDistinctIDs(t *testing.T) {
	s := NewConsultationStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.Save(ctx, sampleRequest("Ann"))
			if err == nil {
				ids <- c.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 50)
}

func TestConsultationStore_InitializeIsIdempotent(t *testing.T) {
	s := NewConsultationStore()
	require.NoError(t, s.Initialize(context.Background()))
	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, "memory", s.Backend())
}
