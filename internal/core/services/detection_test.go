package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"crackdetect-service/internal/core/domain"
	"crackdetect-service/internal/testutil"
)

func TestDetectionService_ListRecent(t *testing.T) {
	repo := new(testutil.MockDetectionRepo)
	svc := NewDetectionService(repo)

	accountID := uuid.New()
	now := time.Now()
	records := []*domain.Detection{
		{ID: uuid.New(), AccountID: accountID, CreatedAt: now},
		{ID: uuid.New(), AccountID: accountID, CreatedAt: now.Add(-time.Hour)},
	}
	repo.On("ListByAccount", mock.Anything, accountID, 50).Return(records, nil)

	result, err := svc.ListRecent(context.Background(), accountID)
	assert.NoError(t, err)
	assert.Len(t, result, 2)
	for i := 1; i < len(result); i++ {
		assert.False(t, result[i].CreatedAt.After(result[i-1].CreatedAt))
	}
	repo.AssertExpectations(t)
}

func TestDetectionService_Stats(t *testing.T) {
	repo := new(testutil.MockDetectionRepo)
	svc := NewDetectionService(repo)

	accountID := uuid.New()
	stats := &domain.AccountStats{
		TotalDetections: 4,
		TotalCracks:     11,
		RecentActivity:  []domain.DailyCount{{Date: "2026-08-27", Count: 3}, {Date: "2026-08-28", Count: 1}},
	}
	repo.On("Stats", mock.Anything, accountID, 7).Return(stats, nil)

	result, err := svc.Stats(context.Background(), accountID)
	assert.NoError(t, err)
	assert.Equal(t, 4, result.TotalDetections)
	assert.Equal(t, 11, result.TotalCracks)
	assert.Len(t, result.RecentActivity, 2)
	repo.AssertExpectations(t)
}
