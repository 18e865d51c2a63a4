package services

import (
	"context"

	"github.com/google/uuid"

	"crackdetect-service/internal/core/domain"
	"crackdetect-service/internal/core/ports/output"
)

const (
	recentPageSize  = 50
	statsWindowDays = 7
)

// DetectionService serves the read side: past results and usage stats.
type DetectionService struct {
	detections ports.DetectionRepository
}

func NewDetectionService(detections ports.DetectionRepository) *DetectionService {
	return &DetectionService{detections: detections}
}

func (s *DetectionService) ListRecent(ctx context.Context, accountID uuid.UUID) ([]*domain.Detection, error) {
	return s.detections.ListByAccount(ctx, accountID, recentPageSize)
}

func (s *DetectionService) Stats(ctx context.Context, accountID uuid.UUID) (*domain.AccountStats, error) {
	return s.detections.Stats(ctx, accountID, statsWindowDays)
}
