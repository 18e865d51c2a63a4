package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"crackdetect-service/internal/core/domain"
	"crackdetect-service/internal/core/ports/output"
)

// Upload is one inbound image as received by the HTTP layer.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SubmissionService runs the detection pipeline: quota gate, store the
// original, invoke the detector, store the annotated result, record the
// outcome. Any failure after an artifact was written deletes the artifacts
// created so far; the quota reservation is never refunded.
type SubmissionService struct {
	accounts      ports.AccountRepository
	detections    ports.DetectionRepository
	store         ports.ArtifactStore
	detector      ports.Detector
	threshold     float64
	detectTimeout time.Duration
}

func NewSubmissionService(
	accounts ports.AccountRepository,
	detections ports.DetectionRepository,
	store ports.ArtifactStore,
	detector ports.Detector,
	threshold float64,
	detectTimeout time.Duration,
) *SubmissionService {
	return &SubmissionService{
		accounts:      accounts,
		detections:    detections,
		store:         store,
		detector:      detector,
		threshold:     threshold,
		detectTimeout: detectTimeout,
	}
}

func (s *SubmissionService) Submit(ctx context.Context, accountID uuid.UUID, upload Upload) (*domain.Detection, error) {
	start := time.Now()

	if !strings.HasPrefix(upload.ContentType, "image/") || len(upload.Data) == 0 {
		return nil, domain.ErrInvalidInput
	}

	// Quota is charged on admission. A submission that fails past this
	// point does not get its call back.
	if err := s.accounts.ReserveCall(ctx, accountID); err != nil {
		return nil, err
	}

	original, err := s.store.Put(ctx, domain.ArtifactOriginal, domain.ArtifactExt(upload.Filename), bytes.NewReader(upload.Data))
	if err != nil {
		return nil, fmt.Errorf("store original: %w", err)
	}

	detectCtx, cancel := context.WithTimeout(ctx, s.detectTimeout)
	defer cancel()
	outcome, err := s.detector.Detect(detectCtx, upload.Data, s.threshold)
	if err != nil {
		s.rollback(ctx, original)
		return nil, err
	}

	result, err := s.store.Put(ctx, domain.ArtifactResult, ".jpg", bytes.NewReader(outcome.AnnotatedImage))
	if err != nil {
		s.rollback(ctx, original)
		return nil, fmt.Errorf("store result: %w", err)
	}

	confidences := make([]float64, 0, len(outcome.Detections))
	for _, box := range outcome.Detections {
		confidences = append(confidences, box.Confidence)
	}

	detection := &domain.Detection{
		ID:             uuid.New(),
		AccountID:      accountID,
		Filename:       original.Filename(),
		Original:       original,
		Result:         result,
		CrackCount:     len(outcome.Detections),
		Confidences:    confidences,
		ProcessingTime: time.Since(start).Seconds(),
		CreatedAt:      time.Now(),
	}
	if err := s.detections.Create(ctx, detection); err != nil {
		s.rollback(ctx, result, original)
		return nil, fmt.Errorf("record detection: %w", err)
	}

	log.WithFields(log.Fields{
		"account_id":  accountID,
		"detection":   detection.ID,
		"crack_count": detection.CrackCount,
		"elapsed_ms":  time.Since(start).Milliseconds(),
	}).Info("submission completed")

	return detection, nil
}

// rollback removes artifacts left behind by a failed submission. Deletions
// are best-effort; a failure here is logged and never replaces the
// pipeline error already on its way to the caller.
func (s *SubmissionService) rollback(ctx context.Context, refs ...domain.ArtifactRef) {
	for _, ref := range refs {
		if err := s.store.Delete(ctx, ref); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"kind":        ref.Kind,
				"artifact_id": ref.ID,
			}).Warn("rollback delete failed")
		}
	}
}
