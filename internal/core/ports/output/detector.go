package ports

import (
	"context"

	"crackdetect-service/internal/core/domain"
)

// Detector wraps the external object-detection model. Detect is a pure
// function of its inputs plus model state; it never persists anything.
// Failure modes: domain.ErrInvalidImage for undecodable input,
// domain.ErrModelUnavailable when the model cannot serve the request.
type Detector interface {
	Detect(ctx context.Context, image []byte, threshold float64) (*domain.DetectionOutcome, error)
}
