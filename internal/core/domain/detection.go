package domain

import (
	"time"

	"github.com/google/uuid"
)

// Box is a single localized detection returned by the model.
type Box struct {
	X          int
	Y          int
	Width      int
	Height     int
	Confidence float64
}

// DetectionOutcome is the raw result of one model invocation.
type DetectionOutcome struct {
	Detections     []Box
	AnnotatedImage []byte
}

// Detection is the durable record of one completed submission. Immutable
// once created; Confidences preserves the order the model returned the
// boxes in and always has len == CrackCount.
type Detection struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	Filename       string
	Original       ArtifactRef
	Result         ArtifactRef
	CrackCount     int
	Confidences    []float64
	ProcessingTime float64 // seconds, wall time of the whole pipeline
	CreatedAt      time.Time
}

type DailyCount struct {
	Date  string
	Count int
}

type AccountStats struct {
	TotalDetections int
	TotalCracks     int
	RecentActivity  []DailyCount
}
