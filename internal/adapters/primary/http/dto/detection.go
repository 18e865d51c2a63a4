package dto

import (
	"fmt"
	"time"

	"crackdetect-service/internal/core/domain"
)

type DetectionResponse struct {
	ID               string    `json:"id"`
	Filename         string    `json:"filename"`
	CrackCount       int       `json:"crack_count"`
	ConfidenceScores []float64 `json:"confidence_scores"`
	ProcessingTime   float64   `json:"processing_time"`
	CreatedAt        time.Time `json:"created_at"`
	ResultImageURL   string    `json:"result_image_url"`
}

func ToDetectionResponse(d *domain.Detection) DetectionResponse {
	scores := d.Confidences
	if scores == nil {
		scores = []float64{}
	}
	return DetectionResponse{
		ID:               d.ID.String(),
		Filename:         d.Filename,
		CrackCount:       d.CrackCount,
		ConfidenceScores: scores,
		ProcessingTime:   d.ProcessingTime,
		CreatedAt:        d.CreatedAt,
		ResultImageURL:   fmt.Sprintf("/api/images/%s/%s", d.Result.Kind, d.Result.Filename()),
	}
}

type DailyCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type StatsResponse struct {
	TotalDetections int                  `json:"total_detections"`
	TotalCracks     int                  `json:"total_cracks"`
	RecentActivity  []DailyCountResponse `json:"recent_activity"`
}

func ToStatsResponse(s *domain.AccountStats) StatsResponse {
	activity := make([]DailyCountResponse, 0, len(s.RecentActivity))
	for _, day := range s.RecentActivity {
		activity = append(activity, DailyCountResponse{Date: day.Date, Count: day.Count})
	}
	return StatsResponse{
		TotalDetections: s.TotalDetections,
		TotalCracks:     s.TotalCracks,
		RecentActivity:  activity,
	}
}
