package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crackdetect-service/internal/core/domain"
	"crackdetect-service/internal/core/ports/output"
)

type detectionRepo struct {
	pool *pgxpool.Pool
}

func NewDetectionRepository(pool *pgxpool.Pool) ports.DetectionRepository {
	return &detectionRepo{pool: pool}
}

func (r *detectionRepo) Create(ctx context.Context, detection *domain.Detection) error {
	scoresJSON, err := json.Marshal(detection.Confidences)
	if err != nil {
		return fmt.Errorf("marshal confidence scores: %w", err)
	}

	query := `
		INSERT INTO detections
			(id, account_id, filename, original_id, original_ext,
			 result_id, result_ext, crack_count, confidence_scores,
			 processing_time, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err = r.pool.Exec(ctx, query,
		detection.ID, detection.AccountID, detection.Filename,
		detection.Original.ID, detection.Original.Ext,
		detection.Result.ID, detection.Result.Ext,
		detection.CrackCount, scoresJSON,
		detection.ProcessingTime, detection.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create detection: %w", err)
	}
	return nil
}

func (r *detectionRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*domain.Detection, error) {
	query := `
		SELECT id, account_id, filename, original_id, original_ext,
			   result_id, result_ext, crack_count, confidence_scores,
			   processing_time, created_at
		FROM detections
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}
	defer rows.Close()

	detections := make([]*domain.Detection, 0, limit)
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		detections = append(detections, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}
	return detections, nil
}

func (r *detectionRepo) Stats(ctx context.Context, accountID uuid.UUID, days int) (*domain.AccountStats, error) {
	stats := &domain.AccountStats{RecentActivity: []domain.DailyCount{}}

	query := `
		SELECT COUNT(*), COALESCE(SUM(crack_count), 0)
		FROM detections
		WHERE account_id = $1
	`
	if err := r.pool.QueryRow(ctx, query, accountID).Scan(&stats.TotalDetections, &stats.TotalCracks); err != nil {
		return nil, fmt.Errorf("detection totals: %w", err)
	}

	query = `
		SELECT created_at::date AS day, COUNT(*)
		FROM detections
		WHERE account_id = $1 AND created_at >= now() - make_interval(days => $2)
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.pool.Query(ctx, query, accountID, days)
	if err != nil {
		return nil, fmt.Errorf("daily detection counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		stats.RecentActivity = append(stats.RecentActivity, domain.DailyCount{
			Date:  day.Format("2006-01-02"),
			Count: count,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily detection counts: %w", err)
	}
	return stats, nil
}

func scanDetection(row pgx.Row) (*domain.Detection, error) {
	var d domain.Detection
	var scoresJSON []byte
	if err := row.Scan(&d.ID, &d.AccountID, &d.Filename,
		&d.Original.ID, &d.Original.Ext,
		&d.Result.ID, &d.Result.Ext,
		&d.CrackCount, &scoresJSON,
		&d.ProcessingTime, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Original.Kind = domain.ArtifactOriginal
	d.Result.Kind = domain.ArtifactResult
	if err := json.Unmarshal(scoresJSON, &d.Confidences); err != nil {
		return nil, fmt.Errorf("unmarshal confidence scores: %w", err)
	}
	return &d, nil
}
