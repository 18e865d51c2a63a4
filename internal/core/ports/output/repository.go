package ports

import (
	"context"

	"github.com/google/uuid"

	"crackdetect-service/internal/core/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// ReserveCall atomically increments the account's used-call counter,
	// failing with domain.ErrQuotaExceeded when no calls remain. A granted
	// reservation is never refunded.
	ReserveCall(ctx context.Context, id uuid.UUID) error
}

type DetectionRepository interface {
	Create(ctx context.Context, detection *domain.Detection) error
	// ListByAccount returns at most limit records, newest first.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*domain.Detection, error)
	// Stats aggregates totals plus per-day counts for the trailing window.
	Stats(ctx context.Context, accountID uuid.UUID, days int) (*domain.AccountStats, error)
}
