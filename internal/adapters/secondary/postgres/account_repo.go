package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"crackdetect-service/internal/core/domain"
	"crackdetect-service/internal/core/ports/output"
)

type accountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) ports.AccountRepository {
	return &accountRepo{pool: pool}
}

func (r *accountRepo) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts
			(id, email, password_hash, subscription_tier, api_calls_used, api_calls_limit, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := r.pool.Exec(ctx, query,
		account.ID, account.Email, account.PasswordHash,
		string(account.Tier), account.APICallsUsed, account.APICallsLimit,
		account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *accountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, email, password_hash, subscription_tier,
			   api_calls_used, api_calls_limit, created_at
		FROM accounts
		WHERE id = $1
	`
	a, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT id, email, password_hash, subscription_tier,
			   api_calls_used, api_calls_limit, created_at
		FROM accounts
		WHERE email = $1
	`
	a, err := scanAccount(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

// ReserveCall is the quota gate. The conditional UPDATE checks and
// increments in one statement, so two concurrent submissions against an
// account with one call left can never both pass.
func (r *accountRepo) ReserveCall(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET api_calls_used = api_calls_used + 1
		WHERE id = $1 AND api_calls_used < api_calls_limit
	`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("reserve api call: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("reserve api call: %w", err)
	}
	if !exists {
		return domain.ErrAccountNotFound
	}
	return domain.ErrQuotaExceeded
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var tier string
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &tier,
		&a.APICallsUsed, &a.APICallsLimit, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Tier = domain.SubscriptionTier(tier)
	return &a, nil
}
