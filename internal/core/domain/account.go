package domain

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionTier string

const (
	TierFree SubscriptionTier = "free"
	TierPro  SubscriptionTier = "pro"
)

// Default quotas per tier, matching what registration hands out.
const (
	FreeTierCallLimit = 10
	ProTierCallLimit  = 1000
)

// Account holds the per-user API quota counters. APICallsUsed is mutated
// only through AccountRepository.ReserveCall, which enforces
// APICallsUsed <= APICallsLimit atomically.
type Account struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	Tier          SubscriptionTier
	APICallsUsed  int
	APICallsLimit int
	CreatedAt     time.Time
}

func (a *Account) RemainingCalls() int {
	if a.APICallsUsed >= a.APICallsLimit {
		return 0
	}
	return a.APICallsLimit - a.APICallsUsed
}
