package dto

import "crackdetect-service/internal/core/domain"

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type AccountResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	SubscriptionTier string `json:"subscription_tier"`
	APICallsUsed     int    `json:"api_calls_used"`
	APICallsLimit    int    `json:"api_calls_limit"`
}

func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:               a.ID.String(),
		Email:            a.Email,
		SubscriptionTier: string(a.Tier),
		APICallsUsed:     a.APICallsUsed,
		APICallsLimit:    a.APICallsLimit,
	}
}
