package domain

import "errors"

// ============================================================================
// Auth Errors
// ============================================================================

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("missing or invalid token")
)

// ============================================================================
// Submission Pipeline Errors
// ============================================================================

var (
	ErrInvalidInput     = errors.New("file must be an image")
	ErrQuotaExceeded    = errors.New("api call limit exceeded")
	ErrInvalidImage     = errors.New("image could not be decoded")
	ErrModelUnavailable = errors.New("detection model unavailable")
)

// ============================================================================
// Artifact Errors
// ============================================================================

var (
	ErrArtifactNotFound = errors.New("artifact not found")
)
