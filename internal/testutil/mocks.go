package testutil

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"crackdetect-service/internal/core/domain"
)

// MockAccountRepo is a mock of AccountRepository.
type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepo) ReserveCall(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDetectionRepo is a mock of DetectionRepository.
type MockDetectionRepo struct {
	mock.Mock
}

func (m *MockDetectionRepo) Create(ctx context.Context, detection *domain.Detection) error {
	args := m.Called(ctx, detection)
	return args.Error(0)
}

func (m *MockDetectionRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*domain.Detection, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Detection), args.Error(1)
}

func (m *MockDetectionRepo) Stats(ctx context.Context, accountID uuid.UUID, days int) (*domain.AccountStats, error) {
	args := m.Called(ctx, accountID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountStats), args.Error(1)
}

// MockArtifactStore is a mock of ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Put(ctx context.Context, kind domain.ArtifactKind, ext string, r io.Reader) (domain.ArtifactRef, error) {
	args := m.Called(ctx, kind, ext, r)
	return args.Get(0).(domain.ArtifactRef), args.Error(1)
}

func (m *MockArtifactStore) Delete(ctx context.Context, ref domain.ArtifactRef) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockArtifactStore) Open(ctx context.Context, ref domain.ArtifactRef) (io.ReadCloser, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockDetector is a mock of Detector.
type MockDetector struct {
	mock.Mock
}

func (m *MockDetector) Detect(ctx context.Context, image []byte, threshold float64) (*domain.DetectionOutcome, error) {
	args := m.Called(ctx, image, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DetectionOutcome), args.Error(1)
}
