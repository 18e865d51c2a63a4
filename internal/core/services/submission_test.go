package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"crackdetect-service/internal/adapters/secondary/filestore"
	"crackdetect-service/internal/core/domain"
	"crackdetect-service/internal/testutil"
)

func validUpload() Upload {
	return Upload{
		Filename:    "wall.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg bytes"),
	}
}

func newSubmissionMocks() (*testutil.MockAccountRepo, *testutil.MockDetectionRepo, *testutil.MockArtifactStore, *testutil.MockDetector, *SubmissionService) {
	accounts := new(testutil.MockAccountRepo)
	detections := new(testutil.MockDetectionRepo)
	store := new(testutil.MockArtifactStore)
	detector := new(testutil.MockDetector)
	svc := NewSubmissionService(accounts, detections, store, detector, 0.5, time.Minute)
	return accounts, detections, store, detector, svc
}

func TestSubmit_Success(t *testing.T) {
	accounts, detections, store, detector, svc := newSubmissionMocks()

	accountID := uuid.New()
	originalRef := domain.ArtifactRef{Kind: domain.ArtifactOriginal, ID: uuid.New(), Ext: ".jpg"}
	resultRef := domain.ArtifactRef{Kind: domain.ArtifactResult, ID: uuid.New(), Ext: ".jpg"}
	outcome := &domain.DetectionOutcome{
		Detections: []domain.Box{
			{X: 1, Y: 2, Width: 3, Height: 4, Confidence: 0.9},
			{X: 5, Y: 6, Width: 7, Height: 8, Confidence: 0.7},
			{X: 9, Y: 10, Width: 11, Height: 12, Confidence: 0.55},
		},
		AnnotatedImage: []byte("annotated"),
	}

	accounts.On("ReserveCall", mock.Anything, accountID).Return(nil)
	store.On("Put", mock.Anything, domain.ArtifactOriginal, ".jpg", mock.Anything).Return(originalRef, nil)
	detector.On("Detect", mock.Anything, mock.Anything, 0.5).Return(outcome, nil)
	store.On("Put", mock.Anything, domain.ArtifactResult, ".jpg", mock.Anything).Return(resultRef, nil)
	detections.On("Create", mock.Anything, mock.AnythingOfType("*domain.Detection")).Return(nil)

	detection, err := svc.Submit(context.Background(), accountID, validUpload())
	assert.NoError(t, err)
	assert.Equal(t, 3, detection.CrackCount)
	assert.Equal(t, []float64{0.9, 0.7, 0.55}, detection.Confidences)
	assert.Len(t, detection.Confidences, detection.CrackCount)
	assert.Equal(t, originalRef, detection.Original)
	assert.Equal(t, resultRef, detection.Result)
	assert.Equal(t, originalRef.Filename(), detection.Filename)
	assert.GreaterOrEqual(t, detection.ProcessingTime, 0.0)

	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	accounts.AssertExpectations(t)
	detections.AssertExpectations(t)
}

func TestSubmit_NonImageContentType(t *testing.T) {
	accounts, _, store, detector, svc := newSubmissionMocks()

	upload := validUpload()
	upload.ContentType = "application/pdf"

	_, err := svc.Submit(context.Background(), uuid.New(), upload)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Rejected before any side effect, quota included.
	accounts.AssertNotCalled(t, "ReserveCall", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	detector.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_QuotaExceeded(t *testing.T) {
	accounts, _, store, detector, svc := newSubmissionMocks()

	accountID := uuid.New()
	accounts.On("ReserveCall", mock.Anything, accountID).Return(domain.ErrQuotaExceeded)

	_, err := svc.Submit(context.Background(), accountID, validUpload())
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	detector.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_DetectorFailureRollsBackOriginal(t *testing.T) {
	accounts, detections, store, detector, svc := newSubmissionMocks()

	accountID := uuid.New()
	originalRef := domain.ArtifactRef{Kind: domain.ArtifactOriginal, ID: uuid.New(), Ext: ".jpg"}

	accounts.On("ReserveCall", mock.Anything, accountID).Return(nil)
	store.On("Put", mock.Anything, domain.ArtifactOriginal, ".jpg", mock.Anything).Return(originalRef, nil)
	detector.On("Detect", mock.Anything, mock.Anything, 0.5).Return(nil, domain.ErrInvalidImage)
	store.On("Delete", mock.Anything, originalRef).Return(nil)

	_, err := svc.Submit(context.Background(), accountID, validUpload())
	assert.ErrorIs(t, err, domain.ErrInvalidImage)

	store.AssertCalled(t, "Delete", mock.Anything, originalRef)
	detections.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_ResultStoreFailureRollsBackOriginal(t *testing.T) {
	accounts, detections, store, detector, svc := newSubmissionMocks()

	accountID := uuid.New()
	originalRef := domain.ArtifactRef{Kind: domain.ArtifactOriginal, ID: uuid.New(), Ext: ".jpg"}
	outcome := &domain.DetectionOutcome{AnnotatedImage: []byte("annotated")}

	accounts.On("ReserveCall", mock.Anything, accountID).Return(nil)
	store.On("Put", mock.Anything, domain.ArtifactOriginal, ".jpg", mock.Anything).Return(originalRef, nil)
	detector.On("Detect", mock.Anything, mock.Anything, 0.5).Return(outcome, nil)
	store.On("Put", mock.Anything, domain.ArtifactResult, ".jpg", mock.Anything).Return(domain.ArtifactRef{}, errors.New("disk full"))
	store.On("Delete", mock.Anything, originalRef).Return(nil)

	_, err := svc.Submit(context.Background(), accountID, validUpload())
	assert.Error(t, err)

	store.AssertCalled(t, "Delete", mock.Anything, originalRef)
	detections.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_RecordFailureRollsBackBothArtifacts(t *testing.T) {
	accounts, detections, store, detector, svc := newSubmissionMocks()

	accountID := uuid.New()
	originalRef := domain.ArtifactRef{Kind: domain.ArtifactOriginal, ID: uuid.New(), Ext: ".jpg"}
	resultRef := domain.ArtifactRef{Kind: domain.ArtifactResult, ID: uuid.New(), Ext: ".jpg"}
	outcome := &domain.DetectionOutcome{AnnotatedImage: []byte("annotated")}

	accounts.On("ReserveCall", mock.Anything, accountID).Return(nil)
	store.On("Put", mock.Anything, domain.ArtifactOriginal, ".jpg", mock.Anything).Return(originalRef, nil)
	detector.On("Detect", mock.Anything, mock.Anything, 0.5).Return(outcome, nil)
	store.On("Put", mock.Anything, domain.ArtifactResult, ".jpg", mock.Anything).Return(resultRef, nil)
	detections.On("Create", mock.Anything, mock.AnythingOfType("*domain.Detection")).Return(errors.New("db down"))
	store.On("Delete", mock.Anything, resultRef).Return(nil)
	store.On("Delete", mock.Anything, originalRef).Return(nil)

	_, err := svc.Submit(context.Background(), accountID, validUpload())
	assert.Error(t, err)

	store.AssertCalled(t, "Delete", mock.Anything, resultRef)
	store.AssertCalled(t, "Delete", mock.Anything, originalRef)
}

func TestSubmit_RollbackDeleteFailureKeepsPrimaryError(t *testing.T) {
	accounts, _, store, detector, svc := newSubmissionMocks()

	accountID := uuid.New()
	originalRef := domain.ArtifactRef{Kind: domain.ArtifactOriginal, ID: uuid.New(), Ext: ".jpg"}

	accounts.On("ReserveCall", mock.Anything, accountID).Return(nil)
	store.On("Put", mock.Anything, domain.ArtifactOriginal, ".jpg", mock.Anything).Return(originalRef, nil)
	detector.On("Detect", mock.Anything, mock.Anything, 0.5).Return(nil, domain.ErrModelUnavailable)
	store.On("Delete", mock.Anything, originalRef).Return(errors.New("unlink failed"))

	_, err := svc.Submit(context.Background(), accountID, validUpload())
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

// fakeQuotaRepo is an in-memory AccountRepository whose ReserveCall is the
// same check-and-increment the SQL adapter performs, guarded by a mutex.
type fakeQuotaRepo struct {
	mu      sync.Mutex
	account *domain.Account
}

func (f *fakeQuotaRepo) Create(ctx context.Context, account *domain.Account) error { return nil }

func (f *fakeQuotaRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return f.account, nil
}

func (f *fakeQuotaRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return f.account, nil
}

func (f *fakeQuotaRepo) ReserveCall(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.account.APICallsUsed >= f.account.APICallsLimit {
		return domain.ErrQuotaExceeded
	}
	f.account.APICallsUsed++
	return nil
}

type stubDetector struct{}

func (stubDetector) Detect(ctx context.Context, image []byte, threshold float64) (*domain.DetectionOutcome, error) {
	return &domain.DetectionOutcome{
		Detections:     []domain.Box{{Confidence: 0.9}},
		AnnotatedImage: []byte("annotated"),
	}, nil
}

func TestSubmit_ConcurrentLastCall(t *testing.T) {
	accountID := uuid.New()
	accounts := &fakeQuotaRepo{account: &domain.Account{
		ID:            accountID,
		APICallsUsed:  0,
		APICallsLimit: 1,
	}}

	store, err := filestore.New(t.TempDir())
	assert.NoError(t, err)

	detections := new(testutil.MockDetectionRepo)
	detections.On("Create", mock.Anything, mock.AnythingOfType("*domain.Detection")).Return(nil)

	svc := NewSubmissionService(accounts, detections, store, stubDetector{}, 0.5, time.Minute)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), accountID, validUpload())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var completed, denied int
	for err := range results {
		switch {
		case err == nil:
			completed++
		case errors.Is(err, domain.ErrQuotaExceeded):
			denied++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, denied)
	assert.Equal(t, 1, accounts.account.APICallsUsed)
}
