package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crackdetect-service/internal/core/domain"
)

func TestClient_Detect(t *testing.T) {
	annotated := []byte("annotated jpeg")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)

		assert.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "0.5", r.FormValue("confidence"))
		_, _, err := r.FormFile("file")
		assert.NoError(t, err)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"detections": []map[string]interface{}{
				{"x": 10, "y": 20, "width": 30, "height": 40, "confidence": 0.9},
				{"x": 1, "y": 2, "width": 3, "height": 4, "confidence": 0.7},
			},
			"annotated_image": base64.StdEncoding.EncodeToString(annotated),
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	outcome, err := client.Detect(context.Background(), []byte("image"), 0.5)
	assert.NoError(t, err)
	assert.Equal(t, annotated, outcome.AnnotatedImage)
	assert.Len(t, outcome.Detections, 2)
	// Order is the model's order, not sorted by confidence.
	assert.Equal(t, 0.9, outcome.Detections[0].Confidence)
	assert.Equal(t, 10, outcome.Detections[0].X)
	assert.Equal(t, 0.7, outcome.Detections[1].Confidence)
}

func TestClient_Detect_FiltersBelowThreshold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"detections": []map[string]interface{}{
				{"confidence": 0.9},
				{"confidence": 0.3},
			},
			"annotated_image": base64.StdEncoding.EncodeToString([]byte("a")),
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	outcome, err := client.Detect(context.Background(), []byte("image"), 0.5)
	assert.NoError(t, err)
	assert.Len(t, outcome.Detections, 1)
	assert.Equal(t, 0.9, outcome.Detections[0].Confidence)
}

func TestClient_Detect_InvalidImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "cannot decode image", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Detect(context.Background(), []byte("not an image"), 0.5)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestClient_Detect_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Detect(context.Background(), []byte("image"), 0.5)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestClient_Detect_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Detect(context.Background(), []byte("image"), 0.5)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestClient_CheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	assert.NoError(t, client.CheckHealth(context.Background()))
}

func TestClient_CheckHealth_NotReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	assert.ErrorIs(t, client.CheckHealth(context.Background()), domain.ErrModelUnavailable)
}
