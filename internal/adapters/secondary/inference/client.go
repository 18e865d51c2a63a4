package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"crackdetect-service/internal/core/domain"
	"crackdetect-service/internal/core/ports/output"
)

// Client talks to the crack-detection model server over HTTP. The model
// runs out of process; this adapter only moves bytes and maps failures
// onto the domain error taxonomy.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ ports.Detector = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

type predictResponse struct {
	Detections []struct {
		X          int     `json:"x"`
		Y          int     `json:"y"`
		Width      int     `json:"width"`
		Height     int     `json:"height"`
		Confidence float64 `json:"confidence"`
	} `json:"detections"`
	AnnotatedImage string `json:"annotated_image"`
}

func (c *Client) Detect(ctx context.Context, image []byte, threshold float64) (*domain.DetectionOutcome, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write image data: %w", err)
	}
	if err := writer.WriteField("confidence", strconv.FormatFloat(threshold, 'f', -1, 64)); err != nil {
		return nil, fmt.Errorf("write confidence field: %w", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", body)
	if err != nil {
		return nil, fmt.Errorf("create inference request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, domain.ErrInvalidImage
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", domain.ErrModelUnavailable, resp.StatusCode)
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}

	annotated, err := base64.StdEncoding.DecodeString(pr.AnnotatedImage)
	if err != nil {
		return nil, fmt.Errorf("decode annotated image: %w", err)
	}

	// The server already filters by the confidence field; filter again in
	// case it ignores it.
	outcome := &domain.DetectionOutcome{
		Detections:     make([]domain.Box, 0, len(pr.Detections)),
		AnnotatedImage: annotated,
	}
	for _, det := range pr.Detections {
		if det.Confidence < threshold {
			continue
		}
		outcome.Detections = append(outcome.Detections, domain.Box{
			X:          det.X,
			Y:          det.Y,
			Width:      det.Width,
			Height:     det.Height,
			Confidence: det.Confidence,
		})
	}

	log.WithFields(log.Fields{
		"detections": len(outcome.Detections),
		"threshold":  threshold,
	}).Debug("inference completed")

	return outcome, nil
}

// CheckHealth probes the model server's readiness endpoint.
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrModelUnavailable, resp.StatusCode)
	}
	return nil
}
