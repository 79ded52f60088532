package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mkravets/ArtPeak/internal/pkg/env"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
)

const defaultTimeout = 15 * time.Second

// Scores is the category distribution returned by the primary classifier.
// The values come from a softmax over {safe, violence, nudity, gore}.
type Scores struct {
	Safe     float64 `json:"safe"`
	Violence float64 `json:"violence"`
	Nudity   float64 `json:"nudity"`
	Gore     float64 `json:"gore"`
}

// AdultResult is the optional specialized classifier's verdict.
type AdultResult struct {
	Confidence float64 `json:"confidence"`
	// Available is false when the specialized endpoint could not be reached;
	// callers treat the confidence as 0 in that case.
	Available bool `json:"-"`
}

// Service is the external image classification capability. The primary
// classifier is mandatory; the adult classifier degrades gracefully.
type Service interface {
	Classify(ctx context.Context, image []byte) (*Scores, error)
	ClassifyAdult(ctx context.Context, image []byte) AdultResult
}

// Client talks to the classification service over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a client from CLASSIFIER_URL, with the same timeout the
// rest of our outbound HTTP uses.
func NewClient() *Client {
	return &Client{
		BaseURL: env.GetEnv("CLASSIFIER_URL", "http://localhost:8090"),
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Classify runs the primary category classifier. Any failure here is a hard
// failure: moderation fails closed on it.
func (c *Client) Classify(ctx context.Context, image []byte) (*Scores, error) {
	var scores Scores
	if err := c.post(ctx, "/v1/classify", image, &scores); err != nil {
		return nil, fmt.Errorf("%w: %v", reason.ErrClassificationUnavailable, err)
	}
	return &scores, nil
}

// ClassifyAdult runs the specialized adult-content classifier. Unavailability
// is not an error; the result just reports Available=false.
func (c *Client) ClassifyAdult(ctx context.Context, image []byte) AdultResult {
	var result AdultResult
	if err := c.post(ctx, "/v1/classify-adult", image, &result); err != nil {
		return AdultResult{Confidence: 0, Available: false}
	}
	result.Available = true
	return result
}

func (c *Client) post(ctx context.Context, path string, image []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(image))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
