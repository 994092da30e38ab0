// Package client calls the /api/predict endpoint of a running classifier.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a whole request round trip.
const DefaultTimeout = 15 * time.Second

// ErrBadRequest is returned when the server rejects the request body.
var ErrBadRequest = errors.New("bad request")

type PredictRequest struct {
	Text string `json:"text"`
}

type PredictResponse struct {
	Classification  string  `json:"classification"`
	ConfidenceScore float64 `json:"confidenceScore"`
}

type errorBody struct {
	Error string `json:"error"`
}

// APIError carries a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrBadRequest && e.StatusCode == http.StatusBadRequest
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL. A non-positive timeout uses
// DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Predict classifies one text.
func (c *Client) Predict(ctx context.Context, text string) (*PredictResponse, error) {
	body, err := json.Marshal(PredictRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		}
		return nil, apiErr
	}

	var result PredictResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
