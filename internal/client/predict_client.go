// Package client calls the inference API on behalf of the dashboard.
package client

import (
	"bytes"
	"churn-service/internal/api/handler/dto"
	"churn-service/internal/domain/customer"
	"churn-service/internal/pkg/apperrors"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the inference API.
type APIError struct {
	StatusCode int
	Detail     dto.ErrorDetail
}

func (e *APIError) Error() string {
	if e.Detail.Field != "" {
		return fmt.Sprintf("prediction API returned %d: %s (field %s)", e.StatusCode, e.Detail.Message, e.Detail.Field)
	}
	return fmt.Sprintf("prediction API returned %d: %s", e.StatusCode, e.Detail.Message)
}

// PredictClient posts customer records to /predict. It never retries.
type PredictClient struct {
	baseURL string
	client  *http.Client
}

func NewPredictClient(baseURL string, timeout time.Duration) *PredictClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &PredictClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *PredictClient) Predict(ctx context.Context, rec customer.Record) (*dto.PredictResponse, error) {
	url := c.baseURL + "/predict"
	body, err := json.Marshal(dto.NewPredictRequest(rec))
	if err != nil {
		return nil, fmt.Errorf("encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &apperrors.ConnectivityError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody dto.ErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error.Message != "" {
			apiErr.Detail = errBody.Error
		} else {
			apiErr.Detail.Message = strings.TrimSpace(string(raw))
			if apiErr.Detail.Message == "" {
				apiErr.Detail.Message = resp.Status
			}
		}
		return nil, apiErr
	}

	var result dto.PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}
	return &result, nil
}
