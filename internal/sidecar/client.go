package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tasknotify/internal/config"
	"tasknotify/internal/constants"
	"tasknotify/internal/logger"
	"tasknotify/pkg/errors"
)

// Client is the shared HTTP core behind the four substrate adapters.
type Client struct {
	baseURL      string
	logger       logger.Logger
	httpClient   *http.Client
	invokeClient *http.Client
}

func NewClient(cfg config.SidecarConfig, log logger.Logger) *Client {
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = constants.PublishTimeout
	}
	invokeTimeout := cfg.InvokeTimeout
	if invokeTimeout <= 0 {
		invokeTimeout = constants.InvokeTimeout
	}

	return &Client{
		baseURL:      cfg.BaseURL,
		logger:       log,
		httpClient:   &http.Client{Timeout: requestTimeout},
		invokeClient: &http.Client{Timeout: invokeTimeout},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) HealthURL() string {
	return c.baseURL + "/healthz"
}

func (c *Client) do(ctx context.Context, client *http.Client, method, url string, body interface{}, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, errors.ErrValidation.WithCause(fmt.Errorf("failed to encode request body: %w", err)).AsFatal()
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, errors.ErrValidation.WithCause(err).AsFatal()
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, errors.ErrServiceUnavailable.WithCause(err).AsRetryable()
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.ErrServiceUnavailable.WithCause(err).AsRetryable()
	}

	return resp.StatusCode, respBody, nil
}

// classifyStatus maps a non-2xx substrate response to a coded error. Server
// errors are retryable, client errors are not.
func classifyStatus(status int, respBody []byte) error {
	if status >= constants.HTTPStatusOKMin && status < constants.HTTPStatusOKMax {
		return nil
	}
	if status == http.StatusNotFound {
		return errors.ErrNotFound.AsFatal()
	}
	if status >= 500 {
		return errors.ErrServiceUnavailable.
			WithDetail("status", status).
			WithCause(fmt.Errorf("substrate returned %d: %s", status, truncate(respBody))).
			AsRetryable()
	}
	return errors.ErrValidation.
		WithDetail("status", status).
		WithCause(fmt.Errorf("substrate returned %d: %s", status, truncate(respBody))).
		AsFatal()
}

func truncate(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
