// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"onboarding-workers/internal/common/errors"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

type Client struct {
	httpClient *http.Client
	baseURL    string
	service    string
}

// NewClient returns a client for one remote service rooted at baseURL.
func NewClient(service, baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		service: service,
	}
}

func (c *Client) Service() string { return c.service }

func (c *Client) BaseURL() string { return c.baseURL }

// DoJSON sends body as JSON to path and decodes a 2xx reply into out (when
// non-nil). Transport failures become SERVICE_UNAVAILABLE ("network error"),
// deadline overruns SERVICE_TIMEOUT, and non-2xx replies
// SERVICE_REQUEST_FAILED carrying the reply's "message" field.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.NewInvalidInputError(fmt.Sprintf("encode request: %v", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || isTimeout(err) {
			return errors.NewServiceTimeoutError(c.service, err)
		}
		return errors.NewServiceUnavailableError(c.service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewServiceRequestFailedError(c.service, resp.StatusCode, errorMessage(resp.Body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return errors.NewServiceRequestFailedError(c.service, resp.StatusCode, fmt.Sprintf("invalid response body: %v", err))
	}
	return nil
}

func errorMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return "Server error"
}

func isTimeout(err error) bool {
	t, ok := err.(interface{ Timeout() bool })
	if ok && t.Timeout() {
		return true
	}
	if u, ok := err.(interface{ Unwrap() error }); ok && u.Unwrap() != nil {
		return isTimeout(u.Unwrap())
	}
	return false
}
