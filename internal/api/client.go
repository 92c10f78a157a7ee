// Package api is the typed HTTP client for the life-assistant backend.
//
// The wrapper performs a single request, never retries, and never interprets
// HTTP status codes: the application-level success signal is the status field
// embedded in every response envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lifeassistant/internal/log"
)

// Failure taxonomy. Every request error wraps exactly one of these.
var (
	// ErrTransport covers network, DNS, TLS and timeout failures.
	ErrTransport = errors.New("transport failure")
	// ErrEmptyBody is a completed request whose response carried no payload.
	ErrEmptyBody = errors.New("empty response body")
	// ErrDecode is a payload that does not match the expected schema.
	ErrDecode = errors.New("response decode failure")
	// ErrAPI is a decoded envelope whose status reports failure.
	ErrAPI = errors.New("backend reported failure")
)

// StatusError is the envelope status value that signals application-level
// failure regardless of the HTTP status code.
const StatusError = "error"

// APIError carries the backend's message for an application-level failure.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "backend reported failure"
	}
	return "backend reported failure: " + e.Message
}

func (e *APIError) Is(target error) bool { return target == ErrAPI }

// Envelope is embedded in every response shape. A missing status field
// decodes to "" and counts as success; only the literal "error" fails.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Err returns an *APIError when the envelope reports failure.
func (e Envelope) Err() error {
	if e.Status == StatusError {
		return &APIError{Message: e.Message}
	}
	return nil
}

// Client issues JSON requests against a single backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.WithComponent(log.ComponentAPI),
	}
}

// Do performs one request and decodes the response body into T.
// The four failure classes stay distinct through errors.Is.
func Do[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (T, error) {
	var zero T

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return zero, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Request failed",
			log.FieldMethod, method,
			log.FieldEndpoint, path,
			log.FieldError, err.Error())
		return zero, fmt.Errorf("%s %s: %w: %v", method, path, ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w: %v", method, path, ErrTransport, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return zero, fmt.Errorf("%s %s: %w", method, path, ErrEmptyBody)
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("%s %s: %w: %v", method, path, ErrDecode, err)
	}

	c.logger.DebugContext(ctx, "Request completed",
		log.FieldMethod, method,
		log.FieldEndpoint, path,
		log.FieldDuration, time.Since(start).Milliseconds())
	return out, nil
}
