package cloudsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single round trip to the remote endpoint.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response is read.
const maxBodySize = 32 << 20

// Endpoint errors.
var (
	ErrRemoteStatus = errors.New("remote endpoint reported failure")
	ErrInvalidURL   = errors.New("invalid sync endpoint URL")
)

// Endpoint is a remote budget snapshot store.
type Endpoint interface {
	Fetch(ctx context.Context) (*Document, error)
	Send(ctx context.Context, doc *Document) error
}

// HTTPEndpoint talks to a single web-app URL: GET returns the snapshot and
// POST replaces it.
type HTTPEndpoint struct {
	httpClient *http.Client
	logger     *slog.Logger
	url        string
}

// HTTPOption configures an HTTPEndpoint.
type HTTPOption func(*HTTPEndpoint)

// WithHTTPClient replaces the default client. Its timeout is left as given.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(e *HTTPEndpoint) { e.httpClient = client }
}

// WithEndpointLogger sets the logger.
func WithEndpointLogger(logger *slog.Logger) HTTPOption {
	return func(e *HTTPEndpoint) { e.logger = logger }
}

// NewHTTPEndpoint creates an endpoint for rawURL. A non-positive timeout
// uses DefaultTimeout.
func NewHTTPEndpoint(rawURL string, timeout time.Duration, opts ...HTTPOption) (*HTTPEndpoint, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	e := &HTTPEndpoint{
		url:        rawURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// URL returns the endpoint address.
func (e *HTTPEndpoint) URL() string {
	return e.url
}

// Fetch retrieves the remote snapshot.
func (e *HTTPEndpoint) Fetch(ctx context.Context) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := e.do(req)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	e.logger.Debug("fetched snapshot",
		"expenses", len(doc.Expenses),
		"income", len(doc.Income),
		"categories", len(doc.Categories),
		"skipped", doc.Skipped)
	return &doc, nil
}

// Send replaces the remote snapshot with doc.
func (e *HTTPEndpoint) Send(ctx context.Context, doc *Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := e.do(req); err != nil {
		return err
	}

	e.logger.Debug("sent snapshot", "bytes", len(payload))
	return nil
}

// do executes req and returns the body of a successful response.
func (e *HTTPEndpoint) do(req *http.Request) ([]byte, error) {
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d - %s", ErrRemoteStatus, resp.StatusCode, snippet(body))
	}

	if msg, failed := statusFailure(body); failed {
		return nil, fmt.Errorf("%w: %s", ErrRemoteStatus, msg)
	}
	return body, nil
}

// statusFailure detects the {"status":"error"} acknowledgement that web apps
// return alongside a 200.
func statusFailure(body []byte) (string, bool) {
	var ack struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &ack); err != nil {
		return "", false
	}
	if !strings.EqualFold(ack.Status, "error") {
		return "", false
	}
	switch {
	case ack.Message != "":
		return ack.Message, true
	case ack.Error != "":
		return ack.Error, true
	default:
		return "status error", true
	}
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
