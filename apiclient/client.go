package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout bounds a request when no timeout option is given.
	DefaultTimeout = 15 * time.Second

	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	maxBodyBytes = 1 << 20
)

// Client is a JSON REST client for the portal backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        zerolog.Logger
}

// Option defines a function type to modify the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client, e.g. with one whose transport
// attaches a bearer token.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Zero or negative values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOption adjusts a single outgoing request.
type RequestOption func(*http.Request)

// WithBearer sets the Authorization header of one request.
func WithBearer(token string) RequestOption {
	return func(r *http.Request) {
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// Post sends body as JSON and decodes a 2xx response into out (which may be nil).
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Get decodes a 2xx response into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Do performs a request. A request that never produced a response returns a
// *TransportError; a non-2xx response returns an *HTTPError; a 2xx body that cannot be
// decoded into out returns a *DecodeError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.Do] marshal request")
		}
		bodyReader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return errors.Wrap(err, "[Client.Do] create request")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	start := time.Now()
	c.log.Debug().Str("method", method).Str("url", url).Str("request_id", requestID).Msg("HTTP request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("request_id", requestID).Msg("HTTP request failed")
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: errors.Wrap(err, "read response")}
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Dur("elapsed", time.Since(start)).
		Msg("HTTP response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{
			Method:    method,
			Path:      path,
			Status:    resp.StatusCode,
			Body:      respBody,
			RequestID: requestID,
		}
		if resp.Request != nil {
			httpErr.Authorization = resp.Request.Header.Get("Authorization")
		} else {
			httpErr.Authorization = req.Header.Get("Authorization")
		}
		return httpErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		if out != nil {
			return &DecodeError{Status: resp.StatusCode, Err: errors.New("empty response body")}
		}
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Status: resp.StatusCode, Err: err}
	}
	return nil
}

// TransportError means no HTTP response was received (DNS, refused connection,
// timeout, cancellation).
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the request ran out of time.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// HTTPError is a non-2xx response.
type HTTPError struct {
	Method    string
	Path      string
	Status    int
	Body      []byte
	RequestID string

	// Authorization is the Authorization header the rejected request carried, if any.
	Authorization string
}

func (e *HTTPError) Error() string {
	if d := e.Detail(); d != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, d)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Status)
}

// ErrorBody is the error payload the backend sends with 4xx responses.
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
	Error  string `json:"error"`
}

// Parsed decodes the error payload. Unknown or non-JSON bodies yield a zero ErrorBody.
func (e *HTTPError) Parsed() ErrorBody {
	var b ErrorBody
	_ = json.Unmarshal(e.Body, &b)
	return b
}

// Detail returns the most useful human-readable text in the body.
func (e *HTTPError) Detail() string {
	b := e.Parsed()
	switch {
	case b.Detail != "":
		return b.Detail
	case b.Error != "":
		return b.Error
	}
	return ""
}

// Code returns the machine-readable error code in the body, if any.
func (e *HTTPError) Code() string {
	return e.Parsed().Code
}

// DecodeError is a 2xx response whose body does not have the expected shape.
type DecodeError struct {
	Status int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode HTTP %d response: %v", e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
