// Package api is the HTTP client for the donation backend. It speaks JSON
// (multipart for register and profile edits), sends the bearer credential
// supplied by a TokenSource and keeps the backend's HTTP-only refresh cookie
// in a cookie jar. It never retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "donasi/internal/errors"
)

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderIdempotencyKey = "Idempotency-Key"

	maxResponseBytes = 4 << 20
)

// TokenSource supplies the current access credential; empty means none.
type TokenSource interface {
	AccessToken() string
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	tokens     TokenSource
	logger     zerolog.Logger
}

type Option func(*Client)

// WithTransport replaces the HTTP transport, e.g. with an in-process backend.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// WithTokenSource sets where the bearer credential comes from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: base,
		jar:     jar,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		logger: logger.With().Str("component", "api").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetTokenSource wires the credential provider after construction, since the
// session manager itself depends on the client.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// Cookies returns the cookies the backend has set for its base URL.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// SetCookies restores previously persisted cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.jar.SetCookies(c.baseURL, cookies)
}

// ClearCookies expires every cookie held for the backend.
func (c *Client) ClearCookies() {
	existing := c.jar.Cookies(c.baseURL)
	expired := make([]*http.Cookie, 0, len(existing))
	for _, ck := range existing {
		expired = append(expired, &http.Cookie{Name: ck.Name, Value: "", Path: "/", MaxAge: -1})
	}
	c.jar.SetCookies(c.baseURL, expired)
}

type requestOptions struct {
	idempotencyKey string
	anonymous      bool
}

type requestOption func(*requestOptions)

func withIdempotencyKey(key string) requestOption {
	return func(o *requestOptions) {
		o.idempotencyKey = key
	}
}

func anonymous() requestOption {
	return func(o *requestOptions) {
		o.anonymous = true
	}
}

// makeRequest sends a JSON request and decodes a JSON response into out.
func (c *Client) makeRequest(ctx context.Context, method, endpoint string, body, out interface{}, opts ...requestOption) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	return c.do(ctx, method, endpoint, reader, "application/json", out, opts...)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out interface{}, opts ...requestOption) error {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	fullURL := c.baseURL.String() + endpoint
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if o.idempotencyKey != "" {
		req.Header.Set(HeaderIdempotencyKey, o.idempotencyKey)
	}
	if !o.anonymous && c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := c.logger.With().Str("method", method).Str("endpoint", endpoint).Str("request_id", requestID).Logger()
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("request failed")
		return &apperrors.NetworkError{Op: method + " " + endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &apperrors.NetworkError{Op: "read response", Err: err}
	}

	log.Debug().Int("status", resp.StatusCode).Dur("latency", time.Since(start)).Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeError(resp.StatusCode, respBody)
		log.Info().Int("status", resp.StatusCode).Str("error", apiErr.Error()).Msg("request rejected")
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &apperrors.NetworkError{Op: "decode response", Err: err}
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// decodeError maps a non-2xx response to the error taxonomy. The message is
// taken from "error" first, then "message".
func decodeError(status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	msg := eb.Error
	if msg == "" {
		msg = eb.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &apperrors.AuthError{Status: status, Message: msg}
	}
	return &apperrors.BusinessError{Status: status, Code: eb.Code, Message: msg}
}

// decodeEnvelope accepts both {"<key>": {...}} and a bare object.
func decodeEnvelope[T any](raw json.RawMessage, key string) (*T, error) {
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if inner, ok := wrapped[key]; ok && len(inner) > 0 && string(inner) != "null" {
			var v T
			if err := json.Unmarshal(inner, &v); err != nil {
				return nil, &apperrors.NetworkError{Op: "decode " + key, Err: err}
			}
			return &v, nil
		}
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &apperrors.NetworkError{Op: "decode " + key, Err: err}
	}
	return &v, nil
}
