package apiclient

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

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/partygames/truthordare/internal/observability"
)

// APIPrefix is the versioned path every endpoint lives under.
const APIPrefix = "/api/v1"

const defaultTimeout = 30 * time.Second

type Request struct {
	Method       string
	Endpoint     string
	Query        url.Values
	Body         any
	RequiresAuth bool
}

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Transport defaults to http.DefaultTransport. It is always wrapped
	// with otelhttp.
	Transport http.RoundTripper
}

// Client is the request pipeline shared by every service. Authenticated
// requests carry the current access token as-is; refreshing it is the
// caller's job.
type Client struct {
	base       string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	userAgent  string
	logger     *slog.Logger
}

func New(opts Options, tokens oauth2.TokenSource, logger *slog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q: %w", opts.BaseURL, ErrInvalidURL)
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base: base + APIPrefix,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		tokens:    tokens,
		userAgent: opts.UserAgent,
		logger:    logger,
	}, nil
}

// Do sends r and decodes a 2xx JSON body into out. A nil out means only the
// status code matters. Every returned error is an Error.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	start := time.Now()
	ctx, span := observability.Tracer().Start(ctx, "api "+r.Method+" "+r.Endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("api.endpoint", r.Endpoint),
			attribute.Bool("api.requires_auth", r.RequiresAuth),
		),
	)
	defer span.End()

	err := c.do(ctx, r, out)
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
		span.SetStatus(codes.Error, outcome)
	}
	observability.RecordAPIRequest(ctx, r.Method, r.Endpoint, outcome, time.Since(start))
	return err
}

func (c *Client) do(ctx context.Context, r Request, out any) error {
	target, err := c.buildURL(r.Endpoint, r.Query)
	if err != nil {
		return ErrInvalidURL
	}

	var token *oauth2.Token
	if r.RequiresAuth {
		if c.tokens == nil {
			return ErrUnauthorized
		}
		token, err = c.tokens.Token()
		if err != nil || token == nil || token.AccessToken == "" {
			return ErrUnauthorized
		}
	}

	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			c.logger.Debug("encode request body failed", "endpoint", r.Endpoint, "error", err)
			return ErrEncodingFailure
		}
		body = bytes.NewReader(payload)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return ErrInvalidURL
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != nil {
		token.SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", method, "path", r.Endpoint, "request_id", requestID, "error", err)
		return NetworkFailure(networkDetail(err))
	}
	if resp == nil {
		return ErrInvalidResponse
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("api request",
		"method", method,
		"path", r.Endpoint,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if classified, ok := Classify(resp.StatusCode); !ok {
		_, _ = io.Copy(io.Discard, resp.Body)
		return classified
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return NetworkFailure(networkDetail(err))
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return ErrNoData
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("decode response failed", "method", method, "path", r.Endpoint, "request_id", requestID, "error", err)
		return ErrDecodingFailure
	}
	return nil
}

func (c *Client) buildURL(endpoint string, query url.Values) (string, error) {
	if !strings.HasPrefix(endpoint, "/") {
		return "", fmt.Errorf("endpoint %q must start with /", endpoint)
	}
	u, err := url.Parse(c.base + endpoint)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("endpoint %q produced a relative url", endpoint)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func networkDetail(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}

// Send is Do with a typed result.
func Send[T any](ctx context.Context, c *Client, r Request) (T, error) {
	var out T
	if err := c.Do(ctx, r, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
