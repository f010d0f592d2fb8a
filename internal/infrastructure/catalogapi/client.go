package catalogapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ERPlora/module-inventory/internal/domain/shared"
	"github.com/ERPlora/module-inventory/internal/infrastructure/logger"
	"github.com/ERPlora/module-inventory/internal/infrastructure/telemetry"
)

const (
	tracerName = "github.com/ERPlora/module-inventory/catalogapi"

	defaultTimeout      = 15 * time.Second
	defaultRetryWait    = 500 * time.Millisecond
	defaultMaxRetryWait = 10 * time.Second
	defaultUserAgent    = "catalogctl/1.0"

	// RequestIDHeader carries the per-request correlation id
	RequestIDHeader = "X-Request-ID"
)

// Config configures the catalog client
type Config struct {
	// BaseURL is the module API root, e.g. http://localhost:8000/m/inventory/api
	BaseURL string
	Timeout time.Duration
	// Retries is the number of extra attempts for reads (default: 0)
	Retries      int
	RetryWait    time.Duration
	MaxRetryWait time.Duration
	UserAgent    string
	// Tokens supplies the anti-forgery token; defaults to the csrftoken cookie
	Tokens TokenSource
	// Jar holds the session cookies; a fresh jar is created when nil
	Jar http.CookieJar
	// Transport overrides the HTTP transport, mostly for tests
	Transport http.RoundTripper
	Logger    *zap.Logger
	Metrics   *telemetry.ConsoleMetrics
}

// Client talks to the catalog endpoints
type Client struct {
	httpClient   *http.Client
	baseURL      *url.URL
	retries      int
	retryWait    time.Duration
	maxRetryWait time.Duration
	userAgent    string
	tokens       TokenSource
	logger       *zap.Logger
	metrics      *telemetry.ConsoleMetrics
	tracer       trace.Tracer
}

// NewClient creates a catalog client
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme %q", base.Scheme)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = defaultRetryWait
	}
	if cfg.MaxRetryWait <= 0 {
		cfg.MaxRetryWait = defaultMaxRetryWait
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	jar := cfg.Jar
	if jar == nil {
		jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
	}

	tokens := cfg.Tokens
	if tokens == nil {
		tokens = CookieToken{Jar: jar, URL: base, Name: DefaultCSRFCookie}
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	return &Client{
		httpClient: &http.Client{
			// injects the trace context and records one client span per attempt
			Transport: otelhttp.NewTransport(transport),
			Timeout:   cfg.Timeout,
			Jar:       jar,
		},
		baseURL:      base,
		retries:      cfg.Retries,
		retryWait:    cfg.RetryWait,
		maxRetryWait: cfg.MaxRetryWait,
		userAgent:    cfg.UserAgent,
		tokens:       tokens,
		logger:       log,
		metrics:      cfg.Metrics,
		tracer:       otel.Tracer(tracerName),
	}, nil
}

// BaseURL returns the API root
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Jar returns the cookie jar shared by all requests
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// request describes a single endpoint call
type request struct {
	endpoint    string // metric and span label
	method      string
	path        string
	query       map[string]string
	body        []byte
	contentType string
	// sink receives a 2xx body instead of it being buffered
	sink io.Writer
}

func (r request) mutating() bool {
	return r.method != http.MethodGet && r.method != http.MethodHead
}

type response struct {
	status  int
	body    []byte
	written int64
}

// do executes req. Only reads are retried, and only on transport errors,
// 5xx and 429 replies.
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	var token string
	if req.mutating() {
		token = c.tokens.Token()
		if token == "" {
			logger.For(ctx, c.logger).Warn("Anti-forgery token missing, request not sent",
				zap.String("endpoint", req.endpoint))
			return nil, shared.ErrMissingToken
		}
	}

	u := c.buildURL(req.path, req.query)

	requestID := logger.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = logger.WithRequestID(ctx, requestID)
	}

	ctx, span := c.tracer.Start(ctx, "catalogapi."+req.endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(req.method),
			semconv.URLFull(u.String()),
			telemetry.AttrEndpoint.String(req.endpoint),
		))
	defer span.End()

	log := logger.For(ctx, c.logger)

	attempts := 1
	if !req.mutating() {
		attempts += c.retries
	}

	var (
		resp    *response
		lastErr error
	)
retry:
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			log.Debug("Retrying request",
				zap.String("endpoint", req.endpoint),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				break retry
			case <-time.After(delay):
			}
		}

		resp, lastErr = c.attempt(ctx, req, u, requestID, token)
		if !shouldRetry(resp, lastErr) || ctx.Err() != nil {
			break
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, lastErr.Error())
		log.Warn("Catalog request failed",
			zap.String("endpoint", req.endpoint),
			zap.String("method", req.method),
			zap.Error(lastErr))
		return nil, shared.WrapDomainError(shared.CodeNetwork, "Could not reach the catalog server", lastErr)
	}

	span.SetAttributes(semconv.HTTPResponseStatusCode(resp.status))
	if resp.status < 200 || resp.status > 299 {
		err := statusError(resp.status, resp.body)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("Catalog request rejected",
			zap.String("endpoint", req.endpoint),
			zap.String("method", req.method),
			zap.Int("status", resp.status),
			zap.Error(err))
		return nil, err
	}

	log.Debug("Catalog request completed",
		zap.String("endpoint", req.endpoint),
		zap.String("method", req.method),
		zap.Int("status", resp.status))
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, req request, u *url.URL, requestID, token string) (*response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Requested-With", "XMLHttpRequest")
	httpReq.Header.Set(RequestIDHeader, requestID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if token != "" {
		httpReq.Header.Set(CSRFHeader, token)
		// Django checks the referer on HTTPS
		httpReq.Header.Set("Referer", c.baseURL.String()+"/")
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.RecordAPICall(ctx, req.endpoint, req.method, 0, time.Since(start))
		return nil, err
	}
	defer httpResp.Body.Close()

	resp := &response{status: httpResp.StatusCode}
	if req.sink != nil && httpResp.StatusCode >= 200 && httpResp.StatusCode <= 299 {
		resp.written, err = io.Copy(req.sink, httpResp.Body)
		if err != nil {
			err = fmt.Errorf("reading response body: %w", err)
		}
	} else {
		resp.body, err = io.ReadAll(httpResp.Body)
		if err != nil {
			err = fmt.Errorf("reading response body: %w", err)
		}
	}
	c.metrics.RecordAPICall(ctx, req.endpoint, req.method, httpResp.StatusCode, time.Since(start))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func shouldRetry(resp *response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	return resp.status >= 500 || resp.status == http.StatusTooManyRequests
}

// buildURL resolves path below the API root
func (c *Client) buildURL(path string, query map[string]string) *url.URL {
	u := c.baseURL.JoinPath(strings.Trim(path, "/"))
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u
}

// backoff returns the delay before the given retry attempt, with ±25% jitter
func (c *Client) backoff(attempt int) time.Duration {
	delay := float64(c.retryWait) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.maxRetryWait) {
		delay = float64(c.maxRetryWait)
	}
	jitter := delay * 0.25
	delay += (rand.Float64()*2 - 1) * jitter
	return time.Duration(delay)
}
