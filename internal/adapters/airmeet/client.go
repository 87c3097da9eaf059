package airmeet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api-gateway.airmeet.com/prod"

	defaultPageSize = 100
	defaultTokenTTL = 24 * time.Hour
	// maxBodyBytes bounds how much of a response is read into memory.
	maxBodyBytes = 4 << 20
)

// HTTPError is a non-2xx response from the Airmeet API.
type HTTPError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("airmeet %s %s failed with status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		MaxElapsedTime:  time.Minute,
	}
}

// Adapter implements ports.AirmeetClient over the Airmeet REST API.
type Adapter struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
	secretKey  string
	limiter    *rate.Limiter
	retry      RetryConfig
	pageSize   int
	tokenTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

type Option func(*Adapter)

func WithBaseURL(baseURL string) Option {
	return func(a *Adapter) { a.baseURL = strings.TrimSuffix(baseURL, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.httpClient = c }
}

// WithRateLimit paces outgoing requests from this process to perMinute.
func WithRateLimit(perMinute int) Option {
	return func(a *Adapter) {
		if perMinute > 0 {
			a.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

func WithRetryConfig(cfg RetryConfig) Option {
	return func(a *Adapter) { a.retry = cfg }
}

func WithPageSize(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.pageSize = n
		}
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(a *Adapter) { a.tokenTTL = ttl }
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

func NewAdapter(accessKey, secretKey string, opts ...Option) *Adapter {
	a := &Adapter{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		accessKey:  accessKey,
		secretKey:  secretKey,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		retry:      DefaultRetryConfig(),
		pageSize:   defaultPageSize,
		tokenTTL:   defaultTokenTTL,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// do sends one request, retrying transport errors and retryable statuses
// with exponential backoff, and decodes a 2xx JSON body into out.
func (a *Adapter) do(ctx context.Context, method, path string, query url.Values, header http.Header, out any) error {
	fullURL := a.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	operation := func() error {
		if err := a.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		for key, values := range header {
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}

		resp, err := a.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode >= 300 {
			httpErr := &HTTPError{
				StatusCode: resp.StatusCode,
				Method:     method,
				URL:        a.baseURL + path,
				Body:       string(body),
			}
			if isRetryableStatus(resp.StatusCode) {
				a.logger.Warn("retryable airmeet response",
					zap.String("method", method),
					zap.String("path", path),
					zap.Int("status", resp.StatusCode),
				)
				return httpErr
			}
			return backoff.Permanent(httpErr)
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode %s response: %w", path, err))
		}
		return nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = a.retry.InitialInterval
	expBackoff.MaxInterval = a.retry.MaxInterval
	expBackoff.MaxElapsedTime = a.retry.MaxElapsedTime

	var policy backoff.BackOff = expBackoff
	if a.retry.MaxRetries >= 0 {
		policy = backoff.WithMaxRetries(expBackoff, uint64(a.retry.MaxRetries))
	}

	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}

// doAuthed is do with the access token attached. A 401 drops the cached
// token and tries once more with a fresh one.
func (a *Adapter) doAuthed(ctx context.Context, method, path string, query url.Values, out any) error {
	for attempt := 0; ; attempt++ {
		token, err := a.accessToken(ctx)
		if err != nil {
			return err
		}

		header := http.Header{}
		header.Set("X-Airmeet-Access-Token", token)

		err = a.do(ctx, method, path, query, header, out)

		var httpErr *HTTPError
		if attempt == 0 && errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized {
			a.invalidateToken(token)
			continue
		}
		return err
	}
}
