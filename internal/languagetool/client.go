package languagetool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"writing_coach/internal/cache"
	"writing_coach/internal/chunk"
	"writing_coach/internal/issue"
	"writing_coach/internal/metrics"
	"writing_coach/internal/segment"
)

const (
	FreeEndpoint    = "https://api.languagetool.org/v2/check"
	PremiumEndpoint = "https://api.languagetoolplus.com/v2/check"
	maxSuggestions  = 5
)

// ErrUnavailable means every attempt against the service failed.
var ErrUnavailable = errors.New("grammar service unavailable")

type Config struct {
	Enabled       bool          `yaml:"enabled"`
	Endpoint      string        `yaml:"endpoint" validate:"omitempty,url"`
	APIKey        string        `yaml:"api_key"`
	Username      string        `yaml:"username"`
	Language      string        `yaml:"language" validate:"required"`
	MaxAttempts   int           `yaml:"max_attempts" validate:"gte=1,lte=10"`
	BackoffBase   time.Duration `yaml:"backoff_base"`
	Multiplier    float64       `yaml:"multiplier" validate:"gte=1"`
	MaxBackoff    time.Duration `yaml:"max_backoff"`
	MinInterval   time.Duration `yaml:"min_interval"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxChunkBytes int           `yaml:"max_chunk_bytes" validate:"eq=0|gte=1000"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		Language:      "en-US",
		MaxAttempts:   3,
		BackoffBase:   2 * time.Second,
		Multiplier:    2.0,
		MaxBackoff:    30 * time.Second,
		MinInterval:   3 * time.Second,
		Timeout:       20 * time.Second,
		MaxChunkBytes: 20000,
	}
}

// Premium reports whether requests carry elevated-access credentials.
func (c Config) Premium() bool { return strings.TrimSpace(c.APIKey) != "" }

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }
func WithCache(store cache.Cache) Option    { return func(c *Client) { c.cache = store } }
func WithLogger(l *slog.Logger) Option      { return func(c *Client) { c.logger = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(c *Client) { c.metrics = m } }

// Client is the remote grammar checker. It never returns an error from Check;
// callers that need to tell "nothing found" from "not checked" use Analyze.
type Client struct {
	cfg      Config
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	cache    cache.Cache
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func New(cfg Config, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = def.Multiplier
	}
	if cfg.Language == "" {
		cfg.Language = def.Language
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	c := &Client{cfg: cfg, endpoint: cfg.Endpoint}
	if c.endpoint == "" {
		c.endpoint = FreeEndpoint
		if cfg.Premium() {
			c.endpoint = PremiumEndpoint
		}
	}
	// Without credentials calls are spaced by MinInterval. Waiters queue on the
	// limiter instead of being rejected.
	if !cfg.Premium() && cfg.MinInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *Client) Source() issue.Source { return issue.SourceLanguageTool }

// Check returns the service's findings for text, or an empty list when the
// service cannot be reached within the retry budget.
func (c *Client) Check(ctx context.Context, text, language string) []issue.Issue {
	issues, _ := c.check(ctx, text, language)
	return issues
}

// Analyze checks text in the configured language. A non-nil error means some
// or all of the text could not be checked; the returned issues are still valid.
func (c *Client) Analyze(ctx context.Context, text string, _ segment.Segmentation) ([]issue.Issue, error) {
	return c.check(ctx, text, c.cfg.Language)
}

func (c *Client) check(ctx context.Context, text, language string) ([]issue.Issue, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if language == "" {
		language = c.cfg.Language
	}
	var out []issue.Issue
	var errs []error
	for _, w := range chunk.Windows(text, c.cfg.MaxChunkBytes) {
		matches, err := c.checkWindow(ctx, w.Text, language)
		if err != nil {
			errs = append(errs, fmt.Errorf("window %d: %w", w.Index, err))
			continue
		}
		out = append(out, toIssues(w, matches)...)
	}
	issue.Sort(out)
	return out, errors.Join(errs...)
}

func (c *Client) checkWindow(ctx context.Context, text, language string) ([]Match, error) {
	key := cache.Key(language, text)
	if c.cache != nil {
		if raw, ok := c.cache.Get(ctx, key); ok {
			var cached []Match
			if err := json.Unmarshal(raw, &cached); err == nil {
				c.metrics.ServiceRequest("cached")
				return cached, nil
			}
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("wait for rate limit: %w", err)
			}
		}
		matches, err := c.request(ctx, text, language)
		if err == nil {
			c.metrics.ServiceRequest("ok")
			if c.cache != nil {
				if raw, mErr := json.Marshal(matches); mErr == nil {
					c.cache.Set(ctx, key, raw)
				}
			}
			return matches, nil
		}
		c.metrics.ServiceRequest("error")
		lastErr = err
		if ctx.Err() != nil || !retryable(err) || attempt == c.cfg.MaxAttempts {
			break
		}
		wait := c.backoff(attempt)
		c.logger.WarnContext(ctx, "grammar check failed, retrying",
			"stage", "languagetool", "attempt", attempt, "backoff", wait, "error", err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		case <-time.After(wait):
		}
	}
	c.logger.WarnContext(ctx, "grammar check gave up", "stage", "languagetool", "error", lastErr)
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

func (c *Client) backoff(attempt int) time.Duration {
	d := time.Duration(float64(c.cfg.BackoffBase) * math.Pow(c.cfg.Multiplier, float64(attempt-1)))
	if c.cfg.MaxBackoff > 0 && d > c.cfg.MaxBackoff {
		d = c.cfg.MaxBackoff
	}
	return d
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.body)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	var de *decodeError
	return !errors.As(err, &de)
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func (c *Client) request(ctx context.Context, text, language string) ([]Match, error) {
	vals := url.Values{}
	vals.Set("language", language)
	vals.Set("text", text)
	if c.cfg.Premium() {
		vals.Set("apiKey", c.cfg.APIKey)
		if c.cfg.Username != "" {
			vals.Set("username", c.cfg.Username)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(vals.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post check: %w", err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		return nil, &statusError{code: resp.StatusCode, body: snippet}
	}
	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &decodeError{err: err}
	}
	return parsed.Matches, nil
}
