package szgmu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
	"github.com/szgmu-hub/schedule-hub/pkg/circuitbreaker"
	"github.com/szgmu-hub/schedule-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

const (
	findAllPath  = "/api/xlsxSchedule/findAll/0"
	findByIDPath = "/api/xlsxSchedule/findById"

	userAgent = "schedule-hub/1.0"
)

// ClientConfig contains configuration for the scheduling service client.
type ClientConfig struct {
	// BaseURL is the scheduling service base URL
	BaseURL string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// RateLimiterConfig for API rate limiting
	RateLimiterConfig RateLimiterConfig

	// MaxRetries is the number of retry attempts on transient failures
	MaxRetries int

	// RetryBaseDelay and RetryMaxDelay bound the retry backoff
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// Circuit breaker settings
	BreakerFailureThreshold int
	BreakerTimeout          time.Duration
	BreakerHalfOpenMax      int

	// Logger for structured logging
	Logger *slog.Logger

	// Debug enables request logging
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:                 baseURL,
		Timeout:                 15 * time.Second,
		RateLimiterConfig:       DefaultRateLimiterConfig(),
		MaxRetries:              3,
		RetryBaseDelay:          time.Second,
		RetryMaxDelay:           30 * time.Second,
		BreakerFailureThreshold: 5,
		BreakerTimeout:          60 * time.Second,
		BreakerHalfOpenMax:      3,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the scheduling service API client. It implements
// schedule.FeedProvider.
type Client struct {
	config      ClientConfig
	httpClient  *http.Client
	logger      *slog.Logger
	rateLimiter *RateLimiter
	breaker     *circuitbreaker.CircuitBreaker
	retrier     *retry.Retrier
	mapper      *Mapper
}

// NewClient creates a new scheduling service client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:      config.Logger,
		rateLimiter: NewRateLimiter(config.RateLimiterConfig),
		mapper:      NewMapper(),
	}

	c.breaker = circuitbreaker.New(
		"szgmu-api",
		circuitbreaker.WithFailureThreshold(max(config.BreakerFailureThreshold, 1)),
		circuitbreaker.WithTimeout(config.BreakerTimeout),
		circuitbreaker.WithMaxHalfOpenRequests(max(config.BreakerHalfOpenMax, 1)),
		circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
			config.Logger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		}),
	)

	c.retrier = retry.New(
		retry.WithMaxAttempts(max(config.MaxRetries, 0)+1),
		retry.WithInitialDelay(config.RetryBaseDelay),
		retry.WithMaxDelay(config.RetryMaxDelay),
		retry.WithRetryIf(c.isRetryable),
	)

	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// FEED OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// FindScheduleIDs searches for feed ids matching the filter.
// An empty result is not an error: feeds may not be published yet.
func (c *Client) FindScheduleIDs(ctx context.Context, req FindAllRequestDTO) ([]int64, error) {
	var response FindAllResponseDTO
	if err := c.doRequest(ctx, http.MethodPost, findAllPath, req, &response); err != nil {
		return nil, fmt.Errorf("find schedule ids: %w", err)
	}

	ids := make([]int64, 0, len(response.Content))
	for _, summary := range response.Content {
		ids = append(ids, summary.ID)
	}
	return ids, nil
}

// GetSchedule loads one feed with all its lessons.
func (c *Client) GetSchedule(ctx context.Context, scheduleID int64) (*ScheduleDTO, error) {
	path := findByIDPath + "?xlsxScheduleId=" + strconv.FormatInt(scheduleID, 10)

	var response ScheduleDTO
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, fmt.Errorf("get schedule %d: %w", scheduleID, err)
	}
	return &response, nil
}

// FetchFeeds implements schedule.FeedProvider: it searches feed ids by the
// filter, loads every feed, and maps the lessons into raw records. Each inner
// slice holds the records of one feed. Feeds without lessons are skipped.
func (c *Client) FetchFeeds(ctx context.Context, filter schedule.FeedFilter) ([][]schedule.RawRecord, error) {
	ids, err := c.FindScheduleIDs(ctx, c.mapper.FilterToRequest(filter))
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		c.logger.Info("no schedule feeds found", "filter", filter)
		return nil, nil
	}

	feeds := make([][]schedule.RawRecord, 0, len(ids))
	for _, id := range ids {
		dto, err := c.GetSchedule(ctx, id)
		if err != nil {
			return nil, err
		}
		records := c.mapper.RecordsFromSchedule(id, dto)
		if len(records) == 0 {
			c.logger.Warn("schedule feed has no lessons", "schedule_id", id)
			continue
		}
		feeds = append(feeds, records)
	}

	c.logger.Info("fetched schedule feeds", "feeds", len(feeds), "ids", len(ids))
	return feeds, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs an HTTP request with circuit breaking, rate limiting
// and retries.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			if err := c.rateLimiter.Allow(ctx); err != nil {
				return err
			}
			return c.doSingleRequest(ctx, method, path, body, result)
		})
	})
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, method, path string, body any, result any) error {
	fullURL := c.config.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return retry.Permanent(fmt.Errorf("marshal body: %w", err))
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	if c.config.Debug {
		c.logger.Debug("szgmu api request", "method", method, "path", path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.rateLimiter.RecordRateLimitHit()
		retryAfter := 60 * time.Second
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{
			RetryAfter: retryAfter,
			Message:    "rate limit exceeded",
		}
	}

	if resp.StatusCode >= 400 {
		var apiErr APIErrorDTO
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Message != "" {
			apiErr.Status = resp.StatusCode
			return &apiErr
		}
		return &APIErrorDTO{
			Status:  resp.StatusCode,
			Message: http.StatusText(resp.StatusCode),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return retry.Permanent(shared.WrapError("szgmu", "Parse",
				shared.ErrInvalidFormat, "unmarshal response", err))
		}
	}

	return nil
}

// isRetryable checks if an error is worth retrying.
func (c *Client) isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Rate limit responses are retryable after backoff.
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	// Server errors are retryable, client errors are not.
	var apiErr *APIErrorDTO
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}

	// Network errors are generally transient.
	errStr := err.Error()
	for _, token := range []string{"timeout", "connection refused", "temporary", "reset", "EOF"} {
		if strings.Contains(errStr, token) {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH AND STATUS
// ══════════════════════════════════════════════════════════════════════════════

// IsHealthy checks if the scheduling service is reachable. An empty findAll
// search doubles as the health probe: the upstream has no dedicated endpoint.
func (c *Client) IsHealthy(ctx context.Context) bool {
	var response FindAllResponseDTO
	err := c.doSingleRequest(ctx, http.MethodPost, findAllPath, FindAllRequestDTO{
		GroupStream:  []string{},
		Speciality:   []string{},
		CourseNumber: []string{},
		AcademicYear: []string{},
		LessonType:   []string{},
		Semester:     []string{},
	}, &response)
	return err == nil
}

// ClientStatus is a point-in-time snapshot of the client internals.
type ClientStatus struct {
	RateLimiter  RateLimiterStatus
	BreakerState circuitbreaker.State
}

// Status returns the current status of the client.
func (c *Client) Status() ClientStatus {
	return ClientStatus{
		RateLimiter:  c.rateLimiter.Status(),
		BreakerState: c.breaker.State(),
	}
}

// Reset resets the rate limiter and circuit breaker.
func (c *Client) Reset() {
	c.rateLimiter.Reset()
	c.breaker.Reset()
}
