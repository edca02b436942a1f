package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/SammyBolger/NBA-Analytics/internal/models"
)

var (
	// ErrUnauthorized is matched by errors.Is for any 401 from the feed.
	ErrUnauthorized = errors.New("feed rejected credentials")
	// ErrFeedUnavailable is returned while the circuit breaker is open.
	ErrFeedUnavailable = errors.New("feed unavailable")
)

// APIError is a non-2xx answer from the feed.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("feed returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("feed returned status %d: %s", e.StatusCode, e.Detail)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// FeedOptions configures a FeedClient.
type FeedOptions struct {
	BaseURL          string
	APIKey           string
	Timeout          time.Duration
	RequestsPerSec   float64
	BreakerThreshold int
}

// FeedClient talks to the upstream games and model service.
type FeedClient struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	logger      *logrus.Logger
}

func NewFeedClient(opts FeedOptions, logger *logrus.Logger) *FeedClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerSec > 0 {
		limit = rate.Limit(opts.RequestsPerSec)
	}
	threshold := opts.BreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "feed",
		MaxRequests: uint32(threshold),
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// Client errors say nothing about the feed's health.
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &FeedClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		rateLimiter: rate.NewLimiter(limit, 1),
		breaker:     breaker,
		logger:      logger,
	}
}

// BreakerState reports the circuit breaker state for /api/status.
func (c *FeedClient) BreakerState() string {
	return c.breaker.State().String()
}

// TodayGames fetches the games of the current basketball day.
func (c *FeedClient) TodayGames(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	if err := c.do(ctx, http.MethodGet, "/api/games/today", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// Calendar fetches every known game grouped by date.
func (c *FeedClient) Calendar(ctx context.Context) (models.CalendarResponse, error) {
	var resp models.CalendarResponse
	if err := c.do(ctx, http.MethodGet, "/api/games/calendar", nil, &resp); err != nil {
		return models.CalendarResponse{}, err
	}
	if resp.Dates == nil {
		resp.Dates = map[string][]models.Game{}
	}
	return resp, nil
}

// ModelOdds fetches the merged game and prediction records.
func (c *FeedClient) ModelOdds(ctx context.Context) ([]models.ModelOdds, error) {
	var records []models.ModelOdds
	if err := c.do(ctx, http.MethodGet, "/api/model-odds", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ModelHealth fetches the per-model metrics.
func (c *FeedClient) ModelHealth(ctx context.Context) (models.ModelHealth, error) {
	var health models.ModelHealth
	if err := c.do(ctx, http.MethodGet, "/api/model/health", nil, &health); err != nil {
		return models.ModelHealth{}, err
	}
	return health, nil
}

// Retrain triggers retraining and returns the provider's answer untouched.
func (c *FeedClient) Retrain(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/model/retrain", struct{}{}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *FeedClient) do(ctx context.Context, method, path string, body, dest interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, body, dest)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	return err
}

func (c *FeedClient) roundTrip(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"component": "feed",
		"method":    method,
		"path":      path,
		"status":    resp.StatusCode,
		"latency":   time.Since(start),
	}).Debug("Feed request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && (body.Detail != "" || body.Error != "") {
		apiErr.Detail = body.Detail
		if apiErr.Detail == "" {
			apiErr.Detail = body.Error
		}
		return apiErr
	}
	apiErr.Detail = strings.TrimSpace(string(data))
	return apiErr
}
