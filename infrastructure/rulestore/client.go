// Package rulestore provides the HTTP client for the monitoring
// backend's rule API, with resilience patterns and an optional
// read-through cache.
package rulestore

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

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/checkwise/domain/rule"
	"github.com/felixgeelhaar/checkwise/infrastructure/logging"
)

// Client errors.
var (
	// ErrUnavailable indicates the backend could not be reached or
	// answered with a server error.
	ErrUnavailable = errors.New("rule backend unavailable")

	// ErrRejected indicates the backend rejected the request.
	ErrRejected = errors.New("rule backend rejected the request")

	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("rule backend authorization failed")

	// errNotFound marks 404 responses so call sites can map them to
	// the matching domain error.
	errNotFound = errors.New("rule backend resource not found")
)

// Config configures the rule API client.
type Config struct {
	// BaseURL is the rule API root, e.g. https://monitor.example.com/api.
	BaseURL string

	// Token is the bearer token for authentication (optional).
	Token string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	UserAgent string

	// MaxConcurrent limits in-flight requests. Zero disables the
	// bulkhead.
	MaxConcurrent int

	// BreakerThreshold is the consecutive failure count before the
	// circuit opens. Zero disables the breaker.
	BreakerThreshold int

	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration

	// RetryMaxAttempts is the attempt budget for idempotent requests.
	// Values below two disable retry.
	RetryMaxAttempts int

	// RetryInitialDelay is the first retry delay.
	RetryInitialDelay time.Duration

	// RetryMultiplier is the exponential backoff multiplier.
	RetryMultiplier float64
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:           10 * time.Second,
		UserAgent:         "checkwise-rulestore/1.0",
		MaxConcurrent:     10,
		BreakerThreshold:  5,
		BreakerTimeout:    30 * time.Second,
		RetryMaxAttempts:  3,
		RetryInitialDelay: 100 * time.Millisecond,
		RetryMultiplier:   2.0,
	}
}

// response carries a successful HTTP result through the resilience
// layers.
type response struct {
	status int
	body   []byte
}

// Client talks to the monitoring backend's rule API.
// Requests pass through bulkhead, timeout, circuit breaker and, for
// idempotent methods, retry.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	timeout   time.Duration
	client    *http.Client

	bulkhead bulkhead.Bulkhead[*response]
	breaker  circuitbreaker.CircuitBreaker[*response]
	retrier  retry.Retry[*response]
}

// New creates a rule API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("rulestore: base URL is required")
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("rulestore: invalid base URL %q", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "checkwise-rulestore/1.0"
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		client:    &http.Client{Timeout: cfg.Timeout},
	}

	if cfg.MaxConcurrent > 0 {
		c.bulkhead = bulkhead.New[*response](bulkhead.Config{
			MaxConcurrent: cfg.MaxConcurrent,
		})
	}

	if cfg.BreakerThreshold > 0 {
		threshold := uint32(cfg.BreakerThreshold) // #nosec G115 -- positive checked above
		c.breaker = circuitbreaker.New[*response](circuitbreaker.Config{
			MaxRequests: 10,
			Interval:    cfg.BreakerTimeout,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
		})
	}

	if cfg.RetryMaxAttempts > 1 {
		multiplier := cfg.RetryMultiplier
		if multiplier < 1 {
			multiplier = 2.0
		}
		c.retrier = retry.New[*response](retry.Config{
			MaxAttempts:   cfg.RetryMaxAttempts,
			InitialDelay:  cfg.RetryInitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    multiplier,
			// 4xx answers will not change on retry.
			NonRetryableErrors: []error{ErrRejected, ErrUnauthorized, errNotFound},
		})
	}

	return c, nil
}

// do runs one API call through the resilience layers.
// Composition order: bulkhead, timeout, circuit breaker, retry.
func (c *Client) do(ctx context.Context, method, path string, body []byte, idempotent bool) (*response, error) {
	attempt := func(ctx context.Context) (*response, error) {
		return c.doRequest(ctx, method, path, body)
	}

	run := func(ctx context.Context) (*response, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		exec := attempt
		if c.retrier != nil && idempotent {
			exec = func(ctx context.Context) (*response, error) {
				return c.retrier.Do(ctx, attempt)
			}
		}

		if c.breaker != nil {
			return c.breaker.Execute(ctx, exec)
		}
		return exec(ctx)
	}

	if c.bulkhead != nil {
		return c.bulkhead.Execute(ctx, run)
	}
	return run(ctx)
}

// doRequest performs a single HTTP exchange.
// The request is rebuilt per attempt so retries get a fresh body.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) (*response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return &response{status: resp.StatusCode, body: data}, nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", errNotFound, method, path)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnauthorized, resp.StatusCode, errDetail(detail))
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, errDetail(detail))
	default:
		return nil, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, errDetail(detail))
	}
}

// errDetail extracts the backend's error message when the body is a
// structured API error.
func errDetail(body []byte) string {
	var apiErr struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Title != "" {
		if apiErr.Detail != "" {
			return apiErr.Title + ": " + apiErr.Detail
		}
		return apiErr.Title
	}
	return strings.TrimSpace(string(body))
}

// ListRulesets returns all rulesets known to the backend.
func (c *Client) ListRulesets(ctx context.Context) ([]rule.Ruleset, error) {
	resp, err := c.do(ctx, http.MethodGet, "/rulesets", nil, true)
	if err != nil {
		return nil, err
	}

	var rulesets []rule.Ruleset
	if err := json.Unmarshal(resp.body, &rulesets); err != nil {
		return nil, fmt.Errorf("rulestore: decode rulesets: %w", err)
	}
	return rulesets, nil
}

// GetRuleset retrieves a ruleset by name.
func (c *Client) GetRuleset(ctx context.Context, name string) (*rule.Ruleset, error) {
	if name == "" {
		return nil, rule.ErrRulesetNotFound
	}

	resp, err := c.do(ctx, http.MethodGet, "/rulesets/"+url.PathEscape(name), nil, true)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %s", rule.ErrRulesetNotFound, name)
		}
		return nil, err
	}

	var rs rule.Ruleset
	if err := json.Unmarshal(resp.body, &rs); err != nil {
		return nil, fmt.Errorf("rulestore: decode ruleset: %w", err)
	}
	return &rs, nil
}

// ListRules returns the rules of a ruleset.
func (c *Client) ListRules(ctx context.Context, ruleset string) ([]rule.Rule, error) {
	if ruleset == "" {
		return nil, rule.ErrRulesetNotFound
	}

	resp, err := c.do(ctx, http.MethodGet, "/rulesets/"+url.PathEscape(ruleset)+"/rules", nil, true)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %s", rule.ErrRulesetNotFound, ruleset)
		}
		return nil, err
	}

	var rules []rule.Rule
	if err := json.Unmarshal(resp.body, &rules); err != nil {
		return nil, fmt.Errorf("rulestore: decode rules: %w", err)
	}
	return rules, nil
}

// GetRule retrieves a rule by ID.
func (c *Client) GetRule(ctx context.Context, id string) (*rule.Rule, error) {
	if id == "" {
		return nil, rule.ErrRuleNotFound
	}

	resp, err := c.do(ctx, http.MethodGet, "/rules/"+url.PathEscape(id), nil, true)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %s", rule.ErrRuleNotFound, id)
		}
		return nil, err
	}

	var r rule.Rule
	if err := json.Unmarshal(resp.body, &r); err != nil {
		return nil, fmt.Errorf("rulestore: decode rule: %w", err)
	}
	return &r, nil
}

// CreateRule persists a new rule and returns its backend ID.
func (c *Client) CreateRule(ctx context.Context, r *rule.Rule) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("rulestore: encode rule: %w", err)
	}

	// POST is not idempotent; a retried create could persist twice.
	resp, err := c.do(ctx, http.MethodPost, "/rules", payload, false)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.body, &created); err != nil {
		return "", fmt.Errorf("rulestore: decode create response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: create response carries no rule id", ErrRejected)
	}

	logging.Info().
		Add(logging.Ruleset(r.Ruleset)).
		Add(logging.RuleID(created.ID)).
		Msg("rule created")

	return created.ID, nil
}

// UpdateRule replaces an existing rule's value and conditions.
func (c *Client) UpdateRule(ctx context.Context, r *rule.Rule) error {
	if r.ID == "" {
		return rule.ErrRuleNotFound
	}
	if err := r.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("rulestore: encode rule: %w", err)
	}

	_, err = c.do(ctx, http.MethodPut, "/rules/"+url.PathEscape(r.ID), payload, true)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return fmt.Errorf("%w: %s", rule.ErrRuleNotFound, r.ID)
		}
		return err
	}

	logging.Info().
		Add(logging.Ruleset(r.Ruleset)).
		Add(logging.RuleID(r.ID)).
		Msg("rule updated")

	return nil
}

// DeleteRule removes a rule.
func (c *Client) DeleteRule(ctx context.Context, id string) error {
	if id == "" {
		return rule.ErrRuleNotFound
	}

	_, err := c.do(ctx, http.MethodDelete, "/rules/"+url.PathEscape(id), nil, true)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return fmt.Errorf("%w: %s", rule.ErrRuleNotFound, id)
		}
		return err
	}

	logging.Info().
		Add(logging.RuleID(id)).
		Msg("rule deleted")

	return nil
}

// BreakerState returns the circuit breaker state, or the empty string
// when no breaker is configured.
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return ""
	}
	return c.breaker.State().String()
}

// Ensure Client implements rule.Store
var _ rule.Store = (*Client)(nil)
