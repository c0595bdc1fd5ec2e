package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrEmptyReply is returned when the endpoint answers with no text
var ErrEmptyReply = errors.New("coach returned an empty reply")

// ErrUnavailable is returned while the circuit breaker is open
var ErrUnavailable = errors.New("coach endpoint unavailable")

// Breaker settings
const (
	breakerMaxRequests  = 1
	breakerOpenTimeout  = 60 * time.Second
	breakerFailureTrips = 3
	maxErrorBodyBytes   = 512
)

// Config describes the coach endpoint
type Config struct {
	Endpoint          string
	ClientID          string
	ClientSecret      string
	TokenURL          string
	RequestsPerMinute float64
	Timeout           time.Duration
	CacheTTL          time.Duration
}

// Client sends fully-formed prompts to a text-generation endpoint
type Client struct {
	httpClient  *http.Client
	endpoint    string
	rateLimiter *RateLimiter
	breaker     *gobreaker.CircuitBreaker
	cache       Cache
	cacheTTL    time.Duration
	log         zerolog.Logger
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// APIError is a non-2xx response from the endpoint
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// NewClient creates a client that authenticates with OAuth2 client credentials
func NewClient(cfg Config, log zerolog.Logger) *Client {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	httpClient := cc.Client(context.Background())
	httpClient.Timeout = cfg.Timeout
	return NewClientWithHTTP(cfg, httpClient, log)
}

// NewClientWithHTTP creates a client around an already-authenticated HTTP client
func NewClientWithHTTP(cfg Config, httpClient *http.Client, log zerolog.Logger) *Client {
	c := &Client{
		httpClient:  httpClient,
		endpoint:    cfg.Endpoint,
		rateLimiter: NewRateLimiter(cfg.RequestsPerMinute),
		cacheTTL:    cfg.CacheTTL,
		log:         log.With().Str("component", "coach").Logger(),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "coach",
		MaxRequests: breakerMaxRequests,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureTrips
		},
		IsSuccessful: func(err error) bool {
			// Client errors say nothing about endpoint health
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return c
}

// WithCache enables reply caching
func (c *Client) WithCache(cache Cache) *Client {
	c.cache = cache
	return c
}

// BreakerState returns the circuit breaker's current state
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Generate sends prompt and returns the generated text
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	key := ReplyKey(prompt)
	if c.cache != nil {
		text, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.log.Warn().Err(err).Msg("reading reply cache")
		} else if ok {
			c.log.Debug().Str("key", key).Msg("reply cache hit")
			return text, nil
		}
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return "", err
	}
	text := result.(string)

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, text, c.cacheTTL); err != nil {
			c.log.Warn().Err(err).Msg("writing reply cache")
		}
	}
	return text, nil
}

func (c *Client) post(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromHeaders(resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(msg)}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding reply: %w", err)
	}
	if out.Text == "" {
		return "", ErrEmptyReply
	}
	return out.Text, nil
}
