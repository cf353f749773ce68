package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// HTTPConfig configures a scorer backed by an external sentiment model service
type HTTPConfig struct {
	Endpoint string
	APIKey   string

	// Timeout bounds every single Score call, including rate limiter wait
	Timeout time.Duration

	// RatePerSecond limits outbound calls; zero disables limiting
	RatePerSecond float64
	Burst         int

	// MaxFailures consecutive failures open the breaker for OpenTimeout
	MaxFailures uint32
	OpenTimeout time.Duration
}

// HTTPScorer calls an external model with a per-call timeout, an outbound rate
// limit and a circuit breaker. When a fallback is configured it is used whenever
// the model cannot answer.
type HTTPScorer struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	fallback Scorer
	logger   *slog.Logger
}

var _ Scorer = (*HTTPScorer)(nil)

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	Polarity *float64 `json:"polarity"`
}

// NewHTTPScorer creates an HTTP backed scorer. fallback may be nil.
func NewHTTPScorer(cfg HTTPConfig, fallback Scorer, logger *slog.Logger) (*HTTPScorer, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("sentiment endpoint is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	logger = logger.With(slog.String("component", "sentiment.http"))

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	maxFailures := cfg.MaxFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sentiment-model",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
		// Callers giving up is not a sign of an unhealthy model
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &HTTPScorer{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		timeout:  cfg.Timeout,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  limiter,
		breaker:  breaker,
		fallback: fallback,
		logger:   logger,
	}, nil
}

// Score implements Scorer
func (s *HTTPScorer) Score(ctx context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.call(ctx, text)
	})
	if err != nil {
		if s.fallback != nil && ctx.Err() == nil {
			s.logger.WarnContext(ctx, "Sentiment model failed, using fallback scorer",
				slog.String("error", err.Error()),
				slog.String("breaker_state", s.breaker.State().String()))
			return s.fallback.Score(ctx, text)
		}
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return Clamp(result.(float64)), nil
}

// State returns the current circuit breaker state
func (s *HTTPScorer) State() gobreaker.State {
	return s.breaker.State()
}

func (s *HTTPScorer) call(ctx context.Context, text string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(scoreRequest{Text: text})
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var out scoreResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if out.Polarity == nil {
		return 0, errors.New("response has no polarity")
	}

	return *out.Polarity, nil
}
