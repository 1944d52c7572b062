package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"
)

// GatewayConfig bounds the gateway's retry loop. Validate rejects
// configurations that could hot-loop or never finish.
type GatewayConfig struct {
	// Timeout applies to each attempt, not the whole loop.
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	// Jitter randomizes each backoff over [0, interval] so concurrent
	// callers do not retry in lockstep.
	Jitter bool
}

func (c GatewayConfig) Validate() error {
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive, got %d", c.MaxAttempts)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial backoff must be positive, got %v", c.InitialBackoff)
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max backoff %v below initial backoff %v", c.MaxBackoff, c.InitialBackoff)
	}
	if c.Multiplier < 1.0 {
		return fmt.Errorf("multiplier must be >= 1.0, got %f", c.Multiplier)
	}
	return nil
}

// Gateway wraps a Provider with per-attempt timeouts and bounded retries.
// Only transient failures are retried; the prompt is pure, so a repeat
// attempt carries no side effects beyond the call itself.
type Gateway struct {
	provider Provider
	cfg      GatewayConfig
}

func NewGateway(provider Provider, cfg GatewayConfig) (*Gateway, error) {
	if provider == nil {
		return nil, errors.New("gateway requires a provider")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Gateway{provider: provider, cfg: cfg}, nil
}

func (g *Gateway) Provider() Provider { return g.provider }

// Invoke sends the prompt upstream, retrying transient failures with
// exponential backoff. It returns the raw answer and the number of
// attempts actually made. Exhaustion surfaces as *ExhaustedError wrapping
// the final attempt's failure; non-retryable failures surface immediately.
func (g *Gateway) Invoke(ctx context.Context, promptText string) (string, int, error) {
	var lastErr error

	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", attempt - 1, err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		answer, err := g.provider.Complete(attemptCtx, promptText)
		cancel()
		if err == nil {
			return answer, attempt, nil
		}
		lastErr = err

		// The parent context ending is the caller going away, not an
		// upstream fault.
		if ctx.Err() != nil {
			return "", attempt, ctx.Err()
		}
		if !Retryable(err) {
			return "", attempt, err
		}
		if attempt == g.cfg.MaxAttempts {
			break
		}

		wait := g.backoff(attempt, err)
		log.Printf("llm gateway retry provider=%s attempt=%d/%d wait=%v err=%v",
			g.provider.Name(), attempt, g.cfg.MaxAttempts, wait, err)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", attempt, ctx.Err()
		case <-timer.C:
		}
	}

	return "", g.cfg.MaxAttempts, &ExhaustedError{Attempts: g.cfg.MaxAttempts, Last: lastErr}
}

// backoff computes the wait before the next attempt. A provider-supplied
// Retry-After takes precedence; otherwise exponential backoff with full
// jitter.
func (g *Gateway) backoff(attempt int, err error) time.Duration {
	var perr *ProviderError
	if errors.As(err, &perr) {
		if after := perr.RetryAfterDuration(); after > 0 && after <= g.cfg.MaxBackoff {
			return after
		}
	}

	interval := g.cfg.InitialBackoff
	for i := 1; i < attempt; i++ {
		interval = time.Duration(float64(interval) * g.cfg.Multiplier)
		if interval >= g.cfg.MaxBackoff {
			interval = g.cfg.MaxBackoff
			break
		}
	}
	if g.cfg.Jitter {
		interval = time.Duration(rand.Int64N(int64(interval) + 1))
	}
	return interval
}
