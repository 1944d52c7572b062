package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

type scriptedProvider struct {
	answers []any // error or string, consumed in order
	calls   int
}

func (p *scriptedProvider) Complete(_ context.Context, _ string) (string, error) {
	if p.calls >= len(p.answers) {
		return "", errors.New("script exhausted")
	}
	step := p.answers[p.calls]
	p.calls++
	if err, ok := step.(error); ok {
		return "", err
	}
	return step.(string), nil
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "scripted" }

func testConfig() GatewayConfig {
	return GatewayConfig{
		Timeout:        time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func unavailable() *ProviderError {
	return &ProviderError{Provider: "scripted", StatusCode: 503, Message: "down", Type: ErrorTypeUnavailable}
}

func TestInvokeSucceedsFirstAttempt(t *testing.T) {
	p := &scriptedProvider{answers: []any{"ok"}}
	g, err := NewGateway(p, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	answer, attempts, err := g.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if answer != "ok" || attempts != 1 {
		t.Fatalf("got answer=%q attempts=%d", answer, attempts)
	}
}

func TestInvokeRetriesTransientThenSucceeds(t *testing.T) {
	p := &scriptedProvider{answers: []any{unavailable(), unavailable(), "ok"}}
	g, _ := NewGateway(p, testConfig())
	answer, attempts, err := g.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if answer != "ok" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if attempts != 3 || p.calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got attempts=%d calls=%d", attempts, p.calls)
	}
}

func TestInvokeExhaustsRetries(t *testing.T) {
	p := &scriptedProvider{answers: []any{unavailable(), unavailable(), unavailable()}}
	g, _ := NewGateway(p, testConfig())
	_, attempts, err := g.Invoke(context.Background(), "prompt")
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 3 || attempts != 3 || p.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d/%d/%d", exhausted.Attempts, attempts, p.calls)
	}
	if Classify(exhausted.Last) != ErrorTypeUnavailable {
		t.Fatalf("expected last error to stay classified, got %v", exhausted.Last)
	}
}

func TestInvokeDoesNotRetryUnauthorized(t *testing.T) {
	p := &scriptedProvider{answers: []any{
		&ProviderError{Provider: "scripted", StatusCode: 401, Message: "bad key", Type: ErrorTypeUnauthorized},
	}}
	g, _ := NewGateway(p, testConfig())
	_, attempts, err := g.Invoke(context.Background(), "prompt")
	if Classify(err) != ErrorTypeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if attempts != 1 || p.calls != 1 {
		t.Fatalf("unauthorized must not be retried, got attempts=%d calls=%d", attempts, p.calls)
	}
}

func TestInvokeDoesNotRetryBadRequest(t *testing.T) {
	p := &scriptedProvider{answers: []any{
		&ProviderError{Provider: "scripted", StatusCode: 400, Message: "bad body", Type: ErrorTypeBadRequest},
	}}
	g, _ := NewGateway(p, testConfig())
	_, _, err := g.Invoke(context.Background(), "prompt")
	if Classify(err) != ErrorTypeBadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
	if p.calls != 1 {
		t.Fatalf("bad request must not be retried, calls=%d", p.calls)
	}
}

func TestInvokeObservesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &scriptedProvider{answers: []any{"never"}}
	g, _ := NewGateway(p, testConfig())
	_, _, err := g.Invoke(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if p.calls != 0 {
		t.Fatalf("cancelled context must not reach the provider, calls=%d", p.calls)
	}
}

func TestInvokeStopsRetryingWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &scriptedProvider{answers: []any{unavailable(), unavailable(), "never"}}
	cfg := testConfig()
	cfg.InitialBackoff = 50 * time.Millisecond
	cfg.MaxBackoff = 50 * time.Millisecond
	g, _ := NewGateway(p, cfg)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, _, err := g.Invoke(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled during backoff, got %v", err)
	}
	if p.calls >= 3 {
		t.Fatalf("retry loop kept going after cancellation, calls=%d", p.calls)
	}
}

func TestBackoffRespectsRetryAfter(t *testing.T) {
	g, _ := NewGateway(NewNoop(), GatewayConfig{
		Timeout:        time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
	})
	err := &ProviderError{Type: ErrorTypeRateLimited, RetryAfter: 2}
	if got := g.backoff(1, err); got != 2*time.Second {
		t.Fatalf("expected Retry-After to win, got %v", got)
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	g, _ := NewGateway(NewNoop(), GatewayConfig{
		Timeout:        time.Second,
		MaxAttempts:    5,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     300 * time.Millisecond,
		Multiplier:     2.0,
	})
	if got := g.backoff(1, unavailable()); got != 100*time.Millisecond {
		t.Fatalf("attempt 1: got %v", got)
	}
	if got := g.backoff(2, unavailable()); got != 200*time.Millisecond {
		t.Fatalf("attempt 2: got %v", got)
	}
	if got := g.backoff(4, unavailable()); got != 300*time.Millisecond {
		t.Fatalf("attempt 4 should cap: got %v", got)
	}
}

func TestGatewayConfigValidate(t *testing.T) {
	bad := []GatewayConfig{
		{Timeout: time.Second, MaxAttempts: 0, InitialBackoff: time.Millisecond, MaxBackoff: time.Second, Multiplier: 2},
		{Timeout: 0, MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Second, Multiplier: 2},
		{Timeout: time.Second, MaxAttempts: 3, InitialBackoff: 0, MaxBackoff: time.Second, Multiplier: 2},
		{Timeout: time.Second, MaxAttempts: 3, InitialBackoff: time.Second, MaxBackoff: time.Millisecond, Multiplier: 2},
		{Timeout: time.Second, MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Second, Multiplier: 0.5},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("config %d should be invalid", i)
		}
	}
	if err := testConfig().Validate(); err != nil {
		t.Fatalf("test config should validate: %v", err)
	}
}
