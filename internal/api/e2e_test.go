package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"civiclens/internal/analysis"
	"civiclens/internal/config"
	"civiclens/internal/llm"
	"civiclens/internal/taxonomy"
)

type countingProvider struct {
	answer string
	calls  int
}

func (p *countingProvider) Complete(_ context.Context, _ string) (string, error) {
	p.calls++
	return p.answer, nil
}

func (p *countingProvider) Name() string  { return "stub" }
func (p *countingProvider) Model() string { return "stub-1" }

func newPipelineMux(t *testing.T, p llm.Provider) *http.ServeMux {
	t.Helper()
	gw, err := llm.NewGateway(p, llm.GatewayConfig{
		Timeout:        time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	})
	if err != nil {
		t.Fatal(err)
	}
	analyzer := analysis.New(taxonomy.Default(), gw, nil, 500)
	h := NewHandler(config.Default(), analyzer, taxonomy.Default())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func TestEndToEndPotholeComplaint(t *testing.T) {
	p := &countingProvider{answer: `{
		"category": "roads",
		"severity": "high",
		"tags": ["Pothole"],
		"rationale": "Pothole poses vehicle damage and safety risk",
		"confidence": 0.9,
		"suggested_actions": ["Dispatch road crew"]
	}`}
	mux := newPipelineMux(t, p)

	body := strings.NewReader(`{"text": "Large pothole on Main St, causing traffic hazard"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result analysis.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Category != "roads" || result.Severity != "high" {
		t.Fatalf("unexpected classification: %+v", result)
	}
	if result.RequestID == "" {
		t.Fatalf("missing request id")
	}
	if result.Routing.Department != "Roads and Transportation Department" {
		t.Fatalf("routing not derived: %+v", result.Routing)
	}
	if p.calls != 1 {
		t.Fatalf("expected one model call, got %d", p.calls)
	}
}

func TestEndToEndEmptyComplaintNeverReachesModel(t *testing.T) {
	p := &countingProvider{answer: "unused"}
	mux := newPipelineMux(t, p)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(`{"text": ""}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var envelope struct {
		RequestID string `json:"request_id"`
		ErrorKind string `json:"error_kind"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.ErrorKind != "empty_input" {
		t.Fatalf("expected empty_input, got %q", envelope.ErrorKind)
	}
	if envelope.RequestID == "" {
		t.Fatalf("error envelope missing request id")
	}
	if p.calls != 0 {
		t.Fatalf("model must not be called for empty input, calls=%d", p.calls)
	}
}
