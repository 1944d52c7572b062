package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// Gemini calls Google's generateContent API. Sampling is pinned low so
// classification stays close to deterministic.
type Gemini struct {
	apiKey    string
	modelName string
	endpoint  string
	client    *http.Client
}

func NewGemini(apiKey, model, endpoint string) *Gemini {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if endpoint == "" {
		endpoint = defaultGeminiEndpoint
	}
	return &Gemini{
		apiKey:    apiKey,
		modelName: model,
		endpoint:  endpoint,
		client:    &http.Client{},
	}
}

func (g *Gemini) Name() string  { return "gemini" }
func (g *Gemini) Model() string { return g.modelName }

func (g *Gemini) Complete(ctx context.Context, promptText string) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.endpoint, g.modelName, g.apiKey)

	body := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": promptText},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     0.1,
			"topP":            0.8,
			"topK":            40,
			"maxOutputTokens": 2048,
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", providerErrorFrom("gemini", resp, data)
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{
			Provider:   "gemini",
			StatusCode: resp.StatusCode,
			Message:    "response contained no candidates",
			Type:       ErrorTypeUnknown,
		}
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// providerErrorFrom builds a classified ProviderError from a non-200
// provider response, honoring a Retry-After header when present.
func providerErrorFrom(provider string, resp *http.Response, body []byte) *ProviderError {
	perr := &ProviderError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Type:       classifyStatus(resp.StatusCode),
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		perr.Message = envelope.Error.Message
	} else {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		perr.Message = msg
	}

	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			perr.RetryAfter = seconds
		} else if at, err := http.ParseTime(v); err == nil {
			if wait := time.Until(at); wait > 0 {
				perr.RetryAfter = int(wait.Seconds())
			}
		}
	}
	return perr
}
