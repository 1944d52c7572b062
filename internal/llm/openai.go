package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultOpenAIEndpoint = "https://api.openai.com/v1"

// OpenAI calls the chat completions API. A base URL override makes it
// usable against any OpenAI-compatible server.
type OpenAI struct {
	apiKey    string
	modelName string
	endpoint  string
	client    *http.Client
}

func NewOpenAI(apiKey, model, endpoint string) *OpenAI {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	return &OpenAI{
		apiKey:    apiKey,
		modelName: model,
		endpoint:  endpoint,
		client:    &http.Client{},
	}
}

func (o *OpenAI) Name() string  { return "openai" }
func (o *OpenAI) Model() string { return o.modelName }

func (o *OpenAI) Complete(ctx context.Context, promptText string) (string, error) {
	body := map[string]any{
		"model": o.modelName,
		"messages": []map[string]any{
			{"role": "user", "content": promptText},
		},
		"temperature": 0.1,
		"max_tokens":  2048,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal openai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("build openai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", providerErrorFrom("openai", resp, data)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", &ProviderError{
			Provider:   "openai",
			StatusCode: resp.StatusCode,
			Message:    "response contained no choices",
			Type:       ErrorTypeUnknown,
		}
	}
	return parsed.Choices[0].Message.Content, nil
}
