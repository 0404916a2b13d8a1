package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsDebate/internal/config"
	"NewsDebate/internal/domain"
	"NewsDebate/internal/ports"
)

// OpenAIEngine implements ports.ConversationEngine backed by OpenAI-compatible APIs.
type OpenAIEngine struct {
	endpoint    string
	model       string
	apiKey      string
	temperature float64
	httpClient  *http.Client
}

var _ ports.ConversationEngine = (*OpenAIEngine)(nil)

// NewOpenAIEngine builds an engine from configuration.
func NewOpenAIEngine(cfg config.OpenAIConfig) *OpenAIEngine {
	return &OpenAIEngine{
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// Name identifies the provider.
func (e *OpenAIEngine) Name() string { return config.ProviderOpenAI }

// Respond asks the chat completions API for the speaker's next message.
func (e *OpenAIEngine) Respond(ctx context.Context, req domain.TurnRequest) (domain.Message, error) {
	if e.apiKey == "" || e.endpoint == "" || e.model == "" {
		return domain.Message{}, fmt.Errorf("openai engine misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model":       e.model,
		"messages":    chatMessages(req),
		"temperature": e.temperature,
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("marshal openai payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Message{}, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return domain.Message{}, fmt.Errorf("send turn: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Message{}, fmt.Errorf("openai error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var completion struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return domain.Message{}, fmt.Errorf("decode openai response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return domain.Message{}, fmt.Errorf("openai response has no choices")
	}

	return domain.Message{
		Role:    req.Speaker.Role,
		Content: strings.TrimSpace(completion.Choices[0].Message.Content),
	}, nil
}
