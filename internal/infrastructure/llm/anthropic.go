package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"

	"NewsDebate/internal/config"
	"NewsDebate/internal/domain"
	"NewsDebate/internal/ports"
)

// promptFunc sends one system/user prompt pair and returns the reply text.
type promptFunc func(systemPrompt, userPrompt string) (string, error)

// AnthropicEngine implements ports.ConversationEngine on the Anthropic messages API.
type AnthropicEngine struct {
	prompt promptFunc
}

var _ ports.ConversationEngine = (*AnthropicEngine)(nil)

// NewAnthropicEngine builds an engine from configuration.
func NewAnthropicEngine(cfg config.AnthropicConfig) *AnthropicEngine {
	settings := types.RequestSettings{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
	apiKey := cfg.APIKey

	return &AnthropicEngine{
		prompt: func(systemPrompt, userPrompt string) (string, error) {
			if apiKey == "" {
				return "", fmt.Errorf("anthropic engine misconfigured")
			}
			response, err := anthropic.PromptWithSettings(systemPrompt, userPrompt, "", apiKey, settings)
			if err != nil {
				return "", err
			}
			if len(response.Content) == 0 {
				return "", fmt.Errorf("no content in response")
			}
			return response.Content[0].Text, nil
		},
	}
}

// Name identifies the provider.
func (e *AnthropicEngine) Name() string { return config.ProviderAnthropic }

// Respond sends the flattened transcript as a single prompt. The client call
// does not take a context, so it runs in a goroutine that is abandoned when ctx ends.
func (e *AnthropicEngine) Respond(ctx context.Context, req domain.TurnRequest) (domain.Message, error) {
	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)

	go func() {
		text, err := e.prompt(systemPrompt(req), transcriptPrompt(req))
		done <- reply{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return domain.Message{}, fmt.Errorf("anthropic turn: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return domain.Message{}, fmt.Errorf("anthropic turn: %w", r.err)
		}
		return domain.Message{Role: req.Speaker.Role, Content: strings.TrimSpace(r.text)}, nil
	}
}
