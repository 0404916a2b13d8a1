package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"NewsDebate/internal/config"
	"NewsDebate/internal/domain"
	"NewsDebate/internal/ports"
)

// RemoteEngine talks to an external debate service that owns the model calls.
// It posts the whole turn request and expects a {role, content} reply.
type RemoteEngine struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.ConversationEngine = (*RemoteEngine)(nil)

// NewRemoteEngine creates a reusable HTTP client.
func NewRemoteEngine(cfg config.RemoteConfig) *RemoteEngine {
	return &RemoteEngine{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 90 * time.Second},
	}
}

// Name identifies the provider.
func (c *RemoteEngine) Name() string { return config.ProviderRemote }

// Respond posts the turn to {endpoint}/respond.
func (c *RemoteEngine) Respond(ctx context.Context, req domain.TurnRequest) (domain.Message, error) {
	if c.endpoint == "" {
		return domain.Message{}, fmt.Errorf("remote engine misconfigured")
	}

	var msg domain.Message
	if err := c.post(ctx, "/respond", req, &msg); err != nil {
		return domain.Message{}, err
	}
	if msg.Role == "" {
		msg.Role = req.Speaker.Role
	}
	return msg, nil
}

func (c *RemoteEngine) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
