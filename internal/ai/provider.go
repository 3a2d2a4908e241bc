package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrProviderRateLimited marks an HTTP 429 from the provider. The adapter
// treats it as an immediate failover reason and never retries against it.
var ErrProviderRateLimited = errors.New("provider rate limited")

// Provider is the single network boundary of the AI adapter. One call per
// invocation; implementations never write to the database.
type Provider interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// AnthropicProvider calls the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicProvider creates a provider for the given model.
// SDK-level retries are disabled: the adapter owns the retry policy.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(0),
		),
		model: anthropic.Model(model),
	}
}

// Complete sends one bounded prompt and returns the raw response text.
func (p *AnthropicProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", ErrProviderRateLimited, err)
		}
		return "", fmt.Errorf("anthropic call: %w", err)
	}
	if len(msg.Content) == 0 {
		return "", fmt.Errorf("anthropic call: empty response")
	}
	return msg.Content[0].Text, nil
}
