package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 256

// AnthropicClient generates completions with the Anthropic Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
	log    *slog.Logger
}

// NewAnthropicClient creates an AnthropicClient. The SDK's automatic retries
// are disabled; callers decide what a failed call means.
func NewAnthropicClient(apiKey, model string, timeout time.Duration, logger *slog.Logger, opts ...option.RequestOption) *AnthropicClient {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	return &AnthropicClient{
		client: anthropic.NewClient(append(base, opts...)...),
		model:  model,
		log:    logger.With("adapter", "anthropic"),
	}
}

// Generate sends prompt as a single user message and returns the text of the reply.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: messages api: %w", err)
	}
	if len(msg.Content) == 0 {
		return "", fmt.Errorf("anthropic: empty response")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		b.WriteString(block.Text)
	}
	answer := strings.TrimSpace(b.String())

	c.log.DebugContext(ctx, "anthropic answered",
		slog.String("model", c.model),
		slog.Duration("took", time.Since(start)),
		slog.String("answer", answer),
	)
	return answer, nil
}
