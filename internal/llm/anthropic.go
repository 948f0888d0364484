package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"museum-guide/internal/contextutil"
)

const defaultAnthropicMaxTokens = 1024

// AnthropicClient is a chat client for the Anthropic Messages API.
type AnthropicClient struct {
	Model  string
	client anthropic.Client
}

// NewAnthropicClient creates an Anthropic chat client. An empty baseURL uses the SDK default.
// SDK retries are disabled; the caller owns the request deadline.
func NewAnthropicClient(baseURL, apiKey, model string) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicClient{
		Model:  model,
		client: anthropic.NewClient(opts...),
	}
}

// ChatWithMessages sends the conversation to the Messages API.
// System messages are lifted into the top-level system prompt.
func (c *AnthropicClient) ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req, err := buildMessageParams(messages, params, c.Model)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Messages.New(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "anthropic message failed", "model", req.Model, "error", err)
		return "", fmt.Errorf("anthropic message: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	logger.DebugContext(ctx, "anthropic message finished",
		"model", req.Model,
		"stop_reason", resp.StopReason,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return text.String(), nil
}

func buildMessageParams(messages []Message, params ChatParams, defaultModel string) (anthropic.MessageNewParams, error) {
	model := params.Model
	if model == "" {
		model = defaultModel
	}

	maxTokens := int64(params.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	req := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(float64(params.Temperature)),
	}

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			req.System = append(req.System, anthropic.TextBlockParam{Text: msg.Content})
		case RoleUser:
			req.Messages = append(req.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			req.Messages = append(req.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			return anthropic.MessageNewParams{}, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}

	if len(req.Messages) == 0 {
		return anthropic.MessageNewParams{}, fmt.Errorf("no messages to send")
	}

	return req, nil
}
