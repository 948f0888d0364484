package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"museum-guide/internal/contextutil"
)

// Client is a chat client for OpenAI-compatible chat completions APIs.
type Client struct {
	BaseURL string
	Model   string
	client  *openai.Client
}

// NewClient creates a new LLM client.
// baseURL is the server root; the "/v1" prefix is appended here.
func NewClient(baseURL, apiKey, model string) *Client {
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = apiBaseURL(baseURL)

	return &Client{
		BaseURL: baseURL,
		Model:   model,
		client:  openai.NewClientWithConfig(clientCfg),
	}
}

func apiBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/v1"
}

// ChatWithMessages sends a chat completion request and returns the first choice's text.
func (c *Client) ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}

	model := params.Model
	if model == "" {
		model = c.Model
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "chat completion failed", "model", model, "error", err)
		return "", describeAPIError("chat completion", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	logger.DebugContext(ctx, "chat completion finished",
		"model", model,
		"finish_reason", resp.Choices[0].FinishReason,
		"total_tokens", resp.Usage.TotalTokens,
	)
	return resp.Choices[0].Message.Content, nil
}

// describeAPIError flattens go-openai error types into a readable message.
func describeAPIError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: bad status %d: %s: %w", op, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%s: bad status %d: %s: %w", op, reqErr.HTTPStatusCode, strings.TrimSpace(string(reqErr.Body)), err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
