package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"museum-guide/internal/llm"
)

const composerInstructions = `You are a museum guide answering visitor questions.
Answer ONLY from the numbered context passages below.
If the context does not contain the answer, reply with exactly this sentence: "` + NoContextAnswer + `"
Never guess names, dates, prices, or current exhibits.
For opening hours, ticket prices, events, or anything else that changes over time, recommend checking the museum's official website.
Keep the answer to 1-4 sentences.`

// Composer asks the language model for a grounded answer.
type Composer struct {
	chat   ChatModel
	params llm.ChatParams
}

// NewComposer creates a Composer. Zero params get a low temperature and a short token budget.
func NewComposer(chat ChatModel, params llm.ChatParams) *Composer {
	if params.MaxTokens == 0 {
		params.MaxTokens = 300
	}
	if params.Temperature == 0 {
		params.Temperature = 0.2
	}
	return &Composer{chat: chat, params: params}
}

// Compose answers the question from the given passages, in order.
func (c *Composer) Compose(ctx context.Context, question string, matches []ScoredMatch) (string, error) {
	if len(matches) == 0 {
		return "", errors.New("no context to compose from")
	}

	answer, err := c.chat.ChatWithMessages(ctx, BuildMessages(question, matches), c.params)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errors.New("model returned an empty answer")
	}
	return answer, nil
}

// BuildMessages renders the grounded prompt for a question.
func BuildMessages(question string, matches []ScoredMatch) []llm.Message {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, strings.TrimSpace(m.Text))
	}
	b.WriteString("Question: ")
	b.WriteString(strings.TrimSpace(question))

	return []llm.Message{
		{Role: llm.RoleSystem, Content: composerInstructions},
		{Role: llm.RoleUser, Content: b.String()},
	}
}
