package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"museum-guide/internal/llm"
	rag_mocks "museum-guide/internal/rag/mocks"
)

func TestBuildMessages(t *testing.T) {
	matches := []ScoredMatch{
		{ID: "a", Text: "The museum opened its east wing in 1998.", Similarity: 0.8},
		{ID: "b", Text: "  The east wing holds the textile collection.  ", Similarity: 0.6},
	}

	msgs := BuildMessages("What is in the east wing?", matches)
	if len(msgs) != 2 {
		t.Fatalf("BuildMessages() returned %d messages, want 2", len(msgs))
	}

	system := msgs[0]
	if system.Role != llm.RoleSystem {
		t.Errorf("first role = %q, want system", system.Role)
	}
	for _, want := range []string{"ONLY", NoContextAnswer, "Never guess", "official website", "1-4 sentences"} {
		if !strings.Contains(system.Content, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}

	user := msgs[1]
	if user.Role != llm.RoleUser {
		t.Errorf("second role = %q, want user", user.Role)
	}
	first := strings.Index(user.Content, "[1] The museum opened its east wing in 1998.")
	second := strings.Index(user.Content, "[2] The east wing holds the textile collection.")
	if first < 0 || second < 0 || first > second {
		t.Errorf("context not numbered in order:\n%s", user.Content)
	}
	if !strings.HasSuffix(user.Content, "Question: What is in the east wing?") {
		t.Errorf("user message should end with the question:\n%s", user.Content)
	}
}

func TestComposer_Compose(t *testing.T) {
	matches := []ScoredMatch{{ID: "a", Text: "context", Similarity: 0.9}}

	tests := []struct {
		name    string
		reply   string
		err     error
		want    string
		wantErr bool
	}{
		{"trims answer", "  The east wing opened in 1998.\n", nil, "The east wing opened in 1998.", false},
		{"empty answer", "   ", nil, "", true},
		{"chat error", "", errors.New("status 500"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			chat := rag_mocks.NewMockChatModel(ctrl)
			chat.EXPECT().
				ChatWithMessages(gomock.Any(), gomock.Len(2), llm.ChatParams{MaxTokens: 300, Temperature: 0.2}).
				Return(tt.reply, tt.err)

			got, err := NewComposer(chat, llm.ChatParams{}).Compose(context.Background(), "q", matches)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Compose() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Compose() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposer_Compose_NoContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chat := rag_mocks.NewMockChatModel(ctrl)
	if _, err := NewComposer(chat, llm.ChatParams{}).Compose(context.Background(), "q", nil); err == nil {
		t.Error("Compose() without context should return error")
	}
}
