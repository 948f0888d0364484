package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8081", "test-key", "test-model")
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.BaseURL != "http://localhost:8081" {
		t.Errorf("NewClient() BaseURL = %v, want http://localhost:8081", client.BaseURL)
	}
	if client.Model != "test-model" {
		t.Errorf("NewClient() Model = %v, want test-model", client.Model)
	}
	if client.client == nil {
		t.Error("NewClient() client should not be nil")
	}
}

func TestAPIBaseURL(t *testing.T) {
	tests := map[string]string{
		"https://api.openai.com":  "https://api.openai.com/v1",
		"https://api.openai.com/": "https://api.openai.com/v1",
		"http://localhost:8081":   "http://localhost:8081/v1",
	}
	for in, want := range tests {
		if got := apiBaseURL(in); got != want {
			t.Errorf("apiBaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClient_ChatWithMessages(t *testing.T) {
	tests := []struct {
		name       string
		messages   []Message
		params     ChatParams
		serverResp func(t *testing.T, w http.ResponseWriter, r *http.Request)
		wantReply  string
		wantErr    bool
	}{
		{
			name: "successful chat",
			messages: []Message{
				{Role: RoleSystem, Content: "Answer from context only."},
				{Role: RoleUser, Content: "When did it open?"},
			},
			params: ChatParams{Temperature: 0.2, MaxTokens: 300},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/v1/chat/completions" {
					t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
				}
				if !strings.Contains(r.Header.Get("Authorization"), "Bearer test-key") {
					t.Error("missing Authorization header")
				}

				var body struct {
					Model       string    `json:"model"`
					Messages    []Message `json:"messages"`
					MaxTokens   int       `json:"max_tokens"`
					Temperature float32   `json:"temperature"`
				}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("decode request: %v", err)
				}
				if body.Model != "test-model" {
					t.Errorf("model = %q, want test-model", body.Model)
				}
				if len(body.Messages) != 2 || body.Messages[0].Role != RoleSystem {
					t.Errorf("messages = %+v", body.Messages)
				}
				if body.MaxTokens != 300 {
					t.Errorf("max_tokens = %d, want 300", body.MaxTokens)
				}

				writeJSON(w, map[string]any{
					"id":     "chatcmpl-1",
					"object": "chat.completion",
					"choices": []map[string]any{{
						"index":         0,
						"message":       map[string]any{"role": "assistant", "content": "It opened in 1862."},
						"finish_reason": "stop",
					}},
				})
			},
			wantReply: "It opened in 1862.",
		},
		{
			name:     "model override",
			messages: []Message{{Role: RoleUser, Content: "hi"}},
			params:   ChatParams{Model: "other-model"},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				var body struct {
					Model string `json:"model"`
				}
				_ = json.NewDecoder(r.Body).Decode(&body)
				if body.Model != "other-model" {
					t.Errorf("model = %q, want other-model", body.Model)
				}
				writeJSON(w, map[string]any{
					"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": "ok"}}},
				})
			},
			wantReply: "ok",
		},
		{
			name:     "no choices returned",
			messages: []Message{{Role: RoleUser, Content: "hi"}},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				writeJSON(w, map[string]any{"id": "chatcmpl-1", "choices": []any{}})
			},
			wantErr: true,
		},
		{
			name:     "server error",
			messages: []Message{{Role: RoleUser, Content: "hi"}},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.serverResp(t, w, r)
			}))
			defer server.Close()

			client := NewClient(server.URL, "test-key", "test-model")
			reply, err := client.ChatWithMessages(context.Background(), tt.messages, tt.params)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ChatWithMessages() error = %v, wantErr %v", err, tt.wantErr)
			}
			if reply != tt.wantReply {
				t.Errorf("ChatWithMessages() = %q, want %q", reply, tt.wantReply)
			}
		})
	}
}

func TestClient_ChatWithMessages_Empty(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "k", "m")
	if _, err := client.ChatWithMessages(context.Background(), nil, ChatParams{}); err == nil {
		t.Error("ChatWithMessages() with no messages should return error")
	}
}

func TestClient_ChatWithMessages_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, "k", "m")
	if _, err := client.ChatWithMessages(ctx, []Message{{Role: RoleUser, Content: "hi"}}, ChatParams{}); err == nil {
		t.Error("ChatWithMessages() with cancelled context should return error")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
