package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

type capturedRequest struct {
	Path   string
	Auth   string
	Body   map[string]any
	Called int
}

func newChatServer(t *testing.T, status int, reply string, got *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Called++
		got.Path = r.URL.Path
		got.Auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const chatReply = `{"choices":[{"message":{"role":"assistant","content":"{\"revenue_actual\":\"$25.18 billion\"}"}}]}`

func TestOpenAIProvider_GenerateResponse(t *testing.T) {
	var got capturedRequest
	srv := newChatServer(t, http.StatusOK, chatReply, &got)

	p := &OpenAIProvider{BaseURL: srv.URL + "/v1", Client: srv.Client()}
	out, err := p.GenerateResponse(context.Background(), "article", "system", map[string]interface{}{
		OptAPIKey: "sk-test",
		OptJSON:   true,
		OptSchema: map[string]any{"type": "object"},
	})
	if err != nil {
		t.Fatalf("GenerateResponse() error = %v", err)
	}
	if out != `{"revenue_actual":"$25.18 billion"}` {
		t.Errorf("unexpected content: %s", out)
	}
	if got.Path != "/v1/chat/completions" {
		t.Errorf("path = %s", got.Path)
	}
	if got.Auth != "Bearer sk-test" {
		t.Errorf("auth header = %q", got.Auth)
	}
	rf, _ := got.Body["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("response_format = %v, want json_object", got.Body["response_format"])
	}
	msgs, _ := got.Body["messages"].([]any)
	if len(msgs) != 3 {
		t.Errorf("expected system, user and schema messages, got %d", len(msgs))
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	p := &OpenAIProvider{}
	if _, err := p.GenerateResponse(context.Background(), "x", "y", nil); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY_MISSING") {
		t.Errorf("expected missing key error, got %v", err)
	}

	var got capturedRequest
	srv := newChatServer(t, http.StatusTooManyRequests, `{"error":"slow down"}`, &got)
	p = &OpenAIProvider{BaseURL: srv.URL, Client: srv.Client()}
	_, err := p.GenerateResponse(context.Background(), "x", "y", map[string]interface{}{OptAPIKey: "k"})
	if err == nil || !strings.Contains(err.Error(), "status=429") {
		t.Errorf("expected status error, got %v", err)
	}

	empty := newChatServer(t, http.StatusOK, `{"choices":[]}`, &got)
	p = &OpenAIProvider{BaseURL: empty.URL, Client: empty.Client()}
	_, err = p.GenerateResponse(context.Background(), "x", "y", map[string]interface{}{OptAPIKey: "k"})
	if err == nil || !strings.Contains(err.Error(), "OPENAI_NO_CHOICES") {
		t.Errorf("expected no choices error, got %v", err)
	}
}

func TestDeepSeekProvider_GenerateResponse(t *testing.T) {
	var got capturedRequest
	srv := newChatServer(t, http.StatusOK, chatReply, &got)

	p := &DeepSeekProvider{BaseURL: srv.URL, Client: srv.Client()}
	out, err := p.GenerateResponse(context.Background(), "article", "system", map[string]interface{}{
		OptAPIKey: "ds-key",
		OptJSON:   true,
	})
	if err != nil {
		t.Fatalf("GenerateResponse() error = %v", err)
	}
	if !strings.Contains(out, "25.18") {
		t.Errorf("unexpected content: %s", out)
	}
	if got.Path != "/chat/completions" {
		t.Errorf("path = %s", got.Path)
	}
	if got.Body["model"] != "deepseek-chat" {
		t.Errorf("model = %v", got.Body["model"])
	}
	rf, _ := got.Body["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("response_format = %v", got.Body["response_format"])
	}
}

func TestQwenProvider_GenerateResponse(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		reply   string
		want    string
		wantErr string
	}{
		{
			name:  "chat format",
			reply: `{"output":{"choices":[{"message":{"content":"{}"}}]}}`,
			want:  "{}",
		},
		{
			name:  "text format",
			reply: `{"output":{"text":"plain"}}`,
			want:  "plain",
		},
		{
			name:    "api error code",
			reply:   `{"code":"InvalidApiKey","message":"bad key"}`,
			wantErr: "InvalidApiKey",
		},
		{
			name:    "http error",
			status:  http.StatusInternalServerError,
			reply:   `oops`,
			wantErr: "status 500",
		},
		{
			name:    "empty output",
			reply:   `{"output":{}}`,
			wantErr: "empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tt.status
			if status == 0 {
				status = http.StatusOK
			}
			var got capturedRequest
			srv := newChatServer(t, status, tt.reply, &got)

			p := &QwenProvider{BaseURL: srv.URL, Client: srv.Client()}
			out, err := p.GenerateResponse(context.Background(), "p", "s", map[string]interface{}{OptAPIKey: "q"})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
			if got.Path != qwenGenerationPath {
				t.Errorf("path = %s", got.Path)
			}
		})
	}
}

func TestGeminiProviders_MissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	for _, p := range []Provider{&GeminiProvider{}, &GeminiLegacyProvider{}} {
		if _, err := p.GenerateResponse(context.Background(), "x", "y", nil); err == nil {
			t.Errorf("%T: expected error without an API key", p)
		}
	}
}

func TestGeminiProvider_GenerateResponse(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"eps_actual\":\"72 cents\"}"}]}}]}`)
	}))
	defer srv.Close()

	p := &GeminiProvider{BaseURL: srv.URL, Client: srv.Client()}
	out, err := p.GenerateResponse(context.Background(), "article", "system", map[string]interface{}{
		OptAPIKey: "g",
		OptSchema: map[string]any{"type": "object"},
	})
	if err != nil {
		t.Fatalf("GenerateResponse() error = %v", err)
	}
	if out != `{"eps_actual":"72 cents"}` {
		t.Errorf("unexpected content: %s", out)
	}
	if !strings.Contains(path, "generateContent") {
		t.Errorf("unexpected path %s", path)
	}
}

func TestGeminiSchema(t *testing.T) {
	js := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"revenue_actual": map[string]any{"type": []any{"string", "null"}, "description": "Actual revenue"},
			"eps_actual":     map[string]any{"type": "number"},
		},
		"required": []any{"revenue_actual"},
	}

	s := GeminiSchema(js)
	if s.Type != genai.TypeObject {
		t.Fatalf("type = %v", s.Type)
	}
	rev := s.Properties["revenue_actual"]
	if rev == nil || rev.Type != genai.TypeString || rev.Nullable == nil || !*rev.Nullable {
		t.Errorf("revenue_actual = %+v, want nullable string", rev)
	}
	if rev.Description != "Actual revenue" {
		t.Errorf("description lost: %q", rev.Description)
	}
	if s.Properties["eps_actual"].Type != genai.TypeNumber {
		t.Errorf("eps_actual type = %v", s.Properties["eps_actual"].Type)
	}
	if len(s.Required) != 1 || s.Required[0] != "revenue_actual" {
		t.Errorf("required = %v", s.Required)
	}
	if len(s.PropertyOrdering) != 2 || s.PropertyOrdering[0] != "eps_actual" {
		t.Errorf("property ordering = %v", s.PropertyOrdering)
	}
	if GeminiSchema(nil) != nil {
		t.Error("nil schema should convert to nil")
	}
}
