package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	tests := []struct {
		name      string
		cfg       OpenRouterConfig
		wantErr   bool
		wantModel string
	}{
		{"empty API key", OpenRouterConfig{Model: "google/gemini-2.5-flash"}, true, ""},
		{"default base URL", OpenRouterConfig{APIKey: "sk-or-test", Model: "google/gemini-2.5-flash"}, false, "google/gemini-2.5-flash"},
		// Vendor-prefixed IDs are not in any friendly-name table.
		{"pass-through model", OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-3-haiku"}, false, "anthropic/claude-3-haiku"},
		{"custom base URL", OpenRouterConfig{APIKey: "sk-or-test", Model: "x/y", BaseURL: "https://router.example/v1"}, false, "x/y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOpenRouterProvider(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if p.ModelID() != tt.wantModel {
				t.Errorf("model = %q, want %q", p.ModelID(), tt.wantModel)
			}
		})
	}
}

func TestOpenRouterProvider_SendsAttributionHeaders(t *testing.T) {
	var referer, title string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
		title = r.Header.Get("X-Title")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openAICompletion("ok"))
	}))
	defer server.Close()

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "google/gemini-2.5-flash",
		BaseURL: server.URL + "/v1",
	})
	if err != nil {
		t.Fatalf("NewOpenRouterProvider: %v", err)
	}

	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens: 16,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text() != "ok" {
		t.Errorf("text = %q, want %q", resp.Text(), "ok")
	}
	if referer != openRouterReferer {
		t.Errorf("HTTP-Referer = %q, want %q", referer, openRouterReferer)
	}
	if title != openRouterTitle {
		t.Errorf("X-Title = %q, want %q", title, openRouterTitle)
	}
}
