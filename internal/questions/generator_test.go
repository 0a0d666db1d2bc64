package questions

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/olytutor/internal/llm"
	"github.com/abhisek/olytutor/internal/subject"
)

func validSetJSON() json.RawMessage {
	return json.RawMessage(`{"questions": [
		{"text": "What is the integral of $1/x$ from $1$ to $e$?"},
		{"text": "Prove that $\\sqrt{2}$ is irrational."},
		{"text": "Find all primes $p$ such that $p^2+2$ is prime."}
	]}`)
}

func fixedGenerator(mock *llm.MockProvider) *LLMGenerator {
	gen := New(mock, DefaultConfig())
	gen.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return gen
}

func TestGenerate_Valid(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validSetJSON()})
	gen := fixedGenerator(mock)

	qs, err := gen.Generate(context.Background(), subject.Mathematics, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
	if qs[0].ID != "Mathematics-daily-1700000000000-0" {
		t.Errorf("unexpected id: %q", qs[0].ID)
	}
	if qs[2].ID != "Mathematics-daily-1700000000000-2" {
		t.Errorf("unexpected id: %q", qs[2].ID)
	}
	if qs[1].Text != `Prove that $\sqrt{2}$ is irrational.` {
		t.Errorf("unexpected text: %q", qs[1].Text)
	}
	for _, q := range qs {
		if q.Subject != subject.Mathematics {
			t.Errorf("expected Mathematics, got %q", q.Subject)
		}
	}
}

func TestGenerate_RequestShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validSetJSON()})
	gen := fixedGenerator(mock)

	if _, err := gen.Generate(context.Background(), subject.Physics, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := mock.LastCall()
	if req.Schema == nil || req.Schema.Name != "daily-questions" {
		t.Fatalf("expected daily-questions schema, got %+v", req.Schema)
	}
	if req.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", req.Temperature)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != llm.RoleUser {
		t.Fatalf("expected one user message, got %+v", req.Messages)
	}
	msg := req.Messages[0].Content
	if !strings.Contains(msg, "Generate 3 distinct") || !strings.Contains(msg, "Physics") {
		t.Errorf("user message missing count or subject: %q", msg)
	}
}

func TestGenerate_DefaultCount(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validSetJSON()})
	gen := fixedGenerator(mock)

	if _, err := gen.Generate(context.Background(), subject.Chemistry, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(mock.LastCall().Messages[0].Content, "Generate 3 distinct") {
		t.Error("expected default count of 3")
	}
}

func TestGenerate_CodeFence(t *testing.T) {
	fenced := "```json\n" + string(validSetJSON()) + "\n```"
	mock := llm.NewMockProvider(llm.MockText(fenced))
	gen := fixedGenerator(mock)

	qs, err := gen.Generate(context.Background(), subject.Mathematics, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 3 {
		t.Errorf("expected 3 questions, got %d", len(qs))
	}
}

func TestGenerate_BareArray(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(`[{"text": "A"}, {"text": "B"}]`))
	gen := fixedGenerator(mock)

	qs, err := gen.Generate(context.Background(), subject.Informatics, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 || qs[1].Text != "B" {
		t.Errorf("unexpected questions: %+v", qs)
	}
}

func TestGenerate_InvalidJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("not json"))
	gen := fixedGenerator(mock)

	_, err := gen.Generate(context.Background(), subject.Mathematics, 3)
	if err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	gen := fixedGenerator(mock)

	_, err := gen.Generate(context.Background(), subject.Mathematics, 3)
	var rl *llm.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected wrapped ErrRateLimit, got %v", err)
	}
}

func TestGenerate_Rejected(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		validator string
	}{
		{"empty set", `{"questions": []}`, "structural"},
		{"blank question", `{"questions": [{"text": "A"}, {"text": "   "}]}`, "structural"},
		{"duplicate", `{"questions": [{"text": "Find x."}, {"text": "find   X."}]}`, "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockText(tt.content))
			gen := fixedGenerator(mock)

			_, err := gen.Generate(context.Background(), subject.Mathematics, 2)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Validator != tt.validator {
				t.Errorf("expected validator %q, got %q", tt.validator, verr.Validator)
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n[1]\n```", `[1]`},
		{"  ```json{\"a\":1}```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuestionSetSchema(t *testing.T) {
	def := QuestionSetSchema.Definition
	props, ok := def["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %v", def)
	}
	qs, ok := props["questions"].(map[string]any)
	if !ok || qs["type"] != "array" {
		t.Fatalf("questions should be an array: %v", props["questions"])
	}
}
