package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func evaluationSchema() *Schema {
	return &Schema{
		Name:        "test-evaluation",
		Description: "A graded solution",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"verdict": map[string]any{"type": "string", "enum": []any{"correct", "incorrect"}},
				"score":   map[string]any{"type": "integer", "minimum": 0},
				"steps": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"verdict", "score"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"verdict":"correct","score":7,"steps":["$x=2$"]}`, false},
		{"optional omitted", `{"verdict":"incorrect","score":0}`, false},
		{"missing required", `{"verdict":"correct"}`, true},
		{"wrong type", `{"verdict":"correct","score":"seven"}`, true},
		{"invalid enum", `{"verdict":"maybe","score":1}`, true},
		{"negative score", `{"verdict":"correct","score":-1}`, true},
		{"wrong item type", `{"verdict":"correct","score":1,"steps":[1,2]}`, true},
		{"malformed JSON", `{not json}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(evaluationSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T", err)
			}
			if string(invErr.Content) != tt.raw {
				t.Fatalf("error content = %q, want the raw response", invErr.Content)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`plain text is fine`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}
