package llm

import (
	"encoding/json"
	"testing"
)

type testQuestionSet struct {
	Questions []struct {
		Text string `json:"text" jsonschema_description:"Problem statement"`
	} `json:"questions"`
	Note string `json:"note,omitempty"`
}

func TestSchemaFor(t *testing.T) {
	s, err := SchemaFor("question-set", "A set of problems", testQuestionSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "question-set" {
		t.Fatalf("name = %q", s.Name)
	}
	if _, ok := s.Definition["$schema"]; ok {
		t.Fatal("$schema should be stripped")
	}
	if s.Definition["type"] != "object" {
		t.Fatalf("type = %v, want object", s.Definition["type"])
	}

	req, _ := s.Definition["required"].([]any)
	if len(req) != 1 || req[0] != "questions" {
		t.Fatalf("required = %v, want [questions]", req)
	}

	props := s.Definition["properties"].(map[string]any)
	items := props["questions"].(map[string]any)["items"].(map[string]any)
	text := items["properties"].(map[string]any)["text"].(map[string]any)
	if text["description"] != "Problem statement" {
		t.Fatalf("text description = %v", text["description"])
	}
}

func TestSchemaFor_ValidatesResponses(t *testing.T) {
	s := MustSchemaFor("question-set-validate", "", testQuestionSet{})

	if err := validateResponse(s, json.RawMessage(`{"questions":[{"text":"Prove $a^2 \\ge 0$."}]}`)); err != nil {
		t.Fatalf("valid response rejected: %v", err)
	}
	if err := validateResponse(s, json.RawMessage(`{"questions":[{}]}`)); err == nil {
		t.Fatal("missing text should fail validation")
	}
}
