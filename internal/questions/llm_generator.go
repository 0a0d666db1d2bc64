package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/abhisek/olytutor/internal/llm"
	"github.com/abhisek/olytutor/internal/subject"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	now      func() time.Time
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg, now: time.Now}
}

// Generate asks the LLM for count questions and validates the result.
func (g *LLMGenerator) Generate(ctx context.Context, sub subject.Subject, count int) ([]Question, error) {
	if count <= 0 {
		count = g.config.Count
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeDailyQuestions)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(sub, count)},
		},
		Schema:      QuestionSetSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	raw, err := parseOutput(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	stamp := g.now().UnixMilli()
	qs := make([]Question, len(raw))
	for i, r := range raw {
		qs[i] = Question{
			ID:      fmt.Sprintf("%s-daily-%d-%d", sub, stamp, i),
			Text:    strings.TrimSpace(r.Text),
			Subject: sub,
		}
	}

	for _, v := range g.config.Validators {
		if verr := v.Validate(qs, count); verr != nil {
			return nil, verr
		}
	}

	return qs, nil
}

var fenceRe = regexp.MustCompile("(?s)^```\\w*\\s*\\n?(.*?)\\n?\\s*```$")

// stripCodeFence removes one Markdown code fence wrapping the whole body.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil && m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return s
}

// parseOutput accepts the schema's object form and, from providers without
// structured output, a bare array of questions.
func parseOutput(content json.RawMessage) ([]questionOutput, error) {
	body := []byte(stripCodeFence(string(content)))

	if strings.HasPrefix(string(body), "[") {
		var arr []questionOutput
		if err := json.Unmarshal(body, &arr); err != nil {
			return nil, err
		}
		return arr, nil
	}

	var out questionSetOutput
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}
