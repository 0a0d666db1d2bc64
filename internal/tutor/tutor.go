package tutor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/olytutor/internal/llm"
	"github.com/abhisek/olytutor/internal/subject"
)

// Tutor talks to the LLM on behalf of the learner. It holds no
// conversation state; callers pass the history they want continued.
type Tutor struct {
	provider llm.Provider
	cfg      Config
	now      func() time.Time
}

// New creates a Tutor backed by provider.
func New(provider llm.Provider, cfg Config) *Tutor {
	return &Tutor{provider: provider, cfg: cfg, now: time.Now}
}

func (t *Tutor) message(role Role, text string) Message {
	return Message{ID: uuid.NewString(), Role: role, Text: text, Timestamp: t.now()}
}

// Evaluate grades a solution to question.
func (t *Tutor) Evaluate(ctx context.Context, sub subject.Subject, question, solution string) (Evaluation, error) {
	if strings.TrimSpace(solution) == "" {
		return Evaluation{}, ErrEmptySolution
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeEvaluate)

	submission := t.message(RoleUser, "My solution: "+solution)

	resp, err := t.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: evaluatePrompt(sub, question, solution)},
		},
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.EvaluateTemperature,
	})
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluate solution: %w", err)
	}

	feedback := t.message(RoleModel, resp.Text())
	return Evaluation{
		Submission: submission,
		Feedback:   feedback,
		Correct:    IsCorrect(feedback.Text),
	}, nil
}

// IsCorrect reports whether feedback marks the solution as correct.
func IsCorrect(feedback string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(feedback)), "correct")
}

// FollowUp sends query in the context of conv and returns conv extended
// with the query and the reply, plus the reply itself.
func (t *Tutor) FollowUp(ctx context.Context, conv Conversation, query string) (Conversation, Message, error) {
	if strings.TrimSpace(query) == "" {
		return conv, Message{}, ErrEmptyQuery
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeFollowUp)

	msgs := make([]llm.Message, 0, conv.Len()+1)
	for _, m := range conv.Messages {
		msgs = append(msgs, llm.Message{Role: providerRole(m.Role), Content: m.Text})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: query})

	resp, err := t.provider.Generate(ctx, llm.Request{
		System:      followUpSystem(conv.Subject),
		Messages:    msgs,
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.FollowUpTemperature,
	})
	if err != nil {
		return conv, Message{}, fmt.Errorf("follow-up: %w", err)
	}

	reply := t.message(RoleModel, resp.Text())
	return conv.Append(t.message(RoleUser, query), reply), reply, nil
}

// providerRole maps conversation roles onto the two provider roles.
// System notes are replayed as user turns.
func providerRole(r Role) llm.Role {
	if r == RoleModel {
		return llm.RoleAssistant
	}
	return llm.RoleUser
}

// SolveText explains a typed question. sub may be nil.
func (t *Tutor) SolveText(ctx context.Context, question string, sub *subject.Subject) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuery
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeSolveText)

	resp, err := t.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: solveTextPrompt(question, sub)},
		},
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.SolveTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("solve question: %w", err)
	}
	return resp.Text(), nil
}

// SolveImage explains the problem shown in img. sub may be nil.
func (t *Tutor) SolveImage(ctx context.Context, img Image, sub *subject.Subject) (string, error) {
	mime, err := CheckImage(img)
	if err != nil {
		return "", err
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeSolveImage)

	resp, err := t.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: solveImagePrompt(sub),
			Images:  []llm.Image{{MIMEType: mime, Data: img.Data}},
		}},
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.SolveTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("analyze image: %w", err)
	}
	return resp.Text(), nil
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// CheckImage validates img and returns its MIME type, sniffing it from the
// data when none was declared.
func CheckImage(img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", fmt.Errorf("%w: no data", ErrUnsupportedImage)
	}
	if len(img.Data) > MaxImageBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrImageTooLarge, len(img.Data), MaxImageBytes)
	}

	mime := strings.ToLower(strings.TrimSpace(img.MIMEType))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "" {
		mime = http.DetectContentType(img.Data)
	}
	if !allowedImageTypes[mime] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mime)
	}
	return mime, nil
}
