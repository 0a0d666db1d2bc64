package chatui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/olytutor/internal/llm"
	"github.com/abhisek/olytutor/internal/subject"
	"github.com/abhisek/olytutor/internal/tutor"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func typeText(m tea.Model, s string) tea.Model {
	for _, r := range s {
		m, _ = m.Update(keyPress(r))
	}
	return m
}

func baseConversation() tutor.Conversation {
	return tutor.Conversation{Subject: subject.Mathematics}.Append(
		tutor.Message{ID: "1", Role: tutor.RoleUser, Text: "My solution: $x^2$"},
		tutor.Message{ID: "2", Role: tutor.RoleModel, Text: "Incorrect."},
	)
}

func TestSend(t *testing.T) {
	var persisted []tutor.Message
	var asked string
	opts := Options{
		Question:     "Find $x$.",
		Conversation: baseConversation(),
		Ask: func(_ context.Context, conv tutor.Conversation, query string) (tutor.Conversation, tutor.Message, error) {
			asked = query
			reply := tutor.Message{ID: "4", Role: tutor.RoleModel, Text: "Try again."}
			return conv.Append(tutor.Message{ID: "3", Role: tutor.RoleUser, Text: query}, reply), reply, nil
		},
		Persist: func(_ context.Context, msgs ...tutor.Message) error {
			persisted = append(persisted, msgs...)
			return nil
		},
	}

	var m tea.Model = New(opts)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = typeText(m, "why?")

	m, cmd := m.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected async command")
	}
	if !m.(Model).waiting {
		t.Error("expected waiting state")
	}
	if body := m.(Model).body(80, 18); !strings.Contains(body, "thinking") {
		t.Error("expected thinking indicator")
	}

	// A second Enter while waiting does nothing.
	if _, again := m.Update(specialKey(tea.KeyEnter)); again != nil {
		t.Error("expected no command while waiting")
	}

	m, _ = m.Update(cmd())
	got := m.(Model)
	if asked != "why?" {
		t.Errorf("asked %q", asked)
	}
	if got.waiting {
		t.Error("should not be waiting")
	}
	if got.Conversation().Len() != 4 {
		t.Fatalf("expected 4 messages, got %d", got.Conversation().Len())
	}
	if len(persisted) != 2 || persisted[0].Text != "why?" || persisted[1].Text != "Try again." {
		t.Errorf("unexpected persisted messages: %+v", persisted)
	}
	if got.input.Value() != "" {
		t.Errorf("input should be cleared, got %q", got.input.Value())
	}

	body := got.body(80, 40)
	if !strings.Contains(body, "x²") {
		t.Errorf("math not rendered for the terminal: %q", body)
	}
	if !strings.Contains(body, "Try again.") {
		t.Error("reply missing from body")
	}
}

func TestSend_EmptyInput(t *testing.T) {
	var m tea.Model = New(Options{Conversation: baseConversation()})
	_, cmd := m.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("empty input should not send")
	}
}

func TestSend_Error(t *testing.T) {
	opts := Options{
		Conversation: baseConversation(),
		Ask: func(_ context.Context, conv tutor.Conversation, _ string) (tutor.Conversation, tutor.Message, error) {
			return conv, tutor.Message{}, &llm.ErrRateLimit{Err: errors.New("429")}
		},
		Persist: func(context.Context, ...tutor.Message) error {
			t.Error("failed exchange must not be persisted")
			return nil
		},
	}

	var m tea.Model = New(opts)
	m = typeText(m, "hm")
	m, cmd := m.Update(specialKey(tea.KeyEnter))
	m, _ = m.Update(cmd())

	got := m.(Model)
	if got.Conversation().Len() != 2 {
		t.Errorf("conversation should be unchanged, got %d", got.Conversation().Len())
	}
	if !strings.Contains(got.errMsg, "busy") {
		t.Errorf("unexpected error message: %q", got.errMsg)
	}
}

func TestQuit(t *testing.T) {
	var m tea.Model = New(Options{})
	_, cmd := m.Update(specialKey(tea.KeyEscape))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}

func TestTail(t *testing.T) {
	if got := tail("a\nb\nc", 2); got != "b\nc" {
		t.Errorf("tail = %q", got)
	}
	if got := tail("a", 5); got != "a" {
		t.Errorf("tail = %q", got)
	}
	if got := tail("a", 0); got != "" {
		t.Errorf("tail = %q", got)
	}
}
