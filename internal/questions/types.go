// Package questions generates and caches the learner's daily practice
// questions.
package questions

import (
	"context"

	"github.com/abhisek/olytutor/internal/subject"
)

// Question is one Olympiad-level practice question.
type Question struct {
	// ID is unique across days: <subject>-daily-<unix-ms>-<index>.
	ID string

	// Text is the question prompt. May contain $...$ and $$...$$ math.
	Text string

	// Subject is the discipline the question was generated for.
	Subject subject.Subject
}

// Generator produces practice questions.
type Generator interface {
	// Generate returns count distinct questions for the subject.
	Generate(ctx context.Context, sub subject.Subject, count int) ([]Question, error)
}
