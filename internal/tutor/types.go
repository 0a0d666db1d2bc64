// Package tutor evaluates solutions, answers follow-up questions and solves
// free-form problems with the LLM.
package tutor

import (
	"errors"
	"time"

	"github.com/abhisek/olytutor/internal/subject"
)

var (
	// ErrEmptySolution is returned by Evaluate for a blank solution.
	ErrEmptySolution = errors.New("solution is empty")

	// ErrEmptyQuery is returned for a blank follow-up or solver question.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrUnsupportedImage is returned for images that are not JPEG, PNG or GIF.
	ErrUnsupportedImage = errors.New("unsupported image type")

	// ErrImageTooLarge is returned for images above MaxImageBytes.
	ErrImageTooLarge = errors.New("image too large")
)

// MaxImageBytes is the largest accepted solver image.
const MaxImageBytes = 10 << 20

// Role is the sender of a conversation message.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// Message is one entry in a tutoring conversation.
type Message struct {
	ID        string
	Role      Role
	Text      string
	Timestamp time.Time
}

// Conversation is the ordered message history for one question. It is a
// plain value: Append returns an extended copy and never mutates the
// receiver's backing array.
type Conversation struct {
	Subject  subject.Subject
	Messages []Message
}

// Append returns a new Conversation with msgs added at the end.
func (c Conversation) Append(msgs ...Message) Conversation {
	out := make([]Message, 0, len(c.Messages)+len(msgs))
	out = append(out, c.Messages...)
	out = append(out, msgs...)
	return Conversation{Subject: c.Subject, Messages: out}
}

// Len returns the number of messages.
func (c Conversation) Len() int {
	return len(c.Messages)
}

// Evaluation is the tutor's verdict on a submitted solution.
type Evaluation struct {
	// Submission is the learner's message, "My solution: ...".
	Submission Message

	// Feedback is the model's reply.
	Feedback Message

	// Correct is true when the feedback opens with "Correct".
	Correct bool
}

// Conversation returns the two-message conversation the evaluation starts.
func (e Evaluation) Conversation(sub subject.Subject) Conversation {
	return Conversation{Subject: sub}.Append(e.Submission, e.Feedback)
}

// Image is an uploaded picture of a problem.
type Image struct {
	// MIMEType is the declared type. When empty it is sniffed from Data.
	MIMEType string
	Data     []byte
}
