// Package progress tracks the learner's subject, attempts and daily streak.
package progress

import (
	"errors"
	"time"

	"github.com/abhisek/olytutor/internal/subject"
	"github.com/abhisek/olytutor/internal/tutor"
)

// ErrNoSubject is returned when an operation needs a subject and none is set.
var ErrNoSubject = errors.New("no olympiad subject selected")

// DayLayout is the calendar-day format used for streak dates.
const DayLayout = "2006-01-02"

// Streak is the run of consecutive active days.
type Streak struct {
	Current      int
	LastActivity string // YYYY-MM-DD, empty when never active
}

// NewAttempt is an attempt before it is assigned an ID and timestamp.
type NewAttempt struct {
	QuestionID   string
	QuestionText string
	Solution     string
	Correct      bool
	Subject      subject.Subject
	Messages     []tutor.Message
}

// Attempt is a recorded solution attempt with its feedback conversation.
type Attempt struct {
	ID           string
	QuestionID   string
	QuestionText string
	Solution     string
	Correct      bool
	Subject      subject.Subject
	CreatedAt    time.Time
	Messages     []tutor.Message
}

// Conversation returns the attempt's feedback conversation.
func (a Attempt) Conversation() tutor.Conversation {
	return tutor.Conversation{Subject: a.Subject}.Append(a.Messages...)
}

// SubjectStats summarizes attempts for one subject.
type SubjectStats struct {
	Subject  subject.Subject
	Attempts int
	Correct  int
}

// Accuracy returns the percentage of correct attempts, 0 when none.
func (s SubjectStats) Accuracy() float64 {
	return accuracy(s.Correct, s.Attempts)
}

// Struggle is a question the learner answered incorrectly, keyed by the
// start of its text.
type Struggle struct {
	Topic    string
	Errors   int
	Attempts int
}

// ErrorRate returns the percentage of attempts on the topic that failed.
func (s Struggle) ErrorRate() float64 {
	return accuracy(s.Errors, s.Attempts)
}

// Profile is the learner's progress summary.
type Profile struct {
	Subject       subject.Subject // empty when unset
	TotalAttempts int
	Correct       int
	BySubject     []SubjectStats
	Streak        Streak
	Recent        []Attempt
	Struggles     []Struggle
}

// Accuracy returns the overall percentage of correct attempts.
func (p Profile) Accuracy() float64 {
	return accuracy(p.Correct, p.TotalAttempts)
}

func accuracy(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
