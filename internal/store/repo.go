package store

import (
	"context"
	"time"
)

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Subject string    // exact subject match (attempts only)
	Purpose string    // exact purpose match (LLM events only)
}

// ProfileRepo stores the learner's chosen subject.
type ProfileRepo interface {
	// Subject returns the stored subject and whether one is set.
	Subject(ctx context.Context) (string, bool, error)

	// SetSubject replaces the stored subject.
	SetSubject(ctx context.Context, subject string) error

	// ClearSubject removes the stored subject. Clearing an unset subject
	// is not an error.
	ClearSubject(ctx context.Context) error
}

// AttemptRecord is a persisted solution attempt.
type AttemptRecord struct {
	ID           string
	Sequence     int64
	QuestionID   string
	QuestionText string
	Solution     string
	Correct      bool
	Subject      string
	CreatedAt    time.Time
	Messages     []MessageRecord
}

// MessageRecord is one chat message attached to an attempt.
type MessageRecord struct {
	ID        string
	Role      string
	Text      string
	CreatedAt time.Time
}

// AttemptRepo stores solution attempts and their feedback conversations.
type AttemptRepo interface {
	// Append stores a new attempt together with its initial messages.
	Append(ctx context.Context, rec AttemptRecord) error

	// AppendMessages adds follow-up messages to an existing attempt.
	// Returns ErrNotFound if the attempt does not exist.
	AppendMessages(ctx context.Context, attemptID string, msgs []MessageRecord) error

	// Get returns one attempt with all its messages, or ErrNotFound.
	Get(ctx context.Context, id string) (*AttemptRecord, error)

	// List returns attempts newest first, without messages.
	List(ctx context.Context, opts QueryOpts) ([]AttemptRecord, error)
}

// StreakRecord is the learner's daily activity streak.
type StreakRecord struct {
	Current      int
	LastActivity string // YYYY-MM-DD, empty when never active
}

// StreakRepo stores the activity streak.
type StreakRepo interface {
	// Get returns the stored streak, or a zero record if none was saved.
	Get(ctx context.Context) (StreakRecord, error)

	// Save replaces the stored streak.
	Save(ctx context.Context, rec StreakRecord) error
}

// DailyQuestionRecord is one cached daily question.
type DailyQuestionRecord struct {
	ID   string
	Text string
}

// DailyQuestionRepo caches generated daily questions per subject and day.
type DailyQuestionRepo interface {
	// Get returns the cached questions for subject and day (YYYY-MM-DD)
	// in their original order, and whether a cache entry exists.
	Get(ctx context.Context, subject, day string) ([]DailyQuestionRecord, bool, error)

	// Put replaces the cached questions for subject and day.
	Put(ctx context.Context, subject, day string, qs []DailyQuestionRecord) error

	// DeleteOtherDays removes cached questions of subject for every day
	// except keepDay.
	DeleteOtherDays(ctx context.Context, subject, keepDay string) error

	// DeleteAll removes every cached question.
	DeleteAll(ctx context.Context) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM events by one dimension (purpose or model).
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
