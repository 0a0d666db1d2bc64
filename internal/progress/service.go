package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/olytutor/internal/store"
	"github.com/abhisek/olytutor/internal/subject"
	"github.com/abhisek/olytutor/internal/tutor"
)

const (
	recentLimit    = 10
	struggleLimit  = 5
	topicKeyLength = 30
)

// Repos groups the repositories the service reads and writes.
type Repos struct {
	Profile  store.ProfileRepo
	Attempts store.AttemptRepo
	Streak   store.StreakRepo
	Daily    store.DailyQuestionRepo
}

// ReposFrom returns the repositories backed by st.
func ReposFrom(st *store.Store) Repos {
	return Repos{
		Profile:  st.ProfileRepo(),
		Attempts: st.AttemptRepo(),
		Streak:   st.StreakRepo(),
		Daily:    st.DailyQuestionRepo(),
	}
}

// Service records learner progress.
type Service struct {
	repos Repos
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewService creates a progress service. A nil logger uses the logrus
// standard logger.
func NewService(repos Repos, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{repos: repos, log: log, now: time.Now}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Subject returns the selected subject, or ErrNoSubject.
func (s *Service) Subject(ctx context.Context) (subject.Subject, error) {
	raw, ok, err := s.repos.Profile.Subject(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoSubject
	}
	sub, err := subject.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("stored subject: %w", err)
	}
	return sub, nil
}

// SetSubject selects sub and drops every cached daily question set.
func (s *Service) SetSubject(ctx context.Context, sub subject.Subject) error {
	if !sub.Valid() {
		return fmt.Errorf("%w: %q", subject.ErrUnknownSubject, string(sub))
	}
	if err := s.repos.Profile.SetSubject(ctx, string(sub)); err != nil {
		return err
	}
	s.log.WithField("subject", sub).Info("subject selected")
	return s.repos.Daily.DeleteAll(ctx)
}

// ClearSubject unsets the subject and drops every cached daily question set.
func (s *Service) ClearSubject(ctx context.Context) error {
	if err := s.repos.Profile.ClearSubject(ctx); err != nil {
		return err
	}
	s.log.Info("subject cleared")
	return s.repos.Daily.DeleteAll(ctx)
}

// RecordAttempt stores an attempt and counts today toward the streak.
func (s *Service) RecordAttempt(ctx context.Context, in NewAttempt) (Attempt, error) {
	now := s.now()
	a := Attempt{
		ID:           uuid.NewString(),
		QuestionID:   in.QuestionID,
		QuestionText: in.QuestionText,
		Solution:     in.Solution,
		Correct:      in.Correct,
		Subject:      in.Subject,
		CreatedAt:    now.UTC().Truncate(time.Millisecond),
		Messages:     in.Messages,
	}

	rec := store.AttemptRecord{
		ID:           a.ID,
		QuestionID:   a.QuestionID,
		QuestionText: a.QuestionText,
		Solution:     a.Solution,
		Correct:      a.Correct,
		Subject:      string(a.Subject),
		CreatedAt:    a.CreatedAt,
		Messages:     toRecords(a.Messages),
	}
	if err := s.repos.Attempts.Append(ctx, rec); err != nil {
		return Attempt{}, err
	}

	if err := s.touchStreak(ctx, now); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *Service) touchStreak(ctx context.Context, now time.Time) error {
	prev, err := s.repos.Streak.Get(ctx)
	if err != nil {
		return err
	}
	next := NextStreak(Streak{Current: prev.Current, LastActivity: prev.LastActivity}, now)
	if next.LastActivity == prev.LastActivity {
		return nil
	}
	return s.repos.Streak.Save(ctx, store.StreakRecord{Current: next.Current, LastActivity: next.LastActivity})
}

// AddMessages appends follow-up messages to a recorded attempt.
func (s *Service) AddMessages(ctx context.Context, attemptID string, msgs ...tutor.Message) error {
	return s.repos.Attempts.AppendMessages(ctx, attemptID, toRecords(msgs))
}

// Attempt returns one attempt with its conversation. Unknown IDs yield an
// error wrapping store.ErrNotFound.
func (s *Service) Attempt(ctx context.Context, id string) (Attempt, error) {
	rec, err := s.repos.Attempts.Get(ctx, id)
	if err != nil {
		return Attempt{}, err
	}
	return fromRecord(*rec), nil
}

// Attempts returns attempts newest first.
func (s *Service) Attempts(ctx context.Context, opts store.QueryOpts) ([]Attempt, error) {
	recs, err := s.repos.Attempts.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	out := make([]Attempt, len(recs))
	for i, r := range recs {
		out[i] = fromRecord(r)
	}
	return out, nil
}

// Profile summarizes all recorded attempts.
func (s *Service) Profile(ctx context.Context) (Profile, error) {
	var p Profile

	sub, err := s.Subject(ctx)
	if err != nil && !errors.Is(err, ErrNoSubject) {
		return Profile{}, err
	}
	p.Subject = sub

	streak, err := s.repos.Streak.Get(ctx)
	if err != nil {
		return Profile{}, err
	}
	p.Streak = Streak{Current: streak.Current, LastActivity: streak.LastActivity}

	all, err := s.Attempts(ctx, store.QueryOpts{})
	if err != nil {
		return Profile{}, err
	}

	bySubject := make(map[subject.Subject]*SubjectStats)
	for _, a := range all {
		p.TotalAttempts++
		st, ok := bySubject[a.Subject]
		if !ok {
			st = &SubjectStats{Subject: a.Subject}
			bySubject[a.Subject] = st
		}
		st.Attempts++
		if a.Correct {
			p.Correct++
			st.Correct++
		}
	}
	for _, known := range subject.All() {
		if st, ok := bySubject[known]; ok {
			p.BySubject = append(p.BySubject, *st)
		}
	}

	if len(all) > recentLimit {
		p.Recent = all[:recentLimit]
	} else {
		p.Recent = all
	}
	p.Struggles = struggles(all)
	return p, nil
}

// struggles ranks question topics by incorrect attempts.
func struggles(all []Attempt) []Struggle {
	type tally struct {
		errors, attempts int
		first            int
	}
	tallies := make(map[string]*tally)
	for i, a := range all {
		key := topicKey(a.QuestionText)
		t, ok := tallies[key]
		if !ok {
			t = &tally{first: i}
			tallies[key] = t
		}
		t.attempts++
		if !a.Correct {
			t.errors++
		}
	}

	var out []Struggle
	for key, t := range tallies {
		if t.errors > 0 {
			out = append(out, Struggle{Topic: key, Errors: t.errors, Attempts: t.attempts})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Errors != out[j].Errors {
			return out[i].Errors > out[j].Errors
		}
		return tallies[out[i].Topic].first < tallies[out[j].Topic].first
	})
	if len(out) > struggleLimit {
		out = out[:struggleLimit]
	}
	return out
}

func topicKey(text string) string {
	if utf8.RuneCountInString(text) <= topicKeyLength {
		return text
	}
	return string([]rune(text)[:topicKeyLength]) + "..."
}

func toRecords(msgs []tutor.Message) []store.MessageRecord {
	out := make([]store.MessageRecord, len(msgs))
	for i, m := range msgs {
		id := m.ID
		if id == "" {
			id = uuid.NewString()
		}
		out[i] = store.MessageRecord{ID: id, Role: string(m.Role), Text: m.Text, CreatedAt: m.Timestamp}
	}
	return out
}

func fromRecord(r store.AttemptRecord) Attempt {
	msgs := make([]tutor.Message, len(r.Messages))
	for i, m := range r.Messages {
		msgs[i] = tutor.Message{ID: m.ID, Role: tutor.Role(m.Role), Text: m.Text, Timestamp: m.CreatedAt}
	}
	return Attempt{
		ID:           r.ID,
		QuestionID:   r.QuestionID,
		QuestionText: r.QuestionText,
		Solution:     r.Solution,
		Correct:      r.Correct,
		Subject:      subject.Subject(r.Subject),
		CreatedAt:    r.CreatedAt,
		Messages:     msgs,
	}
}
