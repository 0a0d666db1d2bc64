package questions

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/olytutor/internal/store"
	"github.com/abhisek/olytutor/internal/subject"
)

// DayLayout formats the cache key for a calendar day.
const DayLayout = "2006-01-02"

// Service serves one question set per subject per day, generating it on
// first request and caching it in the store.
type Service struct {
	gen   Generator
	cache store.DailyQuestionRepo
	cfg   Config
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewService creates a daily question service. A nil logger uses the
// logrus standard logger.
func NewService(gen Generator, cache store.DailyQuestionRepo, cfg Config, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{gen: gen, cache: cache, cfg: cfg, log: log, now: time.Now}
}

// SetClock replaces the time source used to pick the current day.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Today returns today's questions for the subject, generating and caching
// them when no set exists for today yet.
func (s *Service) Today(ctx context.Context, sub subject.Subject) ([]Question, error) {
	day := s.now().Format(DayLayout)
	log := s.log.WithFields(logrus.Fields{"subject": sub, "day": day})

	cached, ok, err := s.cache.Get(ctx, string(sub), day)
	if err != nil {
		return nil, err
	}
	if ok {
		log.Debug("daily questions cache hit")
		out := make([]Question, len(cached))
		for i, c := range cached {
			out[i] = Question{ID: c.ID, Text: c.Text, Subject: sub}
		}
		return out, nil
	}

	log.Debug("daily questions cache miss")
	qs, err := s.gen.Generate(ctx, sub, s.cfg.Count)
	if err != nil {
		return nil, fmt.Errorf("generate daily questions: %w", err)
	}

	if err := s.cache.DeleteOtherDays(ctx, string(sub), day); err != nil {
		log.WithError(err).Warn("prune stale daily questions")
	}

	recs := make([]store.DailyQuestionRecord, len(qs))
	for i, q := range qs {
		recs[i] = store.DailyQuestionRecord{ID: q.ID, Text: q.Text}
	}
	if err := s.cache.Put(ctx, string(sub), day, recs); err != nil {
		return nil, fmt.Errorf("cache daily questions: %w", err)
	}
	return qs, nil
}

// Find returns the question with the given ID from today's set.
func (s *Service) Find(ctx context.Context, sub subject.Subject, id string) (Question, bool, error) {
	qs, err := s.Today(ctx, sub)
	if err != nil {
		return Question{}, false, err
	}
	for _, q := range qs {
		if q.ID == id {
			return q, true, nil
		}
	}
	return Question{}, false, nil
}
