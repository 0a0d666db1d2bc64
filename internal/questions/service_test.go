package questions

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/olytutor/internal/store"
	"github.com/abhisek/olytutor/internal/subject"
)

type stubGenerator struct {
	calls int
	err   error
}

func (g *stubGenerator) Generate(_ context.Context, sub subject.Subject, count int) ([]Question, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	out := make([]Question, count)
	for i := range out {
		out[i] = Question{
			ID:      string(sub) + "-daily-" + string(rune('a'+g.calls)) + "-" + string(rune('0'+i)),
			Text:    "question " + string(rune('0'+i)),
			Subject: sub,
		}
	}
	return out, nil
}

func newTestService(t *testing.T, gen Generator) (*Service, store.DailyQuestionRepo) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	repo := st.DailyQuestionRepo()
	return NewService(gen, repo, DefaultConfig(), nil), repo
}

func TestToday_GeneratesOncePerDay(t *testing.T) {
	gen := &stubGenerator{}
	svc, _ := newTestService(t, gen)
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)
	svc.SetClock(func() time.Time { return day })

	first, err := svc.Today(context.Background(), subject.Mathematics)
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := svc.Today(context.Background(), subject.Mathematics)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls)
}

func TestToday_NewDayRegenerates(t *testing.T) {
	gen := &stubGenerator{}
	svc, repo := newTestService(t, gen)
	ctx := context.Background()

	day1 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)
	svc.SetClock(func() time.Time { return day1 })
	first, err := svc.Today(ctx, subject.Physics)
	require.NoError(t, err)

	day2 := day1.AddDate(0, 0, 1)
	svc.SetClock(func() time.Time { return day2 })
	second, err := svc.Today(ctx, subject.Physics)
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls)
	assert.NotEqual(t, first[0].ID, second[0].ID)

	_, ok, err := repo.Get(ctx, string(subject.Physics), day1.Format(DayLayout))
	require.NoError(t, err)
	assert.False(t, ok, "previous day should be pruned")
}

func TestToday_SubjectsCachedSeparately(t *testing.T) {
	gen := &stubGenerator{}
	svc, _ := newTestService(t, gen)
	ctx := context.Background()

	_, err := svc.Today(ctx, subject.Mathematics)
	require.NoError(t, err)
	chem, err := svc.Today(ctx, subject.Chemistry)
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls)
	assert.Equal(t, subject.Chemistry, chem[0].Subject)
}

func TestToday_GeneratorError(t *testing.T) {
	boom := errors.New("boom")
	svc, repo := newTestService(t, &stubGenerator{err: boom})
	ctx := context.Background()

	_, err := svc.Today(ctx, subject.Mathematics)
	require.ErrorIs(t, err, boom)

	_, ok, err := repo.Get(ctx, string(subject.Mathematics), time.Now().Format(DayLayout))
	require.NoError(t, err)
	assert.False(t, ok, "failed generation must not be cached")
}

func TestFind(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{})
	ctx := context.Background()

	qs, err := svc.Today(ctx, subject.Mathematics)
	require.NoError(t, err)

	got, ok, err := svc.Find(ctx, subject.Mathematics, qs[1].ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, qs[1].Text, got.Text)

	_, ok, err = svc.Find(ctx, subject.Mathematics, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
