package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/olytutor/internal/llm"
	"github.com/abhisek/olytutor/internal/metrics"
	"github.com/abhisek/olytutor/internal/progress"
	"github.com/abhisek/olytutor/internal/questions"
	"github.com/abhisek/olytutor/internal/store"
	"github.com/abhisek/olytutor/internal/tutor"
)

const dailyJSON = `{"questions": [
	{"text": "Find $x$ if $x^2 = 4$."},
	{"text": "Prove $\\sqrt{2}$ is irrational."},
	{"text": "Compute $\\frac{1}{2} + \\frac{1}{3}$."}
]}`

type testEnv struct {
	router *gin.Engine
	mock   *llm.MockProvider
}

func setupTestEnv(t *testing.T, withLLM bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log, _ := test.NewNullLogger()
	opts := Options{
		Progress: progress.NewService(progress.ReposFrom(st), log),
		Metrics:  metrics.New("test"),
		Logger:   log,
	}

	env := &testEnv{}
	if withLLM {
		env.mock = llm.NewMockProvider()
		cfg := questions.DefaultConfig()
		opts.Questions = questions.NewService(questions.New(env.mock, cfg), st.DailyQuestionRepo(), cfg, log)
		opts.Tutor = tutor.New(env.mock, tutor.DefaultConfig())
	}
	env.router = New(opts).Router()
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	env := setupTestEnv(t, false)

	w := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "olytutor_http_requests_total")
}

func TestFormat(t *testing.T) {
	env := setupTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/format", formatRequest{Text: `Let $x^2$ and $$\alpha$$`})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[formatResponse](t, w)
	assert.Equal(t, "Let x<sup>2</sup> and α", resp.HTML)
	assert.Equal(t, 2, resp.Segments)
	assert.Contains(t, resp.Rendered, `<span class="math inline">x<sup>2</sup></span>`)
	assert.Contains(t, resp.Rendered, `<span class="math display">α</span>`)
}

func TestFormat_BadBody(t *testing.T) {
	env := setupTestEnv(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/format", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubjectRoutes(t *testing.T) {
	env := setupTestEnv(t, false)

	w := env.do(t, http.MethodGet, "/api/subject", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPut, "/api/subject", subjectRequest{Subject: "biology"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/subject", subjectRequest{Subject: "phys"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Physics", decode[subjectResponse](t, w).Subject)

	w = env.do(t, http.MethodGet, "/api/subject", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Physics", decode[subjectResponse](t, w).Subject)

	w = env.do(t, http.MethodDelete, "/api/subject", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/subject", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLLMRoutesWithoutProvider(t *testing.T) {
	env := setupTestEnv(t, false)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/daily"},
		{http.MethodPost, "/api/attempts"},
		{http.MethodPost, "/api/attempts/x/messages"},
		{http.MethodPost, "/api/solve"},
	} {
		w := env.do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, tc.path)
	}
}

func TestDaily_NoSubject(t *testing.T) {
	env := setupTestEnv(t, true)
	w := env.do(t, http.MethodGet, "/api/daily", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, env.mock.CallCount())
}

func TestDaily_LLMFailure(t *testing.T) {
	env := setupTestEnv(t, true)
	env.mock.AddResponse(llm.MockResponse{Err: &llm.ErrRateLimit{}})

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/subject", subjectRequest{Subject: "math"}).Code)

	w := env.do(t, http.MethodGet, "/api/daily", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decode[errorResponse](t, w).Error, "busy")
}

func TestPracticeFlow(t *testing.T) {
	env := setupTestEnv(t, true)
	env.mock.AddResponse(llm.MockText(dailyJSON))
	env.mock.AddResponse(llm.MockText("Correct! $x = \\pm 2$."))
	env.mock.AddResponse(llm.MockText("Because $(-2)^2 = 4$."))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/subject", subjectRequest{Subject: "Mathematics"}).Code)

	w := env.do(t, http.MethodGet, "/api/daily", nil)
	require.Equal(t, http.StatusOK, w.Code)
	daily := decode[dailyResponse](t, w)
	require.Len(t, daily.Questions, 3)
	assert.Equal(t, "Mathematics", daily.Subject)
	assert.Contains(t, daily.Questions[0].HTML, `<span class="math inline">x<sup>2</sup> = 4</span>`)

	// Cached: no further LLM call.
	w = env.do(t, http.MethodGet, "/api/daily", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.mock.CallCount())

	w = env.do(t, http.MethodPost, "/api/attempts", submitRequest{QuestionID: daily.Questions[0].ID, Solution: "x = 2 or x = -2"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode[submitResponse](t, w)
	assert.True(t, sub.Correct)
	assert.Equal(t, "model", sub.Feedback.Role)
	assert.Contains(t, sub.Feedback.HTML, "±")
	require.Len(t, sub.Attempt.Messages, 2)
	assert.Equal(t, "My solution: x = 2 or x = -2", sub.Attempt.Messages[0].Text)

	w = env.do(t, http.MethodPost, "/api/attempts/"+sub.Attempt.ID+"/messages", followUpRequest{Query: "Why -2?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Because $(-2)^2 = 4$.", decode[followUpResponse](t, w).Reply.Text)

	w = env.do(t, http.MethodGet, "/api/attempts/"+sub.Attempt.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[attemptJSON](t, w)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "Why -2?", got.Messages[2].Text)

	followReq := env.mock.LastCall()
	assert.Len(t, followReq.Messages, 3)
	assert.Contains(t, followReq.System, "Mathematics")

	w = env.do(t, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	prof := decode[profileResponse](t, w)
	assert.Equal(t, 1, prof.TotalAttempts)
	assert.Equal(t, 1, prof.Correct)
	assert.Equal(t, 1, prof.Streak)
	require.Len(t, prof.Recent, 1)
	assert.Empty(t, prof.Recent[0].Messages)

	w = env.do(t, http.MethodGet, "/api/attempts?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]attemptJSON](t, w), 1)
}

func TestSubmit_Errors(t *testing.T) {
	env := setupTestEnv(t, true)
	env.mock.AddResponse(llm.MockText(dailyJSON))

	w := env.do(t, http.MethodPost, "/api/attempts", submitRequest{QuestionID: "q", Solution: "x"})
	assert.Equal(t, http.StatusConflict, w.Code)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/subject", subjectRequest{Subject: "math"}).Code)

	w = env.do(t, http.MethodPost, "/api/attempts", submitRequest{QuestionID: "q", Solution: "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/attempts", submitRequest{QuestionID: "missing", Solution: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/attempts/missing/messages", followUpRequest{Query: "why"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/attempts/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/attempts?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSolve_Text(t *testing.T) {
	env := setupTestEnv(t, true)
	env.mock.AddResponse(llm.MockText("Answer: $\\frac{5}{6}$"))

	w := env.do(t, http.MethodPost, "/api/solve", solveRequest{Question: "1/2 + 1/3?", Subject: "chem"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[solveResponse](t, w)
	assert.Equal(t, "Answer: $\\frac{5}{6}$", resp.Text)
	assert.Contains(t, resp.HTML, "(5)/(6)")
	assert.Contains(t, env.mock.LastCall().Messages[0].Content, "subject: Chemistry")

	w = env.do(t, http.MethodPost, "/api/solve", solveRequest{Question: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSolve_Image(t *testing.T) {
	env := setupTestEnv(t, true)
	env.mock.AddResponse(llm.MockText("A right triangle."))

	post := func(contentType string, data []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="q.png"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/solve", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		return w
	}

	w := post("image/png", []byte("\x89PNG\r\n\x1a\n"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "A right triangle.", decode[solveResponse](t, w).Text)
	imgs := env.mock.LastCall().Messages[0].Images
	require.Len(t, imgs, 1)
	assert.Equal(t, "image/png", imgs[0].MIMEType)

	w = post("application/pdf", []byte("%PDF-1.4"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, env.mock.CallCount())
}
