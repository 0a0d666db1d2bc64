package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/olytutor/internal/llm"
)

var _ llm.Recorder = (*Metrics)(nil)

func TestObserveLLMRequest(t *testing.T) {
	m := New("test")

	m.ObserveLLMRequest("gemini-2.5-flash", "evaluate", true, 100, 40, 2*time.Second)
	m.ObserveLLMRequest("gemini-2.5-flash", "evaluate", false, 0, 0, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("gemini-2.5-flash", "evaluate", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("gemini-2.5-flash", "evaluate", "error")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.llmTokensSent.WithLabelValues("gemini-2.5-flash", "evaluate")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.llmTokensReceived.WithLabelValues("gemini-2.5-flash", "evaluate")))
}

func TestObserveSegments(t *testing.T) {
	m := New("test")
	m.ObserveSegments("inline", 3)
	m.ObserveSegments("display", 0)
	m.ObserveSegments("inline", 1)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.segments.WithLabelValues("inline")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.segments))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveLLMRequest("x", "y", true, 1, 1, time.Second)
	m.ObserveSegments("inline", 1)
	m.ObserveAPIEndpointDuration("/api/format", "POST", "200", 0.1)
	m.IncrementHTTPRequests()
	m.IncrementHTTPErrors()
}

func TestHandler(t *testing.T) {
	m := New("1.2.3")
	m.IncrementHTTPRequests()

	srv := httptest.NewServer(m.Handler(nil))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, "olytutor_http_requests_total 1"))
	assert.True(t, strings.Contains(text, `olytutor_system_info{version="1.2.3"} 1`))
}
