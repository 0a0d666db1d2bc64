package llm

import (
	"context"
	"time"
)

// Recorder receives one observation per LLM request.
type Recorder interface {
	ObserveLLMRequest(model, purpose string, success bool, inputTokens, outputTokens int, elapsed time.Duration)
}

// MetricsProvider is a decorator that reports request counts, token usage
// and latency to a Recorder.
type MetricsProvider struct {
	inner    Provider
	recorder Recorder
}

// WithMetrics wraps a Provider with metrics reporting.
func WithMetrics(p Provider, r Recorder) Provider {
	return &MetricsProvider{inner: p, recorder: r}
}

func (m *MetricsProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := m.inner.Generate(ctx, req)

	var in, out int
	model := m.inner.ModelID()
	if resp != nil {
		in, out = resp.Usage.InputTokens, resp.Usage.OutputTokens
		if resp.Model != "" {
			model = resp.Model
		}
	}
	m.recorder.ObserveLLMRequest(model, PurposeFrom(ctx), err == nil, in, out, time.Since(start))

	return resp, err
}

func (m *MetricsProvider) ModelID() string {
	return m.inner.ModelID()
}
