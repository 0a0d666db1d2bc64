package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/olytutor/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event
// and logs failures.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	log       logrus.FieldLogger
}

// WithLogging wraps a Provider with event logging. repo may be nil, in
// which case events are only logged.
func WithLogging(p Provider, repo store.EventRepo, log logrus.FieldLogger) Provider {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LoggingProvider{inner: p, eventRepo: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	data := store.LLMRequestEventData{
		Provider:    l.inner.ModelID(),
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   latencyMs,
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}

	entry := l.log.WithFields(logrus.Fields{
		"purpose":    purpose,
		"model":      data.Model,
		"latency_ms": latencyMs,
	})
	if err != nil {
		data.ErrorMessage = err.Error()
		entry.WithError(err).Warn("LLM request failed")
	} else {
		entry.WithFields(logrus.Fields{
			"input_tokens":  data.InputTokens,
			"output_tokens": data.OutputTokens,
		}).Debug("LLM request completed")
	}

	// A failed event write must not fail the request.
	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
			l.log.WithError(logErr).Warn("failed to record LLM request event")
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
// Image payloads are summarized rather than inlined.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		for _, img := range m.Images {
			fmt.Fprintf(&b, "<image %s, %d bytes>\n", img.MIMEType, len(img.Data))
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(schemaDef)
			b.WriteString("\n")
		}
	}

	return b.String()
}
