package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/olytutor/internal/llm"
	"github.com/abhisek/olytutor/internal/progress"
	"github.com/abhisek/olytutor/internal/questions"
	"github.com/abhisek/olytutor/internal/store"
	"github.com/abhisek/olytutor/internal/subject"
	"github.com/abhisek/olytutor/internal/tutor"
)

var (
	errNoProvider       = errors.New("no LLM provider configured")
	errQuestionNotFound = errors.New("question is not in today's set")
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		verr    *questions.ValidationError
		rl      *llm.ErrRateLimit
		inv     *llm.ErrInvalidResponse
		maxTok  *llm.ErrMaxTokensExceeded
		unavail *llm.ErrProviderUnavailable
	)
	switch {
	case errors.Is(err, progress.ErrNoSubject):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound), errors.Is(err, errQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, subject.ErrUnknownSubject),
		errors.Is(err, tutor.ErrEmptySolution),
		errors.Is(err, tutor.ErrEmptyQuery),
		errors.Is(err, tutor.ErrUnsupportedImage),
		errors.Is(err, tutor.ErrImageTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, errNoProvider):
		return http.StatusServiceUnavailable
	case errors.As(err, &verr), errors.As(err, &rl), errors.As(err, &inv),
		errors.As(err, &maxTok), errors.As(err, &unavail):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// abort records err for the request logger and writes a JSON error body.
// LLM failures are reported with a learner-facing message.
func (s *Server) abort(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	msg := err.Error()
	if status == http.StatusBadGateway {
		msg = llm.UserMessage(err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// fail aborts with the status statusFor derives from err.
func (s *Server) fail(c *gin.Context, err error) {
	s.abort(c, statusFor(err), err)
}

// failLLM is fail for errors returned by LLM-backed calls: anything not
// classified otherwise is an upstream failure.
func (s *Server) failLLM(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		status = http.StatusBadGateway
	}
	s.abort(c, status, err)
}
