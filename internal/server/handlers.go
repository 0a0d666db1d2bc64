package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/olytutor/internal/mathfmt"
	"github.com/abhisek/olytutor/internal/progress"
	"github.com/abhisek/olytutor/internal/render"
	"github.com/abhisek/olytutor/internal/store"
	"github.com/abhisek/olytutor/internal/subject"
	"github.com/abhisek/olytutor/internal/tutor"
)

func (s *Server) handleFormat(c *gin.Context) {
	var req formatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}

	segs := mathfmt.Segments(req.Text)
	var inline, display int
	for _, seg := range segs {
		if seg.Kind == mathfmt.Display {
			display++
		} else {
			inline++
		}
	}
	s.metrics.ObserveSegments(mathfmt.Inline.String(), inline)
	s.metrics.ObserveSegments(mathfmt.Display.String(), display)

	rendered, err := render.HTML(req.Text)
	if err != nil {
		s.abort(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, formatResponse{
		HTML:     mathfmt.Format(req.Text),
		Rendered: rendered,
		Segments: len(segs),
	})
}

func (s *Server) handleGetSubject(c *gin.Context) {
	sub, err := s.progress.Subject(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, subjectResponse{Subject: string(sub)})
}

func (s *Server) handleSetSubject(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}
	sub, err := subject.Parse(req.Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.progress.SetSubject(c.Request.Context(), sub); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, subjectResponse{Subject: string(sub)})
}

func (s *Server) handleClearSubject(c *gin.Context) {
	if err := s.progress.ClearSubject(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleProfile(c *gin.Context) {
	p, err := s.progress.Profile(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(p))
}

func (s *Server) handleListAttempts(c *gin.Context) {
	opts := store.QueryOpts{Subject: c.Query("subject")}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.abort(c, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		opts.Limit = n
	}

	attempts, err := s.progress.Attempts(c.Request.Context(), opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]attemptJSON, len(attempts))
	for i, a := range attempts {
		out[i] = toAttemptJSON(a)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetAttempt(c *gin.Context) {
	a, err := s.progress.Attempt(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAttemptJSON(a))
}

func (s *Server) handleDaily(c *gin.Context) {
	ctx := c.Request.Context()
	sub, err := s.progress.Subject(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}

	qs, err := s.questions.Today(ctx, sub)
	if err != nil {
		s.failLLM(c, err)
		return
	}

	resp := dailyResponse{Subject: string(sub), Questions: make([]questionJSON, len(qs))}
	for i, q := range qs {
		resp.Questions[i] = questionJSON{
			ID:      q.ID,
			Text:    q.Text,
			HTML:    renderHTML(q.Text),
			Subject: string(q.Subject),
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSubmit(c *gin.Context) {
	ctx := c.Request.Context()
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}
	if strings.TrimSpace(req.Solution) == "" {
		s.fail(c, tutor.ErrEmptySolution)
		return
	}

	sub, err := s.progress.Subject(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	q, ok, err := s.questions.Find(ctx, sub, req.QuestionID)
	if err != nil {
		s.failLLM(c, err)
		return
	}
	if !ok {
		s.fail(c, fmt.Errorf("%w: %s", errQuestionNotFound, req.QuestionID))
		return
	}

	ev, err := s.tutor.Evaluate(ctx, sub, q.Text, req.Solution)
	if err != nil {
		s.failLLM(c, err)
		return
	}

	a, err := s.progress.RecordAttempt(ctx, progress.NewAttempt{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		Solution:     req.Solution,
		Correct:      ev.Correct,
		Subject:      sub,
		Messages:     []tutor.Message{ev.Submission, ev.Feedback},
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, submitResponse{
		Correct:  ev.Correct,
		Feedback: toMessageJSON(ev.Feedback),
		Attempt:  toAttemptJSON(a),
	})
}

func (s *Server) handleFollowUp(c *gin.Context) {
	ctx := c.Request.Context()
	var req followUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}

	a, err := s.progress.Attempt(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	conv, reply, err := s.tutor.FollowUp(ctx, a.Conversation(), req.Query)
	if err != nil {
		s.failLLM(c, err)
		return
	}

	added := conv.Messages[len(conv.Messages)-2:]
	if err := s.progress.AddMessages(ctx, a.ID, added...); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, followUpResponse{Reply: toMessageJSON(reply)})
}

func (s *Server) handleSolve(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		text string
		err  error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		text, err = s.solveImage(c)
	} else {
		var req solveRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			s.abort(c, http.StatusBadRequest, fmt.Errorf("invalid request: %w", bindErr))
			return
		}
		var sub *subject.Subject
		sub, err = s.solverSubject(c, req.Subject)
		if err == nil {
			text, err = s.tutor.SolveText(ctx, req.Question, sub)
		}
	}
	if err != nil {
		s.failLLM(c, err)
		return
	}

	c.JSON(http.StatusOK, solveResponse{Text: text, HTML: renderHTML(text)})
}

func (s *Server) solveImage(c *gin.Context) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return "", fmt.Errorf("%w: missing image field", tutor.ErrUnsupportedImage)
	}
	if fh.Size > tutor.MaxImageBytes {
		return "", fmt.Errorf("%w: %d bytes", tutor.ErrImageTooLarge, fh.Size)
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, tutor.MaxImageBytes+1))
	if err != nil {
		return "", err
	}

	sub, err := s.solverSubject(c, c.PostForm("subject"))
	if err != nil {
		return "", err
	}
	img := tutor.Image{MIMEType: fh.Header.Get("Content-Type"), Data: data}
	return s.tutor.SolveImage(c.Request.Context(), img, sub)
}

// solverSubject resolves an explicit subject, falling back to the selected
// one. The solver works without any subject.
func (s *Server) solverSubject(c *gin.Context, explicit string) (*subject.Subject, error) {
	if explicit != "" {
		sub, err := subject.Parse(explicit)
		if err != nil {
			return nil, err
		}
		return &sub, nil
	}
	sub, err := s.progress.Subject(c.Request.Context())
	if errors.Is(err, progress.ErrNoSubject) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
