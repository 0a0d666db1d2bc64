package server

import (
	"time"

	"github.com/abhisek/olytutor/internal/progress"
	"github.com/abhisek/olytutor/internal/render"
	"github.com/abhisek/olytutor/internal/tutor"
)

type formatRequest struct {
	Text string `json:"text"`
}

type formatResponse struct {
	HTML     string `json:"html"`
	Rendered string `json:"rendered"`
	Segments int    `json:"segments"`
}

type subjectRequest struct {
	Subject string `json:"subject"`
}

type subjectResponse struct {
	Subject string `json:"subject"`
}

type questionJSON struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
	Subject string `json:"subject"`
}

type dailyResponse struct {
	Subject   string         `json:"subject"`
	Questions []questionJSON `json:"questions"`
}

type submitRequest struct {
	QuestionID string `json:"question_id"`
	Solution   string `json:"solution"`
}

type submitResponse struct {
	Correct  bool        `json:"correct"`
	Feedback messageJSON `json:"feedback"`
	Attempt  attemptJSON `json:"attempt"`
}

type followUpRequest struct {
	Query string `json:"query"`
}

type followUpResponse struct {
	Reply messageJSON `json:"reply"`
}

type solveRequest struct {
	Question string `json:"question"`
	Subject  string `json:"subject,omitempty"`
}

type solveResponse struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

type messageJSON struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	HTML      string    `json:"html"`
	Timestamp time.Time `json:"timestamp"`
}

type attemptJSON struct {
	ID           string        `json:"id"`
	QuestionID   string        `json:"question_id"`
	QuestionText string        `json:"question_text"`
	Solution     string        `json:"solution"`
	Correct      bool          `json:"correct"`
	Subject      string        `json:"subject"`
	CreatedAt    time.Time     `json:"created_at"`
	Messages     []messageJSON `json:"messages,omitempty"`
}

type subjectStatsJSON struct {
	Subject  string  `json:"subject"`
	Attempts int     `json:"attempts"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

type struggleJSON struct {
	Topic     string  `json:"topic"`
	Errors    int     `json:"errors"`
	Attempts  int     `json:"attempts"`
	ErrorRate float64 `json:"error_rate"`
}

type profileResponse struct {
	Subject       string             `json:"subject,omitempty"`
	TotalAttempts int                `json:"total_attempts"`
	Correct       int                `json:"correct"`
	Accuracy      float64            `json:"accuracy"`
	Streak        int                `json:"streak"`
	LastActivity  string             `json:"last_activity,omitempty"`
	BySubject     []subjectStatsJSON `json:"by_subject"`
	Recent        []attemptJSON      `json:"recent"`
	Struggles     []struggleJSON     `json:"struggles"`
}

// renderHTML renders tutor text, falling back to the raw text when
// Markdown conversion fails.
func renderHTML(text string) string {
	out, err := render.HTML(text)
	if err != nil {
		return text
	}
	return out
}

func toMessageJSON(m tutor.Message) messageJSON {
	return messageJSON{
		ID:        m.ID,
		Role:      string(m.Role),
		Text:      m.Text,
		HTML:      renderHTML(m.Text),
		Timestamp: m.Timestamp,
	}
}

func toAttemptJSON(a progress.Attempt) attemptJSON {
	out := attemptJSON{
		ID:           a.ID,
		QuestionID:   a.QuestionID,
		QuestionText: a.QuestionText,
		Solution:     a.Solution,
		Correct:      a.Correct,
		Subject:      string(a.Subject),
		CreatedAt:    a.CreatedAt,
	}
	for _, m := range a.Messages {
		out.Messages = append(out.Messages, toMessageJSON(m))
	}
	return out
}

func toProfileResponse(p progress.Profile) profileResponse {
	out := profileResponse{
		Subject:       string(p.Subject),
		TotalAttempts: p.TotalAttempts,
		Correct:       p.Correct,
		Accuracy:      p.Accuracy(),
		Streak:        p.Streak.Current,
		LastActivity:  p.Streak.LastActivity,
		BySubject:     []subjectStatsJSON{},
		Recent:        []attemptJSON{},
		Struggles:     []struggleJSON{},
	}
	for _, s := range p.BySubject {
		out.BySubject = append(out.BySubject, subjectStatsJSON{
			Subject:  string(s.Subject),
			Attempts: s.Attempts,
			Correct:  s.Correct,
			Accuracy: s.Accuracy(),
		})
	}
	for _, a := range p.Recent {
		a.Messages = nil
		out.Recent = append(out.Recent, toAttemptJSON(a))
	}
	for _, s := range p.Struggles {
		out.Struggles = append(out.Struggles, struggleJSON{
			Topic:     s.Topic,
			Errors:    s.Errors,
			Attempts:  s.Attempts,
			ErrorRate: s.ErrorRate(),
		})
	}
	return out
}
