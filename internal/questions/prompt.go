package questions

import (
	"fmt"

	"github.com/abhisek/olytutor/internal/llm"
	"github.com/abhisek/olytutor/internal/subject"
)

const systemPrompt = `You are an Olympiad coach writing practice problems for high school students.

Rules:
- Every question must be challenging and at Olympiad level for its subject.
- Questions in one set must be distinct from each other.
- Write mathematical expressions in LaTeX-like syntax: single dollar signs for inline math (e.g. $x^2+1$) and double dollar signs for display math.
- Each question must be self-contained. Do not include answers or hints.
- Return only the JSON object described by the schema, with no surrounding text.`

// questionSetOutput is the raw LLM response before validation.
type questionSetOutput struct {
	Questions []questionOutput `json:"questions" jsonschema_description:"The generated practice questions"`
}

type questionOutput struct {
	Text string `json:"text" jsonschema_description:"The full question text"`
}

// QuestionSetSchema is the structured output schema for daily questions.
var QuestionSetSchema = llm.MustSchemaFor(
	"daily-questions",
	"A set of Olympiad practice questions",
	&questionSetOutput{},
)

func buildUserMessage(sub subject.Subject, count int) string {
	return fmt.Sprintf(
		"Generate %d distinct Olympiad-level practice questions for the subject: %s.\n"+
			"The questions should be challenging and suitable for high school students preparing for Olympiads.",
		count, sub)
}
