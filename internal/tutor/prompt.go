package tutor

import (
	"fmt"

	"github.com/abhisek/olytutor/internal/subject"
)

const mathSyntax = `If using mathematical expressions, use LaTeX-like syntax within single dollar signs for inline math (e.g., $x^2+1$) and double dollar signs for display math (e.g., $$\sum_{n=1}^{\infty} \frac{1}{n^2} = \frac{\pi^2}{6}$$).`

func evaluatePrompt(sub subject.Subject, question, solution string) string {
	return fmt.Sprintf(`You are an AI Olympiad Tutor evaluating a student's solution.
Subject: %s
Question: "%s"
Student's Solution: "%s"

Evaluate the solution.
- If correct, provide brief positive feedback starting with "Correct!".
- If incorrect, explain why it's wrong step-by-step, starting with "Incorrect.". Be clear and encouraging.
- If partially correct or the solution approach is interesting but flawed, acknowledge the effort and then clarify mistakes.
- Keep the explanation concise initially, suitable for a first feedback. The user can ask for more details.
Your response should be formatted as plain text. %s`, sub, question, solution, mathSyntax)
}

func followUpSystem(sub subject.Subject) string {
	return fmt.Sprintf("You are an Olympiad AI Tutor for %s. The user is asking for clarification about a previous explanation related to a problem. "+
		"Be patient, encouraging, and provide deeper clarification with examples if needed. "+
		"Keep your responses helpful and focused on the user's query. If using mathematical expressions, use LaTeX-like syntax.", sub)
}

func subjectContext(sub *subject.Subject) string {
	if sub == nil {
		return "The question could be from any quantitative or scientific field."
	}
	return fmt.Sprintf("The question is related to the subject: %s.", *sub)
}

func solveTextPrompt(question string, sub *subject.Subject) string {
	return fmt.Sprintf(`Please solve the following question:
---
%s
---
%s

Provide a clear, step-by-step solution or explanation for the question above.
Format your answer clearly. %s
If the question is unclear or seems unanswerable, please state that and explain why.`, question, subjectContext(sub), mathSyntax)
}

func solveImagePrompt(sub *subject.Subject) string {
	return fmt.Sprintf(`Analyze the problem presented in the uploaded image. %s
Provide a clear, step-by-step solution or explanation.
If the image is unclear, or does not seem to contain a solvable question, please state that.
Format your answer clearly. %s`, subjectContext(sub), mathSyntax)
}
