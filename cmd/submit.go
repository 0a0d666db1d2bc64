package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/olytutor/internal/llm"
	"github.com/abhisek/olytutor/internal/progress"
	"github.com/abhisek/olytutor/internal/render"
	"github.com/abhisek/olytutor/internal/tutor"
	"github.com/abhisek/olytutor/internal/ui/theme"
)

var submitCmd = &cobra.Command{
	Use:   "submit <n> <solution|->",
	Short: "Submit a solution to today's question n",
	Long:  "Evaluates your solution to question n of 'olytutor daily'. Pass - to read the solution from stdin.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid question number %q", args[0])
		}

		solution := strings.Join(args[1:], " ")
		if solution == "-" {
			solution, err = readInput(cmd, nil)
			if err != nil {
				return err
			}
		}

		e, err := openEnv(cmd, envOptions{needLLM: true})
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		qs, err := todayQuestions(ctx, e)
		if err != nil {
			return err
		}
		if n < 1 || n > len(qs) {
			return fmt.Errorf("question %d does not exist, today has %d", n, len(qs))
		}
		q := qs[n-1]

		ev, err := e.tutor.Evaluate(ctx, q.Subject, q.Text, solution)
		if err != nil {
			return fmt.Errorf("%s: %w", llm.UserMessage(err), err)
		}

		a, err := e.progress.RecordAttempt(ctx, progress.NewAttempt{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Solution:     solution,
			Correct:      ev.Correct,
			Subject:      q.Subject,
			Messages:     []tutor.Message{ev.Submission, ev.Feedback},
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Verdict(ev.Correct))
		fmt.Fprintln(out)
		fmt.Fprintln(out, render.Terminal(ev.Feedback.Text))
		fmt.Fprintln(out)
		fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("Attempt %s. Ask follow-ups with: olytutor chat %s", a.ID, a.ID)))
		return nil
	},
}
