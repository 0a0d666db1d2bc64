package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/olytutor/internal/questions"
	"github.com/abhisek/olytutor/internal/render"
	"github.com/abhisek/olytutor/internal/ui/theme"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show today's practice questions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{needLLM: true})
		if err != nil {
			return err
		}
		defer e.Close()

		qs, err := todayQuestions(cmd.Context(), e)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("Daily Challenges: %s", qs[0].Subject)))
		fmt.Fprintln(out)
		printQuestions(out, qs)
		fmt.Fprintln(out, theme.Hint.Render("Submit with: olytutor submit <n> <solution>"))
		return nil
	},
}

func todayQuestions(ctx context.Context, e *env) ([]questions.Question, error) {
	sub, err := e.progress.Subject(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: choose one with 'olytutor subject set <name>'", err)
	}
	qs, err := e.questions.Today(ctx, sub)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("no questions available for %s today", sub)
	}
	return qs, nil
}

func printQuestions(w io.Writer, qs []questions.Question) {
	for i, q := range qs {
		fmt.Fprintf(w, "%s %s\n\n", theme.Label.Render(fmt.Sprintf("%d.", i+1)), render.Terminal(q.Text))
	}
}
