package cmd

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/olytutor/internal/llm"
	"github.com/abhisek/olytutor/internal/progress"
	"github.com/abhisek/olytutor/internal/render"
	"github.com/abhisek/olytutor/internal/subject"
	"github.com/abhisek/olytutor/internal/tutor"
	"github.com/abhisek/olytutor/internal/ui/theme"
)

var solveCmd = &cobra.Command{
	Use:   "solve [question]",
	Short: "Get a step-by-step solution to any problem",
	Long: "Explains a typed question, or the problem in a photo with --image. " +
		"Uses --subject, else the selected subject, else no subject context.",
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath, _ := cmd.Flags().GetString("image")
		question := strings.Join(args, " ")
		if imagePath == "" && strings.TrimSpace(question) == "" {
			return errors.New("provide a question or --image <path>")
		}
		if imagePath != "" && question != "" {
			return errors.New("a question and --image cannot be combined")
		}

		e, err := openEnv(cmd, envOptions{needLLM: true})
		if err != nil {
			return err
		}
		defer e.Close()

		sub, err := solveSubject(cmd, e)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var answer string
		if imagePath != "" {
			data, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			img := tutor.Image{
				MIMEType: mime.TypeByExtension(strings.ToLower(filepath.Ext(imagePath))),
				Data:     data,
			}
			answer, err = e.tutor.SolveImage(ctx, img, sub)
			if err != nil {
				return solveError(err)
			}
		} else {
			answer, err = e.tutor.SolveText(ctx, question, sub)
			if err != nil {
				return solveError(err)
			}
		}

		out := cmd.OutOrStdout()
		if sub != nil {
			fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("Solution (%s)", *sub)))
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, render.Terminal(answer))
		return nil
	},
}

// solveSubject resolves the optional subject context.
func solveSubject(cmd *cobra.Command, e *env) (*subject.Subject, error) {
	if name, _ := cmd.Flags().GetString("subject"); name != "" {
		sub, err := subject.Parse(name)
		if err != nil {
			return nil, err
		}
		return &sub, nil
	}
	sub, err := e.progress.Subject(cmd.Context())
	if errors.Is(err, progress.ErrNoSubject) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func solveError(err error) error {
	if errors.Is(err, tutor.ErrUnsupportedImage) || errors.Is(err, tutor.ErrImageTooLarge) ||
		errors.Is(err, tutor.ErrEmptyQuery) {
		return err
	}
	return fmt.Errorf("%s: %w", llm.UserMessage(err), err)
}

func init() {
	solveCmd.Flags().String("image", "", "Path to a JPEG, PNG or GIF photo of the problem")
	solveCmd.Flags().String("subject", "", "Subject context for the solution")
}
