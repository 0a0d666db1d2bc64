package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/olytutor/internal/progress"
	"github.com/abhisek/olytutor/internal/subject"
	"github.com/abhisek/olytutor/internal/ui/theme"
)

var subjectCmd = &cobra.Command{
	Use:   "subject",
	Short: "Show the selected Olympiad subject",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		sub, err := e.progress.Subject(cmd.Context())
		if errors.Is(err, progress.ErrNoSubject) {
			fmt.Fprintln(cmd.OutOrStdout(), "No subject selected. Choose one with: olytutor subject set <name>")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme.Title.Render(string(sub)))
		return nil
	},
}

var subjectSetCmd = &cobra.Command{
	Use:       "set <name>",
	Short:     "Select the subject you are preparing for",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"mathematics", "physics", "chemistry", "informatics"},
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := subject.Parse(args[0])
		if err != nil {
			return err
		}

		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.progress.SetSubject(cmd.Context(), sub); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subject set to %s.\n", sub)
		return nil
	},
}

var subjectClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the selected subject",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.progress.ClearSubject(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Subject cleared.")
		return nil
	},
}

var subjectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available subjects",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range subject.All() {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
	},
}

func init() {
	subjectCmd.AddCommand(subjectSetCmd)
	subjectCmd.AddCommand(subjectClearCmd)
	subjectCmd.AddCommand(subjectListCmd)
}
