package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/olytutor/internal/mathfmt"
	"github.com/abhisek/olytutor/internal/render"
)

var formatCmd = &cobra.Command{
	Use:   "format [file]",
	Short: "Convert $...$ and $$...$$ math in text to HTML",
	Long: "Reads text from file (or stdin) and rewrites every math span. By default the " +
		"output is the raw math HTML fragment; --html renders Markdown too and --terminal " +
		"prints Unicode for the terminal.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asHTML, _ := cmd.Flags().GetBool("html")
		asTerminal, _ := cmd.Flags().GetBool("terminal")
		if asHTML && asTerminal {
			return fmt.Errorf("--html and --terminal are mutually exclusive")
		}

		in, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case asHTML:
			html, err := render.HTML(in)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}
			fmt.Fprint(out, html)
		case asTerminal:
			fmt.Fprintln(out, render.Terminal(in))
		default:
			fmt.Fprint(out, mathfmt.Format(in))
		}
		return nil
	},
}

// readInput returns the contents of args[0], or stdin when no file or "-"
// is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(b), nil
}

func init() {
	formatCmd.Flags().Bool("html", false, "Render Markdown and math to an HTML fragment")
	formatCmd.Flags().Bool("terminal", false, "Render math with Unicode super- and subscripts")
}
