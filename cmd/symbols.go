package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/olytutor/internal/mathfmt"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List the LaTeX commands the formatter replaces",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-18s  %s\n", "Command", "Output")
		fmt.Fprintln(out, strings.Repeat("─", 30))
		for _, s := range mathfmt.Symbols() {
			fmt.Fprintf(out, "%-18s  %s\n", strings.TrimSpace(s.Command), strings.TrimSpace(s.Replacement))
		}
	},
}
