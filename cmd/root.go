package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/olytutor/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "olytutor",
	Short: "AI tutor for Olympiad preparation",
	Long: "Olytutor serves daily Olympiad practice questions, evaluates your solutions " +
		"and explains them, rendering LaTeX-like math for the terminal and the web.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configureLogging(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides OLYTUTOR_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default warn, or OLYTUTOR_LOG_LEVEL)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(subjectCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// configureLogging sets up the standard logrus logger from flags and env.
func configureLogging(cmd *cobra.Command) error {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = os.Getenv("OLYTUTOR_LOG_LEVEL")
	}
	if level == "" {
		level = "warn"
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := logrus.StandardLogger()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(lvl)
	if asJSON, _ := cmd.Flags().GetBool("log-json"); asJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then OLYTUTOR_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
