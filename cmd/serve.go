package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/olytutor/internal/metrics"
	"github.com/abhisek/olytutor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tutor over HTTP",
	Long: "Starts the JSON API. Routes that need the LLM answer 503 when no provider is configured. " +
		"Prometheus metrics are exposed on /metrics.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = os.Getenv("OLYTUTOR_ADDR")
		}
		if addr == "" {
			addr = ":8080"
		}

		m := metrics.New(resolvedVersion())
		e, err := openEnv(cmd, envOptions{optionalLLM: true, recorder: m})
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(server.Options{
			Progress:  e.progress,
			Questions: e.questions,
			Tutor:     e.tutor,
			Metrics:   m,
			Logger:    e.log,
		})
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :8080, or OLYTUTOR_ADDR)")
}
