package cmd

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/olytutor/internal/llm"
	"github.com/abhisek/olytutor/internal/progress"
	"github.com/abhisek/olytutor/internal/questions"
	"github.com/abhisek/olytutor/internal/store"
	"github.com/abhisek/olytutor/internal/tutor"
)

// env holds the services a command works with.
type env struct {
	store     *store.Store
	log       logrus.FieldLogger
	progress  *progress.Service
	provider  llm.Provider
	questions *questions.Service
	tutor     *tutor.Tutor
}

type envOptions struct {
	// needLLM fails the command when no provider is configured.
	needLLM bool

	// optionalLLM builds the LLM services when a provider is available.
	optionalLLM bool

	// recorder receives LLM metrics when set.
	recorder llm.Recorder
}

// openEnv opens the store and builds the services requested by opts.
func openEnv(cmd *cobra.Command, opts envOptions) (*env, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	log := logrus.StandardLogger()
	e := &env{
		store:    st,
		log:      log,
		progress: progress.NewService(progress.ReposFrom(st), log),
	}

	if !opts.needLLM && !opts.optionalLLM {
		return e, nil
	}

	provider, err := llm.NewProviderFromEnv(cmd.Context(), llm.Options{
		EventRepo: st.EventRepo(),
		Recorder:  opts.recorder,
		Logger:    log,
	})
	if err != nil {
		if opts.needLLM {
			st.Close()
			if errors.Is(err, llm.ErrNotConfigured) {
				return nil, fmt.Errorf("%w: set GEMINI_API_KEY (or OLYTUTOR_LLM_PROVIDER with its API key)", err)
			}
			return nil, err
		}
		log.WithError(err).Warn("LLM provider not configured, AI features are unavailable")
		return e, nil
	}

	qcfg := questions.DefaultConfig()
	e.provider = provider
	e.questions = questions.NewService(questions.New(provider, qcfg), st.DailyQuestionRepo(), qcfg, log)
	e.tutor = tutor.New(provider, tutor.DefaultConfig())
	return e, nil
}

func (e *env) Close() error {
	return e.store.Close()
}
