package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/olytutor/internal/chatui"
	"github.com/abhisek/olytutor/internal/llm"
	"github.com/abhisek/olytutor/internal/render"
	"github.com/abhisek/olytutor/internal/tutor"
)

var chatCmd = &cobra.Command{
	Use:   "chat <attempt-id>",
	Short: "Chat with the tutor about an attempt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{needLLM: true})
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		a, err := e.progress.Attempt(ctx, args[0])
		if err != nil {
			return err
		}
		p, err := e.progress.Profile(ctx)
		if err != nil {
			return err
		}

		_, err = chatui.Run(chatui.Options{
			Question:     a.QuestionText,
			Conversation: a.Conversation(),
			Ask:          e.tutor.FollowUp,
			Persist: func(ctx context.Context, msgs ...tutor.Message) error {
				return e.progress.AddMessages(ctx, a.ID, msgs...)
			},
			Streak: p.Streak.Current,
		})
		return err
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <attempt-id> <query>",
	Short: "Ask one follow-up question about an attempt",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{needLLM: true})
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		a, err := e.progress.Attempt(ctx, args[0])
		if err != nil {
			return err
		}

		conv := a.Conversation()
		next, reply, err := e.tutor.FollowUp(ctx, conv, strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("%s: %w", llm.UserMessage(err), err)
		}
		if err := e.progress.AddMessages(ctx, a.ID, next.Messages[conv.Len():]...); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), render.Terminal(reply.Text))
		return nil
	},
}
