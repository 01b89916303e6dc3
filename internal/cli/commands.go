package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/glabrego/memefeed-cli/internal/app"
	"github.com/glabrego/memefeed-cli/internal/feedapi"
)

func newStatusCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the catalogue size and like count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.scriptSetup(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()

			status, err := newFeedClient(cfg).Status(ctx)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("fetch status: %w", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d\nliked: %d\n", status.PathsLoaded, status.LikedCount)
			return nil
		},
	}
}

func newRecommendCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Print one recommendation batch as index, filename and URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.scriptSetup(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()

			items, err := app.NewRemote(newFeedClient(cfg)).Recommend(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := cmd.OutOrStdout()
			for _, item := range items {
				fmt.Fprintf(out, "%d\t%s\t%s\n", item.Index, item.Filename(), item.DisplayURL)
			}
			return nil
		},
	}
}

func newFeedbackCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:       "feedback <like|skip> <index>",
		Short:     "Send one like or skip for an item",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(feedapi.ActionLike), string(feedapi.ActionSkip)},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := feedapi.Action(args[0])
			if action != feedapi.ActionLike && action != feedapi.ActionSkip {
				return writeErr(cmd, fmt.Errorf("action must be like or skip, got %q", args[0]))
			}
			index, err := strconv.Atoi(args[1])
			if err != nil || index < 0 {
				return writeErr(cmd, fmt.Errorf("index must be a non-negative integer, got %q", args[1]))
			}

			cfg, err := a.scriptSetup(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()

			if _, err := newFeedClient(cfg).SendFeedback(ctx, index, action); err != nil {
				return writeErr(cmd, fmt.Errorf("send feedback: %w", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s for item %d\n", action, index)
			return nil
		},
	}
}
