// Package sessionscmder provides the sessions command for inspecting and
// removing chat sessions on a running clerk API server.
package sessionscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/clerk/pkg/cliui"
	"github.com/papercomputeco/clerk/pkg/client"
	"github.com/papercomputeco/clerk/pkg/config"
)

const sessionsLongDesc string = `Inspect and remove chat sessions.

Sessions live in the memory of the clerk API server and hold the last
exchanges of each conversation.

Examples:
  clerk sessions list
  clerk sessions show <session-id>
  clerk sessions delete <session-id>
  clerk sessions clear`

const sessionsShortDesc string = "Inspect and remove chat sessions"

func NewSessionsCmd() *cobra.Command {
	var apiTarget string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: sessionsShortDesc,
		Long:  sessionsLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				apiTarget = cfg.Client.APITarget
			}
			return nil
		},
	}

	def := config.Flags[config.FlagAPITarget]
	cmd.PersistentFlags().StringVarP(&apiTarget, def.Name, def.Shorthand,
		config.NewDefaultConfig().Client.APITarget, def.Description)

	newClient := func() (*client.Client, error) {
		return client.New(apiTarget)
	}

	cmd.AddCommand(newListCmd(newClient))
	cmd.AddCommand(newShowCmd(newClient))
	cmd.AddCommand(newDeleteCmd(newClient))
	cmd.AddCommand(newClearCmd(newClient))

	return cmd
}

type clientFunc func() (*client.Client, error)

func newListCmd(newClient clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd.Context(), newClient, func(ctx context.Context, cl *client.Client) error {
				sessions, err := cl.ListSessions(ctx)
				if err != nil {
					return err
				}

				if len(sessions) == 0 {
					fmt.Printf("\n  %s No active sessions.\n\n", cliui.DimStyle.Render("●"))
					return nil
				}

				fmt.Println()
				for _, s := range sessions {
					fmt.Printf("  %s  %s  %s\n",
						cliui.KeyStyle.Render(s.ID),
						cliui.ValueStyle.Render(fmt.Sprintf("%d turns", s.Turns)),
						cliui.DimStyle.Render("last active "+s.LastActivity.Local().Format("2006-01-02 15:04:05")),
					)
				}
				fmt.Println()
				return nil
			})
		},
	}
}

func newShowCmd(newClient clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the history of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), newClient, func(ctx context.Context, cl *client.Client) error {
				turns, err := cl.SessionHistory(ctx, args[0])
				if err != nil {
					return err
				}

				fmt.Println()
				for _, t := range turns {
					fmt.Printf("  %s %s\n", cliui.NameStyle.Render("you>"), t.User)
					fmt.Printf("  %s %s\n", cliui.DimStyle.Render("clerk>"), t.Bot)
					fmt.Printf("  %s\n\n", cliui.DimStyle.Render(t.Timestamp.Local().Format("2006-01-02 15:04:05")))
				}
				return nil
			})
		},
	}
}

func newDeleteCmd(newClient clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), newClient, func(ctx context.Context, cl *client.Client) error {
				if err := cl.DeleteSession(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("\n  %s Deleted session %s\n\n", cliui.SuccessMark, cliui.KeyStyle.Render(args[0]))
				return nil
			})
		},
	}
}

func newClearCmd(newClient clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd.Context(), newClient, func(ctx context.Context, cl *client.Client) error {
				if err := cl.ClearSessions(ctx); err != nil {
					return err
				}
				fmt.Printf("\n  %s Cleared all sessions\n\n", cliui.SuccessMark)
				return nil
			})
		},
	}
}

func withClient(ctx context.Context, newClient clientFunc, fn func(context.Context, *client.Client) error) error {
	cl, err := newClient()
	if err != nil {
		return err
	}
	return fn(ctx, cl)
}
