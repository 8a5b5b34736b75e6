// Package chatcmder provides the chat command for an interactive
// conversation with the invoice assistant.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/clerk/pkg/assistant"
	"github.com/papercomputeco/clerk/pkg/cliui"
	"github.com/papercomputeco/clerk/pkg/client"
	"github.com/papercomputeco/clerk/pkg/config"
	"github.com/papercomputeco/clerk/pkg/dotdir"
	"github.com/papercomputeco/clerk/pkg/utils"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("clerk> ")
)

type chatCommander struct {
	apiTarget string
	sessionID string
	fresh     bool
	plain     bool
	configDir string
}

const chatLongDesc string = `Start an interactive chat about analyzed invoices.

Each question is answered from the invoices that match it, taking the
last few exchanges of the session into account. The session id is saved in
.clerk/chat.json so the next "clerk chat" resumes the same conversation.

Use --new to start a fresh session, or --session to resume a specific one.

Examples:
  clerk chat
  clerk chat --new
  clerk chat --session 4f7c2a9e-...`

const chatShortDesc string = "Interactive chat about analyzed invoices"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().StringVarP(&cmder.sessionID, "session", "s", "", "Resume this session id")
	cmd.Flags().BoolVar(&cmder.fresh, "new", false, "Start a new session")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print answers without markdown rendering")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	cl, err := client.New(c.apiTarget)
	if err != nil {
		return err
	}

	ddm := dotdir.NewManager()
	if err := c.resolveSession(ddm); err != nil {
		return err
	}

	fmt.Println()
	if c.sessionID != "" {
		fmt.Printf("  %s Resuming session %s\n",
			cliui.SuccessMark,
			cliui.KeyStyle.Render(utils.Truncate(c.sessionID, 12)),
		)
	} else {
		fmt.Printf("  %s New conversation\n", cliui.DimStyle.Render("●"))
	}
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		resp, err := cl.Chat(ctx, assistant.Request{Query: input, SessionID: c.sessionID})
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			continue
		}

		if resp.SessionID != c.sessionID {
			c.sessionID = resp.SessionID
			if err := ddm.SaveChatState(&dotdir.ChatState{
				SessionID: c.sessionID,
				UpdatedAt: time.Now(),
			}, c.configDir); err != nil {
				fmt.Fprintf(os.Stderr, "  %s could not save chat state: %v\n", cliui.WarnStyle.Render("!"), err)
			}
		}

		fmt.Print(assistantPrompt)
		fmt.Println(c.render(resp.Answer))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// resolveSession picks the session to talk in: --session, else a fresh one
// for --new, else the one saved by the previous chat.
func (c *chatCommander) resolveSession(ddm *dotdir.Manager) error {
	if c.sessionID != "" {
		return nil
	}

	if c.fresh {
		if err := ddm.ClearChatState(c.configDir); err != nil {
			return fmt.Errorf("clearing chat state: %w", err)
		}
		return nil
	}

	state, err := ddm.LoadChatState(c.configDir)
	if err != nil {
		return fmt.Errorf("loading chat state: %w", err)
	}
	if state != nil {
		c.sessionID = state.SessionID
	}
	return nil
}

func (c *chatCommander) render(answer string) string {
	if c.plain {
		return answer
	}

	rendered, err := cliui.RenderMarkdown(answer)
	if err != nil {
		return answer
	}
	return strings.TrimSpace(rendered)
}
