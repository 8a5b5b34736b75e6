// Package clerkcmder
package clerkcmder

import (
	"github.com/spf13/cobra"

	analyzecmder "github.com/papercomputeco/clerk/cmd/clerk/analyze"
	authcmder "github.com/papercomputeco/clerk/cmd/clerk/auth"
	chatcmder "github.com/papercomputeco/clerk/cmd/clerk/chat"
	configcmder "github.com/papercomputeco/clerk/cmd/clerk/config"
	initcmder "github.com/papercomputeco/clerk/cmd/clerk/init"
	searchcmder "github.com/papercomputeco/clerk/cmd/clerk/search"
	servecmder "github.com/papercomputeco/clerk/cmd/clerk/serve"
	sessionscmder "github.com/papercomputeco/clerk/cmd/clerk/sessions"
	versioncmder "github.com/papercomputeco/clerk/cmd/version"
)

const clerkLongDesc string = `Clerk analyzes employee invoices against a reimbursement policy and
answers questions about them.

Run the server:
  clerk serve                   Run the API and MCP server

Talk to a running server:
  clerk analyze                 Analyze a ZIP of invoice PDFs
  clerk search <query>          Search analyzed invoices
  clerk chat                    Chat about analyzed invoices
  clerk sessions                Inspect chat sessions

Configure:
  clerk init                    Create a local .clerk/ directory
  clerk config                  Manage config.toml
  clerk auth <provider>         Store provider API keys`

const clerkShortDesc string = "Clerk - Invoice Reimbursement Assistant"

func NewClerkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "clerk",
		Short:        clerkShortDesc,
		Long:         clerkLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .clerk/ config directory")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(analyzecmder.NewAnalyzeCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(sessionscmder.NewSessionsCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
