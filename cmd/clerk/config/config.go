// Package configcmder provides the config command for managing persistent
// clerk configuration stored in the .clerk/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent clerk configuration.

Configuration is stored as config.toml in the .clerk/ directory and provides
default values for command flags. CLI flags and CLERK_* environment variables
take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  api.listen, client.api_target,
  vector_store.provider, vector_store.target, vector_store.collection,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  completion.provider, completion.target, completion.model,
  event_stream.provider, event_stream.brokers, event_stream.topic,
  analysis.workers, search.limit

Use subcommands to get, set, or list configuration values:
  clerk config set <key> <value>    Set a configuration value
  clerk config get <key>            Get a configuration value
  clerk config list                 List all configuration values

Examples:
  clerk config set completion.provider openai
  clerk config set embedding.model nomic-embed-text
  clerk config get vector_store.provider
  clerk config list`

const configShortDesc string = "Manage persistent clerk configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
