// Package configcmder provides the config command for managing persistent
// rubberduck configuration stored in the .rubberduck/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent rubberduck configuration.

Configuration is stored as config.toml in the .rubberduck/ directory and
provides default values for command flags. RUBBERDUCK_* environment
variables override the file and CLI flags override both.

Keys use dotted notation matching the TOML section structure:
  gateway.model, gateway.base_url, gateway.max_tokens, gateway.timeout_seconds,
  api.listen, api.events_listen,
  projection.dir,
  eventstream.provider, eventstream.brokers, eventstream.topic,
  worker.num_workers, worker.queue_size

Use subcommands to get, set, or list configuration values:
  rubberduck config set <key> <value>    Set a configuration value
  rubberduck config get <key>            Get a configuration value
  rubberduck config list                 List all configuration values

Examples:
  rubberduck config set gateway.model gpt-3.5-turbo-instruct
  rubberduck config set eventstream.provider kafka
  rubberduck config get api.listen
  rubberduck config list`

const configShortDesc string = "Manage persistent rubberduck configuration"

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
