// Package configcmder provides the config command for managing persistent
// verde configuration stored in the .verde/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent verde configuration.

Configuration is stored as config.toml in the .verde/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  api.listen,
  search.endpoint, search.timeout, search.site_suffix,
  memory.recent_limit, memory.threshold,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  verde config set <key> <value>    Set a configuration value
  verde config get <key>            Get a configuration value
  verde config list                 List all configuration values

Examples:
  verde config set storage.driver postgres
  verde config set memory.threshold 0.4
  verde config get search.site_suffix
  verde config list`

const configShortDesc string = "Manage persistent verde configuration"

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
