// Package historycmder provides the history command listing stored exchanges.
package historycmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/verde/cmd/verde/wiring"
	"github.com/papercomputeco/verde/pkg/cliui"
	"github.com/papercomputeco/verde/pkg/config"
	"github.com/papercomputeco/verde/pkg/exchange"
	"github.com/papercomputeco/verde/pkg/utils"
)

const (
	defaultLimit = 10
	hashWidth    = 12
	answerWidth  = 72
)

type historyCommander struct {
	storageDriver string
	sqlitePath    string
	postgresDSN   string
	limit         int
	debug         bool

	settings wiring.Settings
	logger   *zap.Logger
}

const historyLongDesc string = `List the most recent stored exchanges, newest first.

Examples:
  verde history
  verde history --limit 25
  verde history --storage-driver postgres --postgres-dsn postgres://...`

const historyShortDesc string = "List recent exchanges"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmder.limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", cmder.limit)
			}

			settings, _, err := wiring.LoadSettings(cmd)
			if err != nil {
				return err
			}
			cmder.settings = settings
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd)
		},
	}

	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", defaultLimit, "Number of exchanges to show")
	config.AddStringFlag(cmd, config.StorageFlags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.StorageFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.StorageFlags, config.FlagPostgresDSN, &cmder.postgresDSN)

	return cmd
}

func (c *historyCommander) run(cmd *cobra.Command) error {
	c.logger = wiring.InteractiveLogger(c.debug, cmd.ErrOrStderr())
	defer func() { _ = c.logger.Sync() }()

	ctx := cmd.Context()

	driver, err := wiring.OpenDriver(ctx, c.settings, c.logger)
	if err != nil {
		return err
	}
	defer driver.Close()

	exchanges, err := driver.Recent(ctx, c.limit)
	if err != nil {
		return fmt.Errorf("listing exchanges: %w", err)
	}

	printExchanges(cmd.OutOrStdout(), exchanges)
	return nil
}

func printExchanges(out io.Writer, exchanges []*exchange.Exchange) {
	fmt.Fprintln(out)
	if len(exchanges) == 0 {
		fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("No hay intercambios guardados"))
		return
	}

	for _, ex := range exchanges {
		fmt.Fprintf(out, "  %s %s %s\n",
			cliui.HashStyle.Render(utils.Truncate(ex.QuestionHash, hashWidth)),
			cliui.Badge(string(ex.Category)),
			cliui.ValueStyle.Render(ex.Question),
		)
		fmt.Fprintf(out, "    %s %s\n",
			cliui.DimStyle.Render(ex.Created.Local().Format("2006-01-02 15:04")),
			cliui.KeyStyle.Render(utils.Truncate(ex.Answer, answerWidth)),
		)
	}
	fmt.Fprintln(out)
}
