// Package askcmder provides the ask command answering a single question.
package askcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/verde/cmd/verde/wiring"
	"github.com/papercomputeco/verde/pkg/cliui"
)

type askCommander struct {
	flags wiring.Flags
	debug bool

	settings wiring.Settings
	logger   *zap.Logger
}

const askLongDesc string = `Ask IA Simple 2025 a single question.

The question is answered from past exchanges, the environmental tips,
an explicit web search ("busca ..."), the general replies or a fallback
web search, in that order. The answer is stored for later recall.

Examples:
  verde ask "¿Cómo funciona el reciclaje?"
  verde ask busca energía solar
  verde ask --storage-driver memory hola`

const askShortDesc string = "Ask a single question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, _, err := wiring.LoadSettings(cmd)
			if err != nil {
				return err
			}
			cmder.settings = settings
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	wiring.AddFlags(cmd, &cmder.flags)

	return cmd
}

func (c *askCommander) run(cmd *cobra.Command, question string) error {
	c.logger = wiring.InteractiveLogger(c.debug, cmd.ErrOrStderr())
	defer func() { _ = c.logger.Sync() }()

	ctx := cmd.Context()

	stack, err := wiring.NewStack(ctx, c.settings, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := stack.Close(); err != nil {
			c.logger.Warn("failed to close stack", zap.Error(err))
		}
	}()

	res, err := wiring.Resolve(ctx, stack.Responder, question, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	printAnswer(cmd.OutOrStdout(), res.Display)
	return nil
}

func printAnswer(out io.Writer, display string) {
	fmt.Fprintln(out, strings.TrimRight(cliui.RenderAnswer(out, display), "\n"))
}
