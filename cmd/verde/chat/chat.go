// Package chatcmder provides the interactive chat command.
package chatcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/verde/cmd/verde/wiring"
	"github.com/papercomputeco/verde/pkg/cliui"
	"github.com/papercomputeco/verde/pkg/dotdir"
	"github.com/papercomputeco/verde/pkg/responder"
	"github.com/papercomputeco/verde/pkg/transcript"
)

const (
	cmdExit    = "/exit"
	cmdHistory = "/history"
	cmdClear   = "/clear"
)

var (
	userPrompt      = cliui.PromptStyle.Render("tú> ")
	assistantPrompt = cliui.NameStyle.Render("IA> ")
)

type chatCommander struct {
	flags     wiring.Flags
	resume    bool
	debug     bool
	configDir string

	settings wiring.Settings
	logger   *zap.Logger
	dotdir   *dotdir.Manager
}

const chatLongDesc string = `Chat with IA Simple 2025 in the terminal.

Each line is answered like "verde ask" and stored for later recall.
The conversation is saved to .verde/transcript.json on exit.

Commands:
  /history   Show the conversation so far
  /clear     Forget the conversation (stored exchanges are kept)
  /exit      Quit (Ctrl+D also works)

Examples:
  verde chat
  verde chat --resume`

const chatShortDesc string = "Chat interactively"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{
		dotdir: dotdir.NewManager(),
	}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, _, err := wiring.LoadSettings(cmd)
			if err != nil {
				return err
			}
			cmder.settings = settings
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
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

	cmd.Flags().BoolVarP(&cmder.resume, "resume", "r", false, "Resume the last saved conversation")
	wiring.AddFlags(cmd, &cmder.flags)

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	c.logger = wiring.InteractiveLogger(c.debug, cmd.ErrOrStderr())
	defer func() { _ = c.logger.Sync() }()

	stack, err := wiring.NewStack(cmd.Context(), c.settings, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := stack.Close(); err != nil {
			c.logger.Warn("failed to close stack", zap.Error(err))
		}
	}()

	return c.converse(cmd, stack.Responder)
}

// converse runs the prompt loop until /exit or end of input. A failed answer
// ends the session with an error after the transcript is saved.
func (c *chatCommander) converse(cmd *cobra.Command, r *responder.Responder) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	t, err := c.loadTranscript(out)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Escribe tu pregunta y presiona Enter. /exit o Ctrl+D para salir."))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case cmdExit:
			return c.finish(out, t, scanner.Err())
		case cmdHistory:
			printHistory(out, t)
			continue
		case cmdClear:
			t.Reset()
			if err := c.dotdir.ClearTranscript(c.configDir); err != nil {
				fmt.Fprintf(out, "  %s %v\n", cliui.FailMark, err)
				continue
			}
			fmt.Fprintf(out, "  %s %s\n\n", cliui.SuccessMark, "Conversación borrada")
			continue
		}

		res, err := wiring.Resolve(ctx, r, input, cmd.ErrOrStderr())
		if err != nil {
			fmt.Fprintf(out, "  %s %v\n", cliui.FailMark, err)
			return errors.Join(fmt.Errorf("answering question: %w", err), c.finish(out, t, nil))
		}

		now := time.Now()
		t.AddQuestion(input, now)
		t.AddAnswer(res.Display, res.Category, res.Resolver, now)

		printResolution(out, res)
	}

	return c.finish(out, t, scanner.Err())
}

func (c *chatCommander) loadTranscript(out io.Writer) (*transcript.Transcript, error) {
	fmt.Fprintln(out)

	if !c.resume {
		fmt.Fprintf(out, "  %s Nueva conversación\n", cliui.DimStyle.Render("●"))
		return transcript.New(), nil
	}

	t, err := c.dotdir.LoadTranscript(c.configDir)
	if err != nil {
		return nil, fmt.Errorf("loading transcript: %w", err)
	}
	if t == nil {
		fmt.Fprintf(out, "  %s No hay conversación guardada, empezando una nueva\n", cliui.DimStyle.Render("●"))
		return transcript.New(), nil
	}

	fmt.Fprintf(out, "  %s Reanudando conversación %s\n",
		cliui.SuccessMark,
		cliui.DimStyle.Render(fmt.Sprintf("(%d mensajes)", t.Len())),
	)
	printHistory(out, t)
	return t, nil
}

func (c *chatCommander) finish(out io.Writer, t *transcript.Transcript, scanErr error) error {
	fmt.Fprintln(out)

	if scanErr != nil {
		return fmt.Errorf("reading input: %w", scanErr)
	}

	if t.Len() == 0 {
		return nil
	}

	if err := c.dotdir.SaveTranscript(t, c.configDir); err != nil {
		return fmt.Errorf("saving transcript: %w", err)
	}
	c.logger.Debug("saved transcript", zap.Int("turns", t.Len()))
	return nil
}

func printResolution(out io.Writer, res *responder.Resolution) {
	fmt.Fprintf(out, "%s%s\n", assistantPrompt, cliui.Badge(string(res.Category)))
	fmt.Fprintln(out, strings.TrimRight(cliui.RenderAnswer(out, res.Display), "\n"))
	fmt.Fprintln(out)
}

func printHistory(out io.Writer, t *transcript.Transcript) {
	turns := t.Turns()
	if len(turns) == 0 {
		fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Sin mensajes todavía"))
		return
	}

	fmt.Fprintln(out)
	for _, turn := range turns {
		switch turn.Role {
		case transcript.RoleUser:
			fmt.Fprintf(out, "%s%s\n", userPrompt, turn.Content)
		case transcript.RoleAssistant:
			fmt.Fprintf(out, "%s%s %s\n", assistantPrompt, cliui.Badge(string(turn.Category)), turn.Content)
		}
	}
	fmt.Fprintln(out)
}
