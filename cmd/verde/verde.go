// Package verdecmder
package verdecmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/verde/cmd/verde/ask"
	chatcmder "github.com/papercomputeco/verde/cmd/verde/chat"
	configcmder "github.com/papercomputeco/verde/cmd/verde/config"
	historycmder "github.com/papercomputeco/verde/cmd/verde/history"
	initcmder "github.com/papercomputeco/verde/cmd/verde/init"
	servecmder "github.com/papercomputeco/verde/cmd/verde/serve"
	versioncmder "github.com/papercomputeco/verde/cmd/version"
)

const verdeLongDesc string = `Verde runs IA Simple 2025, a small environmental assistant.

Questions are answered from past exchanges, keyword tips on recycling,
pollution and water, explicit "busca" web searches and a fallback web
search. Every answer is stored for later recall.

Get started:
  verde init           Create a local .verde/ directory
  verde chat           Chat in the terminal
  verde ask <q>        Ask a single question
  verde serve          Run the API server and chat widget
  verde history        List recent exchanges`

const verdeShortDesc string = "Verde - environmental assistant"

func NewVerdeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "verde",
		Short:        verdeShortDesc,
		Long:         verdeLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .verde/ config directory")

	// Add subcommands
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
