// Package rubberduckcmder
package rubberduckcmder

import (
	"github.com/spf13/cobra"

	actioncmder "github.com/papercomputeco/rubberduck/cmd/rubberduck/action"
	authcmder "github.com/papercomputeco/rubberduck/cmd/rubberduck/auth"
	configcmder "github.com/papercomputeco/rubberduck/cmd/rubberduck/config"
	servecmder "github.com/papercomputeco/rubberduck/cmd/rubberduck/serve"
	versioncmder "github.com/papercomputeco/rubberduck/cmd/version"
)

const rubberduckLongDesc string = `Rubberduck is a pair programming assistant for your editor.

Start a conversation about a code selection:
  rubberduck explain main.go --lines 10:24
  rubberduck generate-test add.js
  rubberduck refine add.js --instruction "handle negative numbers"

Drive conversations from an editor extension:
  rubberduck serve     Run the HTTP API, websocket bridge and MCP endpoint`

const rubberduckShortDesc string = "Rubberduck - pair programming conversations"

func NewRubberduckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "rubberduck",
		Short:        rubberduckShortDesc,
		Long:         rubberduckLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .rubberduck/ config directory")

	// Add subcommands
	cmd.AddCommand(actioncmder.NewExplainCmd())
	cmd.AddCommand(actioncmder.NewGenerateTestCmd())
	cmd.AddCommand(actioncmder.NewRefineCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
