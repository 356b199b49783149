// bimview - bridge BIM platform
// Serves the bridge/BIM API and views BIM models in the terminal.
//
// Viewer controls:
//
//	Click model    - Select component under the cursor
//	Click list     - Select component from the list
//	Mouse drag     - Orbit camera
//	Scroll, +/-    - Zoom
//	j/k, Up/Down   - Move list cursor
//	Left/Right     - Pan camera sideways
//	PgUp/PgDn      - Pan camera up/down
//	Enter          - Select list cursor
//	W/S/A/D        - Orbit camera
//	F              - Frame whole model
//	?              - Toggle HUD
//	Esc            - Clear selection (quit when nothing is selected)
//	Q, Ctrl-C      - Quit
package main

import (
	"context"
	"os"

	"fortio.org/log"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/LeeJaeHyekk/bridge-bim-platform/internal/config"
)

type rootOptions struct {
	configPath string
	logLevel   string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "bimview",
		Short: "Bridge BIM platform: API server and terminal model viewer",
		Long: `bimview - bridge BIM platform

Serves bridge and BIM model data over HTTP and renders BIM models as an
interactive 3D scene in the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			if err := log.SetLogLevelStr(cfg.LogLevel); err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("BIM_CONFIG"), "Path to a TOML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, verbose, info, warning, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newViewCmd(opts),
		newInfoCmd(opts),
		newExportCmd(opts),
		newModelsCmd(opts),
	)
	return cmd
}

func main() {
	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}
