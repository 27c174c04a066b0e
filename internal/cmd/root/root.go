// Package root provides the root command for the mdt CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdtree/internal/cmd/completion"
	"github.com/open-cli-collective/mdtree/internal/cmd/configcmd"
	"github.com/open-cli-collective/mdtree/internal/cmd/events"
	initcmd "github.com/open-cli-collective/mdtree/internal/cmd/init"
	"github.com/open-cli-collective/mdtree/internal/cmd/render"
	"github.com/open-cli-collective/mdtree/internal/config"
	"github.com/open-cli-collective/mdtree/internal/logging"
	"github.com/open-cli-collective/mdtree/internal/version"
)

// NewCmdRoot creates the root command for mdt.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mdt",
		Short: "Render Markdown into a typed document tree",
		Long: `mdt lexes Markdown into a flat event stream and rebuilds it as a
nested document tree, printed as HTML, JSON or an outline.

Sources can be local files, http(s) URLs or stdin. HTML sources are
converted to Markdown first.

Get started by running: mdt init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/mdt/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "", "output format (render: html, json, tree; events: table, json, plain)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging and print a render summary")

	// Set version template
	cmd.SetVersionTemplate(version.Template("mdt"))

	// Subcommands
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(render.NewCmdRender())
	cmd.AddCommand(events.NewCmdEvents())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	_ = completion.RegisterOutputCompletion(cmd)

	return cmd
}

// setupLogging installs the global logger from the config file and flags.
// A broken config is left for the subcommand to report, so that init and
// config clear still work.
func setupLogging(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Resolve(configPath)
	if err != nil {
		cfg = &config.Config{}
	}

	level := logging.LevelWarn
	if cfg.LogLevel != "" {
		if level, err = logging.ParseLevel(cfg.LogLevel); err != nil {
			return err
		}
	}
	if verbose {
		level = logging.LevelDebug
	}

	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}

	logging.Init(level, format)
	return nil
}
