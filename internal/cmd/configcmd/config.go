// Package configcmd provides config management commands.
package configcmd

import (
	"github.com/spf13/cobra"
)

// envVars lists the environment variables that override the config file.
var envVars = []string{
	"MDT_OUTPUT_FORMAT", "MDT_TIMEOUT", "MDT_USER_AGENT", "MDT_MAX_BODY_SIZE",
	"MDT_AUTO_HEADING_IDS", "MDT_ALERTS", "MDT_FOOTNOTE_REFS", "MDT_STRICT",
	"MDT_LOG_LEVEL", "MDT_LOG_FORMAT", "LOG_LEVEL", "LOG_FORMAT",
}

// NewCmdConfig creates the config command.
func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage mdt configuration",
		Long:  `Commands for viewing, testing, and clearing mdt configuration.`,
	}

	cmd.AddCommand(NewCmdShow())
	cmd.AddCommand(NewCmdTest())
	cmd.AddCommand(NewCmdClear())

	return cmd
}
