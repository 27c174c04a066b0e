package configcmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdtree/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current mdt configuration with the source of each value.`,
		Example: `  # Show current config
  mdt config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runShow(configPath, noColor)
		},
	}

	return cmd
}

func runShow(configPath string, noColor bool) error {
	if noColor {
		color.NoColor = true
	}
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(configPath)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	// Load full config with env overrides
	cfg, _ := config.LoadWithEnv(configPath)

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value, fileValue string, envVars ...string) {
		_, _ = bold.Printf("%-18s", label+":")
		if value == "" {
			_, _ = dim.Println("-")
			return
		}

		fmt.Print(value)

		// Determine source
		source := "config"
		if fileErr != nil {
			source = "-"
		}
		for _, envVar := range envVars {
			if v := os.Getenv(envVar); v != "" && v == value {
				source = envVar
				break
			}
		}
		if fileValue != value && source == "config" {
			source = "-"
		}

		_, _ = dim.Printf("  (source: %s)\n", source)
	}

	printBool := func(label string, value, fileValue bool, envVar string) {
		_, _ = bold.Printf("%-18s", label+":")
		fmt.Print(strconv.FormatBool(value))

		source := "default"
		if os.Getenv(envVar) != "" && value != fileValue {
			source = envVar
		} else if fileErr == nil && fileValue {
			source = "config"
		}

		_, _ = dim.Printf("  (source: %s)\n", source)
	}

	printField("Output format", cfg.OutputFormat, fileCfg.OutputFormat, "MDT_OUTPUT_FORMAT")
	printField("Timeout", cfg.Timeout, fileCfg.Timeout, "MDT_TIMEOUT")
	printField("User-Agent", cfg.UserAgent, fileCfg.UserAgent, "MDT_USER_AGENT")
	printField("Max body size", cfg.MaxBodySize, fileCfg.MaxBodySize, "MDT_MAX_BODY_SIZE")
	printField("Footnote refs", cfg.FootnoteRefs, fileCfg.FootnoteRefs, "MDT_FOOTNOTE_REFS")
	printBool("Auto heading IDs", cfg.AutoHeadingIDs, fileCfg.AutoHeadingIDs, "MDT_AUTO_HEADING_IDS")
	printBool("Alerts", cfg.Alerts, fileCfg.Alerts, "MDT_ALERTS")
	printBool("Strict", cfg.Strict, fileCfg.Strict, "MDT_STRICT")
	printField("Log level", cfg.LogLevel, fileCfg.LogLevel, "MDT_LOG_LEVEL", "LOG_LEVEL")
	printField("Log format", cfg.LogFormat, fileCfg.LogFormat, "MDT_LOG_FORMAT", "LOG_FORMAT")

	fmt.Println()
	_, _ = dim.Printf("Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Println("(file not found)")
	}
	if err := cfg.Validate(); err != nil {
		_, _ = color.New(color.FgYellow).Printf("! %v\n", err)
	}

	return nil
}
