// Package init provides the init command for mdt.
package init

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdtree/internal/config"
	"github.com/open-cli-collective/mdtree/pkg/md"
)

// sampleDocument exercises the options the form can change.
const sampleDocument = `---
title: sample
---
# Heading

> [!NOTE]
> An alert.

Text with a footnote[^a] and a [link](https://example.com "title").

| left | right |
|:-----|------:|
| 1    | 2     |

[^a]: The note.
`

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	var (
		timeout   string
		userAgent string
		noVerify  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize mdt configuration",
		Long: `Initialize mdt with your rendering and fetch preferences.

This command will guide you through choosing a default output format,
markdown extensions, footnote numbering and the fetch timeout. The
configuration will be saved to ~/.config/mdt/config.yml.`,
		Example: `  # Interactive setup
  mdt init

  # Pre-populate fetch settings
  mdt init --timeout 10s --user-agent docs-bot`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return runInit(configPath, timeout, userAgent, noVerify)
		},
	}

	cmd.Flags().StringVar(&timeout, "timeout", "", "Fetch timeout for URL sources (e.g., 30s)")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "User-Agent header for URL sources")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip rendering a sample document")

	return cmd
}

func runInit(configPath, prefillTimeout, prefillUserAgent string, noVerify bool) error {
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Initialization cancelled.")
			return nil
		}
	}

	cfg := &config.Config{
		OutputFormat: "html",
		FootnoteRefs: config.FootnoteRefsEncounter,
		Timeout:      prefillTimeout,
		UserAgent:    prefillUserAgent,
	}

	if err := newForm(cfg).Run(); err != nil {
		return err
	}

	// Verify the options unless skipped
	if !noVerify {
		fmt.Print("Rendering sample document... ")
		nodes, err := verifyConfig(cfg)
		if err != nil {
			fmt.Println("failed!")
			return fmt.Errorf("configuration verification failed: %w", err)
		}
		fmt.Printf("success! (%d nodes)\n", nodes)
	} else if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Save configuration
	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	fmt.Println("\nYou're all set! Try running:")
	fmt.Println("  mdt render README.md")
	fmt.Println("  mdt events README.md")

	return nil
}

// newForm builds the interactive form that fills cfg.
func newForm(cfg *config.Config) *huh.Form {
	formatOptions := make([]huh.Option[string], len(config.ValidOutputFormats))
	for i, f := range config.ValidOutputFormats {
		formatOptions[i] = huh.NewOption(f, f)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Output format").
				Description("Default format for mdt render").
				Options(formatOptions...).
				Value(&cfg.OutputFormat),

			huh.NewSelect[string]().
				Title("Footnote references").
				Description("How reference numbers are assigned").
				Options(
					huh.NewOption("In order of appearance", config.FootnoteRefsEncounter),
					huh.NewOption("Matching their definition", config.FootnoteRefsName),
				).
				Value(&cfg.FootnoteRefs),

			huh.NewConfirm().
				Title("Heading IDs").
				Description("Generate an id for every heading").
				Value(&cfg.AutoHeadingIDs),

			huh.NewConfirm().
				Title("Alerts").
				Description("Render > [!NOTE] style block quotes as alerts").
				Value(&cfg.Alerts),

			huh.NewConfirm().
				Title("Strict").
				Description("Fail when a document's event stream is malformed").
				Value(&cfg.Strict),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Fetch timeout (optional)").
				Description("Timeout for URL sources").
				Placeholder("30s").
				Value(&cfg.Timeout).
				Validate(func(s string) error {
					return (&config.Config{Timeout: s}).Validate()
				}),

			huh.NewInput().
				Title("User-Agent (optional)").
				Description("Sent with URL fetches").
				Placeholder("mdt").
				Value(&cfg.UserAgent),
		),
	)
}

// verifyConfig validates cfg and renders the sample document with its
// options, returning the number of top-level nodes.
func verifyConfig(cfg *config.Config) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	res, err := md.RenderMarkdown([]byte(sampleDocument), md.Config{
		Lex:    cfg.LexOptions(),
		Render: cfg.RenderOptions(),
	})
	if err != nil {
		return 0, err
	}
	if err := res.Err(); err != nil {
		return 0, err
	}
	if res.Metadata["title"] != "sample" {
		return 0, fmt.Errorf("front matter was not decoded")
	}

	return len(res.Nodes), nil
}
