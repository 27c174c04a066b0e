package configcmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdtree/internal/config"
	"github.com/open-cli-collective/mdtree/internal/fetch"
	"github.com/open-cli-collective/mdtree/internal/view"
	"github.com/open-cli-collective/mdtree/pkg/md"
)

const testDocument = "# mdt\n\nConfiguration *check*[^1].\n\n[^1]: Footnote.\n"

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [file|url]",
		Short: "Test the configuration",
		Long: `Validate the current configuration and render a document with it.

Without an argument a built-in sample is rendered. With a URL the
configured timeout and User-Agent are used to fetch it.`,
		Example: `  # Validate and render the sample
  mdt config test

  # Check that a site is reachable with the configured fetch settings
  mdt config test https://example.com/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			noColor, _ := cmd.Flags().GetBool("no-color")

			cfg, err := config.Resolve(configPath)
			if err != nil {
				return fmt.Errorf("invalid config: %w (run 'mdt init' to configure)", err)
			}

			var source string
			if len(args) > 0 {
				source = args[0]
			}
			return runTest(cmd.Context(), noColor, source, nil, cfg)
		},
	}

	return cmd
}

func runTest(ctx context.Context, noColor bool, source string, client *fetch.Client, cfg *config.Config) error {
	if noColor {
		color.NoColor = true
	}
	if ctx == nil {
		ctx = context.Background()
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	if err := cfg.Validate(); err != nil {
		red.Println("✗ Invalid configuration:", err)
		fmt.Println("\nReconfigure with: mdt init")
		return fmt.Errorf("invalid config: %w", err)
	}
	green.Println("✓ Configuration valid")

	markdown := []byte(testDocument)
	if source != "" {
		if client == nil {
			client = fetch.NewClient(cfg.TimeoutDuration(), cfg.UserAgent)
			client.SetMaxBodySize(cfg.MaxBodyBytes())
		}
		fmt.Printf("Fetching %s...\n", source)

		doc, err := client.Fetch(ctx, source)
		if err != nil {
			var fetchErr *fetch.FetchError
			if errors.As(err, &fetchErr) {
				red.Printf("✗ Unexpected response: %d\n", fetchErr.StatusCode)
			} else {
				red.Println("✗ Fetch failed:", err)
			}
			fmt.Println("\nCheck your settings with: mdt config show")
			return fmt.Errorf("fetch failed: %w", err)
		}
		green.Printf("✓ Fetched %s (%s)\n", view.Size(len(doc.Body)), doc.Format)

		if markdown, err = doc.Markdown(); err != nil {
			return err
		}
	}

	res, err := md.RenderMarkdown(markdown, md.Config{
		Lex:    cfg.LexOptions(),
		Render: cfg.RenderOptions(),
	})
	if err != nil {
		red.Println("✗ Render failed:", err)
		return fmt.Errorf("render failed: %w", err)
	}
	if err := res.Err(); err != nil && cfg.Strict {
		red.Println("✗", err)
		return err
	}

	green.Printf("✓ Rendered %d nodes with %d warnings\n", len(res.Nodes), len(res.Warnings))
	return nil
}
