// Package render provides the render command.
package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdtree/internal/config"
	"github.com/open-cli-collective/mdtree/internal/fetch"
	"github.com/open-cli-collective/mdtree/internal/logging"
	"github.com/open-cli-collective/mdtree/internal/view"
	"github.com/open-cli-collective/mdtree/pkg/md"
)

type renderOptions struct {
	configPath   string
	output       string
	noColor      bool
	verbose      bool
	strict       bool
	showMetadata bool

	out    io.Writer
	errOut io.Writer
}

// NewCmdRender creates the render command.
func NewCmdRender() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <file|url|->",
		Short: "Render a document",
		Long: `Render a Markdown or HTML document into a document tree.

The source is a file path, an http(s) URL, or - for stdin. HTML is
converted to Markdown before lexing. Recovered stream anomalies are
printed as warnings; with --strict they fail the command.`,
		Example: `  # Render a file as HTML
  mdt render README.md

  # Show the tree outline of a web page
  mdt render https://example.com/post.html -o tree

  # Render stdin as JSON, failing on malformed streams
  cat notes.md | mdt render - -o json --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.verbose, _ = cmd.Flags().GetBool("verbose")
			opts.out = cmd.OutOrStdout()
			opts.errOut = cmd.ErrOrStderr()
			return runRender(cmd.Context(), args[0], opts, nil, nil)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail if the event stream was malformed")
	cmd.Flags().BoolVar(&opts.showMetadata, "show-metadata", false, "Print YAML front matter before the document")

	return cmd
}

// runRender renders source. cfg and client may be nil, in which case they are
// loaded from the config file (allows injection for testing).
func runRender(ctx context.Context, source string, opts *renderOptions, cfg *config.Config, client *fetch.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.out == nil {
		opts.out = os.Stdout
	}
	if opts.errOut == nil {
		opts.errOut = os.Stderr
	}

	if cfg == nil {
		var err error
		cfg, err = config.Resolve(opts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w (run 'mdt init' to configure)", err)
		}
	}

	output := opts.output
	if output == "" {
		output = cfg.OutputFormat
	}
	if output == "" {
		output = string(view.FormatHTML)
	}
	if err := view.ValidateDocumentFormat(output); err != nil {
		return err
	}

	if client == nil {
		client = fetch.NewClient(cfg.TimeoutDuration(), cfg.UserAgent)
		client.SetMaxBodySize(cfg.MaxBodyBytes())
	}

	ctx = logging.WithRenderID(ctx, logging.NewRenderID())

	doc, err := client.Fetch(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", source, err)
	}
	markdown, err := doc.Markdown()
	if err != nil {
		return err
	}

	res, err := md.RenderMarkdown(markdown, md.Config{
		Lex:    cfg.LexOptions(),
		Render: cfg.RenderOptions(),
		Logger: logging.LoggerFromContext(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", source, err)
	}

	renderer := view.NewRenderer(view.Format(output), opts.noColor)
	renderer.SetWriter(opts.out)

	if opts.showMetadata && view.Format(output) == view.FormatJSON {
		nodes := res.Nodes
		if nodes == nil {
			nodes = []*md.Node{}
		}
		err = renderer.RenderJSON(map[string]interface{}{
			"metadata": res.Metadata,
			"nodes":    nodes,
		})
	} else {
		if opts.showMetadata {
			printMetadata(renderer, res.Metadata)
		}
		err = renderer.RenderDocument(res.Nodes)
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	logging.Render(ctx, len(res.Nodes), len(res.Warnings), "source", source)

	status := view.NewRenderer(view.FormatTable, opts.noColor)
	status.SetWriter(opts.errOut)
	for _, w := range res.Warnings {
		status.Warning(w.String())
	}
	if opts.verbose {
		fmt.Fprintf(opts.errOut, "%s (%s, %s): %d nodes, %d warnings\n",
			source, doc.Format, view.Size(len(doc.Body)), len(res.Nodes), len(res.Warnings))
	}

	if opts.strict || cfg.Strict {
		if err := res.Err(); err != nil {
			return fmt.Errorf("malformed document %s: %w", source, err)
		}
	}

	return nil
}

// printMetadata writes front matter fields in key order, followed by a blank line.
func printMetadata(r *view.Renderer, metadata map[string]interface{}) {
	if len(metadata) == 0 {
		return
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.RenderKeyValue(k, fmt.Sprint(metadata[k]))
	}
	r.RenderText("")
}
