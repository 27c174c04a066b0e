// Package events provides the events command, a dump of the lexer output.
package events

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdtree/internal/config"
	"github.com/open-cli-collective/mdtree/internal/fetch"
	"github.com/open-cli-collective/mdtree/internal/view"
	"github.com/open-cli-collective/mdtree/pkg/md"
)

type eventsOptions struct {
	configPath string
	output     string
	noColor    bool
	limit      int

	out io.Writer
}

// NewCmdEvents creates the events command.
func NewCmdEvents() *cobra.Command {
	opts := &eventsOptions{}

	cmd := &cobra.Command{
		Use:   "events <file|url|->",
		Short: "Print the event stream of a document",
		Long: `Print the flat event stream the lexer produces for a document,
one event per line. Start and end events are indented by nesting depth.`,
		Example: `  # Show events for a file
  mdt events README.md

  # First 20 events as JSON
  mdt events README.md -o json --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.out = cmd.OutOrStdout()
			return runEvents(cmd.Context(), args[0], opts, nil, nil)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 0, "Maximum number of events to print (0 for all)")

	return cmd
}

// eventRow is the JSON shape of one event.
type eventRow struct {
	Index  int    `json:"index"`
	Type   string `json:"type"`
	Tag    string `json:"tag,omitempty"`
	Detail string `json:"detail,omitempty"`

	depth int
}

func runEvents(ctx context.Context, source string, opts *eventsOptions, cfg *config.Config, client *fetch.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.out == nil {
		opts.out = os.Stdout
	}

	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}
	if opts.limit < 0 {
		return fmt.Errorf("invalid limit: %d", opts.limit)
	}

	if cfg == nil {
		var err error
		cfg, err = config.Resolve(opts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w (run 'mdt init' to configure)", err)
		}
	}
	if client == nil {
		client = fetch.NewClient(cfg.TimeoutDuration(), cfg.UserAgent)
		client.SetMaxBodySize(cfg.MaxBodyBytes())
	}

	doc, err := client.Fetch(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", source, err)
	}
	markdown, err := doc.Markdown()
	if err != nil {
		return err
	}

	var rows []eventRow
	depth := 0
	for ev := range md.Lex(markdown, cfg.LexOptions()) {
		if opts.limit > 0 && len(rows) == opts.limit {
			break
		}
		if ev.Type == md.EventEnd && depth > 0 {
			depth--
		}
		rows = append(rows, newEventRow(len(rows)+1, ev, depth))
		if ev.Type == md.EventStart {
			depth++
		}
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.out)

	if view.Format(opts.output) == view.FormatJSON {
		if rows == nil {
			rows = []eventRow{}
		}
		return renderer.RenderJSON(rows)
	}

	headers := []string{"#", "EVENT", "DETAIL"}
	var tableRows [][]string
	for _, r := range rows {
		tableRows = append(tableRows, []string{strconv.Itoa(r.Index), r.label(), r.Detail})
	}
	renderer.RenderTable(headers, tableRows)
	return nil
}

func newEventRow(index int, ev md.Event, depth int) eventRow {
	row := eventRow{Index: index, Type: ev.Type.String()}
	if ev.Type == md.EventStart || ev.Type == md.EventEnd {
		row.Tag = ev.Tag.Kind.String()
		row.Detail = tagDetail(ev)
	} else {
		row.Detail = leafDetail(ev)
	}
	row.depth = depth
	return row
}

// label is the indented event name shown in the table.
func (r eventRow) label() string {
	name := r.Type
	if r.Tag != "" {
		name += "(" + r.Tag + ")"
	}
	return strings.Repeat("  ", r.depth) + name
}

// tagDetail summarises the tag fields that are set on a start event.
func tagDetail(ev md.Event) string {
	if ev.Type != md.EventStart {
		return ""
	}
	tag := ev.Tag
	var parts []string
	add := func(k, v string) {
		parts = append(parts, k+"="+v)
	}
	switch tag.Kind {
	case md.TagHeading:
		add("level", strconv.Itoa(tag.Level))
		if tag.ID != "" {
			add("id", tag.ID)
		}
		if len(tag.Classes) > 0 {
			add("classes", strings.Join(tag.Classes, ","))
		}
	case md.TagBlockQuote:
		if tag.QuoteKind != md.QuotePlain {
			add("kind", tag.QuoteKind.String())
		}
	case md.TagCodeBlock:
		add("kind", tag.CodeKind.String())
		if tag.Info != "" {
			add("info", strconv.Quote(tag.Info))
		}
	case md.TagList:
		if tag.Ordered {
			add("start", strconv.Itoa(tag.Start))
		}
	case md.TagFootnoteDefinition:
		add("name", tag.Name)
	case md.TagTable:
		aligns := make([]string, len(tag.Alignments))
		for i, a := range tag.Alignments {
			aligns[i] = a.String()
		}
		add("align", strings.Join(aligns, ","))
	case md.TagLink, md.TagImage:
		add("type", tag.LinkType.String())
		add("dest", tag.Dest)
		if tag.Title != "" {
			add("title", strconv.Quote(tag.Title))
		}
	case md.TagMetadataBlock:
		add("kind", tag.MetadataKind.String())
	}
	return strings.Join(parts, " ")
}

func leafDetail(ev md.Event) string {
	switch ev.Type {
	case md.EventSoftBreak, md.EventHardBreak, md.EventRule:
		return ""
	case md.EventTaskListMarker:
		return "checked=" + strconv.FormatBool(ev.Checked)
	}
	return view.Truncate(strconv.Quote(ev.Text), view.TreeWidth)
}
