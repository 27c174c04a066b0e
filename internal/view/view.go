// Package view provides output formatting for mdt commands.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/open-cli-collective/mdtree/pkg/md"
)

// Format represents an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"

	// Document formats.
	FormatHTML Format = "html"
	FormatTree Format = "tree"
)

// TreeWidth is the display width text previews are cut to in tree output.
const TreeWidth = 60

// ValidFormats returns the formats accepted for listings.
func ValidFormats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatPlain)}
}

// ValidDocumentFormats returns the formats accepted for rendered documents.
func ValidDocumentFormats() []string {
	return []string{string(FormatHTML), string(FormatJSON), string(FormatTree)}
}

// ValidateFormat checks a listing format. Empty selects the default.
func ValidateFormat(format string) error {
	return validate(format, ValidFormats())
}

// ValidateDocumentFormat checks a document format. Empty selects the default.
func ValidateDocumentFormat(format string) error {
	return validate(format, ValidDocumentFormats())
}

func validate(format string, valid []string) error {
	if format == "" {
		return nil
	}
	for _, f := range valid {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q (valid: %s)", format, strings.Join(valid, ", "))
}

// Renderer renders data in a specific format.
type Renderer struct {
	format  Format
	writer  io.Writer
	noColor bool
}

// NewRenderer creates a new renderer with the specified format.
func NewRenderer(format Format, noColor bool) *Renderer {
	if noColor {
		color.NoColor = true
	}
	return &Renderer{
		format:  format,
		writer:  os.Stdout,
		noColor: noColor,
	}
}

// SetWriter sets the output writer.
func (r *Renderer) SetWriter(w io.Writer) {
	r.writer = w
}

// RenderTable renders data as a table.
func (r *Renderer) RenderTable(headers []string, rows [][]string) {
	if r.format == FormatJSON {
		r.renderTableAsJSON(headers, rows)
		return
	}

	if r.format == FormatPlain {
		r.renderTableAsPlain(headers, rows)
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, val := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(val))
			}
		}
	}

	bold := color.New(color.Bold)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(r.writer, "  ")
		}
		bold.Fprint(r.writer, pad(h, widths[i], i == len(headers)-1))
	}
	fmt.Fprintln(r.writer)

	for _, row := range rows {
		for i, val := range row {
			if i > 0 {
				fmt.Fprint(r.writer, "  ")
			}
			last := i == len(row)-1 || i >= len(widths)
			w := 0
			if i < len(widths) {
				w = widths[i]
			}
			fmt.Fprint(r.writer, pad(val, w, last))
		}
		fmt.Fprintln(r.writer)
	}
}

// pad fills s with spaces to the display width w, unless it is the last column.
func pad(s string, w int, last bool) string {
	if last {
		return s
	}
	return runewidth.FillRight(s, w)
}

func (r *Renderer) renderTableAsJSON(headers []string, rows [][]string) {
	var result []map[string]string
	for _, row := range rows {
		item := make(map[string]string)
		for i, header := range headers {
			if i < len(row) {
				item[strings.ToLower(header)] = row[i]
			}
		}
		result = append(result, item)
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(r.writer, string(data))
}

func (r *Renderer) renderTableAsPlain(headers []string, rows [][]string) {
	for _, row := range rows {
		fmt.Fprintln(r.writer, strings.Join(row, "\t"))
	}
}

// RenderJSON renders an object as JSON.
func (r *Renderer) RenderJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(r.writer, string(data))
	return nil
}

// RenderText renders plain text.
func (r *Renderer) RenderText(text string) {
	fmt.Fprintln(r.writer, text)
}

// RenderKeyValue renders a key-value pair.
func (r *Renderer) RenderKeyValue(key, value string) {
	if r.format == FormatJSON {
		data, _ := json.Marshal(map[string]string{key: value})
		fmt.Fprintln(r.writer, string(data))
		return
	}
	bold := color.New(color.Bold)
	bold.Fprintf(r.writer, "%s: ", key)
	fmt.Fprintln(r.writer, value)
}

// RenderDocument writes a rendered document in the renderer's format.
func (r *Renderer) RenderDocument(nodes []*md.Node) error {
	switch r.format {
	case FormatJSON:
		if nodes == nil {
			nodes = []*md.Node{}
		}
		return r.RenderJSON(nodes)
	case FormatTree:
		r.RenderTree(nodes)
		return nil
	}
	return md.WriteHTML(r.writer, nodes)
}

// RenderTree writes an indented outline of the document, one node per line.
func (r *Renderer) RenderTree(nodes []*md.Node) {
	kind := color.New(color.FgCyan)
	attr := color.New(color.Faint)
	for _, n := range nodes {
		r.renderTreeNode(n, 0, kind, attr)
	}
}

func (r *Renderer) renderTreeNode(n *md.Node, depth int, kind, attr *color.Color) {
	fmt.Fprint(r.writer, strings.Repeat("  ", depth))
	kind.Fprint(r.writer, string(n.Kind))

	if len(n.Attrs) > 0 {
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + n.Attrs[k]
		}
		attr.Fprint(r.writer, " ["+strings.Join(parts, " ")+"]")
	}
	if n.Text != "" {
		fmt.Fprintf(r.writer, " %q", Truncate(n.Text, TreeWidth))
	}
	fmt.Fprintln(r.writer)

	for _, c := range n.Children {
		r.renderTreeNode(c, depth+1, kind, attr)
	}
}

// Success prints a success message.
func (r *Renderer) Success(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintln(r.writer, "✓ "+msg)
}

// Warning prints a warning message.
func (r *Renderer) Warning(msg string) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintln(r.writer, "! "+msg)
}

// Error prints an error message.
func (r *Renderer) Error(msg string) {
	red := color.New(color.FgRed)
	red.Fprintln(r.writer, "✗ "+msg)
}

// Truncate cuts s to at most maxWidth display cells, ending in "..." when
// there is room for it.
func Truncate(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// Size formats a byte count for humans, e.g. "1.2 kB".
func Size(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
