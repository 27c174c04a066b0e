// lexer.go turns markdown source into an event stream using goldmark.
package md

import (
	"iter"
	"log/slog"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// LexOptions selects optional syntax recognised by the lexer.
type LexOptions struct {
	// AutoHeadingIDs gives every heading an id derived from its text.
	AutoHeadingIDs bool
	// Alerts turns GitHub alert block quotes (> [!NOTE]) into typed quotes.
	Alerts bool
}

// Config bundles the lexer and renderer settings for RenderMarkdown.
type Config struct {
	Lex    LexOptions
	Render Options
	Logger *slog.Logger
}

// RenderMarkdown lexes source and renders it on a fresh context. YAML front
// matter is decoded into Result.Metadata; a malformed stream is not an error
// here, check Result.Err for that.
func RenderMarkdown(source []byte, cfg Config) (*Result, error) {
	var metadata map[string]interface{}
	if meta, kind, _, ok := SplitFrontMatter(source); ok && kind == MetadataYAML {
		m, err := ParseMetadata(meta)
		if err != nil {
			return nil, err
		}
		metadata = m
	}

	ctx := NewRenderContext(cfg.Render)
	ctx.Logger = cfg.Logger
	nodes := Render(Lex(source, cfg.Lex), ctx)
	return &Result{Nodes: nodes, Warnings: ctx.Warnings, Metadata: metadata}, nil
}

// newMarkdown returns a goldmark instance with the extensions the lexer maps to events.
func newMarkdown(opts LexOptions) goldmark.Markdown {
	parserOpts := []parser.Option{parser.WithAttribute()}
	if opts.AutoHeadingIDs {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
		),
		goldmark.WithParserOptions(parserOpts...),
	)
}

// Lex parses source and returns its event stream. Front matter, if present,
// is reported as a metadata block ahead of the body.
func Lex(source []byte, opts LexOptions) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		body := source
		if meta, kind, rest, ok := SplitFrontMatter(source); ok {
			if !yield(Start(Tag{Kind: TagMetadataBlock, MetadataKind: kind})) ||
				!yield(Text(string(meta))) ||
				!yield(End(TagMetadataBlock)) {
				return
			}
			body = rest
		}

		doc := newMarkdown(opts).Parser().Parse(text.NewReader(body))
		l := &lexer{
			source:    body,
			opts:      opts,
			yield:     yield,
			footnotes: footnoteNames(doc),
		}
		_ = ast.Walk(doc, l.walk)
	}
}

// lexer holds the state of one AST walk.
type lexer struct {
	source    []byte
	opts      LexOptions
	yield     func(Event) bool
	stopped   bool
	footnotes map[int]string // goldmark footnote index -> label

	// An alert marker line that must not surface as text.
	skipPara               ast.Node
	markerStart, markerEnd int
}

func (l *lexer) emit(ev Event) bool {
	if l.stopped {
		return false
	}
	if !l.yield(ev) {
		l.stopped = true
	}
	return !l.stopped
}

// scope emits the start or end event of tag depending on the walk direction.
func (l *lexer) scope(entering bool, tag Tag) bool {
	if entering {
		return l.emit(Start(tag))
	}
	return l.emit(End(tag.Kind))
}

func (l *lexer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if n == l.skipPara {
		return ast.WalkSkipChildren, nil
	}

	ok := true
	status := ast.WalkContinue

	switch node := n.(type) {
	case *ast.Paragraph:
		ok = l.scope(entering, Tag{Kind: TagParagraph})
	case *ast.Heading:
		ok = l.scope(entering, l.headingTag(node))
	case *ast.Blockquote:
		ok = l.scope(entering, l.blockQuoteTag(node, entering))
	case *ast.FencedCodeBlock:
		tag := Tag{Kind: TagCodeBlock, CodeKind: CodeFenced}
		if node.Info != nil {
			tag.Info = string(node.Info.Segment.Value(l.source))
		}
		status = ast.WalkSkipChildren
		if entering {
			ok = l.codeBlock(tag, node.Lines())
		}
	case *ast.CodeBlock:
		status = ast.WalkSkipChildren
		if entering {
			ok = l.codeBlock(Tag{Kind: TagCodeBlock, CodeKind: CodeIndented}, node.Lines())
		}
	case *ast.HTMLBlock:
		status = ast.WalkSkipChildren
		if entering {
			ok = l.htmlBlock(node)
		}
	case *ast.List:
		ok = l.scope(entering, Tag{Kind: TagList, Ordered: node.IsOrdered(), Start: node.Start})
	case *ast.ListItem:
		ok = l.scope(entering, Tag{Kind: TagItem})
	case *ast.ThematicBreak:
		if entering {
			ok = l.emit(Rule())
		}
	case *ast.Text:
		if entering {
			ok = l.text(node)
		}
	case *ast.String:
		if entering {
			ok = l.emit(Text(string(node.Value)))
		}
	case *ast.CodeSpan:
		status = ast.WalkSkipChildren
		if entering {
			ok = l.emit(Code(l.codeSpanText(node)))
		}
	case *ast.Emphasis:
		kind := TagEmphasis
		if node.Level >= 2 {
			kind = TagStrong
		}
		ok = l.scope(entering, Tag{Kind: kind})
	case *ast.Link:
		ok = l.scope(entering, Tag{
			Kind:     TagLink,
			LinkType: LinkInline,
			Dest:     resolveText(node.Destination),
			Title:    resolveText(node.Title),
		})
	case *ast.Image:
		ok = l.scope(entering, Tag{
			Kind:  TagImage,
			Dest:  resolveText(node.Destination),
			Title: resolveText(node.Title),
		})
	case *ast.AutoLink:
		if entering {
			ok = l.autoLink(node)
		}
	case *ast.RawHTML:
		if entering {
			ok = l.emit(InlineHTML(string(node.Segments.Value(l.source))))
		}

	case *extast.Table:
		ok = l.scope(entering, Tag{Kind: TagTable, Alignments: convertAlignments(node.Alignments)})
	case *extast.TableHeader:
		ok = l.scope(entering, Tag{Kind: TagTableHead})
	case *extast.TableRow:
		ok = l.scope(entering, Tag{Kind: TagTableRow})
	case *extast.TableCell:
		ok = l.scope(entering, Tag{Kind: TagTableCell})
	case *extast.Strikethrough:
		ok = l.scope(entering, Tag{Kind: TagStrikethrough})
	case *extast.TaskCheckBox:
		if entering {
			ok = l.emit(TaskMarker(node.IsChecked))
		}
	case *extast.FootnoteLink:
		if entering {
			ok = l.emit(FootnoteRef(l.footnotes[node.Index]))
		}
	case *extast.FootnoteBacklink:
		status = ast.WalkSkipChildren
	case *extast.Footnote:
		ok = l.scope(entering, Tag{Kind: TagFootnoteDefinition, Name: string(node.Ref)})
	case *extast.DefinitionList:
		ok = l.scope(entering, Tag{Kind: TagDefinitionList})
	case *extast.DefinitionTerm:
		ok = l.scope(entering, Tag{Kind: TagDefinitionListTitle})
	case *extast.DefinitionDescription:
		ok = l.scope(entering, Tag{Kind: TagDefinitionListDefinition})
	}
	// Document, TextBlock and FootnoteList only contribute their children.

	if !ok {
		return ast.WalkStop, nil
	}
	return status, nil
}

func (l *lexer) headingTag(n *ast.Heading) Tag {
	tag := Tag{Kind: TagHeading, Level: n.Level}
	tag.ID = attrString(n, "id")
	if class := attrString(n, "class"); class != "" {
		tag.Classes = strings.Fields(class)
	}
	return tag
}

var alertPattern = regexp.MustCompile(`(?i)^\[!(NOTE|TIP|IMPORTANT|WARNING|CAUTION)\]\s*$`)

var alertKinds = map[string]BlockQuoteKind{
	"NOTE":      QuoteNote,
	"TIP":       QuoteTip,
	"IMPORTANT": QuoteImportant,
	"WARNING":   QuoteWarning,
	"CAUTION":   QuoteCaution,
}

// blockQuoteTag detects a GitHub alert marker on the first line of the quote.
// The marker itself is hidden from the rest of the walk.
func (l *lexer) blockQuoteTag(n *ast.Blockquote, entering bool) Tag {
	tag := Tag{Kind: TagBlockQuote}
	if !entering || !l.opts.Alerts {
		return tag
	}
	para, ok := n.FirstChild().(*ast.Paragraph)
	if !ok || para.Lines().Len() == 0 {
		return tag
	}
	first := para.Lines().At(0)
	m := alertPattern.FindSubmatch(first.Value(l.source))
	if m == nil {
		return tag
	}
	tag.QuoteKind = alertKinds[strings.ToUpper(string(m[1]))]
	if para.Lines().Len() == 1 {
		l.skipPara = para
	} else {
		l.markerStart, l.markerEnd = first.Start, first.Stop
	}
	return tag
}

func (l *lexer) text(n *ast.Text) bool {
	if n.Segment.Start >= l.markerStart && n.Segment.Start < l.markerEnd {
		return true
	}
	value := n.Segment.Value(l.source)
	s := string(value)
	if !n.IsRaw() {
		s = resolveText(value)
	}
	if s != "" && !l.emit(Text(s)) {
		return false
	}
	switch {
	case n.HardLineBreak():
		return l.emit(HardBreak())
	case n.SoftLineBreak():
		return l.emit(SoftBreak())
	}
	return true
}

func (l *lexer) codeSpanText(n *ast.CodeSpan) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(l.source))
		case *ast.String:
			sb.Write(t.Value)
		}
	}
	return sb.String()
}

func (l *lexer) codeBlock(tag Tag, lines *text.Segments) bool {
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(line.Value(l.source))
	}
	if !l.emit(Start(tag)) {
		return false
	}
	if sb.Len() > 0 && !l.emit(Text(sb.String())) {
		return false
	}
	return l.emit(End(TagCodeBlock))
}

func (l *lexer) htmlBlock(n *ast.HTMLBlock) bool {
	if !l.emit(Start(Tag{Kind: TagHTMLBlock})) {
		return false
	}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		if !l.emit(HTML(string(line.Value(l.source)))) {
			return false
		}
	}
	if n.HasClosure() {
		if !l.emit(HTML(string(n.ClosureLine.Value(l.source)))) {
			return false
		}
	}
	return l.emit(End(TagHTMLBlock))
}

func (l *lexer) autoLink(n *ast.AutoLink) bool {
	tag := Tag{Kind: TagLink, LinkType: LinkAutolink, Dest: string(n.URL(l.source))}
	if n.AutoLinkType == ast.AutoLinkEmail {
		tag.LinkType = LinkEmail
	}
	return l.emit(Start(tag)) &&
		l.emit(Text(string(n.Label(l.source)))) &&
		l.emit(End(TagLink))
}

// resolveText unescapes backslash escapes and character references, as the
// goldmark HTML writer would.
func resolveText(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	b = util.ResolveEntityNames(b)
	return string(b)
}

func attrString(n ast.Node, name string) string {
	v, ok := n.AttributeString(name)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case []byte:
		return string(s)
	case string:
		return s
	}
	return ""
}

func convertAlignments(in []extast.Alignment) []Alignment {
	out := make([]Alignment, len(in))
	for i, a := range in {
		switch a {
		case extast.AlignLeft:
			out[i] = AlignLeft
		case extast.AlignCenter:
			out[i] = AlignCenter
		case extast.AlignRight:
			out[i] = AlignRight
		default:
			out[i] = AlignNone
		}
	}
	return out
}

// footnoteNames maps goldmark's footnote indexes back to their labels.
func footnoteNames(doc ast.Node) map[int]string {
	names := make(map[int]string)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if fn, ok := n.(*extast.Footnote); ok && entering {
			names[fn.Index] = string(fn.Ref)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return names
}
