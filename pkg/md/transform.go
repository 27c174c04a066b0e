// transform.go rebuilds a nested document tree from a flat event stream.
package md

import (
	"iter"
	"slices"
	"strconv"
	"strings"
)

// Result is the outcome of rendering one document.
type Result struct {
	Nodes    []*Node
	Warnings []Warning

	// Metadata holds decoded YAML front matter, when the source had any.
	Metadata map[string]interface{}
}

// Err returns a *MalformedStreamError if the render recovered from anomalies.
func (r *Result) Err() error {
	if len(r.Warnings) == 0 {
		return nil
	}
	return &MalformedStreamError{Warnings: r.Warnings}
}

// Transform renders events on a fresh context configured with opts.
func Transform(events iter.Seq[Event], opts Options) *Result {
	ctx := NewRenderContext(opts)
	nodes := Render(events, ctx)
	return &Result{Nodes: nodes, Warnings: ctx.Warnings}
}

// Render consumes events and returns the top-level nodes of the document.
// A nil ctx is replaced by a fresh one.
func Render(events iter.Seq[Event], ctx *RenderContext) []*Node {
	return slices.Collect(Nodes(events, ctx))
}

// Nodes returns the top-level nodes of the document lazily. Each node is
// complete, children included, when it is yielded. Stopping early releases
// the event source; the context is left as it was at that point.
func Nodes(events iter.Seq[Event], ctx *RenderContext) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if ctx == nil {
			ctx = NewRenderContext(Options{})
		}
		if ctx.FootnoteNumbers == nil {
			ctx.FootnoteNumbers = make(map[string]int)
		}
		next, stop := iter.Pull(events)
		defer stop()

		t := &transformer{next: next, ctx: ctx}
		t.pull(yield)
	}
}

// transformer holds the scope stack of one render. Every recursive pull owns
// the innermost entry of open at the time it was called.
type transformer struct {
	next      func() (Event, bool)
	ctx       *RenderContext
	open      []TagKind
	pending   *Event // an end event handed back to an outer scope
	exhausted bool
}

func (t *transformer) draw() (Event, bool) {
	if t.pending != nil {
		ev := *t.pending
		t.pending = nil
		return ev, true
	}
	if t.exhausted {
		return Event{}, false
	}
	ev, ok := t.next()
	if !ok {
		t.exhausted = true
	}
	return ev, ok
}

// pull draws events until its own scope closes or the stream ends, handing
// each node it builds to emit. It returns false if emit asked to stop.
func (t *transformer) pull(emit func(*Node) bool) bool {
	depth := len(t.open)
	for {
		ev, ok := t.draw()
		if !ok {
			if depth > 0 {
				kind := t.open[depth-1]
				t.ctx.addWarning(WarnUnclosedScope, kind, "unclosed %s at end of stream", kind)
				t.close()
			}
			return true
		}

		switch ev.Type {
		case EventStart:
			for _, n := range t.start(ev.Tag) {
				if !emit(n) {
					return false
				}
			}
		case EventEnd:
			if t.end(ev) {
				return true
			}
		default:
			if n := t.leaf(ev); n != nil && !emit(n) {
				return false
			}
		}
	}
}

// end handles an end event drawn while the innermost open scope is the one
// owned by the caller. It returns true when that scope is now closed.
func (t *transformer) end(ev Event) bool {
	kind := ev.Tag.Kind
	depth := len(t.open)
	if depth > 0 && t.open[depth-1] == kind {
		t.close()
		return true
	}
	for i := depth - 2; i >= 0; i-- {
		if t.open[i] == kind {
			inner := t.open[depth-1]
			t.ctx.addWarning(WarnMisnestedEnd, inner, "end of %s while %s is still open", kind, inner)
			t.close()
			t.pending = &ev
			return true
		}
	}
	t.ctx.addWarning(WarnUnmatchedEnd, kind, "unmatched end of %s", kind)
	return false
}

// close pops the innermost scope and applies the side effects of its end.
func (t *transformer) close() {
	kind := t.open[len(t.open)-1]
	t.open = t.open[:len(t.open)-1]

	switch kind {
	case TagTableHead:
		t.ctx.TablePhase = PhaseBody
	case TagTableCell:
		t.ctx.CellIndex++
	case TagMetadataBlock:
		t.ctx.Suppressed = false
	}
}

// children opens a scope of kind and collects the nodes built inside it.
func (t *transformer) children(kind TagKind) []*Node {
	t.open = append(t.open, kind)
	var nodes []*Node
	t.pull(func(n *Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// start builds the nodes for a scope opened by tag. Most scopes yield one
// node; HTML blocks splice their content into the parent and metadata blocks
// yield nothing.
func (t *transformer) start(tag Tag) []*Node {
	switch tag.Kind {
	case TagHTMLBlock:
		return t.children(tag.Kind)
	case TagMetadataBlock:
		t.ctx.Suppressed = true
		t.children(tag.Kind)
		return nil
	case TagImage:
		return []*Node{t.image(tag)}
	case TagTable:
		saved := t.ctx.Alignments
		t.ctx.Alignments = tag.Alignments
		t.ctx.TablePhase = PhaseHead
		t.ctx.CellIndex = 0
		n := &Node{Kind: KindTable}
		n.Children = t.children(tag.Kind)
		t.ctx.Alignments = saved
		return []*Node{n}
	}

	n := t.element(tag)
	n.Children = t.children(tag.Kind)
	return []*Node{n}
}

var alertClasses = map[BlockQuoteKind]string{
	QuoteNote:      "markdown-alert-note",
	QuoteTip:       "markdown-alert-tip",
	QuoteImportant: "markdown-alert-important",
	QuoteWarning:   "markdown-alert-warning",
	QuoteCaution:   "markdown-alert-caution",
}

var simpleKinds = map[TagKind]NodeKind{
	TagParagraph:                KindParagraph,
	TagItem:                     KindListItem,
	TagDefinitionList:           KindDefinitionList,
	TagDefinitionListTitle:      KindDefinitionTerm,
	TagDefinitionListDefinition: KindDefinitionDescription,
	TagEmphasis:                 KindEmphasis,
	TagStrong:                   KindStrong,
	TagStrikethrough:            KindStrikethrough,
	TagSubscript:                KindSubscript,
	TagSuperscript:              KindSuperscript,
}

// element builds the (childless) node for tag and applies its start side effects.
func (t *transformer) element(tag Tag) *Node {
	if kind, ok := simpleKinds[tag.Kind]; ok {
		return &Node{Kind: kind}
	}

	switch tag.Kind {
	case TagHeading:
		n := &Node{Kind: HeadingKind(tag.Level)}
		if tag.ID != "" {
			n.setAttr("id", EscapeAttr(tag.ID))
		}
		if len(tag.Classes) > 0 {
			classes := make([]string, len(tag.Classes))
			for i, c := range tag.Classes {
				classes[i] = EscapeAttr(c)
			}
			n.setAttr("class", strings.Join(classes, " "))
		}
		return n

	case TagBlockQuote:
		n := &Node{Kind: KindBlockQuote}
		if class, ok := alertClasses[tag.QuoteKind]; ok {
			n.setAttr("class", class)
		}
		return n

	case TagCodeBlock:
		n := &Node{Kind: KindCodeBlock}
		if tag.CodeKind == CodeFenced {
			if lang := codeLanguage(tag.Info); lang != "" {
				n.setAttr("class", "language-"+EscapeAttr(lang))
			}
		}
		return n

	case TagList:
		if !tag.Ordered {
			return &Node{Kind: KindList}
		}
		n := &Node{Kind: KindOrderedList}
		if tag.Start != 1 {
			n.setAttr("start", strconv.Itoa(tag.Start))
		}
		return n

	case TagFootnoteDefinition:
		n := &Node{
			Kind: KindFootnoteDefinition,
			Text: strconv.Itoa(t.ctx.footnoteOrdinal(tag.Name)),
		}
		n.setAttr("id", EscapeAttr(tag.Name))
		return n

	case TagTableHead:
		t.ctx.TablePhase = PhaseHead
		t.ctx.CellIndex = 0
		return &Node{Kind: KindTableHead}

	case TagTableRow:
		t.ctx.CellIndex = 0
		return &Node{Kind: KindTableRow}

	case TagTableCell:
		n := &Node{Kind: KindTableData}
		if t.ctx.TablePhase == PhaseHead {
			n.Kind = KindTableHeader
		}
		if style, ok := t.ctx.cellStyle(); ok {
			n.setAttr("style", style)
		}
		return n

	case TagLink:
		dest := tag.Dest
		if tag.LinkType == LinkEmail {
			dest = "mailto:" + dest
		}
		n := &Node{Kind: KindLink}
		n.setAttr("href", EscapeHref(dest))
		if tag.Title != "" {
			n.setAttr("title", EscapeAttr(tag.Title))
		}
		return n
	}

	// Unknown tag kinds still own a scope.
	return &Node{Kind: KindParagraph}
}

// codeLanguage returns the first whitespace-delimited token of a fence info string.
func codeLanguage(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// image consumes the scope of an image, turning its content into alt text.
func (t *transformer) image(tag Tag) *Node {
	n := &Node{Kind: KindImage}
	n.setAttr("src", EscapeHref(tag.Dest))
	n.setAttr("alt", EscapeAttr(t.altText(tag.Kind)))
	if tag.Title != "" {
		n.setAttr("title", EscapeAttr(tag.Title))
	}
	return n
}

// altText opens a scope of kind and flattens everything inside it to raw text.
func (t *transformer) altText(kind TagKind) string {
	t.open = append(t.open, kind)
	depth := len(t.open)

	var sb strings.Builder
	for len(t.open) >= depth {
		ev, ok := t.draw()
		if !ok {
			inner := t.open[len(t.open)-1]
			t.ctx.addWarning(WarnUnclosedScope, inner, "unclosed %s at end of stream", inner)
			t.close()
			continue
		}
		switch ev.Type {
		case EventStart:
			t.open = append(t.open, ev.Tag.Kind)
		case EventEnd:
			t.end(ev)
		case EventText, EventCode, EventInlineMath, EventDisplayMath:
			sb.WriteString(ev.Text)
		case EventSoftBreak, EventHardBreak:
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// leaf builds the node for a leaf event, or nil if it produces none.
func (t *transformer) leaf(ev Event) *Node {
	switch ev.Type {
	case EventText:
		if t.ctx.Suppressed {
			return nil
		}
		return &Node{Kind: KindText, Text: EscapeText(ev.Text)}

	case EventCode:
		if t.ctx.Suppressed {
			return nil
		}
		return &Node{Kind: KindCode, Text: EscapeText(ev.Text)}

	case EventInlineMath, EventDisplayMath:
		if t.ctx.Suppressed {
			return nil
		}
		n := &Node{Kind: KindMath, Text: EscapeText(ev.Text)}
		if ev.Type == EventDisplayMath {
			n.setAttr("class", "math math-display")
		} else {
			n.setAttr("class", "math math-inline")
		}
		return n

	case EventHTML, EventInlineHTML:
		if t.ctx.Suppressed {
			return nil
		}
		return &Node{Kind: KindHTML, Text: ev.Text}

	case EventFootnoteReference:
		n := &Node{
			Kind: KindFootnoteReference,
			Text: strconv.Itoa(t.ctx.referenceNumber(ev.Text)),
		}
		n.setAttr("href", "#"+EscapeAttr(ev.Text))
		return n

	case EventSoftBreak:
		return &Node{Kind: KindSoftBreak}

	case EventHardBreak:
		return &Node{Kind: KindHardBreak}

	case EventRule:
		return &Node{Kind: KindRule}

	case EventTaskListMarker:
		n := &Node{Kind: KindCheckbox}
		n.setAttr("type", "checkbox")
		n.setAttr("disabled", "")
		if ev.Checked {
			n.setAttr("checked", "")
		}
		return n
	}
	return nil
}
