// event.go defines the lexical event stream consumed by the tree renderer.
package md

import "fmt"

// EventType identifies the variant of an Event.
type EventType int

const (
	EventStart             EventType = iota // opens a scope described by Tag
	EventEnd                                // closes the innermost scope of Tag.Kind
	EventText                               // text run
	EventCode                               // inline code span
	EventInlineMath                         // $...$
	EventDisplayMath                        // $$...$$
	EventHTML                               // block-level raw HTML
	EventInlineHTML                         // inline raw HTML
	EventFootnoteReference                  // [^name]
	EventSoftBreak
	EventHardBreak
	EventRule // thematic break
	EventTaskListMarker
)

var eventTypeNames = map[EventType]string{
	EventStart:             "Start",
	EventEnd:               "End",
	EventText:              "Text",
	EventCode:              "Code",
	EventInlineMath:        "InlineMath",
	EventDisplayMath:       "DisplayMath",
	EventHTML:              "Html",
	EventInlineHTML:        "InlineHtml",
	EventFootnoteReference: "FootnoteReference",
	EventSoftBreak:         "SoftBreak",
	EventHardBreak:         "HardBreak",
	EventRule:              "Rule",
	EventTaskListMarker:    "TaskListMarker",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// TagKind identifies which scope a start or end event belongs to.
type TagKind int

const (
	TagParagraph TagKind = iota
	TagHeading
	TagBlockQuote
	TagCodeBlock
	TagHTMLBlock
	TagList
	TagItem
	TagFootnoteDefinition
	TagDefinitionList
	TagDefinitionListTitle
	TagDefinitionListDefinition
	TagTable
	TagTableHead
	TagTableRow
	TagTableCell
	TagEmphasis
	TagStrong
	TagStrikethrough
	TagSubscript
	TagSuperscript
	TagLink
	TagImage
	TagMetadataBlock
)

var tagKindNames = map[TagKind]string{
	TagParagraph:                "Paragraph",
	TagHeading:                  "Heading",
	TagBlockQuote:               "BlockQuote",
	TagCodeBlock:                "CodeBlock",
	TagHTMLBlock:                "HtmlBlock",
	TagList:                     "List",
	TagItem:                     "Item",
	TagFootnoteDefinition:       "FootnoteDefinition",
	TagDefinitionList:           "DefinitionList",
	TagDefinitionListTitle:      "DefinitionListTitle",
	TagDefinitionListDefinition: "DefinitionListDefinition",
	TagTable:                    "Table",
	TagTableHead:                "TableHead",
	TagTableRow:                 "TableRow",
	TagTableCell:                "TableCell",
	TagEmphasis:                 "Emphasis",
	TagStrong:                   "Strong",
	TagStrikethrough:            "Strikethrough",
	TagSubscript:                "Subscript",
	TagSuperscript:              "Superscript",
	TagLink:                     "Link",
	TagImage:                    "Image",
	TagMetadataBlock:            "MetadataBlock",
}

func (k TagKind) String() string {
	if name, ok := tagKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TagKind(%d)", int(k))
}

// BlockQuoteKind is the GitHub alert flavour of a block quote.
type BlockQuoteKind int

const (
	QuotePlain BlockQuoteKind = iota
	QuoteNote
	QuoteTip
	QuoteImportant
	QuoteWarning
	QuoteCaution
)

func (k BlockQuoteKind) String() string {
	switch k {
	case QuoteNote:
		return "note"
	case QuoteTip:
		return "tip"
	case QuoteImportant:
		return "important"
	case QuoteWarning:
		return "warning"
	case QuoteCaution:
		return "caution"
	}
	return "plain"
}

// CodeBlockKind distinguishes indented from fenced code blocks.
type CodeBlockKind int

const (
	CodeIndented CodeBlockKind = iota
	CodeFenced
)

func (k CodeBlockKind) String() string {
	if k == CodeFenced {
		return "fenced"
	}
	return "indented"
}

// Alignment is the alignment of a table column.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return "none"
}

// LinkType records how the lexer recognised a link.
type LinkType int

const (
	LinkInline LinkType = iota
	LinkReference
	LinkCollapsed
	LinkShortcut
	LinkAutolink
	LinkEmail
)

func (l LinkType) String() string {
	switch l {
	case LinkReference:
		return "reference"
	case LinkCollapsed:
		return "collapsed"
	case LinkShortcut:
		return "shortcut"
	case LinkAutolink:
		return "autolink"
	case LinkEmail:
		return "email"
	}
	return "inline"
}

// MetadataKind is the delimiter style of a front-matter block.
type MetadataKind int

const (
	MetadataYAML    MetadataKind = iota // ---
	MetadataPlusses                     // +++
)

func (k MetadataKind) String() string {
	if k == MetadataPlusses {
		return "plusses"
	}
	return "yaml"
}

// Tag carries the attributes of a start event. Only the fields relevant to
// Kind are set; end events only need Kind.
type Tag struct {
	Kind TagKind `json:"kind"`

	Level   int      `json:"level,omitempty"` // heading, 1-6
	ID      string   `json:"id,omitempty"`
	Classes []string `json:"classes,omitempty"`

	QuoteKind BlockQuoteKind `json:"quoteKind,omitempty"`

	CodeKind CodeBlockKind `json:"codeKind,omitempty"`
	Info     string        `json:"info,omitempty"` // fence info string

	Ordered bool `json:"ordered,omitempty"`
	Start   int  `json:"start,omitempty"`

	Name string `json:"name,omitempty"` // footnote definition label

	Alignments []Alignment `json:"alignments,omitempty"`

	LinkType LinkType `json:"linkType,omitempty"`
	Dest     string   `json:"dest,omitempty"`
	Title    string   `json:"title,omitempty"`

	MetadataKind MetadataKind `json:"metadataKind,omitempty"`
}

// Event is a single lexical marker of a document.
type Event struct {
	Type    EventType `json:"type"`
	Tag     Tag       `json:"tag"`
	Text    string    `json:"text,omitempty"` // leaf payload, or footnote name
	Checked bool      `json:"checked,omitempty"`
}

// String renders the event in a compact debugging form, e.g. Start(Heading).
func (e Event) String() string {
	switch e.Type {
	case EventStart, EventEnd:
		return fmt.Sprintf("%s(%s)", e.Type, e.Tag.Kind)
	case EventTaskListMarker:
		return fmt.Sprintf("%s(%t)", e.Type, e.Checked)
	case EventSoftBreak, EventHardBreak, EventRule:
		return e.Type.String()
	}
	return fmt.Sprintf("%s(%q)", e.Type, e.Text)
}

// Start returns a start event for tag.
func Start(tag Tag) Event { return Event{Type: EventStart, Tag: tag} }

// End returns the end event closing a scope of the given kind.
func End(kind TagKind) Event { return Event{Type: EventEnd, Tag: Tag{Kind: kind}} }

func Text(s string) Event        { return Event{Type: EventText, Text: s} }
func Code(s string) Event        { return Event{Type: EventCode, Text: s} }
func InlineMath(s string) Event  { return Event{Type: EventInlineMath, Text: s} }
func DisplayMath(s string) Event { return Event{Type: EventDisplayMath, Text: s} }
func HTML(s string) Event        { return Event{Type: EventHTML, Text: s} }
func InlineHTML(s string) Event  { return Event{Type: EventInlineHTML, Text: s} }

// FootnoteRef returns a reference to the footnote called name.
func FootnoteRef(name string) Event { return Event{Type: EventFootnoteReference, Text: name} }

func SoftBreak() Event { return Event{Type: EventSoftBreak} }
func HardBreak() Event { return Event{Type: EventHardBreak} }
func Rule() Event      { return Event{Type: EventRule} }

// TaskMarker returns a task-list checkbox marker.
func TaskMarker(checked bool) Event { return Event{Type: EventTaskListMarker, Checked: checked} }
