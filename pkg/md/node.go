// Package md lexes markdown into a flat event stream and rebuilds it as a
// typed document tree.
package md

import (
	"fmt"
	"strings"
)

// NodeKind identifies the structural concept a Node stands for. The values
// are the HTML element names the UI renderer should materialize, except for
// the leaf kinds that have no element of their own.
type NodeKind string

const (
	KindText      NodeKind = "text"
	KindHTML      NodeKind = "html" // raw markup, passed through verbatim
	KindSoftBreak NodeKind = "softbreak"

	KindParagraph   NodeKind = "p"
	KindHeading1    NodeKind = "h1"
	KindHeading2    NodeKind = "h2"
	KindHeading3    NodeKind = "h3"
	KindHeading4    NodeKind = "h4"
	KindHeading5    NodeKind = "h5"
	KindHeading6    NodeKind = "h6"
	KindBlockQuote  NodeKind = "blockquote"
	KindCodeBlock   NodeKind = "pre"
	KindList        NodeKind = "ul"
	KindOrderedList NodeKind = "ol"
	KindListItem    NodeKind = "li"
	KindRule        NodeKind = "hr"

	KindFootnoteDefinition NodeKind = "footnote-definition"
	KindFootnoteReference  NodeKind = "footnote-reference"

	KindDefinitionList        NodeKind = "dl"
	KindDefinitionTerm        NodeKind = "dt"
	KindDefinitionDescription NodeKind = "dd"

	KindTable       NodeKind = "table"
	KindTableHead   NodeKind = "thead"
	KindTableRow    NodeKind = "tr"
	KindTableHeader NodeKind = "th"
	KindTableData   NodeKind = "td"

	KindEmphasis      NodeKind = "em"
	KindStrong        NodeKind = "strong"
	KindStrikethrough NodeKind = "del"
	KindSubscript     NodeKind = "sub"
	KindSuperscript   NodeKind = "sup"
	KindLink          NodeKind = "a"
	KindImage         NodeKind = "img"
	KindCode          NodeKind = "code"
	KindMath          NodeKind = "math"
	KindHardBreak     NodeKind = "br"
	KindCheckbox      NodeKind = "checkbox"
)

var headingKinds = [...]NodeKind{KindHeading1, KindHeading2, KindHeading3, KindHeading4, KindHeading5, KindHeading6}

// HeadingKind returns the node kind for a heading of the given level. Levels
// outside 1-6 are clamped.
func HeadingKind(level int) NodeKind {
	if level < 1 {
		level = 1
	}
	if level > len(headingKinds) {
		level = len(headingKinds)
	}
	return headingKinds[level-1]
}

// IsBlock reports whether k is a block-level kind.
func (k NodeKind) IsBlock() bool {
	switch k {
	case KindParagraph, KindHeading1, KindHeading2, KindHeading3, KindHeading4, KindHeading5, KindHeading6,
		KindBlockQuote, KindCodeBlock, KindList, KindOrderedList, KindListItem, KindRule,
		KindFootnoteDefinition, KindDefinitionList, KindDefinitionTerm, KindDefinitionDescription,
		KindTable, KindTableHead, KindTableRow, KindTableHeader, KindTableData:
		return true
	}
	return false
}

// Node is one element of the document tree.
//
// Attrs and Text are already escaped for their syntactic role, so a renderer
// can write them as they are. Text holds the content of leaf nodes (text,
// code, math, raw HTML) and the visible number of footnote definitions and
// references.
type Node struct {
	Kind     NodeKind          `json:"kind"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

func (n *Node) setAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// PlainText concatenates the text of n and all its descendants.
func (n *Node) PlainText() string {
	if len(n.Children) == 0 {
		switch n.Kind {
		case KindText, KindCode, KindMath:
			return n.Text
		case KindSoftBreak:
			return " "
		}
		return ""
	}
	var sb strings.Builder
	for _, c := range n.Children {
		sb.WriteString(c.PlainText())
	}
	return sb.String()
}

func (n *Node) String() string {
	if n.Text != "" {
		return fmt.Sprintf("%s(%q)", n.Kind, n.Text)
	}
	return fmt.Sprintf("%s[%d]", n.Kind, len(n.Children))
}

// Count returns the number of nodes in the forest, descendants included.
func Count(nodes []*Node) int {
	total := 0
	for _, n := range nodes {
		total += 1 + Count(n.Children)
	}
	return total
}
