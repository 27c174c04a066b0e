// html.go writes a document tree as HTML.
package md

import (
	"io"
	"sort"
	"strings"
)

// ToHTML returns the HTML for nodes.
func ToHTML(nodes []*Node) string {
	var sb strings.Builder
	_ = WriteHTML(&sb, nodes)
	return sb.String()
}

// WriteHTML writes nodes to w as HTML. Node text and attributes are already
// escaped and are written unchanged.
func WriteHTML(w io.Writer, nodes []*Node) error {
	hw := &htmlWriter{w: w}
	for _, n := range nodes {
		hw.node(n)
	}
	return hw.err
}

type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) write(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// open writes <tag attrs...>, with attributes in sorted order.
func (hw *htmlWriter) open(tag string, attrs map[string]string, selfClose bool) {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(tag)

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sb.WriteString(" ")
		sb.WriteString(key)
		sb.WriteString(`="`)
		sb.WriteString(attrs[key])
		sb.WriteString(`"`)
	}
	if selfClose {
		sb.WriteString(" />")
	} else {
		sb.WriteString(">")
	}
	hw.write(sb.String())
}

func (hw *htmlWriter) children(n *Node) {
	for _, c := range n.Children {
		hw.node(c)
	}
}

func (hw *htmlWriter) node(n *Node) {
	switch n.Kind {
	case KindText:
		hw.write(n.Text)
	case KindHTML:
		hw.write(n.Text)
	case KindSoftBreak:
		hw.write("\n")
	case KindHardBreak:
		hw.write("<br />\n")
	case KindRule:
		hw.write("<hr />\n")

	case KindCode:
		hw.write("<code>")
		hw.write(n.Text)
		hw.write("</code>")

	case KindMath:
		hw.open("span", n.Attrs, false)
		hw.write(n.Text)
		hw.write("</span>")

	case KindCheckbox:
		hw.open("input", n.Attrs, true)
		hw.write("\n")

	case KindImage:
		hw.open("img", n.Attrs, true)

	case KindCodeBlock:
		hw.write("<pre>")
		hw.open("code", n.Attrs, false)
		hw.children(n)
		hw.write("</code></pre>\n")

	case KindFootnoteDefinition:
		attrs := map[string]string{"class": "footnote-definition"}
		for k, v := range n.Attrs {
			attrs[k] = v
		}
		hw.open("div", attrs, false)
		hw.write(`<sup class="footnote-definition-label">`)
		hw.write(n.Text)
		hw.write("</sup>\n")
		hw.children(n)
		hw.write("</div>\n")

	case KindFootnoteReference:
		hw.write(`<sup class="footnote-reference">`)
		hw.open("a", n.Attrs, false)
		hw.write(n.Text)
		hw.write("</a></sup>")

	case KindTable:
		hw.write("<table>")
		inBody := false
		for _, c := range n.Children {
			if c.Kind == KindTableRow && !inBody {
				hw.write("<tbody>\n")
				inBody = true
			}
			hw.node(c)
		}
		if inBody {
			hw.write("</tbody>")
		}
		hw.write("</table>\n")

	case KindTableHead:
		hw.write("<thead><tr>")
		hw.children(n)
		hw.write("</tr></thead>\n")

	case KindTableRow:
		hw.write("<tr>")
		hw.children(n)
		hw.write("</tr>\n")

	default:
		tag := string(n.Kind)
		hw.open(tag, n.Attrs, false)
		if n.Kind == KindList || n.Kind == KindOrderedList || n.Kind == KindBlockQuote || n.Kind == KindDefinitionList {
			hw.write("\n")
		}
		hw.children(n)
		hw.write("</" + tag + ">")
		if n.Kind.IsBlock() && n.Kind != KindTableHeader && n.Kind != KindTableData {
			hw.write("\n")
		}
	}
}
