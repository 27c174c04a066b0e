// escape.go holds the three escaping disciplines used when data crosses into markup.
package md

import (
	"strings"

	"github.com/yuin/goldmark/util"
)

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeText escapes s for use as element body text.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// EscapeAttr escapes s for use inside a double-quoted attribute value.
func EscapeAttr(s string) string {
	return string(util.EscapeHTML([]byte(s)))
}

// EscapeHref escapes s for use as an href or src attribute value. Bytes that
// are not legal in a URL are percent-encoded (existing %XX escapes are kept),
// then & and ' are entity-escaped.
func EscapeHref(s string) string {
	escaped := util.EscapeHTML(util.URLEscape([]byte(s), false))
	return strings.ReplaceAll(string(escaped), "'", "&#x27;")
}
