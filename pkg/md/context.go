// context.go defines the mutable state threaded through one render.
package md

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// TablePhase tells whether cells are currently drawn from a table head or body.
type TablePhase int

const (
	PhaseHead TablePhase = iota
	PhaseBody
)

func (p TablePhase) String() string {
	if p == PhaseBody {
		return "body"
	}
	return "head"
}

// Options tune how a render interprets the event stream.
type Options struct {
	// ResolveFootnoteRefs numbers a footnote reference by looking up (or
	// assigning) the ordinal of its name. When false, a reference shows
	// len(FootnoteNumbers)+1 at the moment it is drawn.
	ResolveFootnoteRefs bool
}

// RenderContext is the state shared by every recursive step of one render.
// A context belongs to a single render and must not be reused.
type RenderContext struct {
	TablePhase      TablePhase
	Alignments      []Alignment
	CellIndex       int
	FootnoteNumbers map[string]int
	Suppressed      bool

	Options  Options
	Warnings []Warning

	// Logger receives a record for every warning. Nil discards them.
	Logger *slog.Logger
}

// NewRenderContext returns a context in its initial state.
func NewRenderContext(opts Options) *RenderContext {
	return &RenderContext{
		TablePhase:      PhaseHead,
		FootnoteNumbers: make(map[string]int),
		Options:         opts,
	}
}

// footnoteOrdinal returns the ordinal of name, assigning the next one on first sight.
func (c *RenderContext) footnoteOrdinal(name string) int {
	if n, ok := c.FootnoteNumbers[name]; ok {
		return n
	}
	n := len(c.FootnoteNumbers) + 1
	c.FootnoteNumbers[name] = n
	return n
}

// referenceNumber returns the number displayed for a reference to name.
func (c *RenderContext) referenceNumber(name string) int {
	if c.Options.ResolveFootnoteRefs {
		return c.footnoteOrdinal(name)
	}
	return len(c.FootnoteNumbers) + 1
}

// cellStyle returns the inline style for the current cell, if its column is aligned.
func (c *RenderContext) cellStyle() (string, bool) {
	if c.CellIndex < 0 || c.CellIndex >= len(c.Alignments) {
		return "", false
	}
	switch c.Alignments[c.CellIndex] {
	case AlignLeft:
		return "text-align:left", true
	case AlignCenter:
		return "text-align:center", true
	case AlignRight:
		return "text-align:right", true
	}
	return "", false
}

func (c *RenderContext) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

// WarningKind classifies a malformed-stream anomaly.
type WarningKind int

const (
	// WarnUnmatchedEnd is an end event with no open scope of its kind.
	WarnUnmatchedEnd WarningKind = iota
	// WarnMisnestedEnd is an end event that closes an outer scope while
	// inner scopes are still open; the inner scopes are closed implicitly.
	WarnMisnestedEnd
	// WarnUnclosedScope is a scope still open when the stream ran out.
	WarnUnclosedScope
)

func (k WarningKind) String() string {
	switch k {
	case WarnUnmatchedEnd:
		return "unmatched end"
	case WarnMisnestedEnd:
		return "misnested end"
	case WarnUnclosedScope:
		return "unclosed scope"
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

// Warning records one anomaly the renderer recovered from.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Tag     TagKind     `json:"tag"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return w.Message
}

// addWarning records an anomaly and logs it.
func (c *RenderContext) addWarning(kind WarningKind, tag TagKind, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.Warnings = append(c.Warnings, Warning{Kind: kind, Tag: tag, Message: msg})
	c.logger().Warn(msg, "kind", kind.String(), "tag", tag.String())
}

// Err returns a *MalformedStreamError describing the recorded warnings, or
// nil if the stream was well-nested.
func (c *RenderContext) Err() error {
	if len(c.Warnings) == 0 {
		return nil
	}
	return &MalformedStreamError{Warnings: append([]Warning(nil), c.Warnings...)}
}

// MalformedStreamError reports that the event stream was not well-nested.
// The tree was still built; this only flags the document.
type MalformedStreamError struct {
	Warnings []Warning
}

func (e *MalformedStreamError) Error() string {
	if len(e.Warnings) == 1 {
		return "malformed event stream: " + e.Warnings[0].Message
	}
	msgs := make([]string, len(e.Warnings))
	for i, w := range e.Warnings {
		msgs[i] = w.Message
	}
	return fmt.Sprintf("malformed event stream (%d anomalies): %s", len(e.Warnings), strings.Join(msgs, "; "))
}
