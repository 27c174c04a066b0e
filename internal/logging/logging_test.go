package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture points the global logger at a buffer for the duration of f.
func capture(t *testing.T, level Level, format Format, f func()) string {
	t.Helper()
	var buf bytes.Buffer
	old := GetLogger()
	SetLogger(New(&buf, level, format))
	defer SetLogger(old)
	f()
	return buf.String()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"", LevelInfo, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestNew_LevelFiltering(t *testing.T) {
	out := capture(t, LevelWarn, FormatText, func() {
		Debug("hidden")
		Warn("shown")
	})
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNew_JSONTimestamp(t *testing.T) {
	out := capture(t, LevelDebug, FormatJSON, func() {
		Debug("hello", "k", "v")
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "v", entry["k"])

	ts, ok := entry["time"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestRenderID(t *testing.T) {
	id := NewRenderID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, NewRenderID())

	ctx := WithRenderID(context.Background(), id)
	assert.Equal(t, id, GetRenderID(ctx))
	assert.Empty(t, GetRenderID(context.Background()))

	out := capture(t, LevelDebug, FormatJSON, func() {
		InfoContext(ctx, "tagged")
	})
	assert.Contains(t, out, `"render_id":"`+id+`"`)
}

func TestHelpers(t *testing.T) {
	ctx := WithRenderID(context.Background(), "r1")
	out := capture(t, LevelDebug, FormatJSON, func() {
		Fetch(ctx, "doc.md", 42, 3*time.Millisecond)
		Render(ctx, 7, 1, "source", "doc.md")
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var fetch, render map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &fetch))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &render))

	assert.Equal(t, "fetch", fetch["msg"])
	assert.EqualValues(t, 42, fetch["bytes"])
	assert.EqualValues(t, 3, fetch["duration_ms"])
	assert.Equal(t, "r1", fetch["render_id"])

	assert.Equal(t, "render", render["msg"])
	assert.EqualValues(t, 7, render["nodes"])
	assert.EqualValues(t, 1, render["warnings"])
	assert.Equal(t, "doc.md", render["source"])
}
