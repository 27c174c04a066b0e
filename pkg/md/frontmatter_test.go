package md

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name   string
		source string
		ok     bool
		kind   MetadataKind
		meta   string
		body   string
	}{
		{
			name:   "yaml",
			source: "---\ntitle: x\n---\nbody\n",
			ok:     true,
			kind:   MetadataYAML,
			meta:   "title: x\n",
			body:   "body\n",
		},
		{
			name:   "yaml closed with dots",
			source: "---\na: 1\n...\nrest",
			ok:     true,
			kind:   MetadataYAML,
			meta:   "a: 1\n",
			body:   "rest",
		},
		{
			name:   "plusses",
			source: "+++\ntitle = \"x\"\n+++\nbody",
			ok:     true,
			kind:   MetadataPlusses,
			meta:   "title = \"x\"\n",
			body:   "body",
		},
		{
			name:   "crlf line endings",
			source: "---\r\na: 1\r\n---\r\nbody",
			ok:     true,
			kind:   MetadataYAML,
			meta:   "a: 1\r\n",
			body:   "body",
		},
		{
			name:   "closing line at end of input",
			source: "---\na: 1\n---",
			ok:     true,
			kind:   MetadataYAML,
			meta:   "a: 1\n",
			body:   "",
		},
		{
			name:   "empty block",
			source: "---\n---\nbody",
			ok:     true,
			kind:   MetadataYAML,
			meta:   "",
			body:   "body",
		},
		{name: "unterminated", source: "---\na: 1\nbody\n"},
		{name: "not at start", source: "intro\n---\na: 1\n---\n"},
		{name: "rule only", source: "---"},
		{name: "mixed delimiters", source: "+++\na: 1\n---\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, kind, body, ok := SplitFrontMatter([]byte(tt.source))
			require.Equal(t, tt.ok, ok)
			if !ok {
				assert.Equal(t, tt.source, string(body))
				return
			}
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.meta, string(meta))
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func TestParseMetadata(t *testing.T) {
	meta, err := ParseMetadata([]byte("title: Hello\ndraft: true\ncount: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"title": "Hello", "draft": true, "count": 3}, meta)

	empty, err := ParseMetadata([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseMetadata([]byte("a: [1, 2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse front matter")
}
