package md

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SplitFrontMatter separates a leading front matter block from the document
// body. A YAML block opens with "---" and closes with "---" or "..."; a
// plusses block opens and closes with "+++". The delimiters must sit alone on
// their lines. ok is false if source has no complete block.
func SplitFrontMatter(source []byte) (meta []byte, kind MetadataKind, body []byte, ok bool) {
	first, rest, found := cutLine(source)
	if !found {
		return nil, 0, source, false
	}

	var closers []string
	switch string(bytes.TrimRight(first, " \t")) {
	case "---":
		kind, closers = MetadataYAML, []string{"---", "..."}
	case "+++":
		kind, closers = MetadataPlusses, []string{"+++"}
	default:
		return nil, 0, source, false
	}

	offset := 0
	for offset <= len(rest) {
		line, after, more := cutLine(rest[offset:])
		trimmed := string(bytes.TrimRight(line, " \t"))
		for _, c := range closers {
			if trimmed == c {
				return rest[:offset], kind, after, true
			}
		}
		if !more {
			break
		}
		offset = len(rest) - len(after)
	}
	return nil, 0, source, false
}

// cutLine splits b after its first line. The returned line has no line
// ending; found is false when b has no line ending at all.
func cutLine(b []byte) (line, rest []byte, found bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return b, nil, false
	}
	return bytes.TrimSuffix(b[:i], []byte("\r")), b[i+1:], true
}

// ParseMetadata decodes YAML front matter into a map. Empty front matter
// yields an empty map.
func ParseMetadata(meta []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if len(bytes.TrimSpace(meta)) == 0 {
		return out, nil
	}
	if err := yaml.Unmarshal(meta, &out); err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}
	return out, nil
}
