package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/mdtree/internal/config"
	"github.com/open-cli-collective/mdtree/internal/fetch"
)

func testOptions(output string) (*renderOptions, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &renderOptions{output: output, noColor: true, out: out, errOut: errOut}, out, errOut
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRunRender_FileHTML(t *testing.T) {
	path := writeSource(t, "doc.md", "# Hello\n\nWorld *x*\n")
	opts, out, errOut := testOptions("")

	err := runRender(context.Background(), path, opts, &config.Config{}, nil)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "<h1>Hello</h1>")
	assert.Contains(t, out.String(), "<em>x</em>")
	assert.Empty(t, errOut.String())
}

func TestRunRender_ConfigOutputFormat(t *testing.T) {
	path := writeSource(t, "doc.md", "para\n")
	opts, out, _ := testOptions("")

	err := runRender(context.Background(), path, opts, &config.Config{OutputFormat: "tree"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "p\n  text \"para\"\n", out.String())
}

func TestRunRender_FlagOverridesConfig(t *testing.T) {
	path := writeSource(t, "doc.md", "para\n")
	opts, out, _ := testOptions("html")

	err := runRender(context.Background(), path, opts, &config.Config{OutputFormat: "tree"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "<p>para</p>\n", out.String())
}

func TestRunRender_JSON(t *testing.T) {
	path := writeSource(t, "doc.md", "## Title\n")
	opts, out, _ := testOptions("json")

	err := runRender(context.Background(), path, opts, &config.Config{}, nil)
	require.NoError(t, err)

	var nodes []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "h2", nodes[0]["kind"])
}

func TestRunRender_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<html><body><article><h1>Post</h1><p>Body <strong>text</strong></p></article></body></html>`))
	}))
	defer server.Close()

	opts, out, _ := testOptions("html")
	client := fetch.NewClient(5*time.Second, "test-agent")

	err := runRender(context.Background(), server.URL, opts, &config.Config{}, client)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "<h1>Post</h1>")
	assert.Contains(t, out.String(), "<strong>text</strong>")
}

func TestRunRender_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "no such page"}`))
	}))
	defer server.Close()

	opts, _, _ := testOptions("")
	err := runRender(context.Background(), server.URL, opts, &config.Config{}, fetch.NewClient(0, ""))
	require.Error(t, err)

	var fetchErr *fetch.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "failed to fetch")
}

func TestRunRender_Stdin(t *testing.T) {
	client := fetch.NewClient(0, "")
	client.SetStdin(strings.NewReader("- a\n- b\n"))
	opts, out, _ := testOptions("html")

	err := runRender(context.Background(), fetch.Stdin, opts, &config.Config{}, client)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "<ul>")
	assert.Contains(t, out.String(), "<li>a</li>")
}

func TestRunRender_InvalidFormat(t *testing.T) {
	opts, _, _ := testOptions("table")

	err := runRender(context.Background(), "unused.md", opts, &config.Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestRunRender_MissingFile(t *testing.T) {
	opts, _, _ := testOptions("")

	err := runRender(context.Background(), filepath.Join(t.TempDir(), "none.md"), opts, &config.Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch")
}

func TestRunRender_ShowMetadata(t *testing.T) {
	source := "---\ntitle: Notes\ntags: 2\n---\nbody\n"

	t.Run("text", func(t *testing.T) {
		path := writeSource(t, "doc.md", source)
		opts, out, _ := testOptions("html")
		opts.showMetadata = true

		err := runRender(context.Background(), path, opts, &config.Config{}, nil)
		require.NoError(t, err)

		assert.Equal(t, "tags: 2\ntitle: Notes\n\n<p>body</p>\n", out.String())
	})

	t.Run("json", func(t *testing.T) {
		path := writeSource(t, "doc.md", source)
		opts, out, _ := testOptions("json")
		opts.showMetadata = true

		err := runRender(context.Background(), path, opts, &config.Config{}, nil)
		require.NoError(t, err)

		var got struct {
			Metadata map[string]interface{}   `json:"metadata"`
			Nodes    []map[string]interface{} `json:"nodes"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "Notes", got.Metadata["title"])
		require.Len(t, got.Nodes, 1)
		assert.Equal(t, "p", got.Nodes[0]["kind"])
	})
}

func TestRunRender_BadFrontMatter(t *testing.T) {
	path := writeSource(t, "doc.md", "---\ntitle: [unclosed\n---\nbody\n")
	opts, _, _ := testOptions("")

	err := runRender(context.Background(), path, opts, &config.Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to render")
}

func TestRunRender_Verbose(t *testing.T) {
	path := writeSource(t, "doc.md", "one\n\ntwo\n")
	opts, _, errOut := testOptions("")
	opts.verbose = true

	err := runRender(context.Background(), path, opts, &config.Config{}, nil)
	require.NoError(t, err)

	assert.Contains(t, errOut.String(), "(markdown, 9 B): 2 nodes, 0 warnings")
}

func TestRunRender_StrictWellFormed(t *testing.T) {
	path := writeSource(t, "doc.md", "> quote\n\n| a |\n|---|\n| b |\n")
	opts, out, _ := testOptions("")
	opts.strict = true

	err := runRender(context.Background(), path, opts, &config.Config{Strict: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "<blockquote>")
}

func TestRunRender_LoadsConfigFile(t *testing.T) {
	t.Setenv("MDT_OUTPUT_FORMAT", "")
	configPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, (&config.Config{OutputFormat: "tree"}).Save(configPath))

	path := writeSource(t, "doc.md", "para\n")
	opts, out, _ := testOptions("")
	opts.configPath = configPath

	err := runRender(context.Background(), path, opts, nil, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "p\n"))
}
