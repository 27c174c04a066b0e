// Package fetch turns a file path, URL or stdin marker into document text.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/open-cli-collective/mdtree/internal/logging"
	"github.com/open-cli-collective/mdtree/pkg/md"
)

const (
	defaultTimeout   = 30 * time.Second

	// DefaultMaxBodySize caps remote response bodies.
	DefaultMaxBodySize int64 = 10 << 20
	defaultUserAgent = "mdt"

	// Stdin is the source name that reads from standard input.
	Stdin = "-"
)

// Format is the markup a fetched document is written in.
type Format int

const (
	FormatMarkdown Format = iota
	FormatHTML
)

func (f Format) String() string {
	if f == FormatHTML {
		return "html"
	}
	return "markdown"
}

// Document is the raw text of one source.
type Document struct {
	Source      string
	Body        []byte
	ContentType string
	Format      Format
}

// Markdown returns the document as markdown, converting HTML bodies first.
func (d *Document) Markdown() ([]byte, error) {
	if d.Format != FormatHTML {
		return d.Body, nil
	}
	converted, err := md.FromHTML(string(d.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to convert HTML from %s: %w", d.Source, err)
	}
	return []byte(converted), nil
}

// FetchError is returned when a remote source answers with an error status.
type FetchError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *FetchError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: status %d: %s", e.URL, e.StatusCode, e.Message)
}

// Client fetches documents from files, stdin or http(s) URLs.
type Client struct {
	httpClient *http.Client
	userAgent  string
	stdin      io.Reader
	maxBody    int64
}

// NewClient creates a new fetch client. Zero values select the defaults.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		userAgent: userAgent,
		stdin:     os.Stdin,
		maxBody:   DefaultMaxBodySize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetStdin sets the reader used for the "-" source.
func (c *Client) SetStdin(r io.Reader) {
	c.stdin = r
}

// SetMaxBodySize sets the largest response body accepted from a URL.
// Values <= 0 restore DefaultMaxBodySize.
func (c *Client) SetMaxBodySize(n int64) {
	switch {
	case n <= 0:
		n = DefaultMaxBodySize
	case n == math.MaxInt64:
		// leaves room for the overflow byte read by get
		n--
	}
	c.maxBody = n
}

// IsURL reports whether source names an http(s) resource.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch reads the document named by source.
func (c *Client) Fetch(ctx context.Context, source string) (*Document, error) {
	start := time.Now()

	var (
		doc *Document
		err error
	)
	switch {
	case source == Stdin:
		doc, err = c.readStdin()
	case IsURL(source):
		doc, err = c.get(ctx, source)
	default:
		doc, err = readFile(source)
	}
	if err != nil {
		return nil, err
	}

	logging.Fetch(ctx, source, len(doc.Body), time.Since(start), "format", doc.Format.String())
	return doc, nil
}

func (c *Client) readStdin() (*Document, error) {
	body, err := io.ReadAll(c.stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return &Document{Source: Stdin, Body: body, Format: sniffFormat(body)}, nil
}

func readFile(path string) (*Document, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	format := FormatMarkdown
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		format = FormatHTML
	}
	return &Document{Source: path, Body: body, Format: format}, nil
}

func (c *Client) get(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/markdown, text/plain;q=0.9, text/html;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("response body from %s exceeds %d bytes", url, c.maxBody)
	}

	if resp.StatusCode >= 400 {
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Message:    errorMessage(body),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if body, err = decodeBody(body, contentType); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	format := FormatMarkdown
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if mediaType == "text/html" || mediaType == "application/xhtml+xml" {
			format = FormatHTML
		}
	} else if contentType == "" {
		format = sniffFormat(body)
	}

	return &Document{Source: url, Body: body, ContentType: contentType, Format: format}, nil
}

// decodeBody converts body to UTF-8 using the charset named by the content
// type or an HTML meta tag. Valid UTF-8 without a declared charset is kept.
func decodeBody(body []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// errorMessage extracts a short message from an error response body. JSON
// bodies with a "message" field are unwrapped.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	msg := strings.TrimSpace(string(body))
	if r := []rune(msg); len(r) > 200 {
		msg = string(r[:200]) + "..."
	}
	return msg
}

// sniffFormat guesses the format of a body that came without a name or type.
func sniffFormat(body []byte) Format {
	if strings.HasPrefix(http.DetectContentType(body), "text/html") {
		return FormatHTML
	}
	return FormatMarkdown
}
