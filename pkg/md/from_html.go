package md

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ConvertOptions configures the HTML to markdown conversion.
type ConvertOptions struct {
	// KeepChrome keeps page chrome (nav, header, footer, aside, form) that is
	// stripped by default.
	KeepChrome bool
}

// FromHTML converts an HTML page to markdown.
func FromHTML(html string) (string, error) {
	return FromHTMLWithOptions(html, ConvertOptions{})
}

// FromHTMLWithOptions converts an HTML page to markdown with configurable options.
func FromHTMLWithOptions(html string, opts ConvertOptions) (string, error) {
	if html == "" {
		return "", nil
	}

	html = extractArticle(html)
	if !opts.KeepChrome {
		html = stripChrome(html)
	}

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(markdown), nil
}

var (
	articlePattern = regexp.MustCompile(`(?is)<(article|main)\b[^>]*>(.*)</(?:article|main)>`)

	chromePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<nav\b[^>]*>.*?</nav>`),
		regexp.MustCompile(`(?is)<header\b[^>]*>.*?</header>`),
		regexp.MustCompile(`(?is)<footer\b[^>]*>.*?</footer>`),
		regexp.MustCompile(`(?is)<aside\b[^>]*>.*?</aside>`),
		regexp.MustCompile(`(?is)<form\b[^>]*>.*?</form>`),
	}
)

// extractArticle narrows a full page to its <article> or <main> element, if it has one.
func extractArticle(html string) string {
	m := articlePattern.FindStringSubmatch(html)
	if m == nil {
		return html
	}
	return m[2]
}

// stripChrome removes navigation and other page furniture.
func stripChrome(html string) string {
	for _, p := range chromePatterns {
		html = p.ReplaceAllString(html, "")
	}
	return html
}
