package sanitize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToText extracts the visible text from an HTML document, dropping
// script/style/nav chrome. Used for text/html uploads so prompts carry
// course content rather than markup. Returns the input unchanged if it
// cannot be parsed as HTML.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find("script, style, noscript, iframe, nav, footer").Remove()

	var sb strings.Builder
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		sb.WriteString(s.Text())
	})

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		// Fragment without a <body>; fall back to the whole document text.
		text = doc.Text()
	}

	// Normalize whitespace line by line.
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
