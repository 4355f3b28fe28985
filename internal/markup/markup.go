// Package markup handles the HTML fragments stored as note content.
package markup

import (
	"html"
	"regexp"
	"strings"
)

// EmptyPreview is shown for notes without text.
const EmptyPreview = "No content"

var tagRe = regexp.MustCompile(`<[^>]*>`)

// StripTags removes tags from an HTML fragment and unescapes entities.
func StripTags(fragment string) string {
	return html.UnescapeString(tagRe.ReplaceAllString(fragment, ""))
}

// WordCount counts whitespace-separated words in the text of fragment.
func WordCount(fragment string) int {
	return len(strings.Fields(StripTags(fragment)))
}

// Preview returns the first n characters of the fragment's text with
// whitespace collapsed, followed by "..." when truncated.
func Preview(fragment string, n int) string {
	text := strings.Join(strings.Fields(StripTags(fragment)), " ")
	if text == "" {
		return EmptyPreview
	}
	r := []rune(text)
	if n <= 0 || len(r) <= n {
		return text
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}

// HighlightSearch wraps every case-insensitive occurrence of term in text
// with a <mark> element. An empty term leaves text unchanged.
func HighlightSearch(text, term string) string {
	if strings.TrimSpace(term) == "" {
		return text
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term))
	return re.ReplaceAllString(text, "<mark>$0</mark>")
}
