package markup

import (
	"cmp"
	"html"
	"regexp"
	"slices"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Glossary maps lowercase terms to their definitions.
var Glossary = map[string]string{
	"artificial intelligence": "A branch of computer science that aims to create machines that can perform tasks that typically require human intelligence.",
	"machine learning":        "A subset of AI that enables computers to learn and improve from experience without being explicitly programmed.",
	"neural network":          "A computing system inspired by biological neural networks that constitute animal brains.",
	"algorithm":               "A set of rules or instructions given to a computer to help it learn on its own.",
	"deep learning":           "A subset of machine learning that uses neural networks with multiple layers.",
	"blockchain":              "A distributed ledger technology that maintains a continuously growing list of records.",
	"cryptocurrency":          "A digital or virtual currency that uses cryptography for security.",
	"api":                     "Application Programming Interface - a set of protocols and tools for building software applications.",
	"database":                "An organized collection of structured information, or data, typically stored electronically.",
	"framework":               "A platform for developing software applications that provides a foundation on which software developers can build programs.",
	"javascript":              "A high-level, interpreted programming language that conforms to the ECMAScript specification.",
	"react":                   "A JavaScript library for building user interfaces, particularly web applications.",
	"component":               "A reusable piece of code that defines how a certain part of your UI should appear.",
	"state":                   "An object that holds some information that may change over the lifetime of the component.",
	"props":                   "Short for properties, these are read-only attributes that are passed from parent to child components.",
}

const (
	glossaryClass = "glossary-term"
	glossaryOpen  = `<span class="` + glossaryClass + `"`
)

// glossaryRe matches any term as a whole word. Longer terms come first so
// "deep learning" wins over a shorter overlapping term.
var glossaryRe = func() *regexp.Regexp {
	terms := make([]string, 0, len(Glossary))
	for t := range Glossary {
		terms = append(terms, t)
	}
	slices.SortFunc(terms, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	for i, t := range terms {
		terms[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(terms, "|") + `)\b`)
}()

// HighlightGlossary wraps glossary terms found in the text of fragment with
// a span carrying the definition. Tags and text already inside a glossary
// span are copied unchanged, so applying it twice is the same as once.
func HighlightGlossary(fragment string) string {
	var b strings.Builder
	b.Grow(len(fragment))

	z := xhtml.NewTokenizer(strings.NewReader(fragment))
	depth := 0 // span nesting inside a glossary span, 0 when outside
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			// io.EOF, or a read error that cannot happen on a strings.Reader.
			return b.String()
		}
		raw := string(z.Raw())
		switch tt {
		case xhtml.TextToken:
			if depth > 0 {
				b.WriteString(raw)
			} else {
				b.WriteString(wrapTerms(raw))
			}
			continue
		case xhtml.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) == "span" {
				if depth > 0 {
					depth++
				} else if hasAttr && isGlossarySpan(z) {
					depth = 1
				}
			}
		case xhtml.EndTagToken:
			if name, _ := z.TagName(); string(name) == "span" && depth > 0 {
				depth--
			}
		}
		b.WriteString(raw)
	}
}

func isGlossarySpan(z *xhtml.Tokenizer) bool {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "class" && slices.Contains(strings.Fields(string(val)), glossaryClass) {
			return true
		}
		if !more {
			return false
		}
	}
}

func wrapTerms(text string) string {
	return glossaryRe.ReplaceAllStringFunc(text, func(match string) string {
		def := Glossary[strings.ToLower(match)]
		return glossaryOpen + ` data-definition="` + html.EscapeString(def) + `">` + match + `</span>`
	})
}
