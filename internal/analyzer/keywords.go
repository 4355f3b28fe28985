// Package analyzer computes heuristic statistics over plain note text.
// Every function is pure; callers strip markup first.
package analyzer

import (
	"regexp"
	"slices"
	"strings"
)

var wordRe = regexp.MustCompile(`\w+`)

var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "have": {}, "will": {}, "from": {},
	"they": {}, "know": {}, "want": {}, "been": {}, "good": {}, "much": {},
	"some": {}, "time": {}, "very": {}, "when": {}, "come": {}, "here": {},
	"just": {}, "like": {}, "long": {}, "make": {}, "many": {}, "over": {},
	"such": {}, "take": {}, "than": {}, "them": {}, "well": {}, "were": {},
}

// Keyword is a word and how often it occurs.
type Keyword struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
}

// tokens returns the lowercased word-character runs of text.
func tokens(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// ExtractKeywords returns up to limit of the most frequent words longer than
// three characters that are not stop words. Equal frequencies keep the order
// in which the words first appear.
func ExtractKeywords(text string, limit int) []Keyword {
	counts := make(map[string]int)
	var order []string
	for _, w := range tokens(text) {
		if len(w) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	out := make([]Keyword, len(order))
	for i, w := range order {
		out[i] = Keyword{Word: w, Frequency: counts[w]}
	}
	slices.SortStableFunc(out, func(a, b Keyword) int { return b.Frequency - a.Frequency })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
