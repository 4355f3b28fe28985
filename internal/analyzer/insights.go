package analyzer

import (
	"fmt"
	"strings"
)

// Options tunes Insights.
type Options struct {
	WordsPerMinute   int
	KeywordLimit     int
	SummarySentences int
}

// DefaultOptions mirrors the editor's insight panel.
func DefaultOptions() Options {
	return Options{
		WordsPerMinute:   DefaultWordsPerMinute,
		KeywordLimit:     8,
		SummarySentences: DefaultSummarySentences,
	}
}

// Report aggregates every analysis of one text.
type Report struct {
	Complexity
	Keywords    []string `json:"keywords"`
	ReadingTime int      `json:"readingTime"`
	Sentiment   string   `json:"sentiment"`
	Summary     []string `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// Insights runs all analyses on text and derives writing suggestions.
func Insights(text string, opts Options) Report {
	if opts.KeywordLimit <= 0 {
		opts.KeywordLimit = DefaultOptions().KeywordLimit
	}
	complexity := AnalyzeComplexity(text)
	keywords := ExtractKeywords(text, opts.KeywordLimit)

	r := Report{
		Complexity:  complexity,
		Keywords:    make([]string, len(keywords)),
		ReadingTime: ReadingTime(text, opts.WordsPerMinute),
		Sentiment:   AnalyzeSentiment(text),
		Summary:     GenerateSummary(text, opts.SummarySentences),
		Suggestions: []string{},
	}
	for i, k := range keywords {
		r.Keywords[i] = k.Word
	}

	if complexity.Words > 500 {
		r.Suggestions = append(r.Suggestions, "Consider breaking this long note into smaller, focused notes.")
	}
	if complexity.AvgWordsPerSentence > 20 {
		r.Suggestions = append(r.Suggestions, "Your sentences are quite long. Consider breaking them up for better readability.")
	}
	if r.Sentiment == Negative {
		r.Suggestions = append(r.Suggestions, "This note has a negative tone. Consider reviewing for clarity and positivity.")
	}
	if len(r.Keywords) > 0 {
		n := min(3, len(r.Keywords))
		r.Suggestions = append(r.Suggestions, fmt.Sprintf("Main topics identified: %s", strings.Join(r.Keywords[:n], ", ")))
	}
	if len(r.Suggestions) == 0 {
		r.Suggestions = append(r.Suggestions, "Your writing style looks great! Keep up the good work.")
	}
	return r
}
