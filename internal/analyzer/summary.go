package analyzer

import (
	"slices"
	"strings"
)

// DefaultSummarySentences is the summary length used when none is given.
const DefaultSummarySentences = 3

type scoredSentence struct {
	text  string
	score float64
	index int
}

// GenerateSummary picks up to maxSentences sentences. Each sentence scores
// its length, times 1.5 when it opens or closes the text, times 1.2 for each
// of the text's top five keywords it contains. The winners are returned in
// their original order.
func GenerateSummary(text string, maxSentences int) []string {
	if maxSentences <= 0 {
		maxSentences = DefaultSummarySentences
	}
	ss := sentences(text)
	if len(ss) <= maxSentences {
		if ss == nil {
			return []string{}
		}
		return ss
	}

	keywords := ExtractKeywords(text, 5)
	scored := make([]scoredSentence, len(ss))
	for i, s := range ss {
		score := float64(len([]rune(s)))
		if i == 0 || i == len(ss)-1 {
			score *= 1.5
		}
		lower := strings.ToLower(s)
		for _, k := range keywords {
			if strings.Contains(lower, k.Word) {
				score *= 1.2
			}
		}
		scored[i] = scoredSentence{text: s, score: score, index: i}
	}

	slices.SortStableFunc(scored, func(a, b scoredSentence) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})
	top := scored[:maxSentences]
	slices.SortFunc(top, func(a, b scoredSentence) int { return a.index - b.index })

	out := make([]string, len(top))
	for i, s := range top {
		out[i] = s.text
	}
	return out
}
