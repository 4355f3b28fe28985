package analyzer

import (
	"math"
	"regexp"
	"strings"
)

// DefaultWordsPerMinute is the reading speed used when none is given.
const DefaultWordsPerMinute = 200

// Complexity levels.
const (
	LevelSimple   = "Simple"
	LevelModerate = "Moderate"
	LevelComplex  = "Complex"
)

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// words splits text on whitespace.
func words(text string) []string {
	return strings.Fields(text)
}

// sentences splits text on runs of . ! ? and drops blank pieces.
func sentences(text string) []string {
	var out []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ReadingTime returns whole minutes needed to read text, at least one when
// there is any word and zero for empty text.
func ReadingTime(text string, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	n := len(words(text))
	if n == 0 {
		return 0
	}
	return (n + wordsPerMinute - 1) / wordsPerMinute
}

// Complexity describes sentence and word length.
type Complexity struct {
	Level               string  `json:"complexity"`
	AvgWordsPerSentence float64 `json:"avgWordsPerSentence"`
	AvgCharsPerWord     float64 `json:"avgCharsPerWord"`
	Sentences           int     `json:"sentences"`
	Words               int     `json:"words"`
}

// AnalyzeComplexity classifies text as Complex when sentences average over
// 20 words or words over 6 characters, Moderate over 15 words or 5
// characters, and Simple otherwise.
func AnalyzeComplexity(text string) Complexity {
	ws := words(text)
	ss := sentences(text)

	c := Complexity{Level: LevelSimple, Sentences: len(ss), Words: len(ws)}
	if len(ss) > 0 {
		c.AvgWordsPerSentence = float64(len(ws)) / float64(len(ss))
	}
	if len(ws) > 0 {
		chars := 0
		for _, w := range ws {
			chars += len([]rune(w))
		}
		c.AvgCharsPerWord = float64(chars) / float64(len(ws))
	}

	switch {
	case c.AvgWordsPerSentence > 20 || c.AvgCharsPerWord > 6:
		c.Level = LevelComplex
	case c.AvgWordsPerSentence > 15 || c.AvgCharsPerWord > 5:
		c.Level = LevelModerate
	}
	c.AvgWordsPerSentence = round1(c.AvgWordsPerSentence)
	c.AvgCharsPerWord = round1(c.AvgCharsPerWord)
	return c
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
