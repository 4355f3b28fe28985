package analyzer

import "regexp"

// GrammarIssue is one rule match. Index is a byte offset into the text.
type GrammarIssue struct {
	Text       string `json:"text"`
	Index      int    `json:"index"`
	Suggestion string `json:"suggestion"`
	Type       string `json:"type"`
}

type grammarRule struct {
	re         *regexp.Regexp
	suggestion string
	kind       string
}

var grammarRules = []grammarRule{
	{regexp.MustCompile(`\bi\s`), `Consider capitalizing "I"`, "capitalization"},
	{regexp.MustCompile(`\s{2,}`), "Multiple spaces found", "spacing"},
	{regexp.MustCompile(`[.!?]\s*[a-z]`), "Sentence should start with capital letter", "capitalization"},
	{regexp.MustCompile(`(?i)\bteh\b`), `Did you mean "the"?`, "spelling"},
	{regexp.MustCompile(`(?i)\byour\s+welcome\b`), `Did you mean "you're welcome"?`, "grammar"},
}

// CheckGrammar applies a fixed set of spelling, spacing and capitalization
// rules. Issues are grouped by rule, then ordered by position.
func CheckGrammar(text string) []GrammarIssue {
	out := []GrammarIssue{}
	for _, rule := range grammarRules {
		for _, loc := range rule.re.FindAllStringIndex(text, -1) {
			out = append(out, GrammarIssue{
				Text:       text[loc[0]:loc[1]],
				Index:      loc[0],
				Suggestion: rule.suggestion,
				Type:       rule.kind,
			})
		}
	}
	return out
}
