package analyzer

// Sentiment labels.
const (
	Positive = "Positive"
	Negative = "Negative"
	Neutral  = "Neutral"
)

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "amazing": {}, "wonderful": {},
	"fantastic": {}, "love": {}, "like": {}, "enjoy": {}, "happy": {},
	"excited": {}, "success": {}, "win": {}, "best": {}, "awesome": {},
	"brilliant": {}, "perfect": {}, "outstanding": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "horrible": {}, "hate": {},
	"dislike": {}, "sad": {}, "angry": {}, "frustrated": {}, "fail": {},
	"lose": {}, "worst": {}, "boring": {}, "difficult": {}, "problem": {},
	"issue": {}, "trouble": {},
}

// AnalyzeSentiment labels text by the share of positive words among all
// matched sentiment words: above 0.6 is Positive, below 0.4 Negative.
func AnalyzeSentiment(text string) string {
	var pos, neg int
	for _, w := range tokens(text) {
		if _, ok := positiveWords[w]; ok {
			pos++
		}
		if _, ok := negativeWords[w]; ok {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		return Neutral
	}
	ratio := float64(pos) / float64(total)
	switch {
	case ratio > 0.6:
		return Positive
	case ratio < 0.4:
		return Negative
	}
	return Neutral
}
