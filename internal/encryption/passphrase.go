package encryption

import (
	"fmt"
	"strings"
	"unicode"
)

// MinPassphraseLength is the only criterion that gates validity.
const MinPassphraseLength = 4

// specialChars are the characters that count toward the special criterion.
const specialChars = `!@#$%^&*(),.?":{}|<>`

// Strength labels.
const (
	VeryWeak = "Very Weak"
	Weak     = "Weak"
	Moderate = "Moderate"
	Strong   = "Strong"
)

// Strength is the result of ValidatePassphrase.
type Strength struct {
	IsValid  bool     `json:"isValid"`
	Label    string   `json:"strength"`
	Score    int      `json:"score"`
	Feedback []string `json:"feedback"`
}

// ValidatePassphrase scores p on five criteria: minimum length, lowercase,
// uppercase, digit and special character. Only length affects IsValid.
func ValidatePassphrase(p string) Strength {
	criteria := []struct {
		ok  bool
		msg string
	}{
		{len([]rune(p)) >= MinPassphraseLength, fmt.Sprintf("Passphrase must be at least %d characters long", MinPassphraseLength)},
		{strings.IndexFunc(p, unicode.IsLower) >= 0, "Include lowercase letters"},
		{strings.IndexFunc(p, unicode.IsUpper) >= 0, "Include uppercase letters"},
		{strings.IndexFunc(p, unicode.IsDigit) >= 0, "Include numbers"},
		{strings.ContainsAny(p, specialChars), "Include special characters"},
	}

	res := Strength{Feedback: []string{}}
	for _, c := range criteria {
		if c.ok {
			res.Score++
		} else {
			res.Feedback = append(res.Feedback, c.msg)
		}
	}
	res.IsValid = criteria[0].ok

	switch {
	case res.Score >= 4:
		res.Label = Strong
	case res.Score == 3:
		res.Label = Moderate
	case res.Score == 2:
		res.Label = Weak
	default:
		res.Label = VeryWeak
	}
	return res
}
