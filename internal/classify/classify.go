// Package classify labels a raw query as a question or a statement. The
// label feeds threshold resolution: questions widen recall, statements
// tighten precision.
package classify

import "strings"

// Class is the query classification.
type Class string

const (
	Question  Class = "question"
	Statement Class = "statement"
)

// whWords are interrogative openers.
var whWords = map[string]bool{
	"what": true, "who": true, "whom": true, "whose": true,
	"where": true, "when": true, "why": true, "which": true, "how": true,
}

// auxWords are auxiliary verbs that open yes/no questions.
var auxWords = map[string]bool{
	"is": true, "are": true, "was": true, "were": true, "am": true,
	"do": true, "does": true, "did": true,
	"can": true, "could": true, "will": true, "would": true,
	"should": true, "shall": true, "may": true, "might": true, "must": true,
	"have": true, "has": true, "had": true,
}

// Classify returns Question if the text carries an interrogative marker:
// a question mark anywhere, or a leading wh-word or auxiliary verb.
// Empty or whitespace-only input is a Statement (no evidence of
// interrogation). Pure function, no side effects.
func Classify(text string) Class {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Statement
	}

	if strings.Contains(trimmed, "?") {
		return Question
	}

	first := strings.ToLower(firstWord(trimmed))
	if whWords[first] || auxWords[first] {
		return Question
	}

	return Statement
}

// firstWord returns the leading run of letters, skipping any opening
// punctuation such as quotes or parentheses.
func firstWord(s string) string {
	start := -1
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '\''
		if isLetter {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return s[start:i]
		}
	}
	if start >= 0 {
		return s[start:]
	}
	return ""
}
