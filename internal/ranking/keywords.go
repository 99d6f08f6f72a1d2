// Package ranking provides deterministic heuristic scoring and ranking of
// discovered candidates against a free-text outreach goal.
package ranking

import "strings"

// minKeywordLength drops tokens too short to carry signal.
const minKeywordLength = 3

// stopWords are articles, auxiliaries, and generic nouns that appear in
// nearly every goal description and carry no matching signal.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "are": true, "was": true, "were": true, "been": true,
	"being": true, "have": true, "has": true, "had": true, "who": true,
	"can": true, "could": true, "would": true, "should": true, "will": true,
	"developer": true, "developers": true, "engineer": true, "engineers": true,
	"people": true, "person": true, "someone": true, "looking": true,
	"find": true, "working": true, "using": true, "into": true, "about": true,
}

// GoalKeywords tokenizes a free-text goal into distinct lowercase keywords:
// punctuation stripped, whitespace split, short tokens and stop words
// dropped. Order follows first appearance.
func GoalKeywords(goalText string) []string {
	cleaned := stripPunctuation(strings.ToLower(goalText))

	seen := make(map[string]bool)
	var keywords []string
	for _, token := range strings.Fields(cleaned) {
		if len(token) < minKeywordLength || stopWords[token] || seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
	}
	return keywords
}

func stripPunctuation(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '\t', r == '\n':
			sb.WriteRune(r)
		default:
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}
