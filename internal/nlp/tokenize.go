package nlp

import (
	"regexp"
	"strings"
)

var nonTokenChars = regexp.MustCompile(`[^\w\s@.-]`)

// Tokenize lowercases text, blanks out everything except word characters,
// whitespace, '@', '.' and '-', and splits on whitespace.
func Tokenize(text string) []string {
	cleaned := nonTokenChars.ReplaceAllString(strings.ToLower(text), " ")
	tokens := strings.Fields(cleaned)
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// RemoveStopwords drops common English function words, preserving order.
func RemoveStopwords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, stop := stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

var stopwords = toSet(
	"about", "after", "all", "also", "am", "an", "and", "another", "any", "are", "as", "at",
	"be", "because", "been", "before", "being", "between", "both", "but", "by",
	"came", "can", "come", "could", "did", "do", "each", "for", "from", "get", "got",
	"has", "had", "he", "have", "her", "here", "him", "himself", "his", "how",
	"if", "in", "into", "is", "it", "like", "make", "many", "me", "might", "more", "most",
	"much", "must", "my", "never", "now", "of", "on", "only", "or", "other", "our", "out",
	"over", "said", "same", "see", "should", "since", "some", "still", "such", "take",
	"than", "that", "the", "their", "them", "then", "there", "these", "they", "this",
	"those", "through", "to", "too", "under", "up", "very", "was", "way", "we", "well",
	"were", "what", "where", "which", "while", "who", "with", "would", "you", "your", "a", "i",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
