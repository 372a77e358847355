package nlp

import (
	_ "embed"
	"regexp"
	"strconv"
	"strings"
)

var sentimentPunct = regexp.MustCompile("[.,/#!?$%^&*;:{}=_`\"~()]")

// AnalyzeSentiment scores text against an AFINN-style lexicon. A word directly
// preceded by a negator has its polarity flipped.
func AnalyzeSentiment(text string) Sentiment {
	tokens := strings.Fields(sentimentPunct.ReplaceAllString(strings.ToLower(text), ""))

	s := Sentiment{
		Tokens:   tokens,
		Words:    []string{},
		Positive: []string{},
		Negative: []string{},
	}
	if s.Tokens == nil {
		s.Tokens = []string{}
	}

	for i, tok := range tokens {
		polarity, ok := afinn[tok]
		if !ok {
			continue
		}
		if i > 0 {
			if _, neg := negators[tokens[i-1]]; neg {
				polarity = -polarity
			}
		}
		s.Score += polarity
		s.Words = append(s.Words, tok)
		if polarity > 0 {
			s.Positive = append(s.Positive, tok)
		} else if polarity < 0 {
			s.Negative = append(s.Negative, tok)
		}
	}

	if len(tokens) > 0 {
		s.Comparative = float64(s.Score) / float64(len(tokens))
	}
	return s
}

var negators = toSet(
	"not", "no", "never", "cannot", "can't", "don't", "doesn't", "didn't", "isn't",
	"aren't", "wasn't", "weren't", "won't", "wouldn't", "shouldn't", "couldn't", "haven't",
	"hasn't", "hadn't", "nothing", "nobody", "none", "neither", "nor",
)

//go:embed data/afinn.txt
var afinnData string

// afinn maps a lowercase word to its AFINN valence in [-5, 5].
var afinn = parseLexicon(afinnData)

// parseLexicon reads tab-separated "word<TAB>score" lines. Malformed lines
// are skipped.
func parseLexicon(data string) map[string]int {
	lexicon := make(map[string]int, 3000)
	for _, line := range strings.Split(data, "\n") {
		word, score, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok || word == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(score))
		if err != nil {
			continue
		}
		lexicon[strings.ToLower(word)] = n
	}
	return lexicon
}
