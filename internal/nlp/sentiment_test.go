package nlp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSentiment(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		score       int
		comparative float64
		positive    []string
		negative    []string
	}{
		{
			name:        "neutral",
			text:        "Allocate laptop to EMP001",
			score:       0,
			comparative: 0,
			positive:    []string{},
			negative:    []string{},
		},
		{
			name:        "positive",
			text:        "Thanks, the onboarding was great!",
			score:       5,
			comparative: 1,
			positive:    []string{"thanks", "great"},
			negative:    []string{},
		},
		{
			name:        "negated",
			text:        "The laptop is not good",
			score:       -3,
			comparative: -0.6,
			positive:    []string{},
			negative:    []string{"good"},
		},
		{
			name:        "empty",
			text:        "",
			positive:    []string{},
			negative:    []string{},
			comparative: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := AnalyzeSentiment(tt.text)

			assert.Equal(t, tt.score, s.Score)
			assert.InDelta(t, tt.comparative, s.Comparative, 1e-9)
			assert.Equal(t, tt.positive, s.Positive)
			assert.Equal(t, tt.negative, s.Negative)
			assert.NotNil(t, s.Tokens)
		})
	}
}

func TestLexicon(t *testing.T) {
	assert.Greater(t, len(afinn), 2500)
	for word, score := range afinn {
		assert.Equal(t, strings.ToLower(word), word)
		assert.True(t, score >= -5 && score <= 5, "%s=%d", word, score)
	}

	tests := []struct {
		word  string
		score int
	}{
		{"outstanding", 5},
		{"breathtaking", 5},
		{"frustrated", -2},
		{"catastrophic", -4},
		{"welcome", 2},
		{"delayed", -1},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.score, afinn[tt.word])
		})
	}
}

func TestParseLexicon(t *testing.T) {
	lexicon := parseLexicon("Great\t3\n\nbroken line\nbad\tx\n  calm\t2  \n")

	assert.Equal(t, map[string]int{"great": 3, "calm": 2}, lexicon)
}
