package nlp

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxKeyPhrases    = 10
	patternWeight    = 3
	keywordWeight    = 1
	intentBase       = 0.5
	entityBonus      = 0.2
	maxEntityBonus   = 0.4
	lengthBonus      = 0.1
	lengthBonusFloor = 10
	lengthBonusCeil  = 200
)

// Classifier maps text to an intent, entities and auxiliary features. It
// holds only read-only state and is safe for concurrent use.
type Classifier struct {
	rules  *Rules
	tagger Tagger
}

type Option func(*Classifier)

// WithTagger replaces the default prose tagger.
func WithTagger(t Tagger) Option {
	return func(c *Classifier) {
		c.tagger = t
	}
}

// NewClassifier builds a classifier over rules. A nil rules uses DefaultRules.
func NewClassifier(rules *Rules, opts ...Option) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	c := &Classifier{rules: rules}
	for _, opt := range opts {
		opt(c)
	}
	if c.tagger == nil {
		c.tagger = NewProseTagger()
	}
	return c
}

// Rules returns the rule table the classifier was built with.
func (c *Classifier) Rules() *Rules {
	return c.rules
}

// Classify never fails. Any fault while tagging or matching yields a
// degraded result: UNKNOWN, zero confidence, empty derived fields and the
// failure recorded in Result.Error.
func (c *Classifier) Classify(text string) (result *Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = degradedResult(text, fmt.Errorf("%w: %v", ErrExtractionFailed, r))
		}
		result.ProcessingTime = time.Since(start).Milliseconds()
	}()

	res, err := c.classify(text)
	if err != nil {
		return degradedResult(text, err)
	}
	return res
}

// Explain returns the description for intent, falling back to UNKNOWN's.
func (c *Classifier) Explain(intent Intent) string {
	return c.rules.Explain(intent)
}

// ExplainLabel is Explain for a raw, possibly unrecognised, label.
func (c *Classifier) ExplainLabel(label string) string {
	return c.rules.Explain(ParseIntent(label))
}

func (c *Classifier) classify(text string) (*Result, error) {
	tokens := Tokenize(text)
	cleaned := RemoveStopwords(tokens)
	sentiment := AnalyzeSentiment(text)

	var (
		tagged []TaggedToken
		named  []NamedEntity
	)
	if strings.TrimSpace(text) != "" {
		var err error
		tagged, named, err = c.tagger.Tag(text)
		if err != nil {
			return nil, err
		}
	}

	entities := mergeEntities(
		linguisticEntities(tagged, named, c.rules.commandWords),
		patternEntities(c.rules, text),
	)

	intent := c.bestIntent(text, cleaned)

	return &Result{
		OriginalText:  text,
		Tokens:        tokens,
		CleanedTokens: cleaned,
		Entities:      entities,
		Intent:        intent,
		Confidence:    c.confidence(text, intent, entities),
		Sentiment:     sentiment,
		KeyPhrases:    keyPhrases(tagged),
	}, nil
}

// bestIntent picks the strictly highest scoring intent. Ties keep the
// earlier declared intent; all-zero scores give UNKNOWN.
func (c *Classifier) bestIntent(text string, cleaned []string) Intent {
	lower := strings.ToLower(text)
	present := toSet(cleaned...)

	best, bestScore := IntentUnknown, 0
	for _, rule := range c.rules.intents {
		score := 0
		for _, re := range rule.patterns {
			if re.MatchString(text) {
				score += patternWeight
			}
		}
		for _, kw := range rule.keywords {
			if hasKey(present, kw) || strings.Contains(lower, kw) {
				score += keywordWeight
			}
		}
		if score > bestScore {
			best, bestScore = rule.intent, score
		}
	}
	return best
}

func (c *Classifier) confidence(text string, intent Intent, entities []Entity) float64 {
	conf := 0.0

	if intent != IntentUnknown {
		conf += intentBase
		for _, rule := range c.rules.intents {
			if rule.intent != intent {
				continue
			}
			relevant := 0
			for _, e := range entities {
				if rule.relevant[e.Label] {
					relevant++
				}
			}
			conf += math.Min(maxEntityBonus, entityBonus*float64(relevant))
			break
		}
	}

	if n := utf8.RuneCountInString(text); n > lengthBonusFloor && n < lengthBonusCeil {
		conf += lengthBonus
	}

	return math.Min(conf, 1.0)
}

// keyPhrases lists noun runs, then verbs, then adjectives, capped at ten.
func keyPhrases(tokens []TaggedToken) []KeyPhrase {
	var nouns, verbs, adjectives []KeyPhrase
	var run []string

	flush := func() {
		if len(run) > 0 {
			nouns = append(nouns, KeyPhrase{Text: strings.Join(run, " "), Type: PhraseNoun})
			run = nil
		}
	}

	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok.Tag, "NN"):
			run = append(run, tok.Text)
			continue
		case strings.HasPrefix(tok.Tag, "VB"):
			verbs = append(verbs, KeyPhrase{Text: tok.Text, Type: PhraseVerb})
		case strings.HasPrefix(tok.Tag, "JJ"):
			adjectives = append(adjectives, KeyPhrase{Text: tok.Text, Type: PhraseAdjective})
		}
		flush()
	}
	flush()

	out := make([]KeyPhrase, 0, maxKeyPhrases)
	for _, group := range [][]KeyPhrase{nouns, verbs, adjectives} {
		for _, kp := range group {
			if len(out) == maxKeyPhrases {
				return out
			}
			out = append(out, kp)
		}
	}
	return out
}
