// Package nlp classifies free-form onboarding chat messages into one of a
// fixed set of intents and extracts the entities a caller needs to act on them.
package nlp

import (
	"errors"
	"strings"
)

// Intent is the inferred high-level goal of a message.
type Intent string

const (
	IntentCreateEmployee    Intent = "CREATE_EMPLOYEE"
	IntentAllocateAsset     Intent = "ALLOCATE_ASSET"
	IntentGetAssets         Intent = "GET_ASSETS"
	IntentGetEmployeeStatus Intent = "GET_EMPLOYEE_STATUS"
	IntentSendNotification  Intent = "SEND_NOTIFICATION"
	IntentGetEmployees      Intent = "GET_EMPLOYEES"
	IntentUnknown           Intent = "UNKNOWN"
)

// Intents returns every classifiable intent in declaration order, followed by UNKNOWN.
func Intents() []Intent {
	return []Intent{
		IntentCreateEmployee,
		IntentAllocateAsset,
		IntentGetAssets,
		IntentGetEmployeeStatus,
		IntentSendNotification,
		IntentGetEmployees,
		IntentUnknown,
	}
}

// ParseIntent maps a label to an Intent, case-insensitively. Anything
// unrecognised becomes IntentUnknown.
func ParseIntent(s string) Intent {
	candidate := Intent(strings.ToUpper(strings.TrimSpace(s)))
	for _, intent := range Intents() {
		if candidate == intent {
			return intent
		}
	}
	return IntentUnknown
}

// Label identifies the kind of an extracted entity.
type Label string

const (
	LabelPerson           Label = "PERSON"
	LabelEmployeeID       Label = "EMPLOYEE_ID"
	LabelAsset            Label = "ASSET"
	LabelEmail            Label = "EMAIL"
	LabelNotificationType Label = "NOTIFICATION_TYPE"
	LabelPlace            Label = "PLACE"
	LabelOrganization     Label = "ORGANIZATION"
)

// Entity is a labelled span of the input text.
type Entity struct {
	Text       string  `json:"text"`
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Key phrase types.
const (
	PhraseNoun      = "noun_phrase"
	PhraseVerb      = "verb"
	PhraseAdjective = "adjective"
)

type KeyPhrase struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Sentiment is a lexicon score over the raw text. It is informational only.
type Sentiment struct {
	Score       int      `json:"score"`
	Comparative float64  `json:"comparative"`
	Tokens      []string `json:"tokens"`
	Words       []string `json:"words"`
	Positive    []string `json:"positive"`
	Negative    []string `json:"negative"`
}

// Result is the outcome of a single classification.
type Result struct {
	OriginalText   string      `json:"originalText"`
	Tokens         []string    `json:"tokens"`
	CleanedTokens  []string    `json:"cleanedTokens"`
	Entities       []Entity    `json:"entities"`
	Intent         Intent      `json:"intent"`
	Confidence     float64     `json:"confidence"`
	Sentiment      Sentiment   `json:"sentiment"`
	KeyPhrases     []KeyPhrase `json:"keyPhrases"`
	ProcessingTime int64       `json:"processingTime"` // milliseconds
	Error          string      `json:"error,omitempty"`
}

// Degraded reports whether the result is the fallback produced after an
// extraction failure, as opposed to a message that was confidently unknown.
func (r *Result) Degraded() bool {
	return r.Error != ""
}

// EntitiesByLabel returns the entities carrying label, highest confidence first.
func (r *Result) EntitiesByLabel(label Label) []Entity {
	var out []Entity
	for _, e := range r.Entities {
		if e.Label == label {
			out = append(out, e)
		}
	}
	return out
}

// FirstEntity returns the highest-confidence entity with label.
func (r *Result) FirstEntity(label Label) (Entity, bool) {
	for _, e := range r.Entities {
		if e.Label == label {
			return e, true
		}
	}
	return Entity{}, false
}

// ErrExtractionFailed marks any fault raised while tagging or matching.
var ErrExtractionFailed = errors.New("EXTRACTION_FAILED")

func degradedResult(text string, err error) *Result {
	return &Result{
		OriginalText:  text,
		Tokens:        []string{},
		CleanedTokens: []string{},
		Entities:      []Entity{},
		Intent:        IntentUnknown,
		Confidence:    0,
		Sentiment: Sentiment{
			Tokens:   []string{},
			Words:    []string{},
			Positive: []string{},
			Negative: []string{},
		},
		KeyPhrases: []KeyPhrase{},
		Error:      err.Error(),
	}
}
