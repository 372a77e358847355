package nlp

import (
	"fmt"

	"github.com/jdkato/prose/v2"
)

// TaggedToken is a token with its Penn Treebank part-of-speech tag.
type TaggedToken struct {
	Text string
	Tag  string
}

// NamedEntity is a span recognised by a tagger's NER model.
type NamedEntity struct {
	Text  string
	Label string
}

// Tagger performs part-of-speech tagging and named-entity recognition.
type Tagger interface {
	Tag(text string) ([]TaggedToken, []NamedEntity, error)
}

// ProseTagger tags English text with the prose averaged-perceptron models.
// The models are loaded once and shared read-only by every call.
type ProseTagger struct {
	model *prose.Model
}

func NewProseTagger() *ProseTagger {
	t := &ProseTagger{}
	if doc, err := prose.NewDocument("", prose.WithSegmentation(false)); err == nil {
		t.model = doc.Model
	}
	return t
}

func (t *ProseTagger) Tag(text string) ([]TaggedToken, []NamedEntity, error) {
	opts := []prose.DocOpt{prose.WithSegmentation(false)}
	if t.model != nil {
		opts = append(opts, prose.UsingModel(t.model))
	}

	doc, err := prose.NewDocument(text, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	docTokens := doc.Tokens()
	tokens := make([]TaggedToken, 0, len(docTokens))
	for _, tok := range docTokens {
		tokens = append(tokens, TaggedToken{Text: tok.Text, Tag: tok.Tag})
	}

	docEntities := doc.Entities()
	entities := make([]NamedEntity, 0, len(docEntities))
	for _, ent := range docEntities {
		entities = append(entities, NamedEntity{Text: ent.Text, Label: ent.Label})
	}

	return tokens, entities, nil
}
