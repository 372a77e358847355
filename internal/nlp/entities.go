package nlp

import (
	"sort"
	"strings"
)

const (
	personConfidence  = 0.9
	placeConfidence   = 0.8
	orgConfidence     = 0.8
	patternConfidence = 0.7
)

var orgSuffixes = toSet(
	"inc", "inc.", "corp", "corp.", "corporation", "llc", "ltd", "ltd.", "co", "co.",
	"company", "group", "bank", "university", "institute", "foundation", "labs", "systems",
)

var placePrepositions = toSet("in", "at", "from", "near")

// patternEntities emits one entity per regex occurrence in text.
func patternEntities(rules *Rules, text string) []Entity {
	var out []Entity
	for _, rule := range rules.entities {
		for _, re := range rule.patterns {
			for _, m := range re.FindAllString(text, -1) {
				m = strings.TrimSpace(m)
				if m == "" {
					continue
				}
				out = append(out, Entity{Text: m, Label: rule.label, Confidence: patternConfidence})
			}
		}
	}
	return out
}

// linguisticEntities turns tagger output into persons, places and
// organisations. NER spans are trimmed to their proper-noun core so a
// capitalised command or greeting never becomes part of a name; proper-noun
// runs fill in organisations (by suffix) and places (after a locative
// preposition).
func linguisticEntities(tokens []TaggedToken, named []NamedEntity, commandWords map[string]struct{}) []Entity {
	var out []Entity
	for _, ne := range named {
		text := properNounCore(tokens, ne.Text, commandWords)
		if text == "" {
			continue
		}
		switch strings.ToUpper(ne.Label) {
		case "PERSON":
			out = append(out, Entity{Text: text, Label: LabelPerson, Confidence: personConfidence})
		case "GPE", "LOC", "LOCATION":
			out = append(out, Entity{Text: text, Label: LabelPlace, Confidence: placeConfidence})
		case "ORG", "ORGANIZATION":
			out = append(out, Entity{Text: text, Label: LabelOrganization, Confidence: orgConfidence})
		}
	}

	for _, run := range properNounRuns(tokens) {
		if run.start == 0 && hasKey(commandWords, strings.ToLower(run.words[0])) {
			run.words = run.words[1:]
			if len(run.words) == 0 {
				continue
			}
		}
		last := strings.ToLower(run.words[len(run.words)-1])
		text := strings.Join(run.words, " ")
		switch {
		case len(run.words) > 1 && hasKey(orgSuffixes, last):
			out = append(out, Entity{Text: text, Label: LabelOrganization, Confidence: orgConfidence})
		case hasKey(placePrepositions, strings.ToLower(run.preceding)):
			out = append(out, Entity{Text: text, Label: LabelPlace, Confidence: placeConfidence})
		}
	}
	return out
}

func isProperNoun(tag string) bool {
	return tag == "NNP" || tag == "NNPS"
}

// properNounCore locates span among tokens and strips leading and trailing
// words that are not proper nouns. A command word opening the message is
// stripped too, since the tagger reads sentence-initial capitals as names.
// A span the tokens do not contain keeps its words. The result is empty
// when no proper noun remains.
func properNounCore(tokens []TaggedToken, span string, commandWords map[string]struct{}) string {
	words, start := alignSpan(tokens, strings.Fields(span))
	if start == 0 && len(words) > 0 && hasKey(commandWords, strings.ToLower(words[0].Text)) {
		words = words[1:]
	}
	for len(words) > 0 && !isProperNoun(words[0].Tag) {
		words = words[1:]
	}
	for len(words) > 0 && !isProperNoun(words[len(words)-1].Tag) {
		words = words[:len(words)-1]
	}

	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.Text
	}
	return strings.Join(texts, " ")
}

// alignSpan returns the tokens spelling words and the index of the first.
// Unmatched spans come back as untagged proper nouns at index -1.
func alignSpan(tokens []TaggedToken, words []string) ([]TaggedToken, int) {
	if len(words) == 0 {
		return nil, -1
	}
	for i := 0; i+len(words) <= len(tokens); i++ {
		match := true
		for j, w := range words {
			if tokens[i+j].Text != w {
				match = false
				break
			}
		}
		if match {
			return tokens[i : i+len(words)], i
		}
	}

	untagged := make([]TaggedToken, len(words))
	for i, w := range words {
		untagged[i] = TaggedToken{Text: w, Tag: "NNP"}
	}
	return untagged, -1
}

type nounRun struct {
	words     []string
	preceding string
	start     int
}

func properNounRuns(tokens []TaggedToken) []nounRun {
	var runs []nounRun
	var cur *nounRun
	for i, tok := range tokens {
		if isProperNoun(tok.Tag) {
			if cur == nil {
				cur = &nounRun{start: i}
				if i > 0 {
					cur.preceding = tokens[i-1].Text
				}
			}
			cur.words = append(cur.words, tok.Text)
			continue
		}
		if cur != nil {
			runs = append(runs, *cur)
			cur = nil
		}
	}
	if cur != nil {
		runs = append(runs, *cur)
	}
	return runs
}

// mergeEntities unions extractor outputs, orders them by confidence and
// keeps the first entity for each case-insensitive text and label pair.
func mergeEntities(groups ...[]Entity) []Entity {
	var all []Entity
	for _, g := range groups {
		all = append(all, g...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})

	out := make([]Entity, 0, len(all))
	seen := make(map[string]struct{}, len(all))
	for _, e := range all {
		key := strings.ToLower(e.Text) + "\x00" + string(e.Label)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

func hasKey(set map[string]struct{}, k string) bool {
	_, ok := set[k]
	return ok
}
