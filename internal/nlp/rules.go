package nlp

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSet is the declarative form of the rule table, as read from YAML.
// Intent order is significant: it breaks scoring ties.
type RuleSet struct {
	Intents            []IntentSpec `yaml:"intents"`
	Entities           []EntitySpec `yaml:"entities"`
	UnknownExplanation string       `yaml:"unknown_explanation"`
}

type IntentSpec struct {
	Intent      Intent   `yaml:"intent"`
	Patterns    []string `yaml:"patterns"`
	Keywords    []string `yaml:"keywords"`
	Relevant    []Label  `yaml:"relevant"`
	Explanation string   `yaml:"explanation"`
}

type EntitySpec struct {
	Label    Label    `yaml:"label"`
	Patterns []string `yaml:"patterns"`
}

type intentRule struct {
	intent      Intent
	patterns    []*regexp.Regexp
	keywords    []string
	relevant    map[Label]bool
	explanation string
}

type entityRule struct {
	label    Label
	patterns []*regexp.Regexp
}

// Rules is the compiled, read-only rule table shared by every classification.
type Rules struct {
	intents            []intentRule
	entities           []entityRule
	unknownExplanation string
	// commandWords never open a name: every intent keyword plus greetings.
	commandWords map[string]struct{}
}

var greetings = []string{"hello", "hi", "hey", "please", "thanks", "dear"}

var defaultRuleSet = RuleSet{
	Intents: []IntentSpec{
		{
			Intent: IntentCreateEmployee,
			Patterns: []string{
				`(?i)create\s+(new\s+)?employee`,
				`(?i)add\s+(new\s+)?employee`,
				`(?i)register\s+(new\s+)?employee`,
				`(?i)onboard\s+`,
				`(?i)hire\s+`,
			},
			Keywords:    []string{"create", "add", "new", "register", "onboard", "hire", "employee", "person", "staff"},
			Relevant:    []Label{LabelPerson, LabelEmail},
			Explanation: "I can help you create a new employee record",
		},
		{
			Intent: IntentAllocateAsset,
			Patterns: []string{
				`(?i)allocate\s+\w+\s+to`,
				`(?i)assign\s+\w+\s+to`,
				`(?i)give\s+\w+\s+to`,
				`(?i)provide\s+\w+\s+(to|for)`,
			},
			Keywords:    []string{"allocate", "assign", "give", "provide", "laptop", "computer", "phone", "asset", "equipment"},
			Relevant:    []Label{LabelEmployeeID, LabelAsset},
			Explanation: "I can assign assets like laptops, phones, or equipment to employees",
		},
		{
			Intent: IntentGetAssets,
			Patterns: []string{
				`(?i)show\s+(all\s+)?available\s+assets`,
				`(?i)list\s+(all\s+)?assets`,
				`(?i)get\s+(all\s+)?assets`,
				`(?i)what\s+assets\s+are\s+available`,
			},
			Keywords:    []string{"show", "list", "get", "available", "assets", "equipment", "inventory"},
			Explanation: "I can show you available assets and inventory",
		},
		{
			Intent: IntentGetEmployeeStatus,
			Patterns: []string{
				`(?i)employee\s+\w+\s+status`,
				`(?i)check\s+status`,
				`(?i)onboarding\s+status`,
				`(?i)progress\s+of`,
			},
			Keywords:    []string{"status", "progress", "check", "employee", "onboarding"},
			Relevant:    []Label{LabelEmployeeID},
			Explanation: "I can check the onboarding status of employees",
		},
		{
			Intent: IntentSendNotification,
			Patterns: []string{
				`(?i)send\s+notification`,
				`(?i)notify\s+`,
				`(?i)send\s+email`,
				`(?i)send\s+message`,
			},
			Keywords:    []string{"send", "notify", "notification", "email", "message", "alert"},
			Relevant:    []Label{LabelNotificationType, LabelEmployeeID},
			Explanation: "I can send notifications and messages to employees",
		},
		{
			Intent: IntentGetEmployees,
			Patterns: []string{
				`(?i)show\s+(all\s+)?employees`,
				`(?i)list\s+(all\s+)?employees`,
				`(?i)get\s+(all\s+)?employees`,
			},
			Keywords:    []string{"employees", "staff", "people", "workers", "list"},
			Explanation: "I can list employees and their information",
		},
	},
	Entities: []EntitySpec{
		{Label: LabelPerson, Patterns: []string{`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`}},
		{Label: LabelEmployeeID, Patterns: []string{`(?i)EMP\d{3,}`, `(?i)employee\s+\d+`, `\b\d{3,}\b`}},
		{Label: LabelAsset, Patterns: []string{
			`(?i)laptop`, `(?i)computer`, `(?i)phone`, `(?i)mobile`,
			`(?i)tablet`, `(?i)monitor`, `(?i)keyboard`, `(?i)mouse`,
		}},
		{Label: LabelEmail, Patterns: []string{`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`}},
		{Label: LabelNotificationType, Patterns: []string{`(?i)welcome`, `(?i)reminder`, `(?i)alert`, `(?i)update`}},
	},
	UnknownExplanation: "I'm not sure what you're asking for. Could you be more specific?",
}

// DefaultRules returns the built-in onboarding rule table.
func DefaultRules() *Rules {
	rules, err := Compile(defaultRuleSet)
	if err != nil {
		panic(fmt.Sprintf("nlp: built-in rules do not compile: %v", err))
	}
	return rules
}

// DefaultRuleSet returns a copy of the built-in declarative rule table.
func DefaultRuleSet() RuleSet {
	out := RuleSet{UnknownExplanation: defaultRuleSet.UnknownExplanation}
	for _, is := range defaultRuleSet.Intents {
		is.Patterns = append([]string(nil), is.Patterns...)
		is.Keywords = append([]string(nil), is.Keywords...)
		is.Relevant = append([]Label(nil), is.Relevant...)
		out.Intents = append(out.Intents, is)
	}
	for _, es := range defaultRuleSet.Entities {
		es.Patterns = append([]string(nil), es.Patterns...)
		out.Entities = append(out.Entities, es)
	}
	return out
}

// LoadRules reads a YAML rule table from path and compiles it.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}

	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}

	return Compile(set)
}

// Compile validates a RuleSet and compiles its patterns.
func Compile(set RuleSet) (*Rules, error) {
	if len(set.Intents) == 0 {
		return nil, fmt.Errorf("rule set defines no intents")
	}

	rules := &Rules{
		unknownExplanation: set.UnknownExplanation,
		commandWords:       toSet(greetings...),
	}
	if rules.unknownExplanation == "" {
		rules.unknownExplanation = defaultRuleSet.UnknownExplanation
	}

	seen := make(map[Intent]bool, len(set.Intents))
	for _, def := range set.Intents {
		intent := ParseIntent(string(def.Intent))
		if intent == IntentUnknown {
			return nil, fmt.Errorf("unsupported intent %q", def.Intent)
		}
		if seen[intent] {
			return nil, fmt.Errorf("intent %s declared twice", intent)
		}
		seen[intent] = true

		patterns, err := compilePatterns(def.Patterns)
		if err != nil {
			return nil, fmt.Errorf("intent %s: %w", intent, err)
		}

		relevant := make(map[Label]bool, len(def.Relevant))
		for _, l := range def.Relevant {
			relevant[l] = true
		}

		keywords := make([]string, 0, len(def.Keywords))
		for _, kw := range def.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			keywords = append(keywords, kw)
			rules.commandWords[kw] = struct{}{}
		}

		rules.intents = append(rules.intents, intentRule{
			intent:      intent,
			patterns:    patterns,
			keywords:    keywords,
			relevant:    relevant,
			explanation: def.Explanation,
		})
	}

	for _, def := range set.Entities {
		if def.Label == "" {
			return nil, fmt.Errorf("entity rule without label")
		}
		patterns, err := compilePatterns(def.Patterns)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", def.Label, err)
		}
		rules.entities = append(rules.entities, entityRule{label: def.Label, patterns: patterns})
	}

	return rules, nil
}

func compilePatterns(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Explain returns the one-sentence description of intent. Unrecognised
// intents get the UNKNOWN description.
func (r *Rules) Explain(intent Intent) string {
	for _, rule := range r.intents {
		if rule.intent == intent && rule.explanation != "" {
			return rule.explanation
		}
	}
	return r.unknownExplanation
}

// Intents returns the intents the table can classify, in declaration order.
func (r *Rules) Intents() []Intent {
	out := make([]Intent, 0, len(r.intents))
	for _, rule := range r.intents {
		out = append(out, rule.intent)
	}
	return out
}
