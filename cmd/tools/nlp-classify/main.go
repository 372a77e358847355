// cmd/tools/nlp-classify/main.go
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"onboarding-workers/internal/nlp"
)

func main() {
	rulesPath := flag.String("rules", "", "Path to a YAML rule table (default: built-in rules)")
	pretty := flag.Bool("pretty", false, "Indent JSON output")
	intents := flag.Bool("intents", false, "List intents with their explanations and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage: nlp-classify [flags] [text...]

Classifies text given as arguments, or each line of stdin when no
arguments are given, and prints one JSON result per input.

Flags:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	var rules *nlp.Rules
	if *rulesPath != "" {
		var err error
		rules, err = nlp.LoadRules(*rulesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading rules: %v\n", err)
			os.Exit(1)
		}
	}
	classifier := nlp.NewClassifier(rules)

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}

	if *intents {
		for _, intent := range nlp.Intents() {
			_ = enc.Encode(map[string]string{
				"intent":      string(intent),
				"explanation": classifier.Explain(intent),
			})
		}
		return
	}

	if flag.NArg() > 0 {
		if err := enc.Encode(classifier.Classify(strings.Join(flag.Args(), " "))); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing result: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := classifyLines(classifier, os.Stdin, enc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// classifyLines classifies every non-blank line of r.
func classifyLines(classifier *nlp.Classifier, r io.Reader, enc *json.Encoder) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := enc.Encode(classifier.Classify(line)); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return scanner.Err()
}
