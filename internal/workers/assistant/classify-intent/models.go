// internal/workers/assistant/classify-intent/models.go
package classifyintent

import "onboarding-workers/internal/nlp"

type Input struct {
	Text string `json:"text"`
}

// Output carries the classification flattened for gateway conditions, with
// the full result under nlp.
type Output struct {
	Intent      nlp.Intent   `json:"intent"`
	Confidence  float64      `json:"confidence"`
	Entities    []nlp.Entity `json:"entities"`
	Explanation string       `json:"explanation"`
	Degraded    bool         `json:"degraded"`
	Cached      bool         `json:"cached"`
	NLP         *nlp.Result  `json:"nlp"`
}
