// internal/workers/assistant/process-chat-message/models.go
package processchatmessage

import "onboarding-workers/internal/assistant"

type Input struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type Output struct {
	SessionID string           `json:"sessionId,omitempty"`
	Reply     *assistant.Reply `json:"reply"`
	// Flattened for gateway conditions.
	Intent             string `json:"intent"`
	Action             string `json:"action"`
	NeedsClarification bool   `json:"needsClarification"`
	ResponseMessage    string `json:"responseMessage"`
}
