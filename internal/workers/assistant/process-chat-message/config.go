// internal/workers/assistant/process-chat-message/config.go
package processchatmessage

import (
	"time"

	"onboarding-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// RequireComplete throws MISSING_ENTITY instead of completing the job
	// with a clarification prompt.
	RequireComplete bool
}

func NewConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:         30 * time.Second,
		RequireComplete: wcfg.Strict,
	}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
