// internal/workers/onboarding/orchestrate-onboarding/config.go
package orchestrateonboarding

import (
	"time"

	"onboarding-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// NewConfig defaults to 30s, the broker's orchestration timeout.
func NewConfig(wcfg config.WorkerConfig) *Config {
	if wcfg.Timeout > 0 {
		return &Config{Timeout: config.GetDuration(wcfg.Timeout)}
	}
	return &Config{Timeout: 30 * time.Second}
}
