// internal/workers/assistant/classify-intent/config.go
package classifyintent

import (
	"time"

	"onboarding-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration

	// FailOnDegraded raises CLASSIFICATION_DEGRADED instead of completing
	// the job with a degraded result.
	FailOnDegraded bool
}

// NewConfig builds the handler config from the worker and nlp sections,
// keeping defaults for unset values.
func NewConfig(wcfg config.WorkerConfig, nlpCfg config.NLPConfig) *Config {
	cfg := &Config{
		Timeout:        30 * time.Second,
		CacheTTL:       10 * time.Minute,
		FailOnDegraded: nlpCfg.FailOnDegraded,
	}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if nlpCfg.CacheTTL > 0 {
		cfg.CacheTTL = config.GetDuration(nlpCfg.CacheTTL)
	}
	return cfg
}
