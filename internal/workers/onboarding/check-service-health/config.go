// internal/workers/onboarding/check-service-health/config.go
package checkservicehealth

import (
	"time"

	"onboarding-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// FailOnDegraded throws SERVICE_UNAVAILABLE when any service is down.
	FailOnDegraded bool
}

func NewConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:        15 * time.Second,
		FailOnDegraded: wcfg.Strict,
	}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
