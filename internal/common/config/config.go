// internal/common/config/config.go
package config

import (
	"fmt"
	"sort"
	"strings"
)

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Redis        RedisConfig             `mapstructure:"redis"`
	NATS         NATSConfig              `mapstructure:"nats"`
	HTTP         HTTPConfig              `mapstructure:"http"`
	NLP          NLPConfig               `mapstructure:"nlp"`
	Services     ServicesConfig          `mapstructure:"services"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Logging      LoggingConfig           `mapstructure:"logging"`
	Tracing      TracingConfig           `mapstructure:"tracing"`
	RegistryPath string                  `mapstructure:"registry_path"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	URL             string `mapstructure:"url"`
	ClassifySubject string `mapstructure:"classify_subject"`
	Timeout         int    `mapstructure:"timeout"` // milliseconds
}

type HTTPConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// NLPConfig controls the intent classifier.
type NLPConfig struct {
	RulesPath string `mapstructure:"rules_path"` // empty uses the built-in table
	CacheTTL  int    `mapstructure:"cache_ttl"`  // milliseconds

	// FailOnDegraded makes the classify-intent worker raise the
	// CLASSIFICATION_DEGRADED BPMN error instead of completing the job.
	FailOnDegraded bool `mapstructure:"fail_on_degraded"`
}

// ServicesConfig describes the remote onboarding services.
type ServicesConfig struct {
	Environment          string                      `mapstructure:"environment"`
	MockFallback         bool                        `mapstructure:"mock_fallback"`
	Timeout              int                         `mapstructure:"timeout"`               // milliseconds
	OrchestrationTimeout int                         `mapstructure:"orchestration_timeout"` // milliseconds
	Environments         map[string]ServiceEndpoints `mapstructure:"environments"`
}

// ServiceEndpoints holds the base URLs of one deployment environment.
type ServiceEndpoints struct {
	Broker       string `mapstructure:"broker"`
	Employee     string `mapstructure:"employee"`
	Asset        string `mapstructure:"asset"`
	Notification string `mapstructure:"notification"`
}

// DefaultEnvironments returns the known deployment profiles.
func DefaultEnvironments() map[string]ServiceEndpoints {
	return map[string]ServiceEndpoints{
		"development": {
			Broker:       "http://localhost:8081",
			Employee:     "http://localhost:8082",
			Asset:        "http://localhost:8083",
			Notification: "http://localhost:8084",
		},
		"staging": {
			Broker:       "http://agent-broker-mcp-server-staging.us-e1.cloudhub.io",
			Employee:     "http://employee-onboarding-mcp-server-staging.us-e1.cloudhub.io",
			Asset:        "http://asset-allocation-mcp-server-staging.us-e1.cloudhub.io",
			Notification: "http://employee-notification-service-staging.us-e1.cloudhub.io",
		},
		"production": {
			Broker:       "https://agent-broker-mcp-server.us-e1.cloudhub.io",
			Employee:     "https://employee-onboarding-mcp-server.us-e1.cloudhub.io",
			Asset:        "https://asset-allocation-mcp-server.us-e1.cloudhub.io",
			Notification: "https://notification-mcp-server.us-e1.cloudhub.io",
		},
	}
}

// Endpoints returns the base URLs of the active environment. Fields left
// empty in configuration are filled from the built-in profile of the same name.
func (s ServicesConfig) Endpoints() (ServiceEndpoints, error) {
	env := strings.ToLower(s.Environment)
	configured, hasConfigured := s.Environments[env]
	builtin, hasBuiltin := DefaultEnvironments()[env]
	if !hasConfigured && !hasBuiltin {
		return ServiceEndpoints{}, fmt.Errorf("unknown services environment %q (known: %s)", s.Environment, strings.Join(s.EnvironmentNames(), ", "))
	}

	out := configured
	if out.Broker == "" {
		out.Broker = builtin.Broker
	}
	if out.Employee == "" {
		out.Employee = builtin.Employee
	}
	if out.Asset == "" {
		out.Asset = builtin.Asset
	}
	if out.Notification == "" {
		out.Notification = builtin.Notification
	}
	return out, nil
}

// EnvironmentNames lists built-in and configured environments, sorted.
func (s ServicesConfig) EnvironmentNames() []string {
	seen := map[string]bool{}
	for name := range DefaultEnvironments() {
		seen[name] = true
	}
	for name := range s.Environments {
		seen[strings.ToLower(name)] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
	// Strict makes process-chat-message throw MISSING_ENTITY and
	// check-service-health throw when a service is down.
	Strict bool `mapstructure:"strict"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Trace exporters.
const (
	TraceExporterNone   = "none"
	TraceExporterStdout = "stdout"
)

// TracingConfig selects where finished spans are written.
type TracingConfig struct {
	Exporter    string  `mapstructure:"exporter"`     // none or stdout
	Output      string  `mapstructure:"output"`       // stdout, stderr or a file path
	SampleRatio float64 `mapstructure:"sample_ratio"` // 0 < ratio <= 1
}
