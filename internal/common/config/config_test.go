package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: onboarding-workers
workers:
  classify-intent:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.Camunda.Enabled)
	assert.Equal(t, "localhost:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "onboarding.nlp.classify", cfg.NATS.ClassifySubject)
	assert.True(t, cfg.Services.MockFallback)
	assert.Equal(t, "development", cfg.Services.Environment)
	assert.Equal(t, 10000, cfg.Services.Timeout)
	assert.Equal(t, 30000, cfg.Services.OrchestrationTimeout)
	assert.Equal(t, TraceExporterNone, cfg.Tracing.Exporter)
	assert.Equal(t, "stdout", cfg.Tracing.Output)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
	assert.False(t, cfg.NLP.FailOnDegraded)

	worker := cfg.Workers["classify-intent"]
	assert.True(t, worker.Enabled)
	assert.Equal(t, 5, worker.MaxJobsActive)
	assert.Equal(t, 3, worker.MaxRetries)
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "redis.internal:6379")
	path := writeConfig(t, `
redis:
  enabled: true
  address: ${TEST_REDIS_ADDR}
services:
  environment: staging
  mock_fallback: false
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6379", cfg.Redis.Address)
	assert.False(t, cfg.Services.MockFallback)

	endpoints, err := cfg.Services.Endpoints()
	require.NoError(t, err)
	assert.Equal(t, "http://agent-broker-mcp-server-staging.us-e1.cloudhub.io", endpoints.Broker)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "redis without address",
			content: "redis:\n  enabled: true\n",
			errMsg:  "redis.address is required",
		},
		{
			name:    "nats without url",
			content: "nats:\n  enabled: true\n",
			errMsg:  "nats.url is required",
		},
		{
			name:    "unknown environment",
			content: "services:\n  environment: moon\n",
			errMsg:  "unknown services environment",
		},
		{
			name:    "port out of range",
			content: "http:\n  port: 70000\n",
			errMsg:  "out of range",
		},
		{
			name:    "unknown trace exporter",
			content: "tracing:\n  exporter: jaeger\n",
			errMsg:  "tracing.exporter",
		},
		{
			name:    "sample ratio above one",
			content: "tracing:\n  exporter: stdout\n  sample_ratio: 1.5\n",
			errMsg:  "tracing.sample_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestServicesConfig_Endpoints(t *testing.T) {
	s := ServicesConfig{
		Environment: "Production",
		Environments: map[string]ServiceEndpoints{
			"production": {Employee: "https://employees.example.com"},
		},
	}

	endpoints, err := s.Endpoints()
	require.NoError(t, err)
	assert.Equal(t, "https://employees.example.com", endpoints.Employee)
	assert.Equal(t, "https://agent-broker-mcp-server.us-e1.cloudhub.io", endpoints.Broker)

	custom := ServicesConfig{
		Environment:  "qa",
		Environments: map[string]ServiceEndpoints{"qa": {Broker: "http://qa:1"}},
	}
	endpoints, err = custom.Endpoints()
	require.NoError(t, err)
	assert.Equal(t, "http://qa:1", endpoints.Broker)
	assert.Empty(t, endpoints.Asset)
	assert.Equal(t, []string{"development", "production", "qa", "staging"}, custom.EnvironmentNames())
}

func TestWorkerHelpers(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"classify-intent": {Enabled: false, Timeout: 1500},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "classify-intent"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
	assert.Equal(t, 1500, GetWorkerConfig(cfg, "classify-intent").Timeout)
	assert.Equal(t, 30000, GetWorkerConfig(cfg, "unknown").Timeout)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
