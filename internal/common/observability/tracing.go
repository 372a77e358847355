package observability

import (
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"onboarding-workers/internal/common/config"
)

// NewTraceExporter builds the span exporter cfg selects. It returns a nil
// exporter when tracing export is off.
func NewTraceExporter(cfg config.TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "", config.TraceExporterNone:
		return nil, nil
	case config.TraceExporterStdout:
		w, err := traceOutput(cfg.Output)
		if err != nil {
			return nil, err
		}
		return stdouttrace.New(stdouttrace.WithWriter(w))
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
}

// Options turns cfg into the tracing options for New.
func Options(cfg config.TracingConfig) ([]Option, error) {
	exp, err := NewTraceExporter(cfg)
	if err != nil {
		return nil, err
	}
	opts := []Option{WithTraceExporter(exp)}
	if cfg.SampleRatio > 0 && cfg.SampleRatio < 1 {
		opts = append(opts, WithSampleRatio(cfg.SampleRatio))
	}
	return opts, nil
}

func traceOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	// The file stays open for the life of the process.
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, nil
}
