package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"onboarding-workers/internal/common/metrics"
	"onboarding-workers/internal/nlp"
)

// Classifier is the part of nlp.Classifier that gets traced.
type Classifier interface {
	Classify(text string) *nlp.Result
}

// Classify runs classifier inside an nlp.classify span tagged with the
// calling surface. The outcome is set on the span and counted on both the
// OpenTelemetry and Prometheus pipelines. Safe on a nil Observability.
func (o *Observability) Classify(ctx context.Context, source string, classifier Classifier, text string) *nlp.Result {
	ctx, span := o.StartSpan(ctx, "nlp.classify",
		attribute.String("nlp.source", source),
		attribute.Int("text.length", len(text)),
	)
	defer span.End()

	start := time.Now()
	result := classifier.Classify(text)
	elapsed := time.Since(start)

	intent := string(result.Intent)
	degraded := result.Degraded()
	span.SetAttributes(
		attribute.String("nlp.intent", intent),
		attribute.Float64("nlp.confidence", result.Confidence),
		attribute.Int("nlp.entities", len(result.Entities)),
		attribute.Bool("nlp.degraded", degraded),
	)
	if degraded {
		span.SetStatus(codes.Error, result.Error)
	}

	o.RecordClassification(ctx, intent, degraded)
	metrics.ObserveClassification(intent, degraded, elapsed.Seconds())
	return result
}
