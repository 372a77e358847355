// internal/workers/assistant/classify-intent/handler.go
package classifyintent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"onboarding-workers/internal/common/database"
	"onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/metrics"
	"onboarding-workers/internal/common/observability"
	"onboarding-workers/internal/nlp"
)

const (
	TaskType = "classify-intent"

	cachePrefix = "nlp:classify:"
)

var (
	ErrTextRequired           = stderrors.New("TEXT_REQUIRED")
	ErrClassificationDegraded = stderrors.New("CLASSIFICATION_DEGRADED")
)

// Classifier is the part of nlp.Classifier the worker uses.
type Classifier interface {
	Classify(text string) *nlp.Result
	Explain(intent nlp.Intent) string
}

type Handler struct {
	config     *Config
	classifier Classifier
	cache      *database.JSONCache
	obs        *observability.Observability
	errors     *errors.ErrorHandler
	logger     logger.Logger
}

type Option func(*Handler)

// WithObservability traces each classification the worker runs.
func WithObservability(obs *observability.Observability) Option {
	return func(h *Handler) { h.obs = obs }
}

// NewHandler builds the worker. A nil redisClient disables the result cache.
func NewHandler(config *Config, classifier Classifier, redisClient redis.Cmdable, log logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		config:     config,
		classifier: classifier,
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
	if redisClient != nil {
		h.cache = database.NewJSONCache(redisClient, cachePrefix, config.CacheTTL)
	}
	for _, opt := range opts {
		opt(h)
	}
	h.errors = errors.NewErrorHandler(h.logger)
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)), start)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err, start)
		return
	}

	h.completeJob(client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: %w", ErrTextRequired, errors.NewInvalidInputError("text is required"))
	}

	key := cacheKey(text)
	if cached, ok := h.lookup(ctx, key); ok {
		return h.output(cached, true), nil
	}

	result := h.obs.Classify(ctx, "worker", h.classifier, text)

	if result.Degraded() {
		h.logger.Warn("classification degraded", map[string]interface{}{"error": result.Error})
		if h.config.FailOnDegraded {
			return nil, fmt.Errorf("%w: %w", ErrClassificationDegraded, errors.NewClassificationDegradedError(result.Error))
		}
	} else if h.cache != nil {
		if err := h.cache.Set(ctx, key, result); err != nil {
			h.logger.Warn("failed to cache classification", map[string]interface{}{
				"key":   h.cache.Key(key),
				"error": err.Error(),
			})
		}
	}

	return h.output(result, false), nil
}

func (h *Handler) lookup(ctx context.Context, key string) (*nlp.Result, bool) {
	if h.cache == nil {
		return nil, false
	}
	var cached nlp.Result
	hit, err := h.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.ClassificationCacheLookups.WithLabelValues("error").Inc()
		h.logger.Warn("classification cache lookup failed", map[string]interface{}{
			"error": errors.NewCacheError("get", err).Error(),
		})
		return nil, false
	case !hit:
		metrics.ClassificationCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.ClassificationCacheLookups.WithLabelValues("hit").Inc()
	return &cached, true
}

func (h *Handler) output(result *nlp.Result, cached bool) *Output {
	return &Output{
		Intent:      result.Intent,
		Confidence:  result.Confidence,
		Entities:    result.Entities,
		Explanation: h.classifier.Explain(result.Intent),
		Degraded:    result.Degraded(),
		Cached:      cached,
		NLP:         result,
	}
}

// cacheKey hashes the trimmed text so keys stay short and free of user input.
func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.ObserveJob(TaskType, "", time.Since(start))
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, start time.Time) {
	bpmnErr := h.errors.HandleJobError(context.Background(), client, job, err)
	metrics.ObserveJob(TaskType, bpmnErr.Code, time.Since(start))
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
