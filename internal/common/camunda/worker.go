// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"onboarding-workers/internal/common/config"
	"onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/metrics"
	"onboarding-workers/internal/common/observability"
)

// JobOpener is the part of zbc.Client used to open job workers.
type JobOpener interface {
	NewJobWorker() worker.JobWorkerBuilderStep1
}

var _ JobOpener = zbc.Client(nil)

// InputValidator rejects job variables that do not fit a task type.
type InputValidator interface {
	ValidateVariables(taskType, variables string) error
}

// WorkerPool opens one Zeebe job worker per registered task type.
type WorkerPool struct {
	mu        sync.Mutex
	client    JobOpener
	logger    logger.Logger
	errors    *errors.ErrorHandler
	validator InputValidator
	obs       *observability.Observability
	workers   map[string]worker.JobWorker
}

type PoolOption func(*WorkerPool)

// WithInputValidator checks every job's variables before its handler runs.
func WithInputValidator(v InputValidator) PoolOption {
	return func(p *WorkerPool) { p.validator = v }
}

// WithObservability traces every job and records it in the OTel meter.
func WithObservability(obs *observability.Observability) PoolOption {
	return func(p *WorkerPool) { p.obs = obs }
}

func NewWorkerPool(client JobOpener, log logger.Logger, opts ...PoolOption) *WorkerPool {
	p := &WorkerPool{
		client:  client,
		logger:  log,
		errors:  errors.NewErrorHandler(log),
		workers: make(map[string]worker.JobWorker),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start opens a worker for taskType unless it is disabled in cfg. The
// handler is wrapped to track the active-jobs gauge and to reject
// variables the input validator refuses.
func (p *WorkerPool) Start(taskType string, cfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !cfg.Enabled {
		p.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.workers[taskType]; exists {
		p.logger.Warn("worker already started", map[string]interface{}{"taskType": taskType})
		return false
	}

	jobWorker := p.client.NewJobWorker().
		JobType(taskType).
		Handler(p.wrap(taskType, handler)).
		MaxJobsActive(cfg.MaxJobsActive).
		Timeout(config.GetDuration(cfg.Timeout)).
		Open()

	p.workers[taskType] = jobWorker
	p.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": cfg.MaxJobsActive,
		"timeout":       cfg.Timeout,
	})
	return true
}

func (p *WorkerPool) wrap(taskType string, handler worker.JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		start := time.Now()
		status := "handled"
		ctx := context.Background()
		if p.obs != nil {
			var span trace.Span
			ctx, span = p.obs.StartSpan(ctx, "job "+taskType,
				attribute.String("job.type", taskType),
				attribute.Int64("job.key", job.Key))
			defer func() {
				span.End()
				p.obs.RecordJobProcessed(ctx, taskType, status)
				p.obs.RecordJobDuration(ctx, taskType, time.Since(start), status)
			}()
		}

		if p.validator != nil {
			if err := p.validator.ValidateVariables(taskType, job.Variables); err != nil {
				status = "rejected"
				bpmnErr := p.errors.HandleJobError(ctx, client, job, err)
				metrics.ObserveJob(taskType, bpmnErr.Code, time.Since(start))
				return
			}
		}
		handler(client, job)
	}
}

// TaskTypes lists the started workers, sorted.
func (p *WorkerPool) TaskTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.workers))
	for t := range p.workers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Close stops every worker and waits for in-flight jobs.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for taskType, w := range p.workers {
		p.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		w.Close()
		w.AwaitClose()
	}
	p.workers = make(map[string]worker.JobWorker)
}
