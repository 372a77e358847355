// internal/workers/onboarding/check-service-health/handler.go
package checkservicehealth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/metrics"
	"onboarding-workers/internal/common/onboarding"
)

const (
	TaskType = "check-service-health"
)

var ErrServicesDegraded = stderrors.New("SERVICES_DEGRADED")

type HealthChecker interface {
	CheckHealth(ctx context.Context) *onboarding.HealthReport
}

type Handler struct {
	config  *Config
	checker HealthChecker
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, checker HealthChecker, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		checker: checker,
		errors:  errors.NewErrorHandler(l),
		logger:  l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &Input{})
	if err != nil {
		h.failJob(client, job, err, start)
		return
	}

	h.completeJob(client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, _ *Input) (*Output, error) {
	report := h.checker.CheckHealth(ctx)

	down := []string{}
	for _, s := range report.Services {
		if s.Status != onboarding.StatusUp {
			down = append(down, s.Service)
		}
	}

	h.logger.Info("service health checked", map[string]interface{}{
		"overall": report.Overall,
		"down":    down,
	})

	if h.config.FailOnDegraded && len(down) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrServicesDegraded,
			errors.NewServiceUnavailableError(strings.Join(down, ","), fmt.Errorf("%d of %d services down", len(down), len(report.Services))))
	}

	return &Output{
		Overall:      report.Overall,
		Healthy:      report.Overall == onboarding.StatusHealthy,
		DownServices: down,
		Environment:  report.Environment,
		Services:     report.Services,
		CheckedAt:    report.CheckedAt,
	}, nil
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
