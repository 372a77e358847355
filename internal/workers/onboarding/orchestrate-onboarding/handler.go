// internal/workers/onboarding/orchestrate-onboarding/handler.go
package orchestrateonboarding

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/mail"
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
	TaskType = "orchestrate-onboarding"
)

var (
	ErrNameRequired  = stderrors.New("NAME_REQUIRED")
	ErrEmailRequired = stderrors.New("EMAIL_REQUIRED")
	ErrEmailInvalid  = stderrors.New("EMAIL_INVALID")
)

// Orchestrator starts the broker's onboarding flow.
type Orchestrator interface {
	OrchestrateOnboarding(ctx context.Context, req onboarding.NewEmployee) (*onboarding.Orchestration, error)
}

type Handler struct {
	config       *Config
	orchestrator Orchestrator
	errors       *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, orchestrator Orchestrator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		orchestrator: orchestrator,
		errors:       errors.NewErrorHandler(l),
		logger:       l,
	}
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
	req, err := validate(input)
	if err != nil {
		return nil, err
	}

	orchestration, err := h.orchestrator.OrchestrateOnboarding(ctx, req)
	if err != nil {
		return nil, errors.NewOrchestrationFailedError(err)
	}

	employeeID := orchestration.EmployeeID
	if employeeID == "" {
		employeeID = req.EmployeeID
	}

	h.logger.Info("onboarding orchestrated", map[string]interface{}{
		"orchestrationId": orchestration.OrchestrationID,
		"employeeId":      employeeID,
		"status":          orchestration.Status,
	})

	return &Output{
		OrchestrationID: orchestration.OrchestrationID,
		EmployeeID:      employeeID,
		Status:          orchestration.Status,
		Steps:           orchestration.Steps,
		TotalSteps:      len(orchestration.Steps),
	}, nil
}

func validate(input *Input) (onboarding.NewEmployee, error) {
	req := onboarding.NewEmployee{
		EmployeeID: strings.TrimSpace(input.EmployeeID),
		Name:       strings.Join(strings.Fields(input.Name), " "),
		Email:      strings.TrimSpace(input.Email),
		Department: strings.TrimSpace(input.Department),
		Position:   strings.TrimSpace(input.Position),
		StartDate:  strings.TrimSpace(input.StartDate),
	}

	switch {
	case req.Name == "":
		return req, fmt.Errorf("%w: %w", ErrNameRequired, errors.NewOnboardingValidationError("name is required"))
	case req.Email == "":
		return req, fmt.Errorf("%w: %w", ErrEmailRequired, errors.NewOnboardingValidationError("email is required"))
	}
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		return req, fmt.Errorf("%w: %w", ErrEmailInvalid,
			errors.NewOnboardingValidationError(fmt.Sprintf("email %q is not a valid address", req.Email)))
	}
	if req.StartDate != "" {
		if _, err := time.Parse(time.DateOnly, req.StartDate); err != nil {
			return req, errors.NewOnboardingValidationError(fmt.Sprintf("startDate %q must be YYYY-MM-DD", req.StartDate))
		}
	}
	return req, nil
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
