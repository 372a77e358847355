// internal/workers/assistant/process-chat-message/handler.go
package processchatmessage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"onboarding-workers/internal/assistant"
	"onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/metrics"
)

const (
	TaskType = "process-chat-message"
)

var ErrIncompleteRequest = stderrors.New("INCOMPLETE_REQUEST")

// Responder is the part of assistant.Assistant the worker uses.
type Responder interface {
	Respond(ctx context.Context, text string) (*assistant.Reply, error)
}

type Handler struct {
	config    *Config
	assistant Responder
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, responder Responder, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		assistant: responder,
		errors:    errors.NewErrorHandler(l),
		logger:    l,
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
	reply, err := h.assistant.Respond(ctx, input.Message)
	if err != nil {
		return nil, errors.NewServiceTimeoutError("assistant", err)
	}

	if h.config.RequireComplete && reply.NeedsClarification {
		if missing, ok := reply.Data.(map[string]string); ok && missing["missingEntity"] != "" {
			return nil, fmt.Errorf("%w: %w", ErrIncompleteRequest,
				errors.NewMissingEntityError(string(reply.Intent), missing["missingEntity"]))
		}
	}

	h.logger.Debug("message processed", map[string]interface{}{
		"sessionId": input.SessionID,
		"replyId":   reply.ID,
		"intent":    string(reply.Intent),
	})

	return &Output{
		SessionID:          input.SessionID,
		Reply:              reply,
		Intent:             string(reply.Intent),
		Action:             string(reply.Action),
		NeedsClarification: reply.NeedsClarification,
		ResponseMessage:    reply.Message,
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
