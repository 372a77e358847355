// Package assistant turns a chat message into one onboarding action. It
// classifies the message, checks that the entities the intent needs are
// present and calls the matching onboarding service. A missing entity
// produces a clarification prompt instead of a service call.
package assistant

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/observability"
	"onboarding-workers/internal/common/onboarding"
	"onboarding-workers/internal/nlp"
)

// Action names the downstream call a reply was produced by.
type Action string

const (
	ActionCreateEmployee   Action = "create_employee"
	ActionAllocateAsset    Action = "allocate_asset"
	ActionListAssets       Action = "list_assets"
	ActionEmployeeStatus   Action = "employee_status"
	ActionSendNotification Action = "send_notification"
	ActionListEmployees    Action = "list_employees"
	ActionNone             Action = "none"
)

const (
	defaultAsset            = "laptop"
	defaultNotificationType = "welcome"
	emailDomain             = "company.com"
	errorReply              = "Sorry, I encountered an error processing your request. Please try again."
	emptyReply              = "Please type a message so I can help you."
)

// Classifier is the part of nlp.Classifier the assistant needs.
type Classifier interface {
	Classify(text string) *nlp.Result
	Explain(intent nlp.Intent) string
}

// Services is the part of onboarding.Services the assistant calls.
type Services interface {
	CreateEmployee(ctx context.Context, req onboarding.NewEmployee) (*onboarding.Employee, error)
	ListEmployees(ctx context.Context) ([]onboarding.Employee, error)
	EmployeeStatus(ctx context.Context, employeeID string) (*onboarding.EmployeeStatus, error)
	AvailableAssets(ctx context.Context) ([]onboarding.Asset, error)
	AllocateAsset(ctx context.Context, employeeID, assetType string) (*onboarding.Allocation, error)
	SendNotification(ctx context.Context, notificationType string, recipients []string) (*onboarding.NotificationResult, error)
}

// Reply is the assistant's answer to one message.
type Reply struct {
	ID                 string      `json:"id"`
	Message            string      `json:"message"`
	Intent             nlp.Intent  `json:"intent"`
	Confidence         float64     `json:"confidence"`
	Action             Action      `json:"action"`
	NeedsClarification bool        `json:"needsClarification"`
	Suggestions        []string    `json:"suggestions,omitempty"`
	Data               interface{} `json:"data,omitempty"`
	NLP                *nlp.Result `json:"nlp,omitempty"`
	Error              string      `json:"error,omitempty"`
	Timestamp          time.Time   `json:"timestamp"`
}

type Assistant struct {
	classifier Classifier
	services   Services
	obs        *observability.Observability
	logger     logger.Logger
}

type Option func(*Assistant)

// WithObservability traces each classification the assistant makes.
func WithObservability(obs *observability.Observability) Option {
	return func(a *Assistant) { a.obs = obs }
}

func New(classifier Classifier, services Services, log logger.Logger, opts ...Option) *Assistant {
	a := &Assistant{
		classifier: classifier,
		services:   services,
		logger:     log.WithFields(map[string]interface{}{"component": "assistant"}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Respond answers text. Service failures are reported in the reply; the
// returned error is non-nil only when ctx is already done.
func (a *Assistant) Respond(ctx context.Context, text string) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reply := &Reply{
		ID:        uuid.NewString(),
		Intent:    nlp.IntentUnknown,
		Action:    ActionNone,
		Timestamp: time.Now().UTC(),
	}

	if strings.TrimSpace(text) == "" {
		reply.Message = emptyReply
		reply.NeedsClarification = true
		reply.Suggestions = Suggestions()
		return reply, nil
	}

	result := a.obs.Classify(ctx, "assistant", a.classifier, text)

	reply.Intent = result.Intent
	reply.Confidence = result.Confidence
	reply.NLP = result

	if result.Degraded() {
		a.logger.Warn("classification degraded", map[string]interface{}{"error": result.Error})
		reply.Message = errorReply
		reply.Error = result.Error
		return reply, nil
	}

	a.dispatch(ctx, reply, result)

	a.logger.Info("message handled", map[string]interface{}{
		"replyId":            reply.ID,
		"intent":             string(reply.Intent),
		"confidence":         reply.Confidence,
		"action":             string(reply.Action),
		"needsClarification": reply.NeedsClarification,
	})
	return reply, nil
}

func (a *Assistant) dispatch(ctx context.Context, reply *Reply, result *nlp.Result) {
	switch result.Intent {
	case nlp.IntentCreateEmployee:
		a.createEmployee(ctx, reply, result)
	case nlp.IntentAllocateAsset:
		a.allocateAsset(ctx, reply, result)
	case nlp.IntentGetAssets:
		a.listAssets(ctx, reply)
	case nlp.IntentGetEmployeeStatus:
		a.employeeStatus(ctx, reply, result)
	case nlp.IntentSendNotification:
		a.sendNotification(ctx, reply, result)
	case nlp.IntentGetEmployees:
		a.listEmployees(ctx, reply)
	default:
		a.unknown(reply, result)
	}
}

func (a *Assistant) clarify(reply *Reply, intent nlp.Intent, label nlp.Label) {
	reply.NeedsClarification = true
	reply.Message = clarificationPrompt(intent)
	reply.Data = map[string]string{"missingEntity": string(label)}
}

// fail records a service error in the reply.
func (a *Assistant) fail(reply *Reply, err error) {
	stdErr := errors.Normalize(err)
	a.logger.Error("action failed", map[string]interface{}{
		"action":    string(reply.Action),
		"errorCode": string(stdErr.Code),
		"error":     err,
	})
	reply.Message = "Error executing action: " + stdErr.Message
	reply.Error = stdErr.Message
}

var employeeNumber = regexp.MustCompile(`(?i)^employee\s+(\d+)$`)

// normalizeEmployeeID turns "employee 204" into "204" and "emp001" into "EMP001".
func normalizeEmployeeID(text string) string {
	text = strings.TrimSpace(text)
	if m := employeeNumber.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return strings.ToUpper(text)
}

func (a *Assistant) employeeID(result *nlp.Result) (string, bool) {
	e, ok := result.FirstEntity(nlp.LabelEmployeeID)
	if !ok {
		return "", false
	}
	return normalizeEmployeeID(e.Text), true
}

// displayName title-cases names that arrived all lower case.
func displayName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == strings.ToLower(name) {
		return cases.Title(language.English).String(name)
	}
	return name
}

// DeriveEmail builds first.last@company.com from a person's name.
func DeriveEmail(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), ".") + "@" + emailDomain
}
