package assistant

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/observability"
	"onboarding-workers/internal/common/onboarding"
	"onboarding-workers/internal/nlp"
)

// patternOnlyTagger keeps tests independent of the statistical tagger.
type patternOnlyTagger struct{ err error }

func (p patternOnlyTagger) Tag(string) ([]nlp.TaggedToken, []nlp.NamedEntity, error) {
	return nil, nil, p.err
}

type countingClassifier struct {
	*nlp.Classifier
	calls int
}

func (c *countingClassifier) Classify(text string) *nlp.Result {
	c.calls++
	return c.Classifier.Classify(text)
}

type call struct {
	method string
	args   []interface{}
}

type fakeServices struct {
	calls []call
	err   error
}

func (f *fakeServices) record(method string, args ...interface{}) {
	f.calls = append(f.calls, call{method: method, args: args})
}

func (f *fakeServices) CreateEmployee(_ context.Context, req onboarding.NewEmployee) (*onboarding.Employee, error) {
	f.record("CreateEmployee", req)
	if f.err != nil {
		return nil, f.err
	}
	return &onboarding.Employee{EmployeeID: "EMP123", Name: req.Name, Email: req.Email}, nil
}

func (f *fakeServices) ListEmployees(context.Context) ([]onboarding.Employee, error) {
	f.record("ListEmployees")
	return []onboarding.Employee{
		{ID: "EMP001", Name: "John Smith"},
		{ID: "EMP002", Name: "Maria Garcia"},
	}, f.err
}

func (f *fakeServices) EmployeeStatus(_ context.Context, id string) (*onboarding.EmployeeStatus, error) {
	f.record("EmployeeStatus", id)
	return &onboarding.EmployeeStatus{EmployeeID: id, Status: "IN_PROGRESS"}, f.err
}

func (f *fakeServices) AvailableAssets(context.Context) ([]onboarding.Asset, error) {
	f.record("AvailableAssets")
	return []onboarding.Asset{{Name: "Dell XPS 13"}, {Name: "Samsung Galaxy S24"}}, f.err
}

func (f *fakeServices) AllocateAsset(_ context.Context, id, asset string) (*onboarding.Allocation, error) {
	f.record("AllocateAsset", id, asset)
	return &onboarding.Allocation{EmployeeID: id, AssetType: asset, Status: "ALLOCATED"}, f.err
}

func (f *fakeServices) SendNotification(_ context.Context, kind string, recipients []string) (*onboarding.NotificationResult, error) {
	f.record("SendNotification", kind, recipients)
	return &onboarding.NotificationResult{Type: kind, Recipients: onboarding.Recipients(len(recipients))}, f.err
}

func newTestAssistant(t *testing.T) (*Assistant, *fakeServices, *countingClassifier) {
	t.Helper()
	classifier := &countingClassifier{Classifier: nlp.NewClassifier(nil, nlp.WithTagger(patternOnlyTagger{}))}
	services := &fakeServices{}
	return New(classifier, services, logger.NewTestLogger(t)), services, classifier
}

func TestRespond_Actions(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		intent  nlp.Intent
		action  Action
		message string
		call    call
	}{
		{
			name:    "create employee derives email",
			text:    "Create new employee John Smith",
			intent:  nlp.IntentCreateEmployee,
			action:  ActionCreateEmployee,
			message: "Employee John Smith created successfully with ID: EMP123",
			call:    call{"CreateEmployee", []interface{}{onboarding.NewEmployee{Name: "John Smith", Email: "john.smith@company.com"}}},
		},
		{
			name:    "create employee uses given email",
			text:    "Add new employee Jane Doe jane.doe@corp.io",
			intent:  nlp.IntentCreateEmployee,
			action:  ActionCreateEmployee,
			message: "Employee Jane Doe created successfully with ID: EMP123",
			call:    call{"CreateEmployee", []interface{}{onboarding.NewEmployee{Name: "Jane Doe", Email: "jane.doe@corp.io"}}},
		},
		{
			name:    "allocate asset",
			text:    "Allocate laptop to employee EMP001",
			intent:  nlp.IntentAllocateAsset,
			action:  ActionAllocateAsset,
			message: "laptop allocated to employee EMP001 successfully",
			call:    call{"AllocateAsset", []interface{}{"EMP001", "laptop"}},
		},
		{
			name:    "list assets",
			text:    "Show me all available assets",
			intent:  nlp.IntentGetAssets,
			action:  ActionListAssets,
			message: "Found 2 available assets: Dell XPS 13, Samsung Galaxy S24",
			call:    call{"AvailableAssets", nil},
		},
		{
			name:    "employee status normalizes id",
			text:    "Check status of employee 1042",
			intent:  nlp.IntentGetEmployeeStatus,
			action:  ActionEmployeeStatus,
			message: "Employee 1042 status: IN_PROGRESS",
			call:    call{"EmployeeStatus", []interface{}{"1042"}},
		},
		{
			name:    "notification to listed employees",
			text:    "Send notification welcome to EMP002 and EMP003",
			intent:  nlp.IntentSendNotification,
			action:  ActionSendNotification,
			message: "Notification sent successfully to 2 employees",
			call:    call{"SendNotification", []interface{}{"welcome", []string{"EMP002", "EMP003"}}},
		},
		{
			name:    "list employees",
			text:    "list all employees",
			intent:  nlp.IntentGetEmployees,
			action:  ActionListEmployees,
			message: "Found 2 employees: John Smith (EMP001), Maria Garcia (EMP002)",
			call:    call{"ListEmployees", nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, services, _ := newTestAssistant(t)

			reply, err := a.Respond(context.Background(), tt.text)

			require.NoError(t, err)
			assert.Equal(t, tt.intent, reply.Intent)
			assert.Equal(t, tt.action, reply.Action)
			assert.Equal(t, tt.message, reply.Message)
			assert.False(t, reply.NeedsClarification)
			assert.NotEmpty(t, reply.ID)
			assert.NotNil(t, reply.NLP)
			assert.NotNil(t, reply.Data)
			require.Len(t, services.calls, 1)
			assert.Equal(t, tt.call, services.calls[0])
		})
	}
}

func TestRespond_MissingEntityAsksForClarification(t *testing.T) {
	tests := []struct {
		text    string
		intent  nlp.Intent
		missing string
	}{
		{"Allocate a monitor to someone", nlp.IntentAllocateAsset, "EMPLOYEE_ID"},
		{"hire somebody great", nlp.IntentCreateEmployee, "PERSON"},
		{"what is the onboarding status", nlp.IntentGetEmployeeStatus, "EMPLOYEE_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			a, services, _ := newTestAssistant(t)

			reply, err := a.Respond(context.Background(), tt.text)

			require.NoError(t, err)
			assert.Equal(t, tt.intent, reply.Intent)
			assert.True(t, reply.NeedsClarification)
			assert.Equal(t, ActionNone, reply.Action)
			assert.Equal(t, map[string]string{"missingEntity": tt.missing}, reply.Data)
			assert.Empty(t, services.calls)
		})
	}
}

func TestRespond_Unknown(t *testing.T) {
	a, services, _ := newTestAssistant(t)

	reply, err := a.Respond(context.Background(), "Maria Garcia maria@company.com")
	require.NoError(t, err)
	assert.Equal(t, nlp.IntentUnknown, reply.Intent)
	assert.True(t, reply.NeedsClarification)
	assert.Equal(t, "I detected the following in your message: PERSON: Maria Garcia, EMAIL: maria@company.com. "+
		"Could you please be more specific about what you'd like me to do?", reply.Message)
	assert.Len(t, reply.Suggestions, 5)

	reply, err = a.Respond(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Equal(t, "I'm not sure what you're asking for. Could you be more specific?", reply.Message)
	assert.Empty(t, services.calls)
}

func TestRespond_EmptyInputSkipsClassification(t *testing.T) {
	a, services, classifier := newTestAssistant(t)

	reply, err := a.Respond(context.Background(), "   \n")

	require.NoError(t, err)
	assert.True(t, reply.NeedsClarification)
	assert.Equal(t, nlp.IntentUnknown, reply.Intent)
	assert.Equal(t, Suggestions(), reply.Suggestions)
	assert.Nil(t, reply.NLP)
	assert.Zero(t, classifier.calls)
	assert.Empty(t, services.calls)
}

func TestRespond_ServiceErrorIsReported(t *testing.T) {
	a, services, _ := newTestAssistant(t)
	services.err = errors.NewServiceUnavailableError(onboarding.ServiceEmployee, stderrors.New("dial tcp: refused"))

	reply, err := a.Respond(context.Background(), "Create new employee John Smith")

	require.NoError(t, err)
	assert.Equal(t, ActionCreateEmployee, reply.Action)
	assert.Equal(t, "Error executing action: network error", reply.Message)
	assert.Equal(t, "network error", reply.Error)
}

func TestRespond_DegradedClassification(t *testing.T) {
	classifier := nlp.NewClassifier(nil, nlp.WithTagger(patternOnlyTagger{err: stderrors.New("model missing")}))
	services := &fakeServices{}
	recorder := tracetest.NewSpanRecorder()
	obs := observability.New("assistant-test", observability.WithRegisterer(prometheus.NewRegistry()), observability.WithSpanProcessor(recorder))
	defer obs.Shutdown()
	a := New(classifier, services, logger.NewTestLogger(t), WithObservability(obs))

	reply, err := a.Respond(context.Background(), "Create new employee John Smith")

	require.NoError(t, err)
	assert.Equal(t, nlp.IntentUnknown, reply.Intent)
	assert.Equal(t, errorReply, reply.Message)
	assert.Contains(t, reply.Error, "model missing")
	assert.Empty(t, services.calls)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "nlp.classify", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.String("nlp.source", "assistant"))
}

func TestRespond_CancelledContext(t *testing.T) {
	a, _, _ := newTestAssistant(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Respond(ctx, "list all employees")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNameHelpers(t *testing.T) {
	assert.Equal(t, "mary.jane.watson@company.com", DeriveEmail("Mary  Jane Watson"))
	assert.Equal(t, "John Smith", displayName("john   smith"))
	assert.Equal(t, "Ronald McDonald", displayName("Ronald McDonald"))
	assert.Equal(t, "204", normalizeEmployeeID("Employee 204"))
	assert.Equal(t, "EMP001", normalizeEmployeeID("emp001"))
}

func TestRankSuggestions(t *testing.T) {
	ranked := RankSuggestions([]string{"assets", "xy"})
	require.Len(t, ranked, 5)
	assert.Equal(t, "Show me all available assets", ranked[0])
	assert.Equal(t, "Create new employee John Smith", ranked[1])

	assert.Equal(t, Suggestions(), RankSuggestions(nil))
}
