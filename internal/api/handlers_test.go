package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"onboarding-workers/internal/assistant"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/observability"
	"onboarding-workers/internal/common/onboarding"
	"onboarding-workers/internal/nlp"
)

type patternTagger struct{}

func (patternTagger) Tag(string) ([]nlp.TaggedToken, []nlp.NamedEntity, error) {
	return nil, nil, nil
}

type stubResponder struct {
	reply *assistant.Reply
	err   error
	text  string
}

func (s *stubResponder) Respond(_ context.Context, text string) (*assistant.Reply, error) {
	s.text = text
	return s.reply, s.err
}

type stubServices struct {
	report     *onboarding.HealthReport
	err        error
	employeeID string
	statusID   string
}

func (s *stubServices) CheckHealth(context.Context) *onboarding.HealthReport { return s.report }

func (s *stubServices) Allocations(_ context.Context, employeeID string) ([]onboarding.Allocation, error) {
	s.employeeID = employeeID
	if s.err != nil {
		return nil, s.err
	}
	return []onboarding.Allocation{{AllocationID: "ALLOC-1", EmployeeID: "EMP001", AssetID: "LAP-1", Status: "allocated"}}, nil
}

func (s *stubServices) NotificationHistory(context.Context) ([]onboarding.Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []onboarding.Notification{
		{ID: "N-1", Type: "welcome", Recipient: "maria@example.com", Status: "sent"},
		{ID: "N-2", Type: "reminder", Recipient: "it@example.com", Status: "sent"},
	}, nil
}

func (s *stubServices) OrchestrationStatus(_ context.Context, id string) (*onboarding.OrchestrationStatus, error) {
	s.statusID = id
	if s.err != nil {
		return nil, s.err
	}
	return &onboarding.OrchestrationStatus{OrchestrationID: id, Status: "in_progress", CompletedSteps: 2, TotalSteps: 4}, nil
}

func (s *stubServices) Analytics(context.Context) (*onboarding.Analytics, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &onboarding.Analytics{TotalEmployees: 12, ActiveOnboarding: 3, SystemHealth: "healthy"}, nil
}

func newTestRouter(t *testing.T, responder *stubResponder, readiness map[string]ReadinessCheck) *gin.Engine {
	return newTestRouterWithServices(t, responder, readiness, &stubServices{})
}

func newTestRouterWithServices(t *testing.T, responder *stubResponder, readiness map[string]ReadinessCheck, services *stubServices) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if responder == nil {
		responder = &stubResponder{}
	}
	if services.report == nil {
		services.report = &onboarding.HealthReport{
			Overall:     onboarding.StatusDegraded,
			Environment: "development",
			Services:    []onboarding.ServiceHealth{{Service: onboarding.ServiceAsset, Status: onboarding.StatusDown}},
		}
	}
	return NewRouter(Dependencies{
		Classifier:     nlp.NewClassifier(nil, nlp.WithTagger(patternTagger{})),
		Assistant:      responder,
		Services:       services,
		Readiness:      readiness,
		ServiceName:    "onboarding-workers",
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         logger.NewTestLogger(t),
	})
}

func perform(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClassify(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	w := perform(router, http.MethodPost, "/api/nlp/classify", `{"text":"Allocate laptop to employee EMP001"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var result nlp.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, nlp.IntentAllocateAsset, result.Intent)
	assert.Equal(t, "Allocate laptop to employee EMP001", result.OriginalText)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestClassify_RecordsSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := tracetest.NewSpanRecorder()
	obs := observability.New("api-test", observability.WithRegisterer(prometheus.NewRegistry()), observability.WithSpanProcessor(recorder))
	defer obs.Shutdown()
	router := NewRouter(Dependencies{
		Classifier:    nlp.NewClassifier(nil, nlp.WithTagger(patternTagger{})),
		Assistant:     &stubResponder{},
		Services:      &stubServices{},
		Observability: obs,
		Logger:        logger.NewTestLogger(t),
	})

	w := perform(router, http.MethodPost, "/api/nlp/classify", `{"text":"Show me all available assets"}`)

	require.Equal(t, http.StatusOK, w.Code)
	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "nlp.classify", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("nlp.source", "api"))
	assert.Contains(t, ended[0].Attributes(), attribute.String("nlp.intent", string(nlp.IntentGetAssets)))
}

func TestClassify_EmptyTextIsUnknown(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	w := perform(router, http.MethodPost, "/api/nlp/classify", `{"text":""}`)

	require.Equal(t, http.StatusOK, w.Code)
	var result nlp.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, nlp.IntentUnknown, result.Intent)
	assert.Zero(t, result.Confidence)
}

func TestBadJSON(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	for _, path := range []string{"/api/nlp/classify", "/api/chat"} {
		w := perform(router, http.MethodPost, path, `{"text":`)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body["error"], "invalid request body")
	}
}

func TestIntents(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	w := perform(router, http.MethodGet, "/api/nlp/intents", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Intents []intentInfo `json:"intents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Intents, len(nlp.Intents()))
	for _, info := range body.Intents {
		assert.NotEmpty(t, info.Explanation, info.Intent)
	}
}

func TestExplainIntent(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	w := perform(router, http.MethodGet, "/api/nlp/intents/NO_SUCH_INTENT/explain", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info intentInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, nlp.IntentUnknown, info.Intent)
	assert.Equal(t, "I'm not sure what you're asking for. Could you be more specific?", info.Explanation)

	w = perform(router, http.MethodGet, "/api/nlp/intents/GET_ASSETS/explain", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, nlp.IntentGetAssets, info.Intent)
	assert.NotEqual(t, "I'm not sure what you're asking for. Could you be more specific?", info.Explanation)
}

func TestChat(t *testing.T) {
	responder := &stubResponder{reply: &assistant.Reply{ID: "r-1", Message: "Found 0 employees: ", Action: assistant.ActionListEmployees}}
	router := newTestRouter(t, responder, nil)

	w := perform(router, http.MethodPost, "/api/chat", `{"message":"list all employees","sessionId":"s-9"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "list all employees", responder.text)
	var reply assistant.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, "r-1", reply.ID)
	assert.Equal(t, assistant.ActionListEmployees, reply.Action)
}

func TestChat_ResponderError(t *testing.T) {
	router := newTestRouter(t, &stubResponder{err: context.Canceled}, nil)

	w := perform(router, http.MethodPost, "/api/chat", `{"message":"hi"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServicesHealth(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	w := perform(router, http.MethodGet, "/api/services/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	var report onboarding.HealthReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, onboarding.StatusDegraded, report.Overall)
	require.Len(t, report.Services, 1)
	assert.Equal(t, onboarding.StatusDown, report.Services[0].Status)
}

func TestOnboardingReads(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		contains []string
	}{
		{"analytics", "/api/analytics", []string{`"totalEmployees":12`, `"systemHealth":"healthy"`}},
		{"allocations", "/api/assets/allocations?employeeId=EMP001", []string{`"employeeId":"EMP001"`, `"allocationId":"ALLOC-1"`, `"count":1`}},
		{"allocations unfiltered", "/api/assets/allocations", []string{`"employeeId":""`, `"count":1`}},
		{"notification history", "/api/notifications/history", []string{`"id":"N-2"`, `"count":2`}},
		{"orchestration status", "/api/orchestrate/status/ORCH-7", []string{`"orchestrationId":"ORCH-7"`, `"completedSteps":2`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services := &stubServices{}
			router := newTestRouterWithServices(t, nil, nil, services)

			w := perform(router, http.MethodGet, tt.path, "")

			require.Equal(t, http.StatusOK, w.Code)
			for _, want := range tt.contains {
				assert.Contains(t, w.Body.String(), want)
			}
		})
	}
}

func TestOnboardingReads_PassParameters(t *testing.T) {
	services := &stubServices{}
	router := newTestRouterWithServices(t, nil, nil, services)

	perform(router, http.MethodGet, "/api/assets/allocations?employeeId=EMP%20042", "")
	perform(router, http.MethodGet, "/api/orchestrate/status/ORCH-9", "")

	assert.Equal(t, "EMP 042", services.employeeID)
	assert.Equal(t, "ORCH-9", services.statusID)
}

func TestOnboardingReads_UpstreamFailure(t *testing.T) {
	services := &stubServices{err: stderrors.New("asset_allocations: connection refused")}
	router := newTestRouterWithServices(t, nil, nil, services)

	for _, path := range []string{
		"/api/analytics",
		"/api/assets/allocations",
		"/api/notifications/history",
		"/api/orchestrate/status/ORCH-1",
	} {
		w := perform(router, http.MethodGet, path, "")

		assert.Equal(t, http.StatusBadGateway, w.Code, path)
		assert.Contains(t, w.Body.String(), "connection refused", path)
	}
}

func TestHealthAndReady(t *testing.T) {
	tests := []struct {
		name      string
		readiness map[string]ReadinessCheck
		status    int
	}{
		{"no checks", nil, http.StatusOK},
		{"all ok", map[string]ReadinessCheck{"redis": func(context.Context) error { return nil }}, http.StatusOK},
		{"zeebe down", map[string]ReadinessCheck{
			"redis": func(context.Context) error { return nil },
			"zeebe": func(context.Context) error { return stderrors.New("connection refused") },
		}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, nil, tt.readiness)

			w := perform(router, http.MethodGet, "/health", "")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"status":"UP"`)

			w = perform(router, http.MethodGet, "/ready", "")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil, nil)
	perform(router, http.MethodPost, "/api/nlp/classify", `{"text":"Show me all available assets"}`)

	w := perform(router, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nlp_classifications_total")
}

func TestCORS(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
