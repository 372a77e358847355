package onboarding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"onboarding-workers/internal/common/config"
	"onboarding-workers/internal/common/errors"
	commonhttp "onboarding-workers/internal/common/http"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/metrics"
)

// Services talks to the four onboarding services of one environment.
type Services struct {
	environment  string
	broker       *commonhttp.Client
	orchestrator *commonhttp.Client
	employee     *commonhttp.Client
	asset        *commonhttp.Client
	notification *commonhttp.Client
	mockFallback bool
	logger       logger.Logger
	tracer       trace.Tracer
}

// New resolves the active environment's endpoints and builds the clients.
func New(cfg config.ServicesConfig, log logger.Logger) (*Services, error) {
	endpoints, err := cfg.Endpoints()
	if err != nil {
		return nil, err
	}

	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	orchestrationTimeout := config.GetDuration(cfg.OrchestrationTimeout)
	if orchestrationTimeout <= 0 {
		orchestrationTimeout = 30 * time.Second
	}

	return &Services{
		environment:  cfg.Environment,
		broker:       commonhttp.NewClient(ServiceBroker, endpoints.Broker, timeout),
		orchestrator: commonhttp.NewClient(ServiceBroker, endpoints.Broker, orchestrationTimeout),
		employee:     commonhttp.NewClient(ServiceEmployee, endpoints.Employee, timeout),
		asset:        commonhttp.NewClient(ServiceAsset, endpoints.Asset, timeout),
		notification: commonhttp.NewClient(ServiceNotification, endpoints.Notification, timeout),
		mockFallback: cfg.MockFallback,
		logger:       log.WithFields(map[string]interface{}{"component": "onboarding", "environment": cfg.Environment}),
		tracer:       otel.Tracer("onboarding-workers/onboarding"),
	}, nil
}

// MockFallback reports whether failed calls return demo data.
func (s *Services) MockFallback() bool { return s.mockFallback }

// call performs one request and, on failure, substitutes mock() when mock
// fallback is enabled.
func call[T any](ctx context.Context, s *Services, client *commonhttp.Client, operation, method, path string, body interface{}, mock func() T) (T, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding."+operation, trace.WithAttributes(
		attribute.String("service", client.Service()),
		attribute.String("http.method", method),
	))
	defer span.End()

	var out T
	err := client.DoJSON(ctx, method, path, body, &out)
	if err == nil {
		metrics.ServiceCalls.WithLabelValues(client.Service(), operation, metrics.OutcomeOK).Inc()
		return out, nil
	}

	span.RecordError(err)
	if !s.mockFallback {
		span.SetStatus(codes.Error, err.Error())
		metrics.ServiceCalls.WithLabelValues(client.Service(), operation, metrics.OutcomeError).Inc()
		return out, fmt.Errorf("%s: %w", operation, err)
	}

	s.logger.Warn("using mock data", map[string]interface{}{
		"service":   client.Service(),
		"operation": operation,
		"error":     err,
	})
	span.SetAttributes(attribute.Bool("mock", true))
	metrics.ServiceCalls.WithLabelValues(client.Service(), operation, metrics.OutcomeMock).Inc()
	return mock(), nil
}

func (s *Services) CreateEmployee(ctx context.Context, req NewEmployee) (*Employee, error) {
	return call(ctx, s, s.employee, "create_employee", http.MethodPost, "/api/employees", req,
		func() *Employee { return mockCreatedEmployee(req) })
}

func (s *Services) ListEmployees(ctx context.Context) ([]Employee, error) {
	return call(ctx, s, s.employee, "list_employees", http.MethodGet, "/api/employees", nil, mockEmployees)
}

func (s *Services) EmployeeStatus(ctx context.Context, employeeID string) (*EmployeeStatus, error) {
	return call(ctx, s, s.employee, "employee_status", http.MethodGet,
		"/api/employees/"+url.PathEscape(employeeID)+"/status", nil,
		func() *EmployeeStatus { return mockEmployeeStatus(employeeID) })
}

func (s *Services) AvailableAssets(ctx context.Context) ([]Asset, error) {
	return call(ctx, s, s.asset, "available_assets", http.MethodGet, "/api/assets/available", nil, mockAvailableAssets)
}

func (s *Services) AllocateAsset(ctx context.Context, employeeID, assetType string) (*Allocation, error) {
	body := map[string]string{"employeeId": employeeID, "assetType": assetType}
	return call(ctx, s, s.asset, "allocate_asset", http.MethodPost, "/api/assets/allocate", body,
		func() *Allocation { return mockAllocation(employeeID, assetType) })
}

// Allocations lists asset allocations, filtered to one employee when
// employeeID is non-empty.
func (s *Services) Allocations(ctx context.Context, employeeID string) ([]Allocation, error) {
	path := "/api/assets/allocations"
	if employeeID != "" {
		path += "?employeeId=" + url.QueryEscape(employeeID)
	}
	return call(ctx, s, s.asset, "asset_allocations", http.MethodGet, path, nil, mockAllocations)
}

func (s *Services) SendNotification(ctx context.Context, notificationType string, recipients []string) (*NotificationResult, error) {
	req := NotificationRequest{Type: notificationType, Recipients: recipients}
	return call(ctx, s, s.notification, "send_notification", http.MethodPost, "/api/notifications/send", req,
		func() *NotificationResult { return mockNotificationResult(notificationType, recipients) })
}

func (s *Services) NotificationHistory(ctx context.Context) ([]Notification, error) {
	return call(ctx, s, s.notification, "notification_history", http.MethodGet, "/api/notifications/history", nil, mockNotificationHistory)
}

// OrchestrateOnboarding asks the agent broker to run the full onboarding
// flow for one employee.
func (s *Services) OrchestrateOnboarding(ctx context.Context, req NewEmployee) (*Orchestration, error) {
	return call(ctx, s, s.orchestrator, "orchestrate_onboarding", http.MethodPost, "/api/orchestrate/onboarding", req,
		func() *Orchestration { return mockOrchestration(req.EmployeeID) })
}

func (s *Services) OrchestrationStatus(ctx context.Context, orchestrationID string) (*OrchestrationStatus, error) {
	return call(ctx, s, s.broker, "orchestration_status", http.MethodGet,
		"/api/orchestrate/status/"+url.PathEscape(orchestrationID), nil,
		func() *OrchestrationStatus { return mockOrchestrationStatus(orchestrationID) })
}

func (s *Services) Analytics(ctx context.Context) (*Analytics, error) {
	return call(ctx, s, s.broker, "analytics", http.MethodGet, "/api/analytics", nil, mockAnalytics)
}

var displayNames = map[string]string{
	ServiceBroker:       "Agent Broker",
	ServiceEmployee:     "Employee Service",
	ServiceAsset:        "Asset Service",
	ServiceNotification: "Notification Service",
}

// CheckHealth calls GET /health on every service concurrently. It never
// uses mock data: a failed check marks the service DOWN.
func (s *Services) CheckHealth(ctx context.Context) *HealthReport {
	clients := []*commonhttp.Client{s.broker, s.employee, s.asset, s.notification}
	results := make([]ServiceHealth, len(clients))

	var g errgroup.Group
	for i, client := range clients {
		g.Go(func() error {
			health := ServiceHealth{
				Service: client.Service(),
				Name:    displayNames[client.Service()],
				Status:  StatusUp,
			}
			if err := client.DoJSON(ctx, http.MethodGet, "/health", nil, nil); err != nil {
				health.Status = StatusDown
				health.Error = errors.Normalize(err).Message
				metrics.ServiceUp.WithLabelValues(client.Service()).Set(0)
			} else {
				metrics.ServiceUp.WithLabelValues(client.Service()).Set(1)
			}
			results[i] = health
			return nil
		})
	}
	_ = g.Wait()

	overall := StatusHealthy
	for _, r := range results {
		if r.Status != StatusUp {
			overall = StatusDegraded
			s.logger.Warn("service unhealthy", map[string]interface{}{"service": r.Service, "error": r.Error})
		}
	}

	return &HealthReport{
		Overall:     overall,
		Environment: s.environment,
		Services:    results,
		CheckedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}
