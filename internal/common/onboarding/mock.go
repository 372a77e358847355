package onboarding

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Demo data returned when a service is unreachable and mock fallback is on.

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func shortID(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

func mockCreatedEmployee(req NewEmployee) *Employee {
	id := req.EmployeeID
	if id == "" {
		id = fmt.Sprintf("EMP%03d", rand.IntN(1000))
	}
	return &Employee{
		EmployeeID: id,
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		Status:     "CREATED",
		CreatedAt:  now(),
	}
}

func mockEmployees() []Employee {
	return []Employee{
		{
			ID:               "EMP001",
			Name:             "John Smith",
			Email:            "john.smith@company.com",
			Department:       "Engineering",
			Status:           "ACTIVE",
			OnboardingStatus: "COMPLETED",
		},
		{
			ID:               "EMP002",
			Name:             "Maria Garcia",
			Email:            "maria.garcia@company.com",
			Department:       "Marketing",
			Status:           "ACTIVE",
			OnboardingStatus: "IN_PROGRESS",
		},
	}
}

func mockEmployeeStatus(employeeID string) *EmployeeStatus {
	return &EmployeeStatus{
		EmployeeID:       employeeID,
		Status:           "ACTIVE",
		OnboardingStatus: "IN_PROGRESS",
		CompletedSteps:   3,
		TotalSteps:       5,
		LastUpdated:      now(),
	}
}

func mockAvailableAssets() []Asset {
	return []Asset{
		{ID: "LAP-003", Name: "HP EliteBook 850", Type: "laptop", Brand: "HP", Model: "EliteBook 850", Status: "AVAILABLE"},
		{ID: "LAP-005", Name: "Dell XPS 13", Type: "laptop", Brand: "Dell", Model: "XPS 13", Status: "AVAILABLE"},
		{ID: "PHN-002", Name: "Samsung Galaxy S24", Type: "phone", Brand: "Samsung", Model: "Galaxy S24", Status: "AVAILABLE"},
	}
}

func mockAllocation(employeeID, assetType string) *Allocation {
	return &Allocation{
		AllocationID: shortID("ALLOC"),
		EmployeeID:   employeeID,
		AssetID:      fmt.Sprintf("%s-%d", strings.ToUpper(assetType), rand.IntN(100)),
		AssetType:    assetType,
		Status:       "ALLOCATED",
		AllocatedAt:  now(),
	}
}

func mockAllocations() []Allocation {
	return []Allocation{
		{
			ID:          "ALLOC-001",
			EmployeeID:  "EMP001",
			AssetID:     "LAP-001",
			AssetName:   "Dell Latitude 7420",
			Status:      "ALLOCATED",
			AllocatedAt: "2024-01-15T10:00:00Z",
		},
	}
}

func mockNotificationResult(notificationType string, recipients []string) *NotificationResult {
	count := Recipients(len(recipients))
	if count == 0 {
		count = 5
	}
	return &NotificationResult{
		NotificationID: shortID("NOTIF"),
		Type:           notificationType,
		Recipients:     count,
		Status:         "SENT",
		SentAt:         now(),
	}
}

func mockNotificationHistory() []Notification {
	return []Notification{
		{ID: "NOTIF-001", Type: "welcome", Recipient: "john.smith@company.com", Status: "DELIVERED", SentAt: "2024-01-15T10:00:00Z"},
		{ID: "NOTIF-002", Type: "reminder", Recipient: "maria.garcia@company.com", Status: "PENDING", SentAt: "2024-01-16T09:30:00Z"},
	}
}

func mockOrchestration(employeeID string) *Orchestration {
	if employeeID == "" {
		employeeID = fmt.Sprintf("EMP%d", rand.IntN(1000))
	}
	return &Orchestration{
		OrchestrationID: shortID("ORCH"),
		EmployeeID:      employeeID,
		Steps: []Step{
			{Step: "CREATE_EMPLOYEE", Status: "COMPLETED"},
			{Step: "ALLOCATE_ASSETS", Status: "IN_PROGRESS"},
			{Step: "SEND_WELCOME_EMAIL", Status: "PENDING"},
			{Step: "SETUP_ACCOUNTS", Status: "PENDING"},
		},
		Status: "IN_PROGRESS",
	}
}

func mockOrchestrationStatus(orchestrationID string) *OrchestrationStatus {
	return &OrchestrationStatus{
		OrchestrationID:     orchestrationID,
		Status:              "IN_PROGRESS",
		CompletedSteps:      2,
		TotalSteps:          4,
		CurrentStep:         "ALLOCATE_ASSETS",
		EstimatedCompletion: time.Now().UTC().Add(30 * time.Minute).Format(time.RFC3339),
	}
}

func mockAnalytics() *Analytics {
	return &Analytics{
		TotalEmployees:      8,
		ActiveOnboarding:    3,
		CompletedOnboarding: 5,
		AssetsAllocated:     15,
		AvailableAssets:     12,
		NotificationsSent:   25,
		SystemHealth:        "GOOD",
		Trends: Trends{
			NewEmployeesThisMonth:      3,
			AssetsAllocatedThisMonth:   8,
			NotificationsSentThisMonth: 15,
		},
	}
}
