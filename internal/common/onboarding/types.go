// Package onboarding holds clients for the remote onboarding services: the
// agent broker, the employee registry, asset allocation and notifications.
// Every client call tries the remote service once; when mock fallback is
// enabled a failed call returns canned demo data instead of an error.
package onboarding

import (
	"encoding/json"
)

// Service names used in logs, metrics and health reports.
const (
	ServiceBroker       = "broker"
	ServiceEmployee     = "employee"
	ServiceAsset        = "asset"
	ServiceNotification = "notification"
)

// Employee is an entry of the employee registry.
type Employee struct {
	ID               string `json:"id,omitempty"`
	EmployeeID       string `json:"employeeId,omitempty"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Department       string `json:"department,omitempty"`
	Position         string `json:"position,omitempty"`
	Status           string `json:"status,omitempty"`
	OnboardingStatus string `json:"onboardingStatus,omitempty"`
	CreatedAt        string `json:"createdAt,omitempty"`
}

// Identifier returns whichever of EmployeeID and ID the service filled in.
func (e Employee) Identifier() string {
	if e.EmployeeID != "" {
		return e.EmployeeID
	}
	return e.ID
}

type NewEmployee struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
	StartDate  string `json:"startDate,omitempty"`
	EmployeeID string `json:"employeeId,omitempty"`
}

type EmployeeStatus struct {
	EmployeeID       string `json:"employeeId"`
	Status           string `json:"status"`
	OnboardingStatus string `json:"onboardingStatus,omitempty"`
	CompletedSteps   int    `json:"completedSteps,omitempty"`
	TotalSteps       int    `json:"totalSteps,omitempty"`
	LastUpdated      string `json:"lastUpdated,omitempty"`
}

type Asset struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Brand  string `json:"brand,omitempty"`
	Model  string `json:"model,omitempty"`
	Status string `json:"status"`
}

type Allocation struct {
	AllocationID string `json:"allocationId,omitempty"`
	ID           string `json:"id,omitempty"`
	EmployeeID   string `json:"employeeId"`
	AssetID      string `json:"assetId"`
	AssetName    string `json:"assetName,omitempty"`
	AssetType    string `json:"assetType,omitempty"`
	Status       string `json:"status"`
	AllocatedAt  string `json:"allocatedAt,omitempty"`
}

// Recipients is a recipient count. The notification service answers with
// either a number or a list of recipients.
type Recipients int

func (r *Recipients) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*r = Recipients(n)
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*r = Recipients(len(list))
	return nil
}

type NotificationRequest struct {
	Type       string   `json:"type"`
	Recipients []string `json:"recipients"`
}

type NotificationResult struct {
	NotificationID string     `json:"notificationId"`
	Type           string     `json:"type"`
	Recipients     Recipients `json:"recipients"`
	Status         string     `json:"status"`
	SentAt         string     `json:"sentAt,omitempty"`
}

type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
	SentAt    string `json:"sentAt"`
}

type Step struct {
	Step   string `json:"step"`
	Status string `json:"status"`
}

type Orchestration struct {
	OrchestrationID string `json:"orchestrationId"`
	EmployeeID      string `json:"employeeId"`
	Steps           []Step `json:"steps"`
	Status          string `json:"status"`
}

type OrchestrationStatus struct {
	OrchestrationID     string `json:"orchestrationId"`
	Status              string `json:"status"`
	CompletedSteps      int    `json:"completedSteps"`
	TotalSteps          int    `json:"totalSteps"`
	CurrentStep         string `json:"currentStep,omitempty"`
	EstimatedCompletion string `json:"estimatedCompletion,omitempty"`
}

type Trends struct {
	NewEmployeesThisMonth      int `json:"newEmployeesThisMonth"`
	AssetsAllocatedThisMonth   int `json:"assetsAllocatedThisMonth"`
	NotificationsSentThisMonth int `json:"notificationsSentThisMonth"`
}

type Analytics struct {
	TotalEmployees      int    `json:"totalEmployees"`
	ActiveOnboarding    int    `json:"activeOnboarding"`
	CompletedOnboarding int    `json:"completedOnboarding"`
	AssetsAllocated     int    `json:"assetsAllocated"`
	AvailableAssets     int    `json:"availableAssets"`
	NotificationsSent   int    `json:"notificationsSent"`
	SystemHealth        string `json:"systemHealth"`
	Trends              Trends `json:"trends"`
}

// Health states.
const (
	StatusUp       = "UP"
	StatusDown     = "DOWN"
	StatusHealthy  = "HEALTHY"
	StatusDegraded = "DEGRADED"
)

type ServiceHealth struct {
	Service string `json:"service"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

type HealthReport struct {
	Overall     string          `json:"overall"`
	Environment string          `json:"environment"`
	Services    []ServiceHealth `json:"services"`
	CheckedAt   string          `json:"checkedAt"`
}
