// internal/workers/onboarding/orchestrate-onboarding/models.go
package orchestrateonboarding

import "onboarding-workers/internal/common/onboarding"

type Input struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Position   string `json:"position"`
	StartDate  string `json:"startDate"`
}

type Output struct {
	OrchestrationID string            `json:"orchestrationId"`
	EmployeeID      string            `json:"employeeId"`
	Status          string            `json:"status"`
	Steps           []onboarding.Step `json:"steps"`
	TotalSteps      int               `json:"totalSteps"`
}
