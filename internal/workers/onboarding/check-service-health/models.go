// internal/workers/onboarding/check-service-health/models.go
package checkservicehealth

import "onboarding-workers/internal/common/onboarding"

// Input is empty; the job's variables are ignored.
type Input struct{}

type Output struct {
	Overall      string                     `json:"overall"`
	Healthy      bool                       `json:"healthy"`
	DownServices []string                   `json:"downServices"`
	Environment  string                     `json:"environment"`
	Services     []onboarding.ServiceHealth `json:"services"`
	CheckedAt    string                     `json:"checkedAt"`
}
