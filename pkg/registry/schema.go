// pkg/registry/schema.go
package registry

import (
	"fmt"
	"time"
)

// Implementation states an activity can be registered with.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusDeprecated = "deprecated"
)

// ActivityRegistry is the on-disk catalogue of worker task types.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one task type: its display data, the JSON schemas of
// its job variables and the BPMN error codes it may throw.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description,omitempty"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version,omitempty"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus,omitempty"`
	InputSchema          map[string]interface{} `json:"inputSchema,omitempty"`
	OutputSchema         map[string]interface{} `json:"outputSchema,omitempty"`
	ErrorCodes           []string               `json:"errorCodes,omitempty"`
	Timeout              string                 `json:"timeout,omitempty"`
	Retries              int                    `json:"retries,omitempty"`
	Workflows            []string               `json:"workflows,omitempty"`
	Tags                 []string               `json:"tags,omitempty"`
}

// HasInputSchema reports whether job variables of this activity are checked.
func (a *Activity) HasInputSchema() bool {
	return len(a.InputSchema) > 0
}

// TimeoutDuration parses Timeout, returning fallback when it is unset.
func (a *Activity) TimeoutDuration(fallback time.Duration) (time.Duration, error) {
	if a.Timeout == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("activity %s has invalid timeout %q", a.ID, a.Timeout)
	}
	return d, nil
}

func validStatus(status string) bool {
	switch status {
	case "", StatusPlanned, StatusInProgress, StatusCompleted, StatusDeprecated:
		return true
	}
	return false
}
