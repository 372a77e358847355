// pkg/registry/validator.go
package registry

import (
	"fmt"

	"onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/validation"
)

type compiledActivity struct {
	id     string
	schema *validation.Schema
}

// Validator checks job variables against the input schema of the activity
// registered for the job's task type.
type Validator struct {
	byTaskType map[string]compiledActivity
}

func NewValidator(reg *ActivityRegistry) (*Validator, error) {
	v := &Validator{byTaskType: make(map[string]compiledActivity)}
	for i := range reg.Activities {
		activity := &reg.Activities[i]
		if !activity.HasInputSchema() {
			continue
		}
		schema, err := validation.Compile(activity.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", activity.ID, err)
		}
		v.byTaskType[activity.TaskType] = compiledActivity{id: activity.ID, schema: schema}
	}
	return v, nil
}

// ValidateVariables returns a SCHEMA_VALIDATION_FAILED error when variables
// break the schema. Task types without a schema always pass.
func (v *Validator) ValidateVariables(taskType, variables string) error {
	activity, ok := v.byTaskType[taskType]
	if !ok {
		return nil
	}
	if variables == "" {
		variables = "{}"
	}

	result, err := activity.schema.Validate(variables)
	if err != nil {
		return errors.NewInvalidInputError(err.Error())
	}
	if result.Valid {
		return nil
	}
	return errors.NewSchemaValidationFailedError(activity.id, result.GetErrorMessages())
}
