package assistant

import (
	"context"
	"fmt"
	"strings"

	"onboarding-workers/internal/common/onboarding"
	"onboarding-workers/internal/nlp"
)

func clarificationPrompt(intent nlp.Intent) string {
	switch intent {
	case nlp.IntentCreateEmployee:
		return "I can create the employee, but I need their full name. For example: \"Create new employee John Smith\"."
	case nlp.IntentAllocateAsset:
		return "Which employee should receive the asset? Please include an employee ID, for example: \"Allocate laptop to employee EMP001\"."
	case nlp.IntentGetEmployeeStatus:
		return "Which employee should I look up? Please include an employee ID such as EMP001."
	default:
		return "Could you please be more specific about what you'd like me to do?"
	}
}

func (a *Assistant) createEmployee(ctx context.Context, reply *Reply, result *nlp.Result) {
	person, ok := result.FirstEntity(nlp.LabelPerson)
	if !ok {
		a.clarify(reply, result.Intent, nlp.LabelPerson)
		return
	}
	name := displayName(person.Text)
	email := DeriveEmail(name)
	if e, ok := result.FirstEntity(nlp.LabelEmail); ok {
		email = e.Text
	}

	reply.Action = ActionCreateEmployee
	employee, err := a.services.CreateEmployee(ctx, onboarding.NewEmployee{Name: name, Email: email})
	if err != nil {
		a.fail(reply, err)
		return
	}
	if employee == nil {
		employee = &onboarding.Employee{Name: name, Email: email}
	}

	reply.Data = employee
	reply.Message = fmt.Sprintf("Employee %s created successfully with ID: %s", name, employee.Identifier())
}

func (a *Assistant) allocateAsset(ctx context.Context, reply *Reply, result *nlp.Result) {
	employeeID, ok := a.employeeID(result)
	if !ok {
		a.clarify(reply, result.Intent, nlp.LabelEmployeeID)
		return
	}
	asset := defaultAsset
	if e, ok := result.FirstEntity(nlp.LabelAsset); ok {
		asset = strings.ToLower(e.Text)
	}

	reply.Action = ActionAllocateAsset
	allocation, err := a.services.AllocateAsset(ctx, employeeID, asset)
	if err != nil {
		a.fail(reply, err)
		return
	}

	reply.Data = allocation
	reply.Message = fmt.Sprintf("%s allocated to employee %s successfully", asset, employeeID)
}

func (a *Assistant) listAssets(ctx context.Context, reply *Reply) {
	reply.Action = ActionListAssets
	assets, err := a.services.AvailableAssets(ctx)
	if err != nil {
		a.fail(reply, err)
		return
	}

	names := make([]string, 0, len(assets))
	for _, asset := range assets {
		names = append(names, asset.Name)
	}
	reply.Data = assets
	reply.Message = fmt.Sprintf("Found %d available assets: %s", len(assets), strings.Join(names, ", "))
}

func (a *Assistant) employeeStatus(ctx context.Context, reply *Reply, result *nlp.Result) {
	employeeID, ok := a.employeeID(result)
	if !ok {
		a.clarify(reply, result.Intent, nlp.LabelEmployeeID)
		return
	}

	reply.Action = ActionEmployeeStatus
	status, err := a.services.EmployeeStatus(ctx, employeeID)
	if err != nil {
		a.fail(reply, err)
		return
	}
	if status == nil {
		status = &onboarding.EmployeeStatus{EmployeeID: employeeID, Status: "UNKNOWN"}
	}

	reply.Data = status
	reply.Message = fmt.Sprintf("Employee %s status: %s", employeeID, status.Status)
}

func (a *Assistant) sendNotification(ctx context.Context, reply *Reply, result *nlp.Result) {
	notificationType := defaultNotificationType
	if e, ok := result.FirstEntity(nlp.LabelNotificationType); ok {
		notificationType = strings.ToLower(e.Text)
	}

	var recipients []string
	seen := map[string]bool{}
	for _, e := range result.EntitiesByLabel(nlp.LabelEmployeeID) {
		id := normalizeEmployeeID(e.Text)
		if !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}

	reply.Action = ActionSendNotification
	sent, err := a.services.SendNotification(ctx, notificationType, recipients)
	if err != nil {
		a.fail(reply, err)
		return
	}
	count := 0
	if sent != nil {
		count = int(sent.Recipients)
	}

	reply.Data = sent
	reply.Message = fmt.Sprintf("Notification sent successfully to %d employees", count)
}

func (a *Assistant) listEmployees(ctx context.Context, reply *Reply) {
	reply.Action = ActionListEmployees
	employees, err := a.services.ListEmployees(ctx)
	if err != nil {
		a.fail(reply, err)
		return
	}

	entries := make([]string, 0, len(employees))
	for _, e := range employees {
		if id := e.Identifier(); id != "" {
			entries = append(entries, fmt.Sprintf("%s (%s)", e.Name, id))
		} else {
			entries = append(entries, e.Name)
		}
	}
	reply.Data = employees
	reply.Message = fmt.Sprintf("Found %d employees: %s", len(employees), strings.Join(entries, ", "))
}

func (a *Assistant) unknown(reply *Reply, result *nlp.Result) {
	reply.NeedsClarification = true
	reply.Suggestions = RankSuggestions(result.CleanedTokens)

	if len(result.Entities) == 0 {
		reply.Message = a.classifier.Explain(nlp.IntentUnknown)
		return
	}

	detected := make([]string, 0, len(result.Entities))
	for _, e := range result.Entities {
		detected = append(detected, fmt.Sprintf("%s: %s", e.Label, e.Text))
	}
	reply.Message = fmt.Sprintf("I detected the following in your message: %s. Could you please be more specific about what you'd like me to do?",
		strings.Join(detected, ", "))
}
