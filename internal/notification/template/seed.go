package template

import "context"

// defaultCatalog is the fixed set of templates seeded at startup. Seeding is
// idempotent: re-running it on every boot converges on this catalog.
var defaultCatalog = []struct {
	key         string
	text        string
	description string
}{
	{
		key:         "project_created",
		text:        `A new project "{{project_name}}" has been created for customer "{{customer_name}}".`,
		description: "Sent when a project is created",
	},
	{
		key:         "task_assigned",
		text:        `You have been assigned a new task: "{{task_title}}" in project "{{project_name}}".`,
		description: "Sent to the assignee when a task is assigned",
	},
	{
		key:         "lead_converted",
		text:        `Lead "{{lead_name}}" has been converted to a customer by {{converted_by}}.`,
		description: "Sent when a lead becomes a customer",
	},
	{
		key:         "payment_received",
		text:        `Payment of {{amount}} received for project "{{project_name}}".`,
		description: "Sent when a charge is settled",
	},
	{
		key:         "goal_completed",
		text:        `Goal "{{goal_title}}" has been marked as completed.`,
		description: "Sent when a goal reaches completion",
	},
	{
		key:         "file_uploaded",
		text:        `{{uploaded_by}} uploaded "{{file_name}}" to project "{{project_name}}".`,
		description: "Sent when a file lands in a shared project",
	},
}

// SeedDefaults upserts the default catalog. Expected once at process startup,
// before the server accepts traffic.
func (r *Registry) SeedDefaults(ctx context.Context) error {
	for _, t := range defaultCatalog {
		if err := r.Upsert(ctx, t.key, t.text, t.description); err != nil {
			return err
		}
	}
	return nil
}
