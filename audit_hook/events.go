package audithook

// Audit event actions. Each constant corresponds to one ext lifecycle hook
// and becomes the Action field of the audit event.
const (
	ActionItemAdded     = "item.added"
	ActionTaskStarted   = "task.started"
	ActionTaskCompleted = "task.completed"
	ActionTaskFailed    = "task.failed"
	ActionShutdown      = "manager.shutdown"
)

// Audit event categories group related actions.
const (
	CategoryItem    = "scalems.item"
	CategoryTask    = "scalems.task"
	CategoryManager = "scalems.manager"
)

// Resource types used as the Resource field in audit events.
const (
	ResourceItem    = "workflow_item"
	ResourceTask    = "task"
	ResourceManager = "workflow_manager"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionItemAdded,
		ActionTaskStarted,
		ActionTaskCompleted,
		ActionTaskFailed,
		ActionShutdown,
	}
}
