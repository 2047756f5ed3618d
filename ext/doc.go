// Package ext defines the extension system for workflow management.
//
// Extensions are notified of lifecycle events and can react to them —
// recording metrics, emitting notifications, writing audit trails, etc.
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	// Opt in to specific hooks by implementing their interfaces.
//	func (e *MyExtension) OnTaskCompleted(ctx context.Context, task *scalems.Task, res *scalems.Result, elapsed time.Duration) error {
//	    log.Printf("task %s completed in %s", task.ID, elapsed)
//	    return nil
//	}
//
// # Lifecycle Hooks
//
//   - [ItemAdded] — a sealed item was added to the workflow record
//   - [TaskStarted] — an execution context began running a task
//   - [TaskCompleted] — a task finished (the result may carry a nonzero exit)
//   - [TaskFailed] — dispatch or execution failed with an error
//   - [Shutdown] — the workflow manager is shutting down gracefully
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface. Hook errors are logged and
// never interrupt workflow progress.
package ext
