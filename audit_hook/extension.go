package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/ext"
	"github.com/eirrgang/scale-ms/workflow"
)

// Compile-time interface checks.
var (
	_ ext.Extension     = (*Extension)(nil)
	_ ext.ItemAdded     = (*Extension)(nil)
	_ ext.TaskStarted   = (*Extension)(nil)
	_ ext.TaskCompleted = (*Extension)(nil)
	_ ext.TaskFailed    = (*Extension)(nil)
	_ ext.Shutdown      = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so that this package does not import any audit
// backend directly — callers inject the concrete recorder at wiring time.
type Recorder interface {
	// Record persists a fully-formed audit event.
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of a provenance event.
type AuditEvent struct {
	// What happened
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Category string `json:"category"`

	// Details
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Extension bridges workflow lifecycle events to an audit trail backend.
// Each lifecycle hook emits a structured audit event through the [Recorder].
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ext.Extension.
func (e *Extension) Name() string { return "audit-hook" }

// OnItemAdded implements ext.ItemAdded.
func (e *Extension) OnItemAdded(ctx context.Context, item *workflow.Item) error {
	meta := []any{
		"type", item.Type().ScopedName(),
		"shape", item.Shape().Encode(),
	}
	if label, ok := item.Label(); ok {
		meta = append(meta, "label", label)
	}
	return e.record(ctx, ActionItemAdded, SeverityInfo, OutcomeSuccess,
		ResourceItem, item.Identity().String(), CategoryItem, nil, meta...)
}

// OnTaskStarted implements ext.TaskStarted.
func (e *Extension) OnTaskStarted(ctx context.Context, task *scalems.Task) error {
	return e.record(ctx, ActionTaskStarted, SeverityInfo, OutcomeSuccess,
		ResourceTask, task.ID.String(), CategoryTask, nil,
		"task_name", task.Name,
		"item", task.Item.String(),
	)
}

// OnTaskCompleted implements ext.TaskCompleted.
func (e *Extension) OnTaskCompleted(ctx context.Context, task *scalems.Task, res *scalems.Result, elapsed time.Duration) error {
	severity := SeverityInfo
	outcome := OutcomeSuccess
	meta := []any{
		"task_name", task.Name,
		"item", task.Item.String(),
		"elapsed_ms", elapsed.Milliseconds(),
	}
	if res != nil {
		meta = append(meta, "exitcode", res.ExitCode)
		if !res.Success() {
			severity = SeverityWarning
			outcome = OutcomeFailure
		}
	}
	return e.record(ctx, ActionTaskCompleted, severity, outcome,
		ResourceTask, task.ID.String(), CategoryTask, nil, meta...)
}

// OnTaskFailed implements ext.TaskFailed.
func (e *Extension) OnTaskFailed(ctx context.Context, task *scalems.Task, taskErr error) error {
	return e.record(ctx, ActionTaskFailed, SeverityCritical, OutcomeFailure,
		ResourceTask, task.ID.String(), CategoryTask, taskErr,
		"task_name", task.Name,
		"item", task.Item.String(),
	)
}

// OnShutdown implements ext.Shutdown.
func (e *Extension) OnShutdown(ctx context.Context) error {
	return e.record(ctx, ActionShutdown, SeverityInfo, OutcomeSuccess,
		ResourceManager, "", CategoryManager, nil)
}

func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audithook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
