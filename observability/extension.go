package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/ext"
	"github.com/eirrgang/scale-ms/workflow"
)

// meterName is the instrumentation scope name for lifecycle metrics.
const meterName = "github.com/eirrgang/scale-ms/observability"

// Compile-time interface checks.
var (
	_ ext.Extension     = (*MetricsExtension)(nil)
	_ ext.ItemAdded     = (*MetricsExtension)(nil)
	_ ext.TaskStarted   = (*MetricsExtension)(nil)
	_ ext.TaskCompleted = (*MetricsExtension)(nil)
	_ ext.TaskFailed    = (*MetricsExtension)(nil)
)

// MetricsExtension records system-wide lifecycle metrics via OpenTelemetry.
// Register it with the engine to automatically track item-record growth,
// dispatch rates, completion counts, and failure rates.
type MetricsExtension struct {
	itemsAdded     metric.Int64Counter
	tasksStarted   metric.Int64Counter
	tasksCompleted metric.Int64Counter
	tasksFailed    metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension using the global
// MeterProvider. If none is configured, noop instruments are used.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. Use this to inject a specific MeterProvider for
// testing or when multiple providers are in use.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	// On error, the OTel API returns noop instruments so the extension
	// degrades gracefully.
	itemsAdded, _ := meter.Int64Counter(
		"scalems.items.added",
		metric.WithDescription("Total number of items recorded"),
		metric.WithUnit("{item}"),
	)
	tasksStarted, _ := meter.Int64Counter(
		"scalems.tasks.started",
		metric.WithDescription("Total number of tasks dispatched"),
		metric.WithUnit("{task}"),
	)
	tasksCompleted, _ := meter.Int64Counter(
		"scalems.tasks.completed",
		metric.WithDescription("Total number of tasks completed"),
		metric.WithUnit("{task}"),
	)
	tasksFailed, _ := meter.Int64Counter(
		"scalems.tasks.failed",
		metric.WithDescription("Total number of tasks that failed to dispatch or execute"),
		metric.WithUnit("{task}"),
	)
	return &MetricsExtension{
		itemsAdded:     itemsAdded,
		tasksStarted:   tasksStarted,
		tasksCompleted: tasksCompleted,
		tasksFailed:    tasksFailed,
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnItemAdded implements ext.ItemAdded.
func (m *MetricsExtension) OnItemAdded(ctx context.Context, item *workflow.Item) error {
	m.itemsAdded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("item_type", item.Type().Name()),
	))
	return nil
}

// OnTaskStarted implements ext.TaskStarted.
func (m *MetricsExtension) OnTaskStarted(ctx context.Context, task *scalems.Task) error {
	m.tasksStarted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task_name", task.Name),
	))
	return nil
}

// OnTaskCompleted implements ext.TaskCompleted.
func (m *MetricsExtension) OnTaskCompleted(ctx context.Context, task *scalems.Task, res *scalems.Result, _ time.Duration) error {
	status := "ok"
	if res != nil && !res.Success() {
		status = "error"
	}
	m.tasksCompleted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task_name", task.Name),
		attribute.String("status", status),
	))
	return nil
}

// OnTaskFailed implements ext.TaskFailed.
func (m *MetricsExtension) OnTaskFailed(ctx context.Context, task *scalems.Task, _ error) error {
	m.tasksFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task_name", task.Name),
	))
	return nil
}
