package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/codec"
	"github.com/eirrgang/scale-ms/id"
	"github.com/eirrgang/scale-ms/observability"
	"github.com/eirrgang/scale-ms/workflow"
)

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: expected Sum[int64] data", name)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestMetricsExtension_CountsLifecycleEvents(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m := observability.NewMetricsExtensionWithMeter(mp.Meter("test"))

	ctx := context.Background()
	task := &scalems.Task{ID: id.NewTaskID(), Name: "scalems.subprocess.Subprocess"}

	shape, err := workflow.NewShape(1)
	if err != nil {
		t.Fatalf("NewShape() error: %v", err)
	}
	item, err := workflow.NewItem(id.MustNewTypeID("scalems", "Boolean"), shape, []any{true})
	if err != nil {
		t.Fatalf("NewItem() error: %v", err)
	}
	if _, err := item.Seal(codec.NewEncoder()); err != nil {
		t.Fatalf("Seal() error: %v", err)
	}

	if err := m.OnItemAdded(ctx, item); err != nil {
		t.Fatalf("OnItemAdded() error: %v", err)
	}
	if err := m.OnTaskStarted(ctx, task); err != nil {
		t.Fatalf("OnTaskStarted() error: %v", err)
	}
	if err := m.OnTaskCompleted(ctx, task, &scalems.Result{Task: task.ID}, time.Millisecond); err != nil {
		t.Fatalf("OnTaskCompleted() error: %v", err)
	}
	if err := m.OnTaskFailed(ctx, task, errors.New("boom")); err != nil {
		t.Fatalf("OnTaskFailed() error: %v", err)
	}

	for name, want := range map[string]int64{
		"scalems.items.added":     1,
		"scalems.tasks.started":   1,
		"scalems.tasks.completed": 1,
		"scalems.tasks.failed":    1,
	} {
		if got := counterValue(t, reader, name); got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}
}

func TestMetricsExtension_DefaultNoopSafe(t *testing.T) {
	m := observability.NewMetricsExtension()
	task := &scalems.Task{ID: id.NewTaskID(), Name: "scalems.subprocess.Subprocess"}
	if err := m.OnTaskStarted(context.Background(), task); err != nil {
		t.Fatalf("OnTaskStarted() error: %v", err)
	}
}
