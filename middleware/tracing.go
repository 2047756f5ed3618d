package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	scalems "github.com/eirrgang/scale-ms"
)

// tracerName is the instrumentation scope name for workflow tracing.
const tracerName = "github.com/eirrgang/scale-ms"

// Tracing returns middleware that wraps task execution in an OpenTelemetry
// span. If no TracerProvider is configured globally, the default noop tracer
// is used and this middleware becomes a pass-through with zero overhead.
//
// Span attributes include: scalems.task.id, scalems.task.name, and
// scalems.task.item. On error, the span status is set to codes.Error
// with the error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing or
// when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, task *scalems.Task, next Handler) (*scalems.Result, error) {
		ctx, span := tracer.Start(ctx, "scalems.task.execute",
			trace.WithAttributes(
				attribute.String("scalems.task.id", task.ID.String()),
				attribute.String("scalems.task.name", task.Name),
				attribute.String("scalems.task.item", task.Item.String()),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		res, err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			if res != nil {
				span.SetAttributes(attribute.Int("scalems.task.exitcode", res.ExitCode))
			}
			span.SetStatus(codes.Ok, "")
		}

		return res, err
	}
}
