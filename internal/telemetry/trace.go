package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartCommandSpan creates a span for a CLI command execution.
//
// Usage:
//
//	ctx, span := telemetry.StartCommandSpan(ctx, "plan")
//	defer span.End()
func StartCommandSpan(ctx context.Context, cmdName string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("commands")
	ctx, span := tracer.Start(ctx, "command."+cmdName)

	span.SetAttributes(
		attribute.String("command", cmdName),
		attribute.String("component", "cli"),
	)

	return ctx, span
}

// StartPlanSpan creates the root span of one plan generation.
func StartPlanSpan(ctx context.Context, fingerprint string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("planner")
	ctx, span := tracer.Start(ctx, "plan.generate")

	span.SetAttributes(
		attribute.String("plan.input_fingerprint", fingerprint),
		attribute.String("component", "planner"),
	)

	return ctx, span
}

// StartStageSpan creates a child span for one pipeline stage such as
// "complexity" or "schedule".
func StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("planner")
	ctx, span := tracer.Start(ctx, "plan."+stage)
	span.SetAttributes(attribute.String("stage", stage))
	return ctx, span
}

// StartEventSpan creates a span for delivering an event to a sink.
func StartEventSpan(ctx context.Context, sink, eventType string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("events")
	ctx, span := tracer.Start(ctx, "event."+sink, trace.WithSpanKind(trace.SpanKindProducer))

	span.SetAttributes(
		attribute.String("event.sink", sink),
		attribute.String("event.type", eventType),
	)

	return ctx, span
}

// RecordSuccess marks a span as successful with optional result attributes.
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError records an error in a span and sets error status.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordDuration records the duration of an operation as a span attribute.
func RecordDuration(span trace.Span, name string, duration time.Duration) {
	span.SetAttributes(
		attribute.Int64(name+"_ms", duration.Milliseconds()),
	)
}
