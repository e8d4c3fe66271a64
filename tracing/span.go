// Package tracing starts otel spans for API requests and watcher ticks.
// Spans go to the global tracer provider, a no-op one unless main installs the OTLP exporter.
package tracing

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans of this module
const TracerName = "github.com/gwos/tdt"

// IsDebugEnabled gates the verbose attributes
var IsDebugEnabled = func() bool { return zerolog.GlobalLevel() <= zerolog.DebugLevel }

// TraceAttrOption defines option to set span attribute
type TraceAttrOption func(span trace.Span)

// StartTraceSpan starts a span
func StartTraceSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.GetTracerProvider().
		Tracer(TracerName).Start(ctx, spanName, opts...)
}

// EndTraceSpan ends span, optionally sets attributes
func EndTraceSpan(span trace.Span, opts ...TraceAttrOption) {
	for _, optFn := range opts {
		optFn(span)
	}
	span.End()
}

// TraceAttrStrDbg sets a string attribute if Debug is enabled
func TraceAttrStrDbg(k string, fn func() string) TraceAttrOption {
	return func(span trace.Span) {
		if IsDebugEnabled() {
			span.SetAttributes(attribute.String(k, fn()))
		}
	}
}

// TraceAttrInt sets an int attribute
func TraceAttrInt(k string, v int) TraceAttrOption {
	return func(span trace.Span) { span.SetAttributes(attribute.Int(k, v)) }
}

// TraceAttrStr sets a string attribute
func TraceAttrStr(k, v string) TraceAttrOption {
	return func(span trace.Span) { span.SetAttributes(attribute.String(k, v)) }
}

// TraceAttrError sets an error attribute
func TraceAttrError(v error) TraceAttrOption {
	return func(span trace.Span) {
		if v == nil {
			span.SetAttributes(attribute.Bool("err", false))
			return
		}
		span.SetAttributes(attribute.Bool("err", true))
		span.SetAttributes(attribute.String("error", v.Error()))
	}
}
