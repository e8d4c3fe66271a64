package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/otel/trace"
)

// StartRequestSpan starts a server span continuing the trace propagated in request headers
func StartRequestSpan(req *http.Request, spanName string) (context.Context, trace.Span) {
	attrs, _, spanCtx := otelhttptrace.Extract(req.Context(), req)
	ctx := req.Context()
	if spanCtx.IsValid() {
		ctx = trace.ContextWithRemoteSpanContext(ctx, spanCtx)
	}
	return StartTraceSpan(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
}
