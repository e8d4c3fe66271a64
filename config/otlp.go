package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
)

// ErrTracingNotConfigured returns when no OTLP endpoint is set in environment
var ErrTracingNotConfigured = errors.New("telemetry is not configured")

// InitTracerProvider inits provider with OTLP exporter selected by
// OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_TRACES_ENDPOINT:
// gRPC for port 4317 or "grpc" in endpoint, HTTP otherwise
func (cfg Config) InitTracerProvider(ctx context.Context) (*tracesdk.TracerProvider, error) {
	var (
		exp *otlptrace.Exporter
		err error
	)
	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") +
		os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")

	switch {
	case strings.Contains(otlpEndpoint, "4317") ||
		strings.Contains(otlpEndpoint, "grpc"):
		exp, err = otlptracegrpc.New(ctx)
	case len(otlpEndpoint) != 0:
		exp, err = otlptracehttp.New(ctx)
	default:
		log.Debug().Msg(ErrTracingNotConfigured.Error())
		return nil, ErrTracingNotConfigured
	}
	if err != nil {
		log.Err(err).Msg("could not create exporter")
		return nil, err
	}
	log.Debug().Str("endpoint", otlpEndpoint).Msg("telemetry configured OTEL_EXPORTER_OTLP")

	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String("tdt"),
		attribute.String("buildTag", buildTag),
		attribute.String("buildTime", buildTime),
		attribute.String("runtime", "golang"),
	}
	return tracesdk.NewTracerProvider(
		/* batch exports off the request path */
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(resource.NewWithAttributes(semconv.SchemaURL, attrs...)),
	), nil
}
