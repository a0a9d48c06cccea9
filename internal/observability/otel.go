package observability

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TracerName names the tracer used around relayed calls.
const TracerName = "github.com/ai-gateway/chat-relay"

// Setup installs a global tracer provider exporting over OTLP/HTTP. url is
// either host:port or a full http(s) endpoint URL.
func Setup(ctx context.Context, url string) (*sdktrace.TracerProvider, error) {
	var opt otlptracehttp.Option
	if strings.Contains(url, "://") {
		opt = otlptracehttp.WithEndpointURL(url)
	} else {
		opt = otlptracehttp.WithEndpoint(url)
	}
	exp, err := otlptracehttp.New(ctx, opt)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", "chat-relay"))),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}
