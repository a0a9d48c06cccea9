package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetupInstallsProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	for _, url := range []string{"localhost:4318", "http://localhost:4318/v1/traces"} {
		tp, err := Setup(context.Background(), url)
		if err != nil {
			t.Fatalf("setup %s: %v", url, err)
		}
		if otel.GetTracerProvider() != tp {
			t.Fatalf("expected global tracer provider to be replaced")
		}
		// nothing was exported, so shutdown does not touch the network
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Fatalf("shutdown: %v", err)
		}
	}
}
