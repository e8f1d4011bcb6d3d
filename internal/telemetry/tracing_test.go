package telemetry

import (
	"context"
	"strings"
	"testing"
)

func TestSetupTracingDisabled(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), TraceConfig{Exporter: "none"}, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetupTracingRejectsBadConfig(t *testing.T) {
	if _, err := SetupTracing(context.Background(), TraceConfig{Exporter: "zipkin"}, nil); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported exporter error, got %v", err)
	}
	if _, err := SetupTracing(context.Background(), TraceConfig{Exporter: "otlp"}, nil); err == nil {
		t.Fatal("expected error for otlp without endpoint")
	}
}

func TestSampler(t *testing.T) {
	for ratio, want := range map[float64]string{
		1:   "root:AlwaysOnSampler",
		0:   "root:AlwaysOffSampler",
		0.5: "root:TraceIDRatioBased{0.5}",
	} {
		if got := sampler(ratio).Description(); !strings.Contains(got, want) {
			t.Fatalf("ratio %v: expected %s in %q", ratio, want, got)
		}
	}
}
