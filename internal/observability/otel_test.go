package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tbourn/library-community/internal/config"
)

// keepGlobals restores the global provider and propagator after the test.
func keepGlobals(t *testing.T) {
	t.Helper()
	tp := otel.GetTracerProvider()
	prop := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(prop)
	})
}

func tracingCfg(insecure bool) config.OTELConfig {
	return config.OTELConfig{
		Enabled:     true,
		Insecure:    insecure,
		Endpoint:    "localhost:4317",
		ServiceName: "library-community",
		SampleRatio: 1,
	}
}

func TestSetup_DisabledLeavesGlobalsAlone(t *testing.T) {
	keepGlobals(t)
	before := otel.GetTracerProvider()

	cfg := tracingCfg(true)
	cfg.Enabled = false
	shutdown, err := Setup(context.Background(), cfg, "dev")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
	if otel.GetTracerProvider() != before {
		t.Fatal("provider replaced while tracing disabled")
	}
}

func TestSetup_InstallsProvider(t *testing.T) {
	for name, insecure := range map[string]bool{"plaintext": true, "tls": false} {
		t.Run(name, func(t *testing.T) {
			keepGlobals(t)

			shutdown, err := Setup(context.Background(), tracingCfg(insecure), "v1.4.0")
			if err != nil {
				t.Fatalf("Setup: %v", err)
			}
			t.Cleanup(func() { _ = shutdown(context.Background()) })

			if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
				t.Fatalf("provider is %T", otel.GetTracerProvider())
			}

			ctx, span := otel.Tracer("community").Start(context.Background(), "discussions.list")
			carrier := propagation.MapCarrier{}
			otel.GetTextMapPropagator().Inject(ctx, carrier)
			span.End()
			if carrier.Get("traceparent") == "" {
				t.Fatalf("traceparent not injected: %v", carrier)
			}
		})
	}
}

func TestSetup_CanceledContextStillSucceeds(t *testing.T) {
	keepGlobals(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	shutdown, err := Setup(ctx, tracingCfg(true), "v1")
	if err != nil {
		t.Fatalf("Setup with canceled ctx: %v", err)
	}
	sctx, scancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer scancel()
	if err := shutdown(sctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetup_FailuresKeepGlobals(t *testing.T) {
	cases := map[string]func(t *testing.T){
		"exporter": func(t *testing.T) {
			orig := newOTLPExporterFn
			t.Cleanup(func() { newOTLPExporterFn = orig })
			newOTLPExporterFn = func(context.Context, otlptrace.Client) (*otlptrace.Exporter, error) {
				return nil, errors.New("exporter down")
			}
		},
		"resource": func(t *testing.T) {
			orig := newServiceResourceFn
			t.Cleanup(func() { newServiceResourceFn = orig })
			newServiceResourceFn = func(context.Context, string, string) (*resource.Resource, error) {
				return nil, errors.New("bad resource")
			}
		},
	}
	for name, sabotage := range cases {
		t.Run(name, func(t *testing.T) {
			keepGlobals(t)
			sabotage(t)

			tp := otel.GetTracerProvider()
			prop := otel.GetTextMapPropagator()
			if _, err := Setup(context.Background(), tracingCfg(true), "v0"); err == nil {
				t.Fatal("expected error")
			}
			if otel.GetTracerProvider() != tp || otel.GetTextMapPropagator() != prop {
				t.Fatal("globals changed on failure")
			}
		})
	}
}

func TestSampler_Clamps(t *testing.T) {
	cases := []struct {
		ratio float64
		want  string
	}{
		{1, "AlwaysOnSampler"},
		{7, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tc := range cases {
		desc := Sampler(tc.ratio).Description()
		if !strings.Contains(desc, "ParentBased") || !strings.Contains(desc, tc.want) {
			t.Fatalf("Sampler(%v) = %s; want %s", tc.ratio, desc, tc.want)
		}
	}
}

func TestServiceResource_CarriesIdentity(t *testing.T) {
	res, err := newServiceResourceFn(context.Background(), "library-community", "v2.0.0")
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	got := map[string]string{}
	for _, kv := range res.Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	if got["service.name"] != "library-community" || got["service.version"] != "v2.0.0" || got["service.namespace"] != ServiceNamespace {
		t.Fatalf("unexpected attributes: %v", got)
	}
}
