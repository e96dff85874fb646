package observability

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/dhg/hub-backend/internal/logger"
)

type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
}

var (
	otelOnce     sync.Once
	otelShutdown func(context.Context) error
)

// InitOTel installs a tracer provider when OTEL_ENABLED is truthy. Spans go
// to stdout; there is no collector in this deployment. Returns a shutdown
// func (nil when tracing is disabled).
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	otelOnce.Do(func() {
		if !otelEnabled() {
			return
		}
		serviceName := strings.TrimSpace(cfg.ServiceName)
		if serviceName == "" {
			serviceName = "dhg-hub-backend"
		}
		res, err := resource.New(
			ctx,
			resource.WithAttributes(
				semconv.ServiceNameKey.String(serviceName),
				attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
				semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
			),
		)
		if err != nil && log != nil {
			log.Warn("otel resource init failed (continuing)", "error", err)
		}

		exporter, expErr := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if expErr != nil {
			if log != nil {
				log.Warn("otel exporter init failed (tracing disabled)", "error", expErr)
			}
			return
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(otelSampleRatio()))),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		otelShutdown = tp.Shutdown
		if log != nil {
			log.Info("otel tracing initialized", "service", serviceName)
		}
	})
	return otelShutdown
}

const tracerName = "github.com/dhg/hub-backend"

// StartSpan wraps one remote operation in a span. Services call this
// explicitly around database and AI calls; there is no proxy-based
// interception anywhere.
func StartSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func otelEnabled() bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv("OTEL_ENABLED")))
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func otelSampleRatio() float64 {
	v := strings.TrimSpace(os.Getenv("OTEL_SAMPLE_RATIO"))
	if v == "" {
		return 1.0
	}
	ratio, err := strconv.ParseFloat(v, 64)
	if err != nil || ratio < 0 || ratio > 1 {
		return 1.0
	}
	return ratio
}
