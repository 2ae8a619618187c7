// Package telemetry sets up OpenTelemetry tracing. Finished spans are written
// to the service log at debug level.
package telemetry

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewTracerProvider creates the process tracer provider and installs it globally.
// The returned func flushes and shuts it down.
func NewTracerProvider(logger *logrus.Logger) (*sdktrace.TracerProvider, func()) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithSpanProcessor(&logProcessor{logger: logger}),
	)
	otel.SetTracerProvider(tp)

	return tp, func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to shut down tracer provider")
		}
	}
}

// logProcessor logs every ended span
type logProcessor struct {
	logger *logrus.Logger
}

func (p *logProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logProcessor) OnEnd(span sdktrace.ReadOnlySpan) {
	if !p.logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	fields := logrus.Fields{
		"span":        span.Name(),
		"trace_id":    span.SpanContext().TraceID().String(),
		"duration_ms": span.EndTime().Sub(span.StartTime()).Milliseconds(),
		"status":      span.Status().Code.String(),
	}
	for _, attr := range span.Attributes() {
		fields[string(attr.Key)] = attr.Value.Emit()
	}
	p.logger.WithFields(fields).Debug("Span finished")
}

func (p *logProcessor) Shutdown(context.Context) error   { return nil }
func (p *logProcessor) ForceFlush(context.Context) error { return nil }
