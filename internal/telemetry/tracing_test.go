package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestLogProcessor(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&logProcessor{logger: logger}))
	_, span := tp.Tracer("test").Start(context.Background(), "catalog.List")
	span.SetAttributes(attribute.Int("total", 3))
	span.End()

	out := buf.String()
	assert.Contains(t, out, "Span finished")
	assert.Contains(t, out, "span=catalog.List")
	assert.Contains(t, out, "total=3")
}

func TestLogProcessor_QuietAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.InfoLevel)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&logProcessor{logger: logger}))
	_, span := tp.Tracer("test").Start(context.Background(), "sync.SyncPopular")
	span.End()

	assert.Empty(t, buf.String())
}
