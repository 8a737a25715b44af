package trace

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dealerhub/dealerhub/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_HTTPExporter(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := InitTracing(context.Background(), config.TracingConfig{
		Enabled: true, ServiceName: "test", Protocol: "http", Insecure: true, SamplerRate: 2,
		Headers: map[string]string{"x-key": "v"},
	}, zap.NewNop())
	require.NoError(t, err)
	// nothing was exported, so shutdown does not need the collector
	_ = shutdown(context.Background())
}

func TestBuilderAndMiddleware(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	scope := Tracer("unit").Start(context.Background(), "op").WithAttrs(attribute.String("k", "v"))
	scope.RecordError(errors.New("boom"))
	scope.End()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware("dealerhub-test"))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "op", spans[0].Name())
	assert.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "/ping", spans[1].Name())

	assert.Equal(t, 0.0, clampRate(-1))
	assert.Equal(t, 1.0, clampRate(3))
}
