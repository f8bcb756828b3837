package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer sets up a test tracer provider and returns the span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func newTracedRouter(cfg TracingConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), TracingWithConfig(cfg), SpanEnricher())
	router.GET("/api/fiscal/notas-fiscais", func(c *gin.Context) {
		c.Set(ModuleKey, "fiscal")
		c.Status(http.StatusOK)
	})
	router.POST("/api/fiscal/notas-fiscais", func(c *gin.Context) {
		c.Set(ModuleKey, "fiscal")
		c.Status(http.StatusBadRequest)
	})
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTracedRouter(TracingConfig{Enabled: false, ServiceName: "test"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/fiscal/notas-fiscais", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracingWithConfig_Enabled(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTracedRouter(DefaultTracingConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/fiscal/notas-fiscais", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/api/fiscal/notas-fiscais")
	assert.Contains(t, spans[0].Attributes(), attribute.String("request_id", "req-42"))
	assert.Contains(t, spans[0].Attributes(), attribute.String(telemetry.SpanAttrModule, "fiscal"))
}

func TestTracingWithConfig_ErrorStatus(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTracedRouter(DefaultTracingConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/fiscal/notas-fiscais", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestTracingWithConfig_SkipPaths(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTracedRouter(DefaultTracingConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}
