package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestGinMiddlewareRecordsRouteSpans(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := tracetest.NewSpanRecorder()
	tp := NewProvider("test", 1, sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/api/schedules/:userId/sessions", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/schedules/alice/sessions", nil))
	assert.NotEmpty(t, w.Header().Get("X-Trace-Id"))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "GET /api/schedules/:userId/sessions", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.status_code", http.StatusOK))
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestStartSpanAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := NewProvider("test", 1, sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	_, span := StartSpan(context.Background(), "schedule.warm", attribute.Int("schedule.count", 3))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "schedule.warm", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("schedule.count", 3))
}
