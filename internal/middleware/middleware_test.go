package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestCtxHandler_AddsContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&ctxHandler{slog.NewTextHandler(&buf, nil)})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, uint(7))
	logger.With("component", "test").InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "user_id=7")
	assert.Contains(t, out, "component=test")
}

func TestContextAndTracingMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(TracingMiddleware())
	app.Use(ContextMiddleware())

	var gotRequestID, gotTraceID any
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		gotRequestID = c.UserContext().Value(RequestIDKey)
		gotTraceID = c.UserContext().Value(TraceIDKey)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/3", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
	assert.NotNil(t, gotRequestID)
	assert.Equal(t, resp.Header.Get("X-Trace-ID"), gotTraceID)
}

func TestMetricsMiddleware(t *testing.T) {
	p := InitMetrics("chirp-test")
	assert.Same(t, p, InitMetrics("chirp-test"))

	app := fiber.New()
	app.Use(MetricsMiddleware(p))
	p.RegisterAt(app, "/metrics")
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
