package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrost/clinsched-api/internal/service"
)

type pingerStub struct {
	err error
}

func (p *pingerStub) PingContext(ctx context.Context) error { return p.err }

func TestMetricsHandlerHealth(t *testing.T) {
	handler := NewMetricsHandler(service.NewMetricsService(), nil)

	c, w := testContext(t, http.MethodGet, "/health", nil)
	handler.Health(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestMetricsHandlerReady(t *testing.T) {
	handler := NewMetricsHandler(service.NewMetricsService(), &pingerStub{})

	c, w := testContext(t, http.MethodGet, "/ready", nil)
	handler.Ready(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ready")
}

func TestMetricsHandlerReadyDatabaseDown(t *testing.T) {
	handler := NewMetricsHandler(service.NewMetricsService(), &pingerStub{err: errors.New("connection refused")})

	c, w := testContext(t, http.MethodGet, "/ready", nil)
	handler.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	handler := NewMetricsHandler(service.NewMetricsService(), nil)

	c, w := testContext(t, http.MethodGet, "/metrics", nil)
	handler.Prometheus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goroutines_total")
}
