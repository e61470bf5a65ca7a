package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/remiges-tech/numspeak/config"
	"github.com/remiges-tech/numspeak/logger"
	"github.com/remiges-tech/numspeak/metrics"
	"github.com/remiges-tech/numspeak/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockConfig struct{}

func (mc *MockConfig) LoadConfig(c any) error {
	return nil
}

func (mc *MockConfig) Check() error {
	return nil
}

func (mc *MockConfig) Get(key string) (string, error) {
	return "dummy", nil
}

func (mc *MockConfig) Watch(ctx context.Context, key string, events chan<- config.Event) error {
	return nil
}

func TestWithBuilders(t *testing.T) {
	cfg := &MockConfig{}
	lh := logger.New("numspeak-test", "info", &nopWriter{})
	m := metrics.NewPrometheusMetrics(prometheus.NewRegistry())

	s := service.NewService(nil).WithConfig(cfg).WithLogHarbour(lh).WithMetrics(m)

	assert.Same(t, cfg, s.Config)
	assert.Same(t, lh, s.LogHarbour)
	assert.Same(t, m, s.Metrics)
}

func TestDependency(t *testing.T) {
	s := service.NewService(nil).WithDependency("default_system", "indian")

	v, ok := service.Dependency[string](s, "default_system")
	require.True(t, ok)
	assert.Equal(t, "indian", v)

	_, ok = service.Dependency[int](s, "default_system")
	assert.False(t, ok, "wrong type")

	_, ok = service.Dependency[string](s, "missing")
	assert.False(t, ok)
}

func TestRegisterRoute(t *testing.T) {
	r := gin.New()
	s := service.NewService(r).WithDependency("greeting", "namaste")

	handler := func(c *gin.Context, s *service.Service) {
		greeting, _ := service.Dependency[string](s, "greeting")
		c.String(http.StatusOK, greeting)
	}

	require.NoError(t, s.RegisterRoute(http.MethodGet, "/hello", handler))
	v1 := s.CreateGroup("/v1")
	require.NoError(t, v1.RegisterRoute(http.MethodPost, "/hello", handler))
	require.NoError(t, v1.CreateSubGroup("/admin").RegisterRoute(http.MethodDelete, "/hello", handler))
	assert.Error(t, s.RegisterRoute(http.MethodPatch, "/hello", handler))

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/hello"},
		{http.MethodPost, "/v1/hello"},
		{http.MethodDelete, "/v1/admin/hello"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, tc.path)
		assert.Equal(t, "namaste", w.Body.String())
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
