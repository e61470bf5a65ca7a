package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Either the late handler response or the 504 may win, but the writer must not
// be corrupted by the handler and the middleware writing at the same time.
func TestTimeoutMiddleware_ConcurrentWrites(t *testing.T) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TimeoutMiddleware(10 * time.Millisecond))
	r.GET("/v1/triplet/:n", func(c *gin.Context) {
		time.Sleep(11 * time.Millisecond)
		c.JSON(http.StatusOK, gin.H{"words": "nine hundred ninety nine"})
	})

	for i := 0; i < 30; i++ {
		w := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			r.ServeHTTP(w, httptest.NewRequest("GET", "/v1/triplet/999", nil))
		})
		assert.Contains(t, []int{http.StatusOK, http.StatusGatewayTimeout}, w.Code)
	}
}

func TestTimeoutMiddleware_NormalCompletion(t *testing.T) {
	r := gin.New()
	r.Use(TimeoutMiddleware(5 * time.Second))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

// A handler that overruns but still answers keeps its answer.
func TestTimeoutMiddleware_LateResponseIsKept(t *testing.T) {
	r := gin.New()
	r.Use(TimeoutMiddleware(50 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(100 * time.Millisecond)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/slow", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTimeoutMiddleware_GatewayTimeout(t *testing.T) {
	r := gin.New()
	r.Use(TimeoutMiddleware(50 * time.Millisecond))

	var cancelled atomic.Bool
	r.GET("/context", func(c *gin.Context) {
		select {
		case <-c.Request.Context().Done():
			cancelled.Store(true)
		case <-time.After(time.Second):
		}
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/context", nil))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.JSONEq(t, `{"status":"error","data":null,"messages":[{"msgid":1040,"errcode":"request_timeout"}]}`, w.Body.String())
	assert.True(t, cancelled.Load(), "context should be cancelled on timeout")
}

func TestTimeoutMiddleware_PanicInHandler(t *testing.T) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TimeoutMiddleware(5 * time.Second))
	r.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		r.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTimeoutMiddleware_PanicAfterTimeout(t *testing.T) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TimeoutMiddleware(50 * time.Millisecond))
	r.GET("/slow-panic", func(c *gin.Context) {
		time.Sleep(100 * time.Millisecond)
		panic("late panic after timeout")
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		r.ServeHTTP(w, httptest.NewRequest("GET", "/slow-panic", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"errcode":"internal"`)
}

type mockLogger struct {
	lastInfo RequestInfo
	called   bool
}

func (m *mockLogger) Log(info RequestInfo) {
	m.lastInfo = info
	m.called = true
}

func TestTimeoutMiddleware_LoggingIntegration(t *testing.T) {
	tests := []struct {
		name        string
		timeout     time.Duration
		handler     gin.HandlerFunc
		wantCode    int
		wantTimeout bool
		wantPanic   string
	}{
		{
			name:     "normal",
			timeout:  5 * time.Second,
			handler:  func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) },
			wantCode: http.StatusOK,
		},
		{
			name:    "late response",
			timeout: 50 * time.Millisecond,
			handler: func(c *gin.Context) {
				time.Sleep(100 * time.Millisecond)
				c.JSON(http.StatusOK, gin.H{"status": "ok"})
			},
			wantCode:    http.StatusOK,
			wantTimeout: true,
		},
		{
			name:      "panic",
			timeout:   5 * time.Second,
			handler:   func(c *gin.Context) { panic("test panic message") },
			wantCode:  http.StatusInternalServerError,
			wantPanic: "test panic message",
		},
		{
			name:    "panic after timeout",
			timeout: 50 * time.Millisecond,
			handler: func(c *gin.Context) {
				time.Sleep(100 * time.Millisecond)
				panic("late panic")
			},
			wantCode:    http.StatusInternalServerError,
			wantTimeout: true,
			wantPanic:   "late panic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}

			r := gin.New()
			r.Use(LogRequest(logger))
			r.Use(gin.Recovery())
			r.Use(TimeoutMiddleware(tt.timeout))
			r.GET("/v1/calculate", tt.handler)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/v1/calculate", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.True(t, logger.called, "logger should be called")
			assert.Equal(t, tt.wantCode, logger.lastInfo.StatusCode)
			assert.Equal(t, tt.wantTimeout, logger.lastInfo.TimedOut)
			assert.Equal(t, tt.wantPanic != "", logger.lastInfo.PanicRecovered)
			assert.Equal(t, tt.wantPanic, logger.lastInfo.PanicValue)
			assert.False(t, logger.lastInfo.ClientDisconnected)
		})
	}
}

func TestTimeoutMiddleware_ClientDisconnect(t *testing.T) {
	logger := &mockLogger{}

	r := gin.New()
	r.Use(LogRequest(logger))
	r.Use(TimeoutMiddleware(5 * time.Second))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/slow", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.True(t, logger.called, "logger should be called")
	assert.False(t, logger.lastInfo.TimedOut, "TimedOut should be false")
	assert.True(t, logger.lastInfo.ClientDisconnected, "ClientDisconnected should be true")
}

func BenchmarkTimeoutMiddleware_NormalCompletion(b *testing.B) {
	r := gin.New()
	r.Use(TimeoutMiddleware(5 * time.Second))
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
			if w.Code != http.StatusOK {
				b.Errorf("expected 200, got %d", w.Code)
			}
		}
	})
}
