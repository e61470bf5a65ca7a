// Package router holds the gin middleware of the numspeak HTTP server:
// request logging, request timeouts and bearer token authentication.
//
// Middleware order matters. LogRequest must come first so it sees the final
// status, and gin.Recovery must come before TimeoutMiddleware so it can catch
// panics re-raised from the handler goroutine:
//
//	r.Use(router.LogRequest(router.NewLogHarbourAdapter(lh)))
//	r.Use(gin.Recovery())
//	r.Use(router.TimeoutMiddleware(10 * time.Second))
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/logharbour/logharbour"
	"github.com/remiges-tech/numspeak/wscutils"
)

// RequestInfo is what LogRequest records about one request.
type RequestInfo struct {
	Method             string        `json:"method"`
	Path               string        `json:"path"`
	Route              string        `json:"route,omitempty"`
	ClientIP           string        `json:"client_ip"`
	User               string        `json:"user,omitempty"`
	StatusCode         int           `json:"status_code"`
	StartTime          time.Time     `json:"start_time"` // UTC
	Duration           time.Duration `json:"duration"`
	RequestSize        int64         `json:"request_size"`
	ResponseSize       int64         `json:"response_size"`
	Query              string        `json:"query,omitempty"`
	UserAgent          string        `json:"user_agent,omitempty"`
	TraceID            string        `json:"trace_id,omitempty"`
	TimedOut           bool          `json:"timed_out,omitempty"`
	ClientDisconnected bool          `json:"client_disconnected,omitempty"`
	PanicRecovered     bool          `json:"panic_recovered,omitempty"`
	PanicValue         string        `json:"panic_value,omitempty"`
}

// RequestLogger receives one RequestInfo per completed request.
type RequestLogger interface {
	Log(info RequestInfo)
}

// LogRequest returns a middleware that logs each request after the rest of the
// chain has finished.
func LogRequest(logger RequestLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestSize := c.Request.ContentLength

		c.Next()

		info := RequestInfo{
			Method:       c.Request.Method,
			Path:         c.Request.URL.Path,
			Route:        c.FullPath(),
			ClientIP:     c.ClientIP(),
			StatusCode:   c.Writer.Status(),
			StartTime:    start.UTC(),
			Duration:     time.Since(start),
			RequestSize:  requestSize,
			ResponseSize: int64(c.Writer.Size()),
			Query:        c.Request.URL.RawQuery,
			UserAgent:    c.Request.UserAgent(),
			TraceID:      c.GetHeader("X-Trace-ID"),
		}
		info.User, _ = wscutils.GetRequestUser(c)
		info.TimedOut = c.GetBool(CtxKeyTimedOut)
		info.ClientDisconnected = c.GetBool(CtxKeyClientDisconnected)
		info.PanicRecovered = c.GetBool(CtxKeyPanicRecovered)
		info.PanicValue = c.GetString(CtxKeyPanicValue)

		logger.Log(info)
	}
}

// LogHarbourAdapter writes RequestInfo as logharbour activity logs.
type LogHarbourAdapter struct {
	logger *logharbour.Logger
}

func NewLogHarbourAdapter(logger *logharbour.Logger) *LogHarbourAdapter {
	return &LogHarbourAdapter{logger: logger}
}

func (a *LogHarbourAdapter) Log(info RequestInfo) {
	lh := a.logger.WithModule("http").
		WithOp("request").
		WithRemoteIP(info.ClientIP).
		WithClass(info.Method).
		WithInstanceId(info.Path).
		WithStatus(statusOf(info.StatusCode))

	data := map[string]any{
		"method":        info.Method,
		"path":          info.Path,
		"status":        info.StatusCode,
		"start_time":    info.StartTime.Format(time.RFC3339),
		"duration_ms":   info.Duration.Milliseconds(),
		"request_size":  info.RequestSize,
		"response_size": info.ResponseSize,
	}
	if info.User != "" {
		data["user"] = info.User
	}
	if info.Route != "" {
		data["route"] = info.Route
	}
	if info.Query != "" {
		data["query"] = info.Query
	}
	if info.UserAgent != "" {
		data["user_agent"] = info.UserAgent
	}
	if info.TraceID != "" {
		data["trace_id"] = info.TraceID
	}
	if info.TimedOut {
		data["timed_out"] = true
	}
	if info.ClientDisconnected {
		data["client_disconnected"] = true
	}
	if info.PanicRecovered {
		data["panic_recovered"] = true
		data["panic_value"] = info.PanicValue
	}

	if info.StatusCode >= 500 {
		lh.Warn().LogActivity("HTTP request failed", data)
		return
	}
	lh.Info().LogActivity("HTTP request completed", data)
}

func statusOf(statusCode int) logharbour.Status {
	if statusCode >= 200 && statusCode < 400 {
		return logharbour.Success
	}
	return logharbour.Failure
}
