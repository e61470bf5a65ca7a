package router

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/numspeak/wscutils"
)

// Context keys set by TimeoutMiddleware and read by LogRequest.
const (
	CtxKeyTimedOut           = "_request_timed_out"
	CtxKeyClientDisconnected = "_client_disconnected"
	CtxKeyPanicRecovered     = "_panic_recovered"
	CtxKeyPanicValue         = "_panic_value"
)

// timeoutWriter serializes writes from the handler goroutine and records
// whether a status line has been sent.
type timeoutWriter struct {
	gin.ResponseWriter
	mu          sync.Mutex
	wroteHeader bool
}

func (w *timeoutWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *timeoutWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *timeoutWriter) WriteString(s string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.wroteHeader = true
	return w.ResponseWriter.WriteString(s)
}

func (w *timeoutWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}

func (w *timeoutWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ResponseWriter.(http.Flusher).Flush()
}

func (w *timeoutWriter) written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.wroteHeader
}

// TimeoutMiddleware runs the rest of the chain in its own goroutine with a
// request context that expires after timeout.
//
// When the deadline passes the middleware still waits for the handler. If the
// handler wrote a response that response stands; otherwise the client gets
// 504 with errcode request_timeout. A handler panic is re-raised in the
// calling goroutine so gin.Recovery, registered earlier, turns it into a 500.
// A panic after the deadline cannot be re-raised and is answered with 500 here.
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		tw := &timeoutWriter{ResponseWriter: c.Writer}
		c.Writer = tw

		done := make(chan struct{})
		panicCh := make(chan any, 1)

		go func() {
			defer close(done)
			defer func() {
				if p := recover(); p != nil {
					c.Set(CtxKeyPanicRecovered, true)
					c.Set(CtxKeyPanicValue, fmt.Sprintf("%v", p))
					panicCh <- p
				}
			}()
			c.Next()
		}()

		expired := false
		select {
		case <-done:
		case <-ctx.Done():
			expired = true
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				c.Set(CtxKeyTimedOut, true)
			} else {
				c.Set(CtxKeyClientDisconnected, true)
			}
			<-done
		}

		select {
		case p := <-panicCh:
			if !expired {
				panic(p)
			}
			if !tw.written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					wscutils.NewErrorResponse(wscutils.MsgIDInternal, wscutils.ErrcodeInternal))
			}
			return
		default:
		}

		if expired && !tw.written() {
			c.AbortWithStatusJSON(http.StatusGatewayTimeout,
				wscutils.NewErrorResponse(wscutils.MsgIDRequestTimeout, wscutils.ErrcodeRequestTimeout))
		}
	}
}
