package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/logharbour/logharbour"
)

// Options configures SetupRouter.
type Options struct {
	Logger  *logharbour.Logger
	Timeout time.Duration   // zero disables TimeoutMiddleware
	Auth    *AuthMiddleware // nil disables authentication
}

// SetupRouter returns a gin engine with request logging, panic recovery and,
// when configured, the timeout and auth middleware.
func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()

	if opts.Logger != nil {
		r.Use(LogRequest(NewLogHarbourAdapter(opts.Logger)))
	}
	r.Use(gin.Recovery())

	if opts.Timeout > 0 {
		r.Use(TimeoutMiddleware(opts.Timeout))
	}

	if opts.Auth != nil {
		r.Use(opts.Auth.MiddlewareFunc())
	}

	return r
}
