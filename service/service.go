// Package service ties a gin engine to the components its handlers need.
//
// Handlers are plain functions of (*gin.Context, *Service). Components that
// are not part of Service itself are injected with WithDependency and read
// back with Dependency:
//
//	s := service.NewService(r).WithLogHarbour(lh).WithDependency("history", store)
//	store, ok := service.Dependency[history.Store](s, "history")
package service

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/logharbour/logharbour"
	"github.com/remiges-tech/numspeak/config"
	"github.com/remiges-tech/numspeak/metrics"
)

// Dependencies is a map to hold arbitrary dependencies.
type Dependencies map[string]any

// Service is the core struct for a web service, holding essential components and optional dependencies.
type Service struct {
	Config       config.Config
	Router       *gin.Engine
	LogHarbour   *logharbour.Logger
	Metrics      metrics.Metrics
	Dependencies Dependencies
}

// NewService constructs a new Service on router r.
func NewService(r *gin.Engine) *Service {
	return &Service{Router: r}
}

func (s *Service) WithConfig(c config.Config) *Service {
	s.Config = c
	return s
}

func (s *Service) WithLogHarbour(l *logharbour.Logger) *Service {
	s.LogHarbour = l
	return s
}

func (s *Service) WithMetrics(m metrics.Metrics) *Service {
	s.Metrics = m
	return s
}

// WithDependency is a method to inject an arbitrary dependency into the Service.
func (s *Service) WithDependency(key string, value any) *Service {
	if s.Dependencies == nil {
		s.Dependencies = make(Dependencies)
	}
	s.Dependencies[key] = value
	return s
}

// Dependency returns the dependency stored under key if it has type T.
func Dependency[T any](s *Service, key string) (T, bool) {
	v, ok := s.Dependencies[key].(T)
	return v, ok
}

// HandlerFunc is a function that handles a request.
// It takes a *gin.Context and a *Service as parameters.
type HandlerFunc func(*gin.Context, *Service)

func (s *Service) wrap(handler HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		handler(c, s)
	}
}

// RegisterRoute registers a single route directly on the service's engine.
func (s *Service) RegisterRoute(method, path string, handler HandlerFunc) error {
	return register(&s.Router.RouterGroup, method, path, s.wrap(handler))
}

// RouteGroup represents a group of routes.
type RouteGroup struct {
	Group   *gin.RouterGroup
	service *Service
}

// CreateGroup creates a new route group with the given path.
func (s *Service) CreateGroup(path string) *RouteGroup {
	return &RouteGroup{
		Group:   s.Router.Group(path),
		service: s,
	}
}

// RegisterRoute registers a single route in the group.
func (g *RouteGroup) RegisterRoute(method, path string, handler HandlerFunc) error {
	return register(g.Group, method, path, g.service.wrap(handler))
}

// CreateSubGroup creates a new sub-group within the current group.
func (g *RouteGroup) CreateSubGroup(path string) *RouteGroup {
	return &RouteGroup{
		Group:   g.Group.Group(path),
		service: g.service,
	}
}

func register(group *gin.RouterGroup, method, path string, handler gin.HandlerFunc) error {
	switch method {
	case http.MethodGet:
		group.GET(path, handler)
	case http.MethodPost:
		group.POST(path, handler)
	case http.MethodPut:
		group.PUT(path, handler)
	case http.MethodDelete:
		group.DELETE(path, handler)
	default:
		return fmt.Errorf("unsupported method %s for %s", method, path)
	}
	return nil
}
