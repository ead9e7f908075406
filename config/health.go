package config

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthChecker struct {
	deps map[string]Pinger
}

func NewHealthChecker(deps map[string]Pinger) *HealthChecker {
	return &HealthChecker{deps: deps}
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

func (h *HealthChecker) Handle(c *gin.Context) {
	status := http.StatusOK
	deps := gin.H{}

	for name, dep := range h.deps {
		if err := dep.Ping(c.Request.Context()); err != nil {
			deps[name] = gin.H{"status": "down", "error": err.Error()}
			status = http.StatusServiceUnavailable
		} else {
			deps[name] = gin.H{"status": "up"}
		}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
	})
}
