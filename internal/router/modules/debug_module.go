package modules

import (
	"context"
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-task-manager/pkg/response"
)

// DebugModule exposes expvar counters at /debug/vars when enabled and a
// health check at /health.
type DebugModule struct {
	MetricsEnabled bool
	Ping           func(ctx context.Context) error
}

func NewDebugModule(metricsEnabled bool, ping func(ctx context.Context) error) *DebugModule {
	return &DebugModule{MetricsEnabled: metricsEnabled, Ping: ping}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.health)
	if m.MetricsEnabled {
		rg.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	}
}

func (m *DebugModule) health(c *gin.Context) {
	if m.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := m.Ping(ctx); err != nil {
			response.Error[any](c, http.StatusServiceUnavailable, "storage unavailable", nil)
			return
		}
	}
	response.Success[any](c, http.StatusOK, gin.H{"status": "ok"}, "healthy", nil)
}
