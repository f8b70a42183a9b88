package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-gorm-messenger/internal/core/auth"
	"go-gin-gorm-messenger/internal/core/server"
	"go-gin-gorm-messenger/internal/service"
	mdw "go-gin-gorm-messenger/internal/transport/http/middleware"
	"go-gin-gorm-messenger/internal/transport/http/validate"
)

type Limits struct {
	MaxInFlight  int64
	MaxBodyBytes int64
	Timeout      time.Duration
}

// Deps 两个 engine 共用的依赖
type Deps struct {
	Log      *zap.Logger
	JWT      *auth.JWTer
	Identity mdw.Resolver
	Accounts *service.AccountService
	Messages *service.MessageService
	Admin    *service.AdminService
	Limits   Limits
}

func (d Deps) limits() Limits {
	l := d.Limits
	if l.MaxInFlight <= 0 {
		l.MaxInFlight = 300
	}
	if l.MaxBodyBytes <= 0 {
		l.MaxBodyBytes = 1 << 20
	}
	if l.Timeout <= 0 {
		l.Timeout = 10 * time.Second
	}
	return l
}

// newBase 公共中间件 + /health + /metrics
func newBase(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	validate.Register()
	lim := d.limits()

	r := server.NewRouter(d.Log)
	r.Use(
		mdw.RequestID(),
		mdw.ConcurrencyLimit(lim.MaxInFlight),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.Timeout),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())
	return r
}

func (d Deps) authenticate() gin.HandlerFunc {
	return mdw.Authenticate(d.JWT, d.Identity, d.Log)
}
