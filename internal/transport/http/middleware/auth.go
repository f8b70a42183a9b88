package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-gorm-messenger/internal/core/auth"
	"go-gin-gorm-messenger/internal/domain"
	resp "go-gin-gorm-messenger/internal/transport/http/response"
)

const keyUser = "currentUser"

// Resolver 由 service.IdentityResolver 实现
type Resolver interface {
	Resolve(ctx context.Context, c *auth.Claims) (*domain.User, error)
}

// Authenticate 验签 + 落到当前用户；失败一律 401，原因只进日志和指标
func Authenticate(j *auth.JWTer, r Resolver, l *zap.Logger) gin.HandlerFunc {
	if l == nil {
		l = zap.NewNop()
	}
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		scheme, tok, ok := strings.Cut(ah, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
			deny(c, l, "missing", nil)
			return
		}
		claims, err := j.Parse(strings.TrimSpace(tok))
		if err != nil {
			deny(c, l, denialReason(err), err)
			return
		}
		u, err := r.Resolve(c.Request.Context(), claims)
		if err != nil {
			if domain.KindOf(err) == domain.KindInternal {
				l.Error("resolve identity failed", zap.Error(err))
				resp.Abort(c, resp.CodeServerError, "internal error")
				return
			}
			deny(c, l, "unknown_user", err)
			return
		}
		c.Set(keyUser, u)
		c.Next()
	}
}

// CurrentUser 未经过 Authenticate 时为 nil
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(keyUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

func denialReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpired):
		return "expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}

func deny(c *gin.Context, l *zap.Logger, reason string, err error) {
	authDenials.WithLabelValues(reason).Inc()
	l.Debug("token rejected",
		zap.String("rid", c.GetString(KeyRequestID)),
		zap.String("reason", reason),
		zap.Error(err),
	)
	resp.Abort(c, resp.CodeUnauthorized, "invalid or missing token")
}
