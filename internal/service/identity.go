package service

import (
	"context"
	"errors"

	"go-gin-gorm-messenger/internal/core/auth"
	"go-gin-gorm-messenger/internal/domain"
)

// IdentityResolver 把已验签的 claims 落到当前存储中的用户行
type IdentityResolver struct {
	users domain.UserRepository
}

func NewIdentityResolver(users domain.UserRepository) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve 用户在签发后被删除时返回 Unauthenticated，而不是数据错误
func (r *IdentityResolver) Resolve(ctx context.Context, c *auth.Claims) (*domain.User, error) {
	if c == nil || c.Subject == "" {
		return nil, domain.Unauthenticated("invalid token")
	}
	u, err := r.users.FindByEmail(ctx, c.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Unauthenticated("invalid token")
	}
	if err != nil {
		return nil, domain.Internal("resolve user failed", err)
	}
	return u, nil
}
