package service

import (
	"context"

	"go-gin-gorm-messenger/internal/domain"
)

// Authorizer 每次检查都从存储重新取角色，token 内的角色只作参考
type Authorizer struct {
	roles domain.RoleRepository
}

func NewAuthorizer(roles domain.RoleRepository) *Authorizer {
	return &Authorizer{roles: roles}
}

// RoleRows 当前角色行（id + name），按 id 升序
func (a *Authorizer) RoleRows(ctx context.Context, userID uint) ([]domain.Role, error) {
	rs, err := a.roles.RolesOf(ctx, userID)
	if err != nil {
		return nil, domain.Internal("load roles failed", err)
	}
	if rs == nil {
		rs = []domain.Role{}
	}
	return rs, nil
}

func (a *Authorizer) Roles(ctx context.Context, userID uint) ([]string, error) {
	rs, err := a.RoleRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Name)
	}
	return names, nil
}

// RequireRole 大小写敏感的精确匹配；没有任何角色时是干净的拒绝
func (a *Authorizer) RequireRole(ctx context.Context, u *domain.User, role string) error {
	if u == nil {
		return domain.Unauthenticated("unauthorized")
	}
	names, err := a.Roles(ctx, u.ID)
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == role {
			return nil
		}
	}
	return domain.Forbidden("insufficient role")
}

func (a *Authorizer) RequireOwnerOrRole(ctx context.Context, u *domain.User, ownerID uint, role string) error {
	if u == nil {
		return domain.Unauthenticated("unauthorized")
	}
	if u.ID == ownerID {
		return nil
	}
	return a.RequireRole(ctx, u, role)
}
