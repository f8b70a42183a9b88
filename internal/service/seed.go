package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"go-gin-gorm-messenger/internal/domain"
	"go-gin-gorm-messenger/pkg/utils"
)

type AdminAccount struct {
	Username string
	Email    string
	Password string
}

// Seeder 幂等：多次执行后仍只有两个角色和一个管理员
type Seeder struct {
	users domain.UserRepository
	roles domain.RoleRepository
	log   *zap.Logger
}

func NewSeeder(users domain.UserRepository, roles domain.RoleRepository, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{users: users, roles: roles, log: log}
}

var ErrSeedNoPassword = errors.New("seed: admin password is required")

func (s *Seeder) Seed(ctx context.Context, admin AdminAccount) error {
	for _, name := range []string{domain.RoleAdmin, domain.RoleUser} {
		if _, err := s.roles.Ensure(ctx, name); err != nil {
			return err
		}
	}

	email := NormalizeEmail(admin.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		// 账号已在：只补齐角色
		if err := s.roles.Assign(ctx, existing.ID, domain.RoleAdmin, domain.RoleUser); err != nil {
			return err
		}
		s.log.Info("seed: admin already present", zap.Uint("id", existing.ID))
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	if strings.TrimSpace(admin.Password) == "" {
		return ErrSeedNoPassword
	}
	hash, err := utils.HashPassword(admin.Password)
	if err != nil {
		return err
	}
	u := &domain.User{Username: strings.TrimSpace(admin.Username), Email: email, PasswordHash: hash}
	if err := s.users.CreateWithRoles(ctx, u, domain.RoleAdmin, domain.RoleUser); err != nil {
		return err
	}
	s.log.Info("seed: admin created", zap.Uint("id", u.ID), zap.String("email", email))
	return nil
}
