package service

import (
	"context"
	"errors"

	"go-gin-gorm-messenger/internal/domain"
	"go-gin-gorm-messenger/pkg/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AdminService 管理端操作；每个方法先校验调用者的 admin 角色
type AdminService struct {
	users    domain.UserRepository
	authz    *Authorizer
	messages *MessageService
}

func NewAdminService(users domain.UserRepository, authz *Authorizer, messages *MessageService) *AdminService {
	return &AdminService{users: users, authz: authz, messages: messages}
}

type UserPage struct {
	Total int64         `json:"total"`
	Items []domain.User `json:"items"`
}

// ListUsers 按创建时间倒序分页，q 模糊匹配 email / username
func (s *AdminService) ListUsers(ctx context.Context, actor *domain.User, offset, limit int, q string) (*UserPage, error) {
	if err := s.authz.RequireRole(ctx, actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	items, total, err := s.users.List(ctx, offset, limit, q)
	if err != nil {
		return nil, domain.Internal("list users failed", err)
	}
	if items == nil {
		items = []domain.User{}
	}
	return &UserPage{Total: total, Items: items}, nil
}

func (s *AdminService) ChangePassword(ctx context.Context, actor *domain.User, targetID uint, password string) error {
	if err := s.authz.RequireRole(ctx, actor, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.target(ctx, targetID); err != nil {
		return err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return hashErr(err)
	}
	if err := s.users.UpdatePassword(ctx, targetID, hash); err != nil {
		return domain.Internal("update password failed", err)
	}
	return nil
}

func (s *AdminService) ChangeEmail(ctx context.Context, actor *domain.User, targetID uint, email string) error {
	if err := s.authz.RequireRole(ctx, actor, domain.RoleAdmin); err != nil {
		return err
	}
	u, err := s.target(ctx, targetID)
	if err != nil {
		return err
	}
	email = NormalizeEmail(email)
	if email == "" {
		return domain.Validation("new email is required")
	}
	if email == u.Email {
		return nil
	}
	if err := emailFree(ctx, s.users, email, targetID); err != nil {
		return err
	}
	if err := s.users.UpdateEmail(ctx, targetID, email); err != nil {
		return emailUpdateErr(err)
	}
	return nil
}

// DeleteUser 连同该用户的消息与角色关联一起删除
func (s *AdminService) DeleteUser(ctx context.Context, actor *domain.User, targetID uint) error {
	if err := s.authz.RequireRole(ctx, actor, domain.RoleAdmin); err != nil {
		return err
	}
	err := s.users.Delete(ctx, targetID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("user not found")
	}
	if err != nil {
		return domain.Internal("delete user failed", err)
	}
	s.messages.feed.Invalidate(ctx)
	return nil
}

func (s *AdminService) DeleteMessage(ctx context.Context, actor *domain.User, messageID uint) error {
	if err := s.authz.RequireRole(ctx, actor, domain.RoleAdmin); err != nil {
		return err
	}
	return s.messages.remove(ctx, messageID)
}

func (s *AdminService) target(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("user not found")
	}
	if err != nil {
		return nil, domain.Internal("load user failed", err)
	}
	return u, nil
}
