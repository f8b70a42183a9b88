package service

import (
	"context"
	"errors"
	"strings"

	"go-gin-gorm-messenger/internal/domain"
	"go-gin-gorm-messenger/pkg/utils"
)

// TokenIssuer 由 auth.JWTer 实现
type TokenIssuer interface {
	Issue(subject string, roles []string) (string, error)
}

const (
	msgInvalidCredentials = "invalid email or password"
	TokenTypeBearer       = "bearer"
)

type AccountService struct {
	users  domain.UserRepository
	authz  *Authorizer
	tokens TokenIssuer
}

func NewAccountService(users domain.UserRepository, authz *Authorizer, tokens TokenIssuer) *AccountService {
	return &AccountService{users: users, authz: authz, tokens: tokens}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Profile struct {
	ID       uint          `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Roles    []domain.Role `json:"roles"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register 邮箱预检只是体验优化，真正的唯一性由存储约束保证
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := NormalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, domain.Validation("username, email and password are required")
	}

	if err := emailFree(ctx, s.users, email, 0); err != nil {
		if domain.KindOf(err) == domain.KindConflict {
			return nil, domain.Conflict("email already registered")
		}
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, hashErr(err)
	}
	u := &domain.User{Username: username, Email: email, PasswordHash: hash}
	err = s.users.CreateWithRoles(ctx, u, domain.RoleUser)
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, domain.ErrDuplicate):
		return nil, domain.Conflict("username or email already registered")
	case errors.Is(err, domain.ErrRoleMissing):
		return nil, domain.Internal("default role missing", err)
	default:
		return nil, domain.Internal("create user failed", err)
	}
}

// Login 账号不存在与密码错误返回完全相同的拒绝
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		utils.BurnPassword(password)
		return nil, domain.Unauthenticated(msgInvalidCredentials)
	}
	if err != nil {
		return nil, domain.Internal("login failed", err)
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.Unauthenticated(msgInvalidCredentials)
	}

	roles, err := s.authz.Roles(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	tok, err := s.tokens.Issue(u.Email, roles)
	if err != nil {
		return nil, domain.Internal("issue token failed", err)
	}
	return &LoginResult{AccessToken: tok, TokenType: TokenTypeBearer}, nil
}

func (s *AccountService) Me(ctx context.Context, u *domain.User) (*Profile, error) {
	rs, err := s.authz.RoleRows(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{ID: u.ID, Username: u.Username, Email: u.Email, Roles: rs}, nil
}

func (s *AccountService) UpdateEmail(ctx context.Context, u *domain.User, newEmail string) error {
	email := NormalizeEmail(newEmail)
	if email == "" {
		return domain.Validation("new email is required")
	}
	if email == u.Email {
		return nil
	}
	if err := emailFree(ctx, s.users, email, u.ID); err != nil {
		return err
	}
	if err := s.users.UpdateEmail(ctx, u.ID, email); err != nil {
		return emailUpdateErr(err)
	}
	u.Email = email
	return nil
}

func (s *AccountService) UpdatePassword(ctx context.Context, u *domain.User, oldPassword, newPassword string) error {
	if !utils.CheckPassword(oldPassword, u.PasswordHash) {
		return domain.Validation("incorrect old password")
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return hashErr(err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return domain.Internal("update password failed", err)
	}
	u.PasswordHash = hash
	return nil
}

// emailFree 邮箱被 self 以外的账号占用时返回 Conflict
func emailFree(ctx context.Context, users domain.UserRepository, email string, self uint) error {
	other, err := users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return domain.Internal("lookup email failed", err)
	case other.ID != self:
		return domain.Conflict("email already in use")
	}
	return nil
}

// hashErr 超长密码是输入错误，其余属于内部错误
func hashErr(err error) error {
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return domain.Validation("password must be at most 72 bytes")
	}
	return domain.Internal("hash password failed", err)
}

func emailUpdateErr(err error) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.Conflict("email already in use")
	}
	return domain.Internal("update email failed", err)
}
