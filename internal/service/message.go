package service

import (
	"context"
	"errors"
	"strings"

	"go-gin-gorm-messenger/internal/domain"
)

type MessageService struct {
	msgs  domain.MessageRepository
	authz *Authorizer
	feed  *MessageFeed
}

func NewMessageService(msgs domain.MessageRepository, authz *Authorizer, feed *MessageFeed) *MessageService {
	return &MessageService{msgs: msgs, authz: authz, feed: feed}
}

func (s *MessageService) Create(ctx context.Context, u *domain.User, content string) (*domain.Message, error) {
	if u == nil {
		return nil, domain.Unauthenticated("unauthorized")
	}
	if strings.TrimSpace(content) == "" {
		return nil, domain.Validation("content is required")
	}
	m := &domain.Message{UserID: u.ID, Content: content}
	if err := s.msgs.Create(ctx, m); err != nil {
		return nil, domain.Internal("create message failed", err)
	}
	s.feed.Invalidate(ctx)
	return m, nil
}

func (s *MessageService) List(ctx context.Context) ([]domain.MessageView, error) {
	out, err := s.feed.Load(ctx, s.msgs.ListWithAuthor)
	if err != nil {
		return nil, domain.Internal("list messages failed", err)
	}
	return out, nil
}

// Update 作者本人或 admin 可改
func (s *MessageService) Update(ctx context.Context, u *domain.User, id uint, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.Validation("content is required")
	}
	if _, err := s.owned(ctx, u, id); err != nil {
		return nil, err
	}
	if err := s.msgs.UpdateContent(ctx, id, content); err != nil {
		return nil, domain.Internal("update message failed", err)
	}
	s.feed.Invalidate(ctx)
	return s.find(ctx, id)
}

func (s *MessageService) Delete(ctx context.Context, u *domain.User, id uint) error {
	if _, err := s.owned(ctx, u, id); err != nil {
		return err
	}
	return s.remove(ctx, id)
}

// owned 先确认消息存在，再做归属/角色判定
func (s *MessageService) owned(ctx context.Context, u *domain.User, id uint) (*domain.Message, error) {
	if u == nil {
		return nil, domain.Unauthenticated("unauthorized")
	}
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireOwnerOrRole(ctx, u, m.UserID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MessageService) find(ctx context.Context, id uint) (*domain.Message, error) {
	m, err := s.msgs.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("message not found")
	}
	if err != nil {
		return nil, domain.Internal("load message failed", err)
	}
	return m, nil
}

func (s *MessageService) remove(ctx context.Context, id uint) error {
	err := s.msgs.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("message not found")
	}
	if err != nil {
		return domain.Internal("delete message failed", err)
	}
	s.feed.Invalidate(ctx)
	return nil
}
