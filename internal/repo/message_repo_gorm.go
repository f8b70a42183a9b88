package repo

import (
	"context"

	"gorm.io/gorm"

	"go-gin-gorm-messenger/internal/domain"
)

type MessageRepo struct{ db *gorm.DB }

func NewMessageRepo(db *gorm.DB) *MessageRepo { return &MessageRepo{db: db} }

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	return wrap("repo.MessageRepo.Create", r.db.WithContext(ctx).Create(m).Error)
}

func (r *MessageRepo) FindByID(ctx context.Context, id uint) (*domain.Message, error) {
	var m domain.Message
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, wrap("repo.MessageRepo.FindByID", err)
	}
	return &m, nil
}

func (r *MessageRepo) ListWithAuthor(ctx context.Context) ([]domain.MessageView, error) {
	out := make([]domain.MessageView, 0)
	err := r.db.WithContext(ctx).
		Table("messages").
		Select("messages.id, messages.user_id, users.username, messages.content, messages.created_at, messages.updated_at").
		Joins("JOIN users ON users.id = messages.user_id").
		Order("messages.created_at ASC, messages.id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, wrap("repo.MessageRepo.ListWithAuthor", err)
	}
	return out, nil
}

func (r *MessageRepo) UpdateContent(ctx context.Context, id uint, content string) error {
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("id = ?", id).Update("content", content).Error
	return wrap("repo.MessageRepo.UpdateContent", err)
}

func (r *MessageRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Message{})
	if res.Error != nil {
		return wrap("repo.MessageRepo.Delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("repo.MessageRepo.Delete", gorm.ErrRecordNotFound)
	}
	return nil
}
