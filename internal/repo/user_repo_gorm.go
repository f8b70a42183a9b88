package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-gin-gorm-messenger/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) CreateWithRoles(ctx context.Context, u *domain.User, roles ...string) error {
	const op = "repo.UserRepo.CreateWithRoles"
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := roleIDs(tx, roles)
		if err != nil {
			return err
		}
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		for _, rid := range ids {
			if err := tx.Create(&domain.UserRole{UserID: u.ID, RoleID: rid}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		u.ID = 0 // 事务已回滚
	}
	return wrap(op, err)
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, wrap("repo.UserRepo.FindByID", err)
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, wrap("repo.UserRepo.FindByEmail", err)
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, offset, limit int, q string) ([]domain.User, int64, error) {
	const op = "repo.UserRepo.List"
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	if s := strings.TrimSpace(q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("email LIKE ? OR username LIKE ?", like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, wrap(op, err)
	}
	var users []domain.User
	if err := tx.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, wrap(op, err)
	}
	return users, total, nil
}

func (r *UserRepo) UpdateEmail(ctx context.Context, id uint, email string) error {
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("email", email).Error
	return wrap("repo.UserRepo.UpdateEmail", err)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uint, hash string) error {
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("password_hash", hash).Error
	return wrap("repo.UserRepo.UpdatePassword", err)
}

func (r *UserRepo) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.UserRole{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return wrap("repo.UserRepo.Delete", err)
}

// roleIDs 按名字取角色 id，缺任何一个返回 ErrRoleMissing
func roleIDs(tx *gorm.DB, names []string) ([]uint, error) {
	ids := make([]uint, 0, len(names))
	for _, n := range names {
		var role domain.Role
		err := tx.Where("name = ?", n).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoleMissing
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, role.ID)
	}
	return ids, nil
}
