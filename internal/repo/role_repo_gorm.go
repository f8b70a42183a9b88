package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-gorm-messenger/internal/domain"
)

type RoleRepo struct{ db *gorm.DB }

func NewRoleRepo(db *gorm.DB) *RoleRepo { return &RoleRepo{db: db} }

func (r *RoleRepo) Ensure(ctx context.Context, name string) (*domain.Role, error) {
	const op = "repo.RoleRepo.Ensure"
	var role domain.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err == nil {
		return &role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrap(op, err)
	}
	role = domain.Role{Name: name}
	if err := r.db.WithContext(ctx).Create(&role).Error; err != nil {
		// 并发兜底：唯一冲突 → 再查一次
		if werr := wrap(op, err); errors.Is(werr, domain.ErrDuplicate) {
			role = domain.Role{}
			if e2 := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; e2 != nil {
				return nil, wrap(op, e2)
			}
			return &role, nil
		}
		return nil, wrap(op, err)
	}
	return &role, nil
}

func (r *RoleRepo) RolesOf(ctx context.Context, userID uint) ([]domain.Role, error) {
	var roles []domain.Role
	err := r.db.WithContext(ctx).
		Model(&domain.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.id ASC").
		Find(&roles).Error
	if err != nil {
		return nil, wrap("repo.RoleRepo.RolesOf", err)
	}
	return roles, nil
}

// Assign 幂等：已存在的 (user, role) 忽略
func (r *RoleRepo) Assign(ctx context.Context, userID uint, roleNames ...string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := roleIDs(tx, roleNames)
		if err != nil {
			return err
		}
		for _, rid := range ids {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&domain.UserRole{UserID: userID, RoleID: rid}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	return wrap("repo.RoleRepo.Assign", err)
}

func (r *RoleRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Role{}).Count(&n).Error; err != nil {
		return 0, wrap("repo.RoleRepo.Count", err)
	}
	return n, nil
}
