package domain

import (
	"context"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:20;not null" json:"name"`
}

// UserRole 复合主键保证 (user, role) 不重复
type UserRole struct {
	UserID uint `gorm:"primaryKey;autoIncrement:false"`
	RoleID uint `gorm:"primaryKey;autoIncrement:false"`
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Role   Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
}

type UserRepository interface {
	// CreateWithRoles 在一个事务里插入用户并分配角色；任一角色不存在返回 ErrRoleMissing
	CreateWithRoles(ctx context.Context, u *User, roles ...string) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, offset, limit int, q string) ([]User, int64, error)
	UpdateEmail(ctx context.Context, id uint, email string) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	// Delete 显式删除该用户的消息与角色分配，再删用户
	Delete(ctx context.Context, id uint) error
}

type RoleRepository interface {
	// Ensure 不存在则创建，返回角色行
	Ensure(ctx context.Context, name string) (*Role, error)
	RolesOf(ctx context.Context, userID uint) ([]Role, error)
	Assign(ctx context.Context, userID uint, roleNames ...string) error
	Count(ctx context.Context) (int64, error)
}
