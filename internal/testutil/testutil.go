package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-gin-gorm-messenger/internal/core/database"
	"go-gin-gorm-messenger/internal/domain"
	"go-gin-gorm-messenger/internal/repo"
)

// OpenDB 每个测试一个独立的内存 sqlite 库，并完成建表。
// 单连接：事务内不要再用外层 db。
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedRoles 插入 admin / user 两个角色
func SeedRoles(t *testing.T, db *gorm.DB) {
	t.Helper()
	roles := repo.NewRoleRepo(db)
	for _, name := range []string{domain.RoleAdmin, domain.RoleUser} {
		_, err := roles.Ensure(context.Background(), name)
		require.NoError(t, err)
	}
}
