package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"go-gin-gorm-messenger/internal/core/auth"
	"go-gin-gorm-messenger/internal/core/cache"
	"go-gin-gorm-messenger/internal/core/config"
	"go-gin-gorm-messenger/internal/core/database"
	"go-gin-gorm-messenger/internal/core/logger"
	"go-gin-gorm-messenger/internal/repo"
	"go-gin-gorm-messenger/internal/service"
	"go-gin-gorm-messenger/internal/transport/http/router"
)

// Logger 按配置构建 zap（可选文件切割），并把标准库 log 转进 zap
func Logger(cfg *config.Config) (*zap.Logger, func()) {
	l, cleanup := logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
		Filename:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	undo := logger.RedirectStdLog(l, zapcore.InfoLevel)
	return l, func() {
		undo()
		cleanup()
	}
}

func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             l,
	})
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		l.Info("automigrate done")
	}
	return db, nil
}

// App 进程内共享的全部依赖
type App struct {
	DB     *gorm.DB
	Cache  *cache.Cache // 未配置 redis 时为 nil
	Seeder *service.Seeder
	Deps   router.Deps
}

func (a *App) Close() {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// New 组装 repo → service → router 依赖；redis 连不上只告警，消息列表直接回源
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	db, err := OpenDB(cfg, l)
	if err != nil {
		return nil, err
	}
	jwter, err := auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.Issuer,
		time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute)
	if err != nil {
		return nil, err
	}

	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c, err = cache.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			l.Warn("redis unavailable, message cache disabled", zap.Error(err))
			c = nil
		}
	}

	users, roles, msgs := repo.NewUserRepo(db), repo.NewRoleRepo(db), repo.NewMessageRepo(db)
	authz := service.NewAuthorizer(roles)
	feed := service.NewMessageFeed(c, time.Duration(cfg.Redis.MessageCacheTTLSec)*time.Second, l.Named("feed"))
	messages := service.NewMessageService(msgs, authz, feed)

	return &App{
		DB:     db,
		Cache:  c,
		Seeder: service.NewSeeder(users, roles, l.Named("seed")),
		Deps: router.Deps{
			Log:      l,
			JWT:      jwter,
			Identity: service.NewIdentityResolver(users),
			Accounts: service.NewAccountService(users, authz, jwter),
			Messages: messages,
			Admin:    service.NewAdminService(users, authz, messages),
			Limits: router.Limits{
				MaxInFlight: int64(cfg.App.HTTP.MaxInFlight),
				Timeout:     time.Duration(cfg.App.HTTP.WriteTimeoutSec) * time.Second,
			},
		},
	}, nil
}

func (a *App) Seed(ctx context.Context, s config.Seed) error {
	return a.Seeder.Seed(ctx, service.AdminAccount{
		Username: s.AdminUsername,
		Email:    s.AdminEmail,
		Password: s.AdminPassword,
	})
}
