package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-gin-gorm-messenger/internal/bootstrap"
	"go-gin-gorm-messenger/internal/core/config"
)

// 初始化角色与管理员账号；可重复执行
func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.DB.AutoMigrate = true
	l, cleanup := bootstrap.Logger(cfg)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, l)
	if err != nil {
		l.Fatal("bootstrap failed", zap.Error(err))
	}
	defer app.Close()

	if err := app.Seed(ctx, cfg.Seed); err != nil {
		l.Fatal("seed failed", zap.Error(err))
	}
	l.Info("seed done", zap.String("admin", cfg.Seed.AdminEmail))
}
