package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"go-gin-gorm-messenger/internal/core/cache"
	"go-gin-gorm-messenger/internal/domain"
)

const (
	feedKey    = "messages:all"
	feedGenKey = "messages:gen"
)

// MessageFeed 消息列表的 redis 缓存；未配置 redis 时直接回源
type MessageFeed struct {
	c   *cache.Cache
	ttl time.Duration
	log *zap.Logger
}

func NewMessageFeed(c *cache.Cache, ttl time.Duration, log *zap.Logger) *MessageFeed {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &MessageFeed{c: c, ttl: ttl, log: log}
}

func (f *MessageFeed) Load(ctx context.Context, load func(context.Context) ([]domain.MessageView, error)) ([]domain.MessageView, error) {
	if f == nil || f.c == nil {
		return load(ctx)
	}
	// 先取代号再回源：回源期间发生的写入会推进代号，旧快照只会落在废弃的键上
	gen, err := f.c.Generation(ctx, feedGenKey)
	if err != nil {
		f.log.Warn("read message feed generation failed", zap.Error(err))
		return load(ctx)
	}
	return cache.GetOrLoadJSON(f.c, ctx, feedKeyFor(gen), f.ttl, load)
}

func feedKeyFor(gen int64) string {
	return feedKey + ":" + strconv.FormatInt(gen, 10)
}

func (f *MessageFeed) Invalidate(ctx context.Context) {
	if f == nil || f.c == nil {
		return
	}
	if err := f.c.Bump(ctx, feedGenKey); err != nil {
		f.log.Warn("invalidate message feed failed", zap.Error(err))
	}
}
