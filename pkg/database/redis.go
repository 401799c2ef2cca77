package database

import (
	"context"
	"fmt"
	"study_portal_backend/internal/config"
	"study_portal_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const pingAttempts = 3

// InitRedis 创建客户端并确认可连通，启动时 Redis 可能比服务晚就绪，因此重试几次
func InitRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		DialTimeout:  dialTimeout,
	})

	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			logger.Log.Info("Redis connection established",
				zap.String("addr", rdb.Options().Addr),
				zap.Int("db", cfg.DB),
				zap.Int("pool_size", rdb.Options().PoolSize),
			)
			return rdb, nil
		}
		logger.Log.Warn("Redis ping failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt == pingAttempts {
			break
		}

		select {
		case <-ctx.Done():
			rdb.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}

	rdb.Close()
	return nil, fmt.Errorf("redis %s unreachable: %w", rdb.Options().Addr, err)
}
