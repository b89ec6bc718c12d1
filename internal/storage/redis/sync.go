package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"aipulse/internal/config"
	"aipulse/internal/model"
)

// StatusSync 官方状态快照的Redis同步器
// 数据库为空（新部署/磁盘丢失）时可在启动期从Redis恢复最近一次快照
type StatusSync struct {
	client  *redis.Client
	enabled bool
	key     string // 存储完整JSON数组
	timeout time.Duration
}

// NewStatusSync 创建Redis同步客户端（redisURL为空时返回禁用实例）
func NewStatusSync(redisURL string) (*StatusSync, error) {
	if redisURL == "" {
		return &StatusSync{enabled: false}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	// 设置连接池参数优化性能
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.ConnMaxLifetime = 5 * time.Minute
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &StatusSync{
		client:  client,
		enabled: true,
		key:     config.RedisStatusKey,
		timeout: 2 * time.Second,
	}, nil
}

// Close 关闭Redis连接
func (rs *StatusSync) Close() error {
	if !rs.enabled {
		return nil
	}
	return rs.client.Close()
}

// IsEnabled 检查Redis同步是否启用
func (rs *StatusSync) IsEnabled() bool {
	return rs.enabled
}

// SyncAllStatuses 全量同步官方状态快照到Redis（SET覆盖，原子操作）
func (rs *StatusSync) SyncAllStatuses(ctx context.Context, statuses []*model.OfficialStatus) error {
	if !rs.enabled {
		return nil
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, rs.timeout*2)
	defer cancel()

	data, err := sonic.Marshal(statuses)
	if err != nil {
		return fmt.Errorf("marshal official statuses: %w", err)
	}

	return rs.client.Set(ctxWithTimeout, rs.key, data, 0).Err()
}

// LoadStatusesFromRedis 从Redis加载官方状态快照
func (rs *StatusSync) LoadStatusesFromRedis(ctx context.Context) ([]*model.OfficialStatus, error) {
	if !rs.enabled {
		return nil, nil
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, rs.timeout*2)
	defer cancel()

	data, err := rs.client.Get(ctxWithTimeout, rs.key).Result()
	if err != nil {
		if err == redis.Nil {
			return []*model.OfficialStatus{}, nil // Key不存在，返回空数组
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var statuses []*model.OfficialStatus
	if err := sonic.Unmarshal([]byte(data), &statuses); err != nil {
		return nil, fmt.Errorf("unmarshal official statuses json: %w", err)
	}

	if statuses == nil {
		return []*model.OfficialStatus{}, nil
	}
	return statuses, nil
}
