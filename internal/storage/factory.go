package storage

import (
	"context"
	"fmt"
	"log"

	"aipulse/internal/config"
	"aipulse/internal/storage/mysql"
	redissync "aipulse/internal/storage/redis"
	sqlstore "aipulse/internal/storage/sql"
	"aipulse/internal/storage/sqlite"
)

// NewStore 根据配置创建存储实例（工厂模式）
//
// 两种模式：
//   - 纯 SQLite 模式：AIPULSE_MYSQL_DSN 不设置（默认，单机部署）
//   - 纯 MySQL 模式：AIPULSE_MYSQL_DSN 设置（托管生产环境）
//
// REDIS_URL 设置时额外启用官方状态快照的异步Redis同步与启动期恢复
func NewStore(cfg *config.EnvConfig) (Store, error) {
	// Redis同步器（可选）
	redisSync, err := redissync.NewStatusSync(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("Redis初始化失败: %w", err)
	}

	var store *sqlstore.SQLStore
	if cfg.MySQLDSN != "" {
		db, err := mysql.Open(cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("MySQL 初始化失败: %w", err)
		}
		store = sqlstore.NewSQLStore(db, redisSync)
		log.Print("使用 MySQL 存储")
	} else {
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("SQLite 初始化失败: %w", err)
		}
		store = sqlstore.NewSQLStore(db, redisSync)
		log.Printf("使用 SQLite 存储: %s", cfg.SQLitePath)
	}

	// 启动期恢复：数据库为空时从Redis拉回官方状态快照
	if store.IsRedisEnabled() {
		if err := store.RestoreStatusesFromRedis(context.Background()); err != nil {
			log.Printf("[WARN] Redis状态恢复失败（继续启动）: %v", err)
		}
	}

	return store, nil
}

// CreateSQLiteStore 直接创建SQLite存储（无Redis同步，测试与工具场景使用）
func CreateSQLiteStore(dbPath string) (Store, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return sqlstore.NewSQLStore(db, nil), nil
}
