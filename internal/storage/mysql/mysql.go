// Package mysql MySQL后端：连接、连接池与建表
package mysql

import (
	"database/sql"
	"fmt"
	"strings"

	"aipulse/internal/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// Open 打开MySQL连接并完成初始化（连接池、建表）
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("MySQL DSN不能为空")
	}

	// 强制parseTime，时间列统一按Unix时间戳BIGINT存储但保持驱动行为一致
	if !strings.Contains(dsn, "parseTime") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开MySQL连接失败: %w", err)
	}

	db.SetMaxOpenConns(config.MySQLMaxOpenConns)
	db.SetMaxIdleConns(config.MySQLMaxIdleConns)
	db.SetConnMaxLifetime(config.MySQLConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("MySQL连接测试失败: %w", err)
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("MySQL建表失败: %w", err)
	}
	return db, nil
}

// Migrate 创建事件表/探针表/官方状态表及索引（幂等）
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			time BIGINT NOT NULL,
			provider VARCHAR(64) NOT NULL,
			model VARCHAR(128) NOT NULL DEFAULT '',
			endpoint VARCHAR(128) NOT NULL DEFAULT '',
			region VARCHAR(64) NOT NULL DEFAULT '',
			tier VARCHAR(64) NOT NULL DEFAULT '',
			streaming TINYINT NOT NULL DEFAULT 0,
			latency_ms DOUBLE NULL,
			http_5xx_rate DOUBLE NULL,
			http_429_rate DOUBLE NULL,
			retry_after_seconds DOUBLE NULL,
			throttle_reason VARCHAR(128) NOT NULL DEFAULT '',
			tokens_per_sec DOUBLE NULL,
			refusal_rate DOUBLE NULL,
			tool_success_rate DOUBLE NULL,
			schema_valid_rate DOUBLE NULL,
			completion_tokens DOUBLE NULL,
			stream_disconnected TINYINT NULL,
			source VARCHAR(16) NOT NULL,
			client_hash VARCHAR(64) NOT NULL DEFAULT '',
			account_hash VARCHAR(64) NOT NULL DEFAULT '',
			INDEX idx_events_provider_time (provider, time),
			INDEX idx_events_time (time)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS probe_events (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			time BIGINT NOT NULL,
			provider VARCHAR(64) NOT NULL,
			model VARCHAR(128) NOT NULL DEFAULT '',
			endpoint VARCHAR(128) NOT NULL DEFAULT '',
			region VARCHAR(64) NOT NULL DEFAULT '',
			tier VARCHAR(64) NOT NULL DEFAULT '',
			streaming TINYINT NOT NULL DEFAULT 0,
			latency_p50_ms DOUBLE NULL,
			latency_p95_ms DOUBLE NULL,
			latency_p99_ms DOUBLE NULL,
			error_code VARCHAR(64) NOT NULL DEFAULT '',
			INDEX idx_probe_events_provider_time (provider, time)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS official_status (
			provider VARCHAR(64) PRIMARY KEY,
			status VARCHAR(32) NOT NULL,
			description VARCHAR(512) NOT NULL DEFAULT '',
			fetched_at BIGINT NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
