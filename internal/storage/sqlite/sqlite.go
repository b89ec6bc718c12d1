// Package sqlite SQLite后端：建库、PRAGMA调优与建表
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"aipulse/internal/config"

	_ "modernc.org/sqlite" // SQLite driver (CGO-free)
)

// Open 打开SQLite数据库并完成初始化（目录创建、PRAGMA、建表）
func Open(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
	}

	// WAL模式：单写多读，busy_timeout避免锁竞争直接报错
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开SQLite连接失败: %w", err)
	}

	db.SetMaxOpenConns(config.SQLiteMaxOpenConns)
	db.SetMaxIdleConns(config.SQLiteMaxIdleConns)
	db.SetConnMaxLifetime(config.SQLiteConnMaxLifetime)

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("SQLite建表失败: %w", err)
	}
	return db, nil
}

// Migrate 创建事件表/探针表/官方状态表及索引（幂等）
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			time INTEGER NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			endpoint TEXT NOT NULL DEFAULT '',
			region TEXT NOT NULL DEFAULT '',
			tier TEXT NOT NULL DEFAULT '',
			streaming INTEGER NOT NULL DEFAULT 0,
			latency_ms REAL,
			http_5xx_rate REAL,
			http_429_rate REAL,
			retry_after_seconds REAL,
			throttle_reason TEXT NOT NULL DEFAULT '',
			tokens_per_sec REAL,
			refusal_rate REAL,
			tool_success_rate REAL,
			schema_valid_rate REAL,
			completion_tokens REAL,
			stream_disconnected INTEGER,
			source TEXT NOT NULL,
			client_hash TEXT NOT NULL DEFAULT '',
			account_hash TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_provider_time ON events(provider, time)`,
		`CREATE INDEX IF NOT EXISTS idx_events_time ON events(time)`,
		`CREATE TABLE IF NOT EXISTS probe_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			time INTEGER NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			endpoint TEXT NOT NULL DEFAULT '',
			region TEXT NOT NULL DEFAULT '',
			tier TEXT NOT NULL DEFAULT '',
			streaming INTEGER NOT NULL DEFAULT 0,
			latency_p50_ms REAL,
			latency_p95_ms REAL,
			latency_p99_ms REAL,
			error_code TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_probe_events_provider_time ON probe_events(provider, time)`,
		`CREATE TABLE IF NOT EXISTS official_status (
			provider TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			fetched_at INTEGER NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
