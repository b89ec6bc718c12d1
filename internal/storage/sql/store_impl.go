package sql

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"aipulse/internal/errors"
	"aipulse/internal/model"
	"aipulse/internal/util"
)

// RedisSync Redis同步接口
// 官方状态快照写入Redis，重启后可在数据库为空时恢复
type RedisSync interface {
	IsEnabled() bool
	SyncAllStatuses(ctx context.Context, statuses []*model.OfficialStatus) error
	LoadStatusesFromRedis(ctx context.Context) ([]*model.OfficialStatus, error)
}

// SQLStore 通用SQL存储实现
// 支持 SQLite 和 MySQL（时间/布尔值存储格式完全一致，无需方言抽象）
type SQLStore struct {
	db *sql.DB

	// 异步Redis同步机制（性能优化: 避免同步等待）
	syncCh chan struct{} // 同步触发信号（容量1，去重合并多个请求）
	done   chan struct{} // 优雅关闭信号

	redisSync RedisSync // Redis同步接口（依赖注入，支持测试和扩展）

	// 优雅关闭：等待后台worker
	wg sync.WaitGroup
}

// NewSQLStore 创建通用SQL存储实例
// db: 数据库连接（由调用方初始化并完成建表）
// redisSync: Redis同步器（可选，测试时可传nil）
func NewSQLStore(db *sql.DB, redisSync RedisSync) *SQLStore {
	s := &SQLStore{
		db:        db,
		syncCh:    make(chan struct{}, 1),
		done:      make(chan struct{}),
		redisSync: redisSync,
	}

	// 启动Redis同步worker（仅在redisSync启用时）
	if redisSync != nil && redisSync.IsEnabled() {
		s.wg.Add(1)
		go s.redisSyncWorker()
	}

	return s
}

// IsRedisEnabled 检查Redis是否启用
func (s *SQLStore) IsRedisEnabled() bool {
	return s.redisSync != nil && s.redisSync.IsEnabled()
}

// Close 关闭存储（优雅关闭）
func (s *SQLStore) Close() error {
	// 1. 通知后台worker退出
	close(s.done)

	// 2. 等待worker完成
	s.wg.Wait()

	// 3. 关闭数据库连接
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CleanupEventsBefore 清理保留期之外的遥测/探针事件
func (s *SQLStore) CleanupEventsBefore(ctx context.Context, cutoff time.Time) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE time < ?", timeToUnix(cutoff)); err != nil {
		return errors.DBDeleteError("events", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM probe_events WHERE time < ?", timeToUnix(cutoff)); err != nil {
		return errors.DBDeleteError("probe_events", err)
	}
	return nil
}

// ListProviders 列出窗口内出现过的提供商（遥测∪探针，去重排序由SQL保证）
func (s *SQLStore) ListProviders(ctx context.Context, since time.Time) ([]string, error) {
	query := `SELECT provider FROM events WHERE time >= ?
		UNION SELECT provider FROM probe_events WHERE time >= ?
		ORDER BY provider`
	ts := timeToUnix(since)
	rows, err := s.db.QueryContext(ctx, query, ts, ts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// triggerRedisSync 触发异步Redis同步（非阻塞，信号去重）
func (s *SQLStore) triggerRedisSync() {
	if !s.IsRedisEnabled() {
		return
	}
	select {
	case s.syncCh <- struct{}{}:
	default:
		// 已有待处理的同步信号，合并
	}
}

// redisSyncWorker 后台同步worker：收到信号后将全量官方状态快照写入Redis
func (s *SQLStore) redisSyncWorker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case <-s.syncCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			statuses, err := s.ListOfficialStatuses(ctx)
			if err == nil {
				err = s.redisSync.SyncAllStatuses(ctx, statuses)
			}
			cancel()
			if err != nil {
				util.SafePrintf("[WARN] Redis状态快照同步失败: %v", err)
			}
		}
	}
}

// RestoreStatusesFromRedis 启动时从Redis恢复官方状态快照
// 仅在数据库中没有任何状态记录时执行，避免覆盖新数据
func (s *SQLStore) RestoreStatusesFromRedis(ctx context.Context) error {
	if !s.IsRedisEnabled() {
		return nil
	}

	existing, err := s.ListOfficialStatuses(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	statuses, err := s.redisSync.LoadStatusesFromRedis(ctx)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		if err := s.UpsertOfficialStatus(ctx, st); err != nil {
			return err
		}
	}
	if len(statuses) > 0 {
		util.SafePrintf("[INFO] 已从Redis恢复 %d 条官方状态快照", len(statuses))
	}
	return nil
}
