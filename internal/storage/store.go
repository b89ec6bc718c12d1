package storage

import (
	"context"
	"time"

	"aipulse/internal/model"
)

// ============================================================================
// 子接口定义（ISP原则：接口隔离）
// ============================================================================

// TelemetryStore 遥测事件存取接口
// ListTelemetry 的第二个返回值表示本次查询是否走了降级扫描路径：
// 窗口化索引查询失败时，回落为按写入顺序扫描最近N条再内存过滤，
// 结果可用但必须向消费方如实标注
type TelemetryStore interface {
	AddTelemetry(ctx context.Context, e *model.TelemetryEvent) error
	BatchAddTelemetry(ctx context.Context, events []*model.TelemetryEvent) error
	ListTelemetry(ctx context.Context, filter *model.EventFilter) ([]*model.TelemetryEvent, bool, error)
}

// ProbeStore 探针事件存取接口
type ProbeStore interface {
	AddProbe(ctx context.Context, e *model.ProbeEvent) error
	ListProbes(ctx context.Context, filter *model.EventFilter) ([]*model.ProbeEvent, bool, error)
}

// StatusStore 官方状态页快照存取接口
type StatusStore interface {
	UpsertOfficialStatus(ctx context.Context, s *model.OfficialStatus) error
	GetOfficialStatus(ctx context.Context, provider string) (*model.OfficialStatus, error)
	ListOfficialStatuses(ctx context.Context) ([]*model.OfficialStatus, error)
}

// ============================================================================
// 组合接口
// ============================================================================

// Store 数据持久化接口（组合所有子接口）
// 设计原则：依赖倒置原则（DIP），业务逻辑依赖接口而非具体实现
type Store interface {
	TelemetryStore
	ProbeStore
	StatusStore

	// ListProviders 列出事件中出现过的提供商（遥测∪探针，去重）
	ListProviders(ctx context.Context, since time.Time) ([]string, error)

	// CleanupEventsBefore 清理保留期之外的事件
	CleanupEventsBefore(ctx context.Context, cutoff time.Time) error

	// IsRedisEnabled Redis快照同步是否启用
	IsRedisEnabled() bool

	// Close 关闭数据库连接并释放资源
	Close() error
}
