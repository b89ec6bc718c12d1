package config

import "time"

// 信号判定阈值（固定阈值，随证据包返回给消费方审计）
const (
	// Down5xxRate 5xx错误率达到此值判定为down
	Down5xxRate = 0.05

	// Degraded429Rate 429限流率达到此值判定为degraded
	Degraded429Rate = 0.08

	// DegradedLatencyP95Ms p95延迟达到此值判定为degraded
	DegradedLatencyP95Ms = 4000.0

	// FallbackLatencyP95Ms 降级预案的延迟触发阈值（低于信号阈值，提前给出预案）
	FallbackLatencyP95Ms = 2000.0
)

// 可信度分级参数
const (
	// HighConfidenceSamples high要求的最小样本量（还需要多于一个独立来源）
	HighConfidenceSamples = 10

	// LensMediumSampleFloor 透镜/矩阵调用点的medium样本下限
	// 注意：与StalenessMediumSampleFloor刻意不同，各调用点独立定义自己的下限
	LensMediumSampleFloor = 4

	// StalenessMediumSampleFloor 滞后检测调用点的medium样本下限
	StalenessMediumSampleFloor = 5

	// StalenessMinSamples 滞后检测的最小证据量，低于此值直接跳过该提供商
	StalenessMinSamples = 3
)

// 查询窗口与行数上限
const (
	// DefaultWindowMinutes 默认统计窗口
	DefaultWindowMinutes = 60

	// MaxWindowMinutes 窗口上限（防止全表扫描式查询）
	MaxWindowMinutes = 24 * 60

	// DefaultQueryLimit 带窗口查询的行数上限
	DefaultQueryLimit = 500

	// DegradedScanLimit 索引缺失降级扫描的行数上限（按写入顺序取最近N条）
	DegradedScanLimit = 200

	// BaselineDays 吞吐基线的长窗口天数
	BaselineDays = 7
)

// 降级策略固定参数（防振荡，执行是消费方的责任）
const (
	PolicyCooldownMinutes   = 5
	PolicyHysteresisMinutes = 2
)

// 事件保留与清理
const (
	// EventRetentionDays 事件保留天数，超期由清理循环删除
	EventRetentionDays = 14

	// CleanupInterval 清理循环间隔
	CleanupInterval = 1 * time.Hour
)

// HTTP服务配置
const (
	// DefaultPort 默认监听端口
	DefaultPort = ":8080"

	// ShutdownTimeout 优雅关闭等待时间
	ShutdownTimeout = 5 * time.Second
)

// SQLite连接池配置（WAL模式：1写+N读）
const (
	SQLiteMaxOpenConns    = 5
	SQLiteMaxIdleConns    = 5
	SQLiteConnMaxLifetime = 5 * time.Minute
)

// MySQL连接池配置
const (
	MySQLMaxOpenConns    = 10
	MySQLMaxIdleConns    = 5
	MySQLConnMaxLifetime = 5 * time.Minute
)

// 日志消毒配置
const (
	// LogMaxMessageLength 单条日志最大长度，防止日志爆炸
	LogMaxMessageLength = 2048
)

// Redis同步配置
const (
	// RedisStatusKey 官方状态快照的Redis hash key
	RedisStatusKey = "aipulse:status"
)

// ProbeErrorDenylist 探针错误码黑名单
// 这些错误码代表探针自身的认证/配置问题，不是提供商故障，
// 必须在信号计算前剔除，否则探针配置错误会被误报为服务降级
var ProbeErrorDenylist = map[string]bool{
	"http-401": true,
	"http-403": true,
	"http-404": true,
}
