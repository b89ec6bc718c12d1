package model

import (
	"strconv"
	"time"
)

// JSONTime 自定义时间类型，使用Unix时间戳进行JSON序列化
// 设计原则：与数据库格式统一，减少转换复杂度（KISS原则）
type JSONTime struct {
	time.Time
}

// MarshalJSON 实现JSON序列化
func (jt JSONTime) MarshalJSON() ([]byte, error) {
	if jt.Time.IsZero() {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatInt(jt.Time.Unix(), 10)), nil
}

// UnmarshalJSON 实现JSON反序列化
func (jt *JSONTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == "0" {
		jt.Time = time.Time{}
		return nil
	}
	ts, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	jt.Time = time.Unix(ts, 0)
	return nil
}

// 事件来源标签
const (
	SourceCrowd     = "crowd"     // 众包客户端上报
	SourceAccount   = "account"   // 认证账号上报
	SourceSynthetic = "synthetic" // 合成探针
	SourceOfficial  = "official"  // 官方状态页
)

// TelemetryEvent 一条众包/账号层的遥测观测记录
// 写入后不可变：核心只读，保留/删除由外部策略负责
type TelemetryEvent struct {
	ID        int64    `json:"id"`
	Time      JSONTime `json:"time"`
	Provider  string   `json:"provider"`
	Model     string   `json:"model,omitempty"`
	Endpoint  string   `json:"endpoint,omitempty"`
	Region    string   `json:"region,omitempty"`
	Tier      string   `json:"tier"`
	Streaming bool     `json:"streaming"`

	// 延迟/错误率指标（缺失字段保持nil，不伪造零值）
	LatencyMs         *float64 `json:"latency_ms,omitempty"`
	HTTP5xxRate       *float64 `json:"http_5xx_rate,omitempty"` // 0-1
	HTTP429Rate       *float64 `json:"http_429_rate,omitempty"` // 0-1
	RetryAfterSeconds *float64 `json:"retry_after_seconds,omitempty"`
	ThrottleReason    string   `json:"throttle_reason,omitempty"`

	// 吞吐指标
	TokensPerSec *float64 `json:"tokens_per_sec,omitempty"`

	// 行为指标
	RefusalRate        *float64 `json:"refusal_rate,omitempty"`
	ToolSuccessRate    *float64 `json:"tool_success_rate,omitempty"`
	SchemaValidRate    *float64 `json:"schema_valid_rate,omitempty"`
	CompletionTokens   *float64 `json:"completion_tokens,omitempty"`
	StreamDisconnected *bool    `json:"stream_disconnected,omitempty"`

	// 来源与匿名化标识（ClientHash/AccountHash为加盐单向哈希，绝不存原始ID）
	Source      string `json:"source"` // crowd | account
	ClientHash  string `json:"client_hash,omitempty"`
	AccountHash string `json:"account_hash,omitempty"`
}

// ProbeEvent 一条合成探针对真实端点的主动观测记录
type ProbeEvent struct {
	ID        int64    `json:"id"`
	Time      JSONTime `json:"time"`
	Provider  string   `json:"provider"`
	Model     string   `json:"model,omitempty"`
	Endpoint  string   `json:"endpoint,omitempty"`
	Region    string   `json:"region,omitempty"`
	Tier      string   `json:"tier"`
	Streaming bool     `json:"streaming"`

	LatencyP50Ms *float64 `json:"latency_p50_ms,omitempty"`
	LatencyP95Ms *float64 `json:"latency_p95_ms,omitempty"`
	LatencyP99Ms *float64 `json:"latency_p99_ms,omitempty"`

	// ErrorCode 为空表示探针成功
	// 取值：http-<status> | semantic_mismatch | timeout | network
	ErrorCode string `json:"error_code,omitempty"`
}

// EventFilter 事件查询过滤条件
// 空字符串字段表示不过滤；窗口由 Since 表达
type EventFilter struct {
	Provider    string
	Source      string // crowd | account（仅遥测事件有效）
	AccountHash string
	Since       time.Time
	Limit       int
}
