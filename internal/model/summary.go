package model

// MetricSummary 窗口统计摘要（临时计算值，从不落库）
// 所有字段可选：无贡献样本时保持nil，调用方必须把缺失当作一等状态处理
type MetricSummary struct {
	LatencyP50Ms         *float64 `json:"latency_p50_ms,omitempty"`
	LatencyP95Ms         *float64 `json:"latency_p95_ms,omitempty"`
	LatencyP99Ms         *float64 `json:"latency_p99_ms,omitempty"`
	HTTP5xxRate          *float64 `json:"http_5xx_rate,omitempty"`
	HTTP429Rate          *float64 `json:"http_429_rate,omitempty"`
	TokensPerSec         *float64 `json:"tokens_per_sec,omitempty"`
	StreamDisconnectRate *float64 `json:"stream_disconnect_rate,omitempty"`
}

// Sample 汇总前的单条观测样本（遥测/探针事件的统一投影）
// 设计目的：observed透镜要求原始事件先合并再汇总一次，而不是对分数取平均
type Sample struct {
	LatencyMs        *float64
	HTTP5xxRate      *float64
	HTTP429Rate      *float64
	TokensPerSec     *float64
	StreamDisconnect *float64
	RetryAfterSec    *float64
	RefusalRate      *float64
	ToolSuccessRate  *float64
	SchemaValidRate  *float64
	CompletionTokens *float64
}

// Signal 四态健康信号
type Signal string

const (
	SignalHealthy  Signal = "healthy"
	SignalDegraded Signal = "degraded"
	SignalDown     Signal = "down"
	SignalNoData   Signal = "no-data"
)

// Bad 返回信号是否属于异常态（degraded/down）
func (s Signal) Bad() bool {
	return s == SignalDegraded || s == SignalDown
}

// Confidence 结论可信度分级
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Risk 预警风险分级
type Risk string

const (
	RiskElevated Risk = "elevated"
	RiskHigh     Risk = "high"
)
