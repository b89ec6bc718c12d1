package model

// Fingerprint 事件指纹：用于对相似事故分组去重，不持久化原始数据
// Signature 必须确定性生成——相同的定性形态产生相同签名
type Fingerprint struct {
	Tags      []string `json:"tags"` // throttling | errors | latency | streaming
	Signature string   `json:"signature"`
}

// EarlyWarning 早期预警：独立观测源出现异常
// 单一来源异常 → elevated；合成与众包同时异常 → high
type EarlyWarning struct {
	Provider        string      `json:"provider"`
	Risk            Risk        `json:"risk"`
	SyntheticSignal Signal      `json:"synthetic_signal"`
	CrowdSignal     Signal      `json:"crowd_signal"`
	Models          []string    `json:"models,omitempty"`
	Regions         []string    `json:"regions,omitempty"`
	Evidence        Evidence    `json:"evidence"`
	Fingerprint     Fingerprint `json:"fingerprint"`
}

// StalenessSignal 官方状态滞后信号：官方报operational但实测异常
type StalenessSignal struct {
	Provider       string      `json:"provider"`
	OfficialStatus string      `json:"official_status"`
	ObservedSignal Signal      `json:"observed_signal"`
	Confidence     Confidence  `json:"confidence"`
	Note           string      `json:"note,omitempty"`
	Evidence       Evidence    `json:"evidence"`
	Fingerprint    Fingerprint `json:"fingerprint"`
}

// RateLimitSegment 限流分段分析结果（按 模型×区域×档位 分组）
type RateLimitSegment struct {
	Model              string   `json:"model"`
	Region             string   `json:"region"`
	Tier               string   `json:"tier"`
	SampleCount        int      `json:"sample_count"`
	HTTP429Rate        *float64 `json:"http_429_rate,omitempty"`
	MeanTokensPerSec   *float64 `json:"mean_tokens_per_sec,omitempty"`
	RetryAfterP50      *float64 `json:"retry_after_p50,omitempty"`
	RetryAfterP95      *float64 `json:"retry_after_p95,omitempty"`
	TopThrottleReasons []string `json:"top_throttle_reasons,omitempty"` // 频次前三
}

// ThroughputBaseline 吞吐基线对比：当前窗口 vs 长窗口（默认7天）
// 任一侧无数据时 RelativeDelta 保持nil
type ThroughputBaseline struct {
	Model           string   `json:"model"`
	Region          string   `json:"region"`
	CurrentMeanTPS  *float64 `json:"current_mean_tps,omitempty"`
	BaselineMeanTPS *float64 `json:"baseline_mean_tps,omitempty"`
	RelativeDelta   *float64 `json:"relative_delta,omitempty"`
	CurrentSamples  int      `json:"current_samples"`
	BaselineSamples int      `json:"baseline_samples"`
	BaselineDays    int      `json:"baseline_days"`
	Evidence        Evidence `json:"evidence"`
}

// BehaviorSummary 行为指标聚合（拒答率/工具成功率/结构化输出合法率/补全长度）
type BehaviorSummary struct {
	Provider             string   `json:"provider"`
	Model                string   `json:"model,omitempty"`
	RefusalRate          *float64 `json:"refusal_rate,omitempty"`
	ToolSuccessRate      *float64 `json:"tool_success_rate,omitempty"`
	SchemaValidRate      *float64 `json:"schema_valid_rate,omitempty"`
	MeanCompletionTokens *float64 `json:"mean_completion_tokens,omitempty"`
	Evidence             Evidence `json:"evidence"`
}

// AskAnswer 关键词问答结果：简单模式匹配，不做自由语言理解
// Receipts 始终返回，保证答案可审计
type AskAnswer struct {
	Provider string   `json:"provider"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Signal   Signal   `json:"signal"`
	Receipts Evidence `json:"receipts"`
}
