package model

// PolicyAction 机器可读的缓解动作
type PolicyAction struct {
	Type   string `json:"type"`             // switch_model | move_region | disable_streaming | backoff | failover | mitigate_latency | none
	Target string `json:"target,omitempty"` // 目标模型/区域（如适用）
	Note   string `json:"note,omitempty"`
}

// PolicyMatch 策略匹配条件（当前单元格的范围）
type PolicyMatch struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Endpoint  string `json:"endpoint"`
	Region    string `json:"region"`
	Streaming bool   `json:"streaming"`
}

// PolicyThresholds 触发阈值（固化进策略文档，供自动化系统独立判断）
type PolicyThresholds struct {
	LatencyP95Ms float64 `json:"latency_p95_ms"`
	HTTP429Rate  float64 `json:"http_429_rate"`
	HTTP5xxRate  float64 `json:"http_5xx_rate"`
}

// FallbackPolicy 结构化降级策略
// CooldownMinutes/HysteresisMinutes 固定为5/2，防止消费方自动切换时振荡
// 核心只计算策略，不执行冷却——执行是调用方的责任
type FallbackPolicy struct {
	Match             PolicyMatch      `json:"match"`
	Thresholds        PolicyThresholds `json:"thresholds"`
	CooldownMinutes   int              `json:"cooldown_minutes"`
	HysteresisMinutes int              `json:"hysteresis_minutes"`
	Actions           []PolicyAction   `json:"actions"`
}

// FallbackPlan 由单个Tile导出的降级预案
// 纯函数产物：相同输入必然产生相同预案（幂等）
type FallbackPlan struct {
	Provider string         `json:"provider"`
	Model    string         `json:"model"`
	Region   string         `json:"region"`
	Signal   Signal         `json:"signal"`
	Actions  []string       `json:"actions"` // 人类可读动作，按优先级排序
	Policy   FallbackPolicy `json:"policy"`
	Evidence Evidence       `json:"evidence"`
}
