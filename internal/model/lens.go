package model

// Thresholds 信号判定阈值快照（随证据包一并返回，供消费方审计）
type Thresholds struct {
	Down5xxRate          float64 `json:"down_5xx_rate"`
	Degraded429Rate      float64 `json:"degraded_429_rate"`
	DegradedLatencyP95Ms float64 `json:"degraded_latency_p95_ms"`
}

// Evidence 证据包：任何计算结论都必须附带，用于回答"为什么是这个结论"
type Evidence struct {
	WindowMinutes int        `json:"window_minutes"`
	SampleCount   int        `json:"sample_count"`
	Sources       []string   `json:"sources"`
	Thresholds    Thresholds `json:"thresholds"`
	Snapshot      string     `json:"snapshot"` // 固定格式：p95=…ms, 429=…%, 5xx=…%

	// DegradedScan 本次结论的数据是否来自降级扫描路径（索引缺失兜底）
	DegradedScan bool `json:"degraded_scan,omitempty"`
}

// Lens 单一视角的独立评分
// 透镜之间互不影响：同一范围的各透镜独立计算，仅在展示层合并
type Lens struct {
	Label    string        `json:"label"`
	Signal   Signal        `json:"signal"`
	Summary  string        `json:"summary"`
	Metrics  MetricSummary `json:"metrics"`
	Evidence Evidence      `json:"evidence"`
}

// LensSet 同一范围的五个透镜合并响应
type LensSet struct {
	Scope     Scope `json:"scope"`
	Official  *Lens `json:"official,omitempty"`
	Observed  *Lens `json:"observed,omitempty"`
	Synthetic *Lens `json:"synthetic,omitempty"`
	Crowd     *Lens `json:"crowd,omitempty"`
	Account   *Lens `json:"account,omitempty"`
}

// Tile 健康矩阵中的一个(模型×端点×区域)单元格
// 每次请求基于能力目录现算，从不存储
type Tile struct {
	Provider   string        `json:"provider"`
	Model      string        `json:"model"`
	Endpoint   string        `json:"endpoint"`
	Region     string        `json:"region"`
	Tier       string        `json:"tier"`
	Streaming  bool          `json:"streaming"`
	Metrics    MetricSummary `json:"metrics"`
	Signal     Signal        `json:"signal"`
	Confidence Confidence    `json:"confidence"`
	Evidence   Evidence      `json:"evidence"`
}

// OfficialStatus 官方状态页的最新值（由外部摄取管道刷新，核心只读最新一条）
type OfficialStatus struct {
	Provider    string   `json:"provider"`
	Status      string   `json:"status"` // operational | degraded | partial_outage | maintenance | major_outage | …
	Description string   `json:"description,omitempty"`
	FetchedAt   JSONTime `json:"fetched_at"`
}
