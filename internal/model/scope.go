package model

// 历史哨兵值：旧版探针把状态页观测写成 model="status" / region="global"
// 新设计用空字段表达通配（见 NormalizeWildcard），哨兵值仅为兼容而保留识别
const (
	SentinelModel  = "status"
	SentinelRegion = "global"
)

// Scope 一次查询的目标范围
// Model/Endpoint/Region 为空表示任意；Tier与Streaming始终要求精确匹配
type Scope struct {
	Provider    string `json:"provider"`
	Model       string `json:"model,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`
	Region      string `json:"region,omitempty"`
	Tier        string `json:"tier"`
	Streaming   bool   `json:"streaming"`
	AccountHash string `json:"-"` // 账号透镜过滤用，已哈希
}

// NormalizeModelWildcard 把字段缺失与哨兵值归一为通配（空串）
// 注意：如果未来真有模型叫"status"，这里会误判——这是继承自旧数据格式的隐患
func NormalizeModelWildcard(v string) string {
	if v == SentinelModel {
		return ""
	}
	return v
}

// NormalizeRegionWildcard 同上，region侧哨兵为"global"
func NormalizeRegionWildcard(v string) string {
	if v == SentinelRegion {
		return ""
	}
	return v
}

// fieldMatches 单字段匹配：任一侧为通配（空/哨兵归一后为空）即匹配，否则要求相等
func fieldMatches(record, target string) bool {
	if record == "" || target == "" {
		return true
	}
	return record == target
}

// MatchesTelemetry 判断遥测事件是否落在目标范围内
// tier/streaming 精确匹配，无通配语义
func (sc Scope) MatchesTelemetry(e *TelemetryEvent) bool {
	if e.Provider != sc.Provider {
		return false
	}
	if !fieldMatches(NormalizeModelWildcard(e.Model), NormalizeModelWildcard(sc.Model)) {
		return false
	}
	if !fieldMatches(NormalizeModelWildcard(e.Endpoint), NormalizeModelWildcard(sc.Endpoint)) {
		return false
	}
	if !fieldMatches(NormalizeRegionWildcard(e.Region), NormalizeRegionWildcard(sc.Region)) {
		return false
	}
	if e.Tier != sc.Tier {
		return false
	}
	if e.Streaming != sc.Streaming {
		return false
	}
	return true
}

// MatchesProbe 判断探针事件是否落在目标范围内
func (sc Scope) MatchesProbe(e *ProbeEvent) bool {
	if e.Provider != sc.Provider {
		return false
	}
	if !fieldMatches(NormalizeModelWildcard(e.Model), NormalizeModelWildcard(sc.Model)) {
		return false
	}
	if !fieldMatches(NormalizeModelWildcard(e.Endpoint), NormalizeModelWildcard(sc.Endpoint)) {
		return false
	}
	if !fieldMatches(NormalizeRegionWildcard(e.Region), NormalizeRegionWildcard(sc.Region)) {
		return false
	}
	if e.Tier != sc.Tier {
		return false
	}
	if e.Streaming != sc.Streaming {
		return false
	}
	return true
}
