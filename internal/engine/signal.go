package engine

import (
	"aipulse/internal/config"
	"aipulse/internal/model"
)

// ClassifySummary 把统计摘要映射为四态信号（首个命中规则生效）
//
// 判定顺序：
//  1. p95/429率/5xx率 全部缺失 → no-data
//  2. 5xx率 ≥ 5% → down
//  3. 429率 ≥ 8% → degraded
//  4. p95 ≥ 4000ms → degraded
//  5. 否则 → healthy
func ClassifySummary(s model.MetricSummary) model.Signal {
	if s.LatencyP95Ms == nil && s.HTTP429Rate == nil && s.HTTP5xxRate == nil {
		return model.SignalNoData
	}
	if s.HTTP5xxRate != nil && *s.HTTP5xxRate >= config.Down5xxRate {
		return model.SignalDown
	}
	if s.HTTP429Rate != nil && *s.HTTP429Rate >= config.Degraded429Rate {
		return model.SignalDegraded
	}
	if s.LatencyP95Ms != nil && *s.LatencyP95Ms >= config.DegradedLatencyP95Ms {
		return model.SignalDegraded
	}
	return model.SignalHealthy
}

// ClassifyOfficialStatus 把官方状态页字符串映射为四态信号
// 未识别的状态一律归为no-data，不猜测语义
func ClassifyOfficialStatus(status string) model.Signal {
	switch status {
	case "operational":
		return model.SignalHealthy
	case "degraded", "partial_outage", "maintenance":
		return model.SignalDegraded
	case "major_outage":
		return model.SignalDown
	default:
		return model.SignalNoData
	}
}
