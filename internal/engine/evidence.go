package engine

import (
	"fmt"

	"aipulse/internal/config"
	"aipulse/internal/model"
)

// BuildEvidence 组装证据包：窗口、样本量、来源、阈值快照与人类可读摘要
// 每个对外结论都必须附带证据包，保证"为什么是这个结论"可审计
func BuildEvidence(summary model.MetricSummary, windowMinutes, sampleCount int, sources []string) model.Evidence {
	return model.Evidence{
		WindowMinutes: windowMinutes,
		SampleCount:   sampleCount,
		Sources:       sources,
		Thresholds: model.Thresholds{
			Down5xxRate:          config.Down5xxRate,
			Degraded429Rate:      config.Degraded429Rate,
			DegradedLatencyP95Ms: config.DegradedLatencyP95Ms,
		},
		Snapshot: FormatSnapshot(summary),
	}
}

// FormatSnapshot 固定格式的指标快照：p95=…ms, 429=…%, 5xx=…%
// 缺失字段显示为n/a而不是0
func FormatSnapshot(s model.MetricSummary) string {
	return fmt.Sprintf("p95=%s, 429=%s, 5xx=%s",
		formatMs(s.LatencyP95Ms), formatPct(s.HTTP429Rate), formatPct(s.HTTP5xxRate))
}

func formatMs(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.0fms", *v)
}

func formatPct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

// ConfidenceFor 计算结论可信度
// high：样本量≥10 且 多于一个独立来源；medium：样本量达到调用点自定下限；否则low
// mediumFloor由各调用点显式传入（透镜/矩阵用4，滞后检测用5）
func ConfidenceFor(sampleCount int, sources []string, mediumFloor int) model.Confidence {
	if sampleCount >= config.HighConfidenceSamples && len(distinct(sources)) > 1 {
		return model.ConfidenceHigh
	}
	if sampleCount >= mediumFloor {
		return model.ConfidenceMedium
	}
	return model.ConfidenceLow
}

// distinct 去重（保序）
func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
