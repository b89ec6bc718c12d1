package engine

import (
	"context"
	"fmt"
	"strings"

	"aipulse/internal/config"
	"aipulse/internal/model"
)

// EarlyWarningSweep 扫描所有提供商，寻找独立观测源的异常
// synthetic与crowd各自独立评分：单侧异常 → elevated，双侧同时异常 → high
func (e *Engine) EarlyWarningSweep(ctx context.Context, windowMinutes int) ([]model.EarlyWarning, error) {
	window := ClampWindow(windowMinutes)
	since := sinceFor(window)

	providers, err := e.store.ListProviders(ctx, since)
	if err != nil {
		return nil, err
	}

	warnings := make([]model.EarlyWarning, 0)
	for _, provider := range providers {
		res, err := e.fetchWindow(ctx, provider, window)
		if err != nil {
			return nil, err
		}

		probes := FilterProbeDenylist(res.probes)
		syntheticSamples := make([]model.Sample, 0, len(probes))
		for _, p := range probes {
			syntheticSamples = append(syntheticSamples, ProbeSample(p))
		}

		var crowdSamples []model.Sample
		for _, t := range res.telemetry {
			if t.Source == model.SourceCrowd {
				crowdSamples = append(crowdSamples, TelemetrySample(t))
			}
		}

		syntheticSignal := ClassifySummary(Summarize(syntheticSamples))
		crowdSignal := ClassifySummary(Summarize(crowdSamples))

		if !syntheticSignal.Bad() && !crowdSignal.Bad() {
			continue
		}

		risk := model.RiskElevated
		if syntheticSignal.Bad() && crowdSignal.Bad() {
			risk = model.RiskHigh
		}

		pooled := append(append([]model.Sample{}, syntheticSamples...), crowdSamples...)
		pooledSummary := Summarize(pooled)

		var sources []string
		if len(syntheticSamples) > 0 {
			sources = append(sources, model.SourceSynthetic)
		}
		if len(crowdSamples) > 0 {
			sources = append(sources, model.SourceCrowd)
		}

		ev := BuildEvidence(pooledSummary, window, len(pooled), sources)
		ev.DegradedScan = res.degraded

		warnings = append(warnings, model.EarlyWarning{
			Provider:        provider,
			Risk:            risk,
			SyntheticSignal: syntheticSignal,
			CrowdSignal:     crowdSignal,
			Models:          affectedModels(res, probes),
			Regions:         affectedRegions(res, probes),
			Evidence:        ev,
			Fingerprint:     BuildFingerprint(provider, pooledSummary),
		})
	}
	return warnings, nil
}

// StalenessSweep 检测官方状态页滞后：官方报operational但实测异常的提供商
// 证据不足（合并样本<3）或实测无分歧（healthy/no-data）时静默跳过
func (e *Engine) StalenessSweep(ctx context.Context, windowMinutes int) ([]model.StalenessSignal, error) {
	window := ClampWindow(windowMinutes)

	statuses, err := e.store.ListOfficialStatuses(ctx)
	if err != nil {
		return nil, err
	}

	signals := make([]model.StalenessSignal, 0)
	for _, st := range statuses {
		if ClassifyOfficialStatus(st.Status) != model.SignalHealthy {
			continue
		}

		res, err := e.fetchWindow(ctx, st.Provider, window)
		if err != nil {
			return nil, err
		}

		probes := FilterProbeDenylist(res.probes)
		var pooled []model.Sample
		var crowdCount int
		for _, p := range probes {
			pooled = append(pooled, ProbeSample(p))
		}
		for _, t := range res.telemetry {
			if t.Source == model.SourceCrowd {
				pooled = append(pooled, TelemetrySample(t))
				crowdCount++
			}
		}

		if len(pooled) < config.StalenessMinSamples {
			continue
		}

		summary := Summarize(pooled)
		observed := ClassifySummary(summary)
		if observed == model.SignalHealthy || observed == model.SignalNoData {
			continue
		}

		var sources []string
		if len(probes) > 0 {
			sources = append(sources, model.SourceSynthetic)
		}
		if crowdCount > 0 {
			sources = append(sources, model.SourceCrowd)
		}

		var notes []string
		if crowdCount == 0 {
			notes = append(notes, "无众包数据佐证")
		}
		if len(pooled) < config.StalenessMediumSampleFloor {
			notes = append(notes, "样本偏少")
		}

		ev := BuildEvidence(summary, window, len(pooled), sources)
		ev.DegradedScan = res.degraded

		signals = append(signals, model.StalenessSignal{
			Provider:       st.Provider,
			OfficialStatus: st.Status,
			ObservedSignal: observed,
			Confidence:     ConfidenceFor(len(pooled), sources, config.StalenessMediumSampleFloor),
			Note:           strings.Join(notes, "；"),
			Evidence:       ev,
			Fingerprint:    BuildFingerprint(st.Provider, summary),
		})
	}
	return signals, nil
}

// BuildFingerprint 生成事故指纹：定性标签集 + 确定性签名
// 相同的定性形态必然产生相同签名，用于对相似事故去重分组
func BuildFingerprint(provider string, s model.MetricSummary) model.Fingerprint {
	var tags []string
	if metricAtLeast(s.HTTP429Rate, config.Degraded429Rate) {
		tags = append(tags, "throttling")
	}
	if metricAtLeast(s.HTTP5xxRate, config.Down5xxRate) {
		tags = append(tags, "errors")
	}
	if metricAtLeast(s.LatencyP95Ms, config.DegradedLatencyP95Ms) {
		tags = append(tags, "latency")
	}
	if s.StreamDisconnectRate != nil && *s.StreamDisconnectRate > 0 {
		tags = append(tags, "streaming")
	}

	shape := "none"
	if len(tags) > 0 {
		shape = strings.Join(tags, "+")
	}
	return model.Fingerprint{
		Tags:      tags,
		Signature: fmt.Sprintf("%s|%s", provider, shape),
	}
}

// affectedModels 收集异常窗口内出现过的模型（哨兵/空值跳过，去重保序）
func affectedModels(res *windowResult, probes []*model.ProbeEvent) []string {
	var names []string
	for _, t := range res.telemetry {
		names = append(names, model.NormalizeModelWildcard(t.Model))
	}
	for _, p := range probes {
		names = append(names, model.NormalizeModelWildcard(p.Model))
	}
	return distinctNonEmpty(names)
}

// affectedRegions 收集异常窗口内出现过的区域
func affectedRegions(res *windowResult, probes []*model.ProbeEvent) []string {
	var names []string
	for _, t := range res.telemetry {
		names = append(names, model.NormalizeRegionWildcard(t.Region))
	}
	for _, p := range probes {
		names = append(names, model.NormalizeRegionWildcard(p.Region))
	}
	return distinctNonEmpty(names)
}

func distinctNonEmpty(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
