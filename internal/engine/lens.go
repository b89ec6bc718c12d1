package engine

import (
	"context"
	"fmt"

	"aipulse/internal/config"
	"aipulse/internal/model"
)

// ComposeLenses 为单一范围合成五个独立透镜
// 每个透镜独立取数、独立评分；透镜之间绝不互相复用分数，
// observed是对原始样本先合并再汇总一次，不是对其他透镜分数取平均
func (e *Engine) ComposeLenses(ctx context.Context, scope model.Scope, windowMinutes int) (*model.LensSet, error) {
	window := ClampWindow(windowMinutes)

	res, err := e.fetchWindow(ctx, scope.Provider, window)
	if err != nil {
		return nil, err
	}

	status, err := e.store.GetOfficialStatus(ctx, scope.Provider)
	if err != nil {
		return nil, err
	}

	crowdSamples := telemetrySamples(res.telemetry, scope, model.SourceCrowd, "")
	accountSamples := telemetrySamples(res.telemetry, scope, model.SourceAccount, scope.AccountHash)
	syntheticSamples := probeSamples(res.probes, scope)

	set := &model.LensSet{Scope: scope}
	set.Synthetic = buildLens("synthetic", syntheticSamples, []string{model.SourceSynthetic}, window, res.degraded)
	set.Crowd = buildLens("crowd", crowdSamples, []string{model.SourceCrowd}, window, res.degraded)
	set.Observed = buildObservedLens(syntheticSamples, crowdSamples, window, res.degraded)

	if len(accountSamples) > 0 || scope.AccountHash != "" {
		set.Account = buildLens("account", accountSamples, []string{model.SourceAccount}, window, res.degraded)
	}
	if status != nil {
		set.Official = buildOfficialLens(status, window)
	}

	return set, nil
}

// telemetrySamples 按来源与范围筛选遥测事件并投影为样本
func telemetrySamples(events []*model.TelemetryEvent, scope model.Scope, source, accountHash string) []model.Sample {
	var samples []model.Sample
	for _, ev := range events {
		if ev.Source != source {
			continue
		}
		if accountHash != "" && ev.AccountHash != accountHash {
			continue
		}
		if !scope.MatchesTelemetry(ev) {
			continue
		}
		samples = append(samples, TelemetrySample(ev))
	}
	return samples
}

// probeSamples 按范围筛选探针事件（先过黑名单）并投影为样本
func probeSamples(events []*model.ProbeEvent, scope model.Scope) []model.Sample {
	var samples []model.Sample
	for _, ev := range FilterProbeDenylist(events) {
		if !scope.MatchesProbe(ev) {
			continue
		}
		samples = append(samples, ProbeSample(ev))
	}
	return samples
}

// buildLens 对一组样本独立评分
func buildLens(label string, samples []model.Sample, sources []string, window int, degraded bool) *model.Lens {
	summary := Summarize(samples)
	signal := ClassifySummary(summary)
	ev := BuildEvidence(summary, window, len(samples), sources)
	ev.DegradedScan = degraded

	return &model.Lens{
		Label:    label,
		Signal:   signal,
		Summary:  fmt.Sprintf("%s: %s", signal, ev.Snapshot),
		Metrics:  summary,
		Evidence: ev,
	}
}

// buildObservedLens 合成观测透镜：synthetic∪crowd原始样本合并后汇总一次
func buildObservedLens(synthetic, crowd []model.Sample, window int, degraded bool) *model.Lens {
	pooled := make([]model.Sample, 0, len(synthetic)+len(crowd))
	pooled = append(pooled, synthetic...)
	pooled = append(pooled, crowd...)

	var sources []string
	if len(synthetic) > 0 {
		sources = append(sources, model.SourceSynthetic)
	}
	if len(crowd) > 0 {
		sources = append(sources, model.SourceCrowd)
	}

	return buildLens("observed", pooled, sources, window, degraded)
}

// buildOfficialLens 官方状态页透镜：只读最新状态值，无样本统计
func buildOfficialLens(status *model.OfficialStatus, window int) *model.Lens {
	signal := ClassifyOfficialStatus(status.Status)
	summary := status.Description
	if summary == "" {
		summary = status.Status
	}

	return &model.Lens{
		Label:   "official",
		Signal:  signal,
		Summary: summary,
		Evidence: model.Evidence{
			WindowMinutes: window,
			SampleCount:   0,
			Sources:       []string{model.SourceOfficial},
			Thresholds: model.Thresholds{
				Down5xxRate:          config.Down5xxRate,
				Degraded429Rate:      config.Degraded429Rate,
				DegradedLatencyP95Ms: config.DegradedLatencyP95Ms,
			},
			Snapshot: "status=" + status.Status,
		},
	}
}
