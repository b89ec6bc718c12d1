package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"aipulse/internal/config"
	"aipulse/internal/model"
)

// segmentKey 限流分段的分组键
type segmentKey struct {
	model  string
	region string
	tier   string
}

// RateLimitSegments 限流分段分析：众包事件按(模型×区域×档位)分组
// 每段给出429率、平均吞吐、retry-after分位数和频次前三的限流原因
func (e *Engine) RateLimitSegments(ctx context.Context, provider string, windowMinutes int) ([]model.RateLimitSegment, error) {
	window := ClampWindow(windowMinutes)

	events, _, err := e.store.ListTelemetry(ctx, &model.EventFilter{
		Provider: provider,
		Source:   model.SourceCrowd,
		Since:    sinceFor(window),
	})
	if err != nil {
		return nil, err
	}

	groups := make(map[segmentKey][]*model.TelemetryEvent)
	for _, ev := range events {
		key := segmentKey{
			model:  model.NormalizeModelWildcard(ev.Model),
			region: model.NormalizeRegionWildcard(ev.Region),
			tier:   ev.Tier,
		}
		groups[key] = append(groups[key], ev)
	}

	segments := make([]model.RateLimitSegment, 0, len(groups))
	for key, grp := range groups {
		var r429, tps, retryAfter []float64
		reasonCount := make(map[string]int)
		for _, ev := range grp {
			if ev.HTTP429Rate != nil {
				r429 = append(r429, *ev.HTTP429Rate)
			}
			if ev.TokensPerSec != nil {
				tps = append(tps, *ev.TokensPerSec)
			}
			if ev.RetryAfterSeconds != nil {
				retryAfter = append(retryAfter, *ev.RetryAfterSeconds)
			}
			if ev.ThrottleReason != "" {
				reasonCount[ev.ThrottleReason]++
			}
		}

		segments = append(segments, model.RateLimitSegment{
			Model:              key.model,
			Region:             key.region,
			Tier:               key.tier,
			SampleCount:        len(grp),
			HTTP429Rate:        Mean(r429),
			MeanTokensPerSec:   Mean(tps),
			RetryAfterP50:      Percentile(retryAfter, 50),
			RetryAfterP95:      Percentile(retryAfter, 95),
			TopThrottleReasons: topReasons(reasonCount, 3),
		})
	}

	// 分组遍历顺序随机，输出前固定排序保证确定性
	sort.Slice(segments, func(i, j int) bool {
		a, b := segments[i], segments[j]
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		return a.Tier < b.Tier
	})
	return segments, nil
}

// topReasons 按频次取前N个限流原因（频次相同按字典序，保证确定性）
func topReasons(counts map[string]int, n int) []string {
	type rc struct {
		reason string
		count  int
	}
	list := make([]rc, 0, len(counts))
	for reason, count := range counts {
		list = append(list, rc{reason, count})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].reason < list[j].reason
	})
	if len(list) > n {
		list = list[:n]
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, item.reason)
	}
	return out
}

// ThroughputBaseline 吞吐基线对比：当前窗口均值 vs 长窗口（默认7天）均值
// 任一侧无数据时相对差值保持nil，不伪造零
func (e *Engine) ThroughputBaseline(ctx context.Context, provider, modelName, region string, windowMinutes, baselineDays int) (*model.ThroughputBaseline, error) {
	window := ClampWindow(windowMinutes)
	if baselineDays <= 0 {
		baselineDays = config.BaselineDays
	}

	events, degraded, err := e.store.ListTelemetry(ctx, &model.EventFilter{
		Provider: provider,
		Since:    sinceFor(baselineDays * 24 * 60),
	})
	if err != nil {
		return nil, err
	}

	currentSince := sinceFor(window)
	var currentTPS, baselineTPS []float64
	var currentSamples []model.Sample
	var sources []string
	for _, ev := range events {
		if !matchField(model.NormalizeModelWildcard(ev.Model), model.NormalizeModelWildcard(modelName)) {
			continue
		}
		if !matchField(model.NormalizeRegionWildcard(ev.Region), model.NormalizeRegionWildcard(region)) {
			continue
		}
		if ev.TokensPerSec == nil {
			continue
		}
		baselineTPS = append(baselineTPS, *ev.TokensPerSec)
		if !ev.Time.Before(currentSince) {
			currentTPS = append(currentTPS, *ev.TokensPerSec)
			currentSamples = append(currentSamples, TelemetrySample(ev))
			sources = append(sources, ev.Source)
		}
	}

	current := Mean(currentTPS)
	baseline := Mean(baselineTPS)

	var delta *float64
	if current != nil && baseline != nil && *baseline != 0 {
		d := (*current - *baseline) / *baseline
		delta = &d
	}

	ev := BuildEvidence(Summarize(currentSamples), window, len(currentTPS), distinct(sources))
	ev.DegradedScan = degraded

	return &model.ThroughputBaseline{
		Model:           modelName,
		Region:          region,
		CurrentMeanTPS:  current,
		BaselineMeanTPS: baseline,
		RelativeDelta:   delta,
		CurrentSamples:  len(currentTPS),
		BaselineSamples: len(baselineTPS),
		BaselineDays:    baselineDays,
		Evidence:        ev,
	}, nil
}

// BehaviorSummary 行为指标聚合：拒答率/工具成功率/结构化输出合法率/补全长度均值
func (e *Engine) BehaviorSummary(ctx context.Context, provider, modelName string, windowMinutes int) (*model.BehaviorSummary, error) {
	window := ClampWindow(windowMinutes)

	events, degraded, err := e.store.ListTelemetry(ctx, &model.EventFilter{
		Provider: provider,
		Since:    sinceFor(window),
	})
	if err != nil {
		return nil, err
	}

	var refusal, tool, schema, completion []float64
	var samples []model.Sample
	var sources []string
	for _, ev := range events {
		if !matchField(model.NormalizeModelWildcard(ev.Model), model.NormalizeModelWildcard(modelName)) {
			continue
		}
		if ev.RefusalRate != nil {
			refusal = append(refusal, *ev.RefusalRate)
		}
		if ev.ToolSuccessRate != nil {
			tool = append(tool, *ev.ToolSuccessRate)
		}
		if ev.SchemaValidRate != nil {
			schema = append(schema, *ev.SchemaValidRate)
		}
		if ev.CompletionTokens != nil {
			completion = append(completion, *ev.CompletionTokens)
		}
		samples = append(samples, TelemetrySample(ev))
		sources = append(sources, ev.Source)
	}

	evd := BuildEvidence(Summarize(samples), window, len(samples), distinct(sources))
	evd.DegradedScan = degraded

	return &model.BehaviorSummary{
		Provider:             provider,
		Model:                modelName,
		RefusalRate:          Mean(refusal),
		ToolSuccessRate:      Mean(tool),
		SchemaValidRate:      Mean(schema),
		MeanCompletionTokens: Mean(completion),
		Evidence:             evd,
	}, nil
}

// AskStatus 关键词问答：对问题做简单子串匹配并代入计算值
// 刻意只做模式匹配，不做自由语言理解；回执（证据包）始终返回
func (e *Engine) AskStatus(ctx context.Context, provider, question string, windowMinutes int) (*model.AskAnswer, error) {
	window := ClampWindow(windowMinutes)

	res, err := e.fetchWindow(ctx, provider, window)
	if err != nil {
		return nil, err
	}

	probes := FilterProbeDenylist(res.probes)
	var pooled []model.Sample
	var sources []string
	for _, p := range probes {
		pooled = append(pooled, ProbeSample(p))
		sources = append(sources, model.SourceSynthetic)
	}
	for _, t := range res.telemetry {
		if t.Source == model.SourceCrowd {
			pooled = append(pooled, TelemetrySample(t))
			sources = append(sources, model.SourceCrowd)
		}
	}

	summary := Summarize(pooled)
	signal := ClassifySummary(summary)
	receipts := BuildEvidence(summary, window, len(pooled), distinct(sources))
	receipts.DegradedScan = res.degraded

	q := strings.ToLower(question)
	var answer string
	switch {
	case strings.Contains(q, "latency"):
		if summary.LatencyP95Ms != nil {
			answer = fmt.Sprintf("%s 最近%d分钟的p95延迟为 %.0fms", provider, window, *summary.LatencyP95Ms)
		} else {
			answer = fmt.Sprintf("%s 最近%d分钟没有延迟样本", provider, window)
		}
	case strings.Contains(q, "rate limit") || strings.Contains(q, "429"):
		if summary.HTTP429Rate != nil {
			answer = fmt.Sprintf("%s 最近%d分钟的429限流率为 %.1f%%", provider, window, *summary.HTTP429Rate*100)
		} else {
			answer = fmt.Sprintf("%s 最近%d分钟没有限流样本", provider, window)
		}
	default:
		answer = fmt.Sprintf("%s 当前观测信号为 %s（%s）", provider, signal, receipts.Snapshot)
	}

	return &model.AskAnswer{
		Provider: provider,
		Question: question,
		Answer:   answer,
		Signal:   signal,
		Receipts: receipts,
	}, nil
}

// matchField 单字段通配匹配：任一侧为空即匹配
func matchField(record, target string) bool {
	if record == "" || target == "" {
		return true
	}
	return record == target
}
