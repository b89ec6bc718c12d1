package engine

import (
	"math"
	"sort"

	"aipulse/internal/config"
	"aipulse/internal/model"
)

// Percentile 计算百分位：升序排序后取下标 floor(p/100*n)，截断到 n-1
// 空输入返回nil——宁可缺失也不伪造零值
func Percentile(values []float64, p float64) *float64 {
	n := len(values)
	if n == 0 {
		return nil
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(math.Floor(p / 100.0 * float64(n)))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	v := sorted[idx]
	return &v
}

// Mean 计算算术平均，空输入返回nil
func Mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

// Summarize 把样本集归约为窗口统计摘要（纯函数）
// 均值字段只对存在的值求平均，缺失字段不按零参与；
// 任何畸形输入都不会报错，只会产生更多的nil字段
func Summarize(samples []model.Sample) model.MetricSummary {
	var latencies, r5xx, r429, tps, disconnect []float64
	for _, s := range samples {
		if s.LatencyMs != nil {
			latencies = append(latencies, *s.LatencyMs)
		}
		if s.HTTP5xxRate != nil {
			r5xx = append(r5xx, *s.HTTP5xxRate)
		}
		if s.HTTP429Rate != nil {
			r429 = append(r429, *s.HTTP429Rate)
		}
		if s.TokensPerSec != nil {
			tps = append(tps, *s.TokensPerSec)
		}
		if s.StreamDisconnect != nil {
			disconnect = append(disconnect, *s.StreamDisconnect)
		}
	}

	return model.MetricSummary{
		LatencyP50Ms:         Percentile(latencies, 50),
		LatencyP95Ms:         Percentile(latencies, 95),
		LatencyP99Ms:         Percentile(latencies, 99),
		HTTP5xxRate:          Mean(r5xx),
		HTTP429Rate:          Mean(r429),
		TokensPerSec:         Mean(tps),
		StreamDisconnectRate: Mean(disconnect),
	}
}

// TelemetrySample 遥测事件投影为统一样本
func TelemetrySample(e *model.TelemetryEvent) model.Sample {
	s := model.Sample{
		LatencyMs:        e.LatencyMs,
		HTTP5xxRate:      e.HTTP5xxRate,
		HTTP429Rate:      e.HTTP429Rate,
		TokensPerSec:     e.TokensPerSec,
		RetryAfterSec:    e.RetryAfterSeconds,
		RefusalRate:      e.RefusalRate,
		ToolSuccessRate:  e.ToolSuccessRate,
		SchemaValidRate:  e.SchemaValidRate,
		CompletionTokens: e.CompletionTokens,
	}
	if e.StreamDisconnected != nil {
		v := 0.0
		if *e.StreamDisconnected {
			v = 1.0
		}
		s.StreamDisconnect = &v
	}
	return s
}

// ProbeSample 探针事件投影为统一样本
// 延迟取p95（缺失时回落p50）；错误码映射为0/1错误率样本，
// 让"全部失败的探针"在均值上表现为100%错误率
func ProbeSample(e *model.ProbeEvent) model.Sample {
	var s model.Sample
	if e.LatencyP95Ms != nil {
		s.LatencyMs = e.LatencyP95Ms
	} else if e.LatencyP50Ms != nil {
		s.LatencyMs = e.LatencyP50Ms
	}

	zero, one := 0.0, 1.0
	switch {
	case e.ErrorCode == "":
		s.HTTP5xxRate = &zero
		s.HTTP429Rate = &zero
	case e.ErrorCode == "http-429":
		s.HTTP5xxRate = &zero
		s.HTTP429Rate = &one
	default:
		// http-5xx / timeout / network / semantic_mismatch 均计为服务侧失败
		s.HTTP5xxRate = &one
		s.HTTP429Rate = &zero
	}
	return s
}

// FilterProbeDenylist 剔除错误码黑名单内的探针事件
// 黑名单错误（401/403/404）代表探针自身配置问题，不是提供商故障
func FilterProbeDenylist(events []*model.ProbeEvent) []*model.ProbeEvent {
	out := make([]*model.ProbeEvent, 0, len(events))
	for _, e := range events {
		if config.ProbeErrorDenylist[e.ErrorCode] {
			continue
		}
		out = append(out, e)
	}
	return out
}
