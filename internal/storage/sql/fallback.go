package sql

import (
	"sort"

	"aipulse/internal/model"
)

// 降级扫描的内存兜底管线：与窗口查询路径的 过滤→按时间降序→截断 语义完全一致
// 扫描路径取回的是"最近N条"原始事件（按写入顺序），过滤/排序/截断责任全部落在这里

// DegradedTelemetry 对降级扫描结果执行完整的内存查询语义
func DegradedTelemetry(events []*model.TelemetryEvent, filter *model.EventFilter, limit int) []*model.TelemetryEvent {
	out := FilterTelemetry(events, filter)
	SortTelemetryByTimeDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DegradedProbes 对降级扫描结果执行完整的内存查询语义
func DegradedProbes(events []*model.ProbeEvent, filter *model.EventFilter, limit int) []*model.ProbeEvent {
	out := FilterProbes(events, filter)
	SortProbesByTimeDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SortTelemetryByTimeDesc 按事件时间降序排序（对应SQL路径的 ORDER BY time DESC）
// 稳定排序：时间相同的事件保持写入逆序，与扫描顺序一致
func SortTelemetryByTimeDesc(events []*model.TelemetryEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.After(events[j].Time.Time)
	})
}

// SortProbesByTimeDesc 按事件时间降序排序
func SortProbesByTimeDesc(events []*model.ProbeEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.After(events[j].Time.Time)
	})
}

// FilterTelemetry 按过滤条件筛选遥测事件（纯函数）
// 语义必须与 ApplyEventFilter 的SQL过滤保持完全一致
func FilterTelemetry(events []*model.TelemetryEvent, filter *model.EventFilter) []*model.TelemetryEvent {
	if filter == nil {
		return events
	}
	out := make([]*model.TelemetryEvent, 0, len(events))
	for _, e := range events {
		if filter.Provider != "" && e.Provider != filter.Provider {
			continue
		}
		if filter.Source != "" && e.Source != filter.Source {
			continue
		}
		if filter.AccountHash != "" && e.AccountHash != filter.AccountHash {
			continue
		}
		if !filter.Since.IsZero() && e.Time.Before(filter.Since) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterProbes 按过滤条件筛选探针事件（纯函数）
func FilterProbes(events []*model.ProbeEvent, filter *model.EventFilter) []*model.ProbeEvent {
	if filter == nil {
		return events
	}
	out := make([]*model.ProbeEvent, 0, len(events))
	for _, e := range events {
		if filter.Provider != "" && e.Provider != filter.Provider {
			continue
		}
		if !filter.Since.IsZero() && e.Time.Before(filter.Since) {
			continue
		}
		out = append(out, e)
	}
	return out
}
