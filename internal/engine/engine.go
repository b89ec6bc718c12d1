// Package engine 多源状态情报核心：窗口统计、信号分级、透镜合成、
// 健康矩阵、降级预案与跨提供商预警
//
// 所有入口均为无状态的读取-计算管线：不持有跨调用的可变状态，
// 相同输入必然产生相同输出
package engine

import (
	"context"
	"sync"
	"time"

	"aipulse/internal/catalog"
	"aipulse/internal/config"
	"aipulse/internal/model"
)

// EventSource 引擎依赖的事件读取能力（窄接口，便于测试注入假实现）
// List* 的bool返回值表示是否走了降级扫描路径
type EventSource interface {
	ListTelemetry(ctx context.Context, filter *model.EventFilter) ([]*model.TelemetryEvent, bool, error)
	ListProbes(ctx context.Context, filter *model.EventFilter) ([]*model.ProbeEvent, bool, error)
	GetOfficialStatus(ctx context.Context, provider string) (*model.OfficialStatus, error)
	ListOfficialStatuses(ctx context.Context) ([]*model.OfficialStatus, error)
	ListProviders(ctx context.Context, since time.Time) ([]string, error)
}

// Engine 状态情报引擎
type Engine struct {
	store EventSource
	cat   *catalog.Catalog
}

// New 创建引擎实例
func New(store EventSource, cat *catalog.Catalog) *Engine {
	return &Engine{store: store, cat: cat}
}

// ClampWindow 归一窗口参数：非正值取默认窗口，超限截断到上限
func ClampWindow(minutes int) int {
	if minutes <= 0 {
		return config.DefaultWindowMinutes
	}
	if minutes > config.MaxWindowMinutes {
		return config.MaxWindowMinutes
	}
	return minutes
}

// sinceFor 窗口起点
func sinceFor(windowMinutes int) time.Time {
	return time.Now().Add(-time.Duration(windowMinutes) * time.Minute)
}

// windowResult 单提供商一个窗口内的原始事件
type windowResult struct {
	telemetry []*model.TelemetryEvent
	probes    []*model.ProbeEvent
	degraded  bool
}

// fetchWindow 并发拉取窗口内的遥测与探针事件
// 两路读取互相独立，汇总对顺序不敏感，并发与串行结果一致
func (e *Engine) fetchWindow(ctx context.Context, provider string, windowMinutes int) (*windowResult, error) {
	since := sinceFor(windowMinutes)

	var (
		wg       sync.WaitGroup
		res      windowResult
		tErr     error
		pErr     error
		tDegrade bool
		pDegrade bool
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		res.telemetry, tDegrade, tErr = e.store.ListTelemetry(ctx, &model.EventFilter{
			Provider: provider,
			Since:    since,
		})
	}()
	go func() {
		defer wg.Done()
		res.probes, pDegrade, pErr = e.store.ListProbes(ctx, &model.EventFilter{
			Provider: provider,
			Since:    since,
		})
	}()
	wg.Wait()

	if tErr != nil {
		return nil, tErr
	}
	if pErr != nil {
		return nil, pErr
	}
	res.degraded = tDegrade || pDegrade
	return &res, nil
}
