package engine

import (
	"context"

	"aipulse/internal/config"
	"aipulse/internal/model"
)

// BuildHealthMatrix 构建提供商健康矩阵：能力目录的每个(模型×端点×区域)组合一个瓦片
// 瓦片按请求现算、从不存储；单元格之间不共享样本，逐格独立汇总评分
func (e *Engine) BuildHealthMatrix(ctx context.Context, provider string, windowMinutes int) ([]model.Tile, error) {
	window := ClampWindow(windowMinutes)
	capability := e.cat.Lookup(provider)

	// 一次取全提供商窗口事件，逐格内存过滤，避免目录规模次数的存储往返
	res, err := e.fetchWindow(ctx, provider, window)
	if err != nil {
		return nil, err
	}

	tiles := make([]model.Tile, 0, len(capability.Models)*len(capability.Endpoints)*len(capability.Regions))
	for _, m := range capability.Models {
		for _, endpoint := range capability.Endpoints {
			for _, region := range capability.Regions {
				scope := model.Scope{
					Provider:  provider,
					Model:     m.Name,
					Endpoint:  endpoint,
					Region:    region,
					Tier:      m.Tier,
					Streaming: m.Streaming,
				}
				tiles = append(tiles, buildTile(scope, res, window))
			}
		}
	}
	return tiles, nil
}

// BuildScopeTile 为任意单一范围现算一个瓦片（降级预案接口按此取数）
func (e *Engine) BuildScopeTile(ctx context.Context, scope model.Scope, windowMinutes int) (model.Tile, error) {
	window := ClampWindow(windowMinutes)
	res, err := e.fetchWindow(ctx, scope.Provider, window)
	if err != nil {
		return model.Tile{}, err
	}
	return buildTile(scope, res, window), nil
}

// buildTile 单个矩阵单元格：synthetic+crowd合并样本 → 汇总 → 分级 → 证据
func buildTile(scope model.Scope, res *windowResult, window int) model.Tile {
	crowd := telemetrySamples(res.telemetry, scope, model.SourceCrowd, "")
	synthetic := probeSamples(res.probes, scope)

	pooled := make([]model.Sample, 0, len(crowd)+len(synthetic))
	pooled = append(pooled, synthetic...)
	pooled = append(pooled, crowd...)

	var sources []string
	if len(synthetic) > 0 {
		sources = append(sources, model.SourceSynthetic)
	}
	if len(crowd) > 0 {
		sources = append(sources, model.SourceCrowd)
	}

	summary := Summarize(pooled)
	signal := ClassifySummary(summary)
	ev := BuildEvidence(summary, window, len(pooled), sources)
	ev.DegradedScan = res.degraded

	return model.Tile{
		Provider:   scope.Provider,
		Model:      scope.Model,
		Endpoint:   scope.Endpoint,
		Region:     scope.Region,
		Tier:       scope.Tier,
		Streaming:  scope.Streaming,
		Metrics:    summary,
		Signal:     signal,
		Confidence: ConfidenceFor(len(pooled), sources, config.LensMediumSampleFloor),
		Evidence:   ev,
	}
}
