package engine

import (
	"fmt"

	"aipulse/internal/config"
	"aipulse/internal/model"
)

// BuildFallbackPlan 由单个矩阵瓦片导出降级预案（幂等：相同瓦片必得相同预案）
//
// 触发条件：signal∈{degraded,down} 或 p95≥2000ms 或 429率≥8% 或 5xx率≥5%
// 冷却/滞回参数固化为5/2分钟写入策略文档；执行冷却是消费方的责任，引擎只计算
func (e *Engine) BuildFallbackPlan(tile model.Tile) model.FallbackPlan {
	capability := e.cat.Lookup(tile.Provider)

	triggered := tile.Signal.Bad() ||
		metricAtLeast(tile.Metrics.LatencyP95Ms, config.FallbackLatencyP95Ms) ||
		metricAtLeast(tile.Metrics.HTTP429Rate, config.Degraded429Rate) ||
		metricAtLeast(tile.Metrics.HTTP5xxRate, config.Down5xxRate)

	var actions []string
	var policyActions []model.PolicyAction

	if triggered {
		// 按目录顺序取第一个与当前不同的候选
		for _, m := range capability.Models {
			if m.Name != tile.Model {
				actions = append(actions, fmt.Sprintf("切换到备选模型 %s", m.Name))
				policyActions = append(policyActions, model.PolicyAction{Type: "switch_model", Target: m.Name})
				break
			}
		}
		for _, region := range capability.Regions {
			if region != tile.Region {
				actions = append(actions, fmt.Sprintf("把流量迁移到区域 %s", region))
				policyActions = append(policyActions, model.PolicyAction{Type: "move_region", Target: region})
				break
			}
		}
		if tile.Streaming {
			actions = append(actions, "关闭流式改用非流式请求")
			policyActions = append(policyActions, model.PolicyAction{Type: "disable_streaming"})
		}
		actions = append(actions, "压缩请求负载并缩短超时以缓解延迟")
		policyActions = append(policyActions, model.PolicyAction{Type: "mitigate_latency"})
	}

	// 阈值各自独立判断，与总触发条件解耦
	if metricAtLeast(tile.Metrics.HTTP429Rate, config.Degraded429Rate) {
		actions = append(actions, "按retry-after做指数退避")
		policyActions = append(policyActions, model.PolicyAction{Type: "backoff", Note: "honor retry-after"})
	}
	if metricAtLeast(tile.Metrics.LatencyP95Ms, config.FallbackLatencyP95Ms) {
		actions = append(actions, "启用跨提供商故障转移")
		policyActions = append(policyActions, model.PolicyAction{Type: "failover"})
	}

	if len(actions) == 0 {
		actions = append(actions, "运行平稳，无需处理")
		policyActions = append(policyActions, model.PolicyAction{Type: "none"})
	}

	return model.FallbackPlan{
		Provider: tile.Provider,
		Model:    tile.Model,
		Region:   tile.Region,
		Signal:   tile.Signal,
		Actions:  actions,
		Policy: model.FallbackPolicy{
			Match: model.PolicyMatch{
				Provider:  tile.Provider,
				Model:     tile.Model,
				Endpoint:  tile.Endpoint,
				Region:    tile.Region,
				Streaming: tile.Streaming,
			},
			Thresholds: model.PolicyThresholds{
				LatencyP95Ms: config.FallbackLatencyP95Ms,
				HTTP429Rate:  config.Degraded429Rate,
				HTTP5xxRate:  config.Down5xxRate,
			},
			CooldownMinutes:   config.PolicyCooldownMinutes,
			HysteresisMinutes: config.PolicyHysteresisMinutes,
			Actions:           policyActions,
		},
		Evidence: tile.Evidence,
	}
}

// metricAtLeast 可选指标达到阈值（缺失视为未达到）
func metricAtLeast(v *float64, threshold float64) bool {
	return v != nil && *v >= threshold
}
