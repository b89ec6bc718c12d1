package app

import (
	"strconv"
	"time"

	"aipulse/internal/config"
	"aipulse/internal/engine"
	"aipulse/internal/model"
	"aipulse/internal/util"

	"github.com/gin-gonic/gin"
)

// windowParam 解析窗口参数（分钟），越界值由引擎统一归一
func windowParam(c *gin.Context) int {
	if raw := c.Query("window"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return config.DefaultWindowMinutes
}

// scopeFromQuery 从查询参数组装范围
// account_id 为原始标识，这里立即匿名化——原始值不会进入任何下游路径
func (s *Server) scopeFromQuery(c *gin.Context) model.Scope {
	scope := model.Scope{
		Provider:  c.Query("provider"),
		Model:     model.NormalizeModelWildcard(c.Query("model")),
		Endpoint:  c.Query("endpoint"),
		Region:    model.NormalizeRegionWildcard(c.Query("region")),
		Tier:      c.Query("tier"),
		Streaming: util.ParseBoolDefault(c.Query("streaming"), false),
	}
	if accountID := c.Query("account_id"); accountID != "" {
		scope.AccountHash = s.anonymizer.Hash(accountID)
	}
	return scope
}

// handleLens GET /api/lens - 五透镜合并视图
func (s *Server) handleLens(c *gin.Context) {
	scope := s.scopeFromQuery(c)
	if scope.Provider == "" {
		s.resp.BadRequest(c, "provider 参数必填")
		return
	}

	set, err := s.engine.ComposeLenses(c.Request.Context(), scope, windowParam(c))
	if err != nil {
		s.resp.InternalError(c, err)
		return
	}
	s.resp.Success(c, set)
}

// handleMatrix GET /api/matrix - 目录驱动的健康矩阵
func (s *Server) handleMatrix(c *gin.Context) {
	provider := c.Query("provider")
	if provider == "" {
		s.resp.BadRequest(c, "provider 参数必填")
		return
	}

	tiles, err := s.engine.BuildHealthMatrix(c.Request.Context(), provider, windowParam(c))
	if err != nil {
		s.resp.InternalError(c, err)
		return
	}
	// cataloged=false 表示矩阵来自 _default 兜底条目
	s.resp.Success(c, gin.H{"provider": provider, "cataloged": s.cat.Has(provider), "tiles": tiles})
}

// handleFallback GET /api/fallback - 指定范围的降级预案
func (s *Server) handleFallback(c *gin.Context) {
	scope := s.scopeFromQuery(c)
	if scope.Provider == "" {
		s.resp.BadRequest(c, "provider 参数必填")
		return
	}

	tile, err := s.engine.BuildScopeTile(c.Request.Context(), scope, windowParam(c))
	if err != nil {
		s.resp.InternalError(c, err)
		return
	}
	s.resp.Success(c, s.engine.BuildFallbackPlan(tile))
}

// handleRateLimits GET /api/rate-limits - 限流分段分析
func (s *Server) handleRateLimits(c *gin.Context) {
	provider := c.Query("provider")
	if provider == "" {
		s.resp.BadRequest(c, "provider 参数必填")
		return
	}

	segments, err := s.engine.RateLimitSegments(c.Request.Context(), provider, windowParam(c))
	if err != nil {
		s.resp.InternalError(c, err)
		return
	}
	s.resp.Success(c, gin.H{"provider": provider, "segments": segments})
}

// handleThroughputBaseline GET /api/throughput-baseline - 吞吐基线对比
func (s *Server) handleThroughputBaseline(c *gin.Context) {
	provider := c.Query("provider")
	if provider == "" {
		s.resp.BadRequest(c, "provider 参数必填")
		return
	}

	baselineDays := config.BaselineDays
	if raw := c.Query("baseline_days"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			baselineDays = v
		}
	}

	baseline, err := s.engine.ThroughputBaseline(c.Request.Context(), provider,
		model.NormalizeModelWildcard(c.Query("model")),
		model.NormalizeRegionWildcard(c.Query("region")),
		windowParam(c), baselineDays)
	if err != nil {
		s.resp.InternalError(c, err)
		return
	}
	s.resp.Success(c, baseline)
}

// handleBehavior GET /api/behavior - 行为指标聚合
func (s *Server) handleBehavior(c *gin.Context) {
	provider := c.Query("provider")
	if provider == "" {
		s.resp.BadRequest(c, "provider 参数必填")
		return
	}

	summary, err := s.engine.BehaviorSummary(c.Request.Context(), provider,
		model.NormalizeModelWildcard(c.Query("model")), windowParam(c))
	if err != nil {
		s.resp.InternalError(c, err)
		return
	}
	s.resp.Success(c, summary)
}

// handleWarnings GET /api/warnings - 早期预警扫描
func (s *Server) handleWarnings(c *gin.Context) {
	warnings, err := s.engine.EarlyWarningSweep(c.Request.Context(), windowParam(c))
	if err != nil {
		s.resp.InternalError(c, err)
		return
	}
	s.resp.Success(c, gin.H{"warnings": warnings})
}

// handleStaleness GET /api/staleness - 官方状态滞后检测
func (s *Server) handleStaleness(c *gin.Context) {
	signals, err := s.engine.StalenessSweep(c.Request.Context(), windowParam(c))
	if err != nil {
		s.resp.InternalError(c, err)
		return
	}
	s.resp.Success(c, gin.H{"signals": signals})
}

// handleAsk GET /api/ask - 关键词问答
func (s *Server) handleAsk(c *gin.Context) {
	provider := c.Query("provider")
	if provider == "" {
		s.resp.BadRequest(c, "provider 参数必填")
		return
	}

	answer, err := s.engine.AskStatus(c.Request.Context(), provider, c.Query("q"), windowParam(c))
	if err != nil {
		s.resp.InternalError(c, err)
		return
	}
	s.resp.Success(c, answer)
}

// handlePublicSummary GET /public/summary - 每个提供商的官方状态与观测信号总览
func (s *Server) handlePublicSummary(c *gin.Context) {
	window := engine.ClampWindow(windowParam(c))
	since := time.Now().Add(-time.Duration(window) * time.Minute)

	providers, err := s.store.ListProviders(c.Request.Context(), since)
	if err != nil {
		s.resp.InternalError(c, err)
		return
	}

	type providerSummary struct {
		Provider string       `json:"provider"`
		Official string       `json:"official_status,omitempty"`
		Observed model.Signal `json:"observed_signal"`
		Snapshot string       `json:"snapshot"`
	}

	summaries := make([]providerSummary, 0, len(providers))
	for _, provider := range providers {
		answer, err := s.engine.AskStatus(c.Request.Context(), provider, "", window)
		if err != nil {
			s.resp.InternalError(c, err)
			return
		}

		entry := providerSummary{
			Provider: provider,
			Observed: answer.Signal,
			Snapshot: answer.Receipts.Snapshot,
		}
		if st, err := s.store.GetOfficialStatus(c.Request.Context(), provider); err == nil && st != nil {
			entry.Official = st.Status
		}
		summaries = append(summaries, entry)
	}

	s.resp.Success(c, gin.H{"window_minutes": window, "providers": summaries})
}
