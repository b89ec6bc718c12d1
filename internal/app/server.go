package app

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"aipulse/internal/catalog"
	"aipulse/internal/config"
	"aipulse/internal/engine"
	"aipulse/internal/errors"
	"aipulse/internal/storage"
	"aipulse/internal/util"

	"github.com/gin-gonic/gin"
)

// Server HTTP服务：摄取入口 + 查询入口 + 事件清理循环
type Server struct {
	store  storage.Store
	engine *engine.Engine
	cat    *catalog.Catalog
	cfg    *config.EnvConfig

	anonymizer *util.Anonymizer
	resp       *ResponseHelper

	// 摄取认证令牌集合（AIPULSE_AUTH配置；为空表示开放摄取）
	authTokens map[string]bool

	// 优雅关闭
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewServer 创建服务实例并启动事件清理循环
func NewServer(store storage.Store, cat *catalog.Catalog, cfg *config.EnvConfig) *Server {
	authTokens := make(map[string]bool, len(cfg.AuthTokens))
	for _, token := range cfg.AuthTokens {
		authTokens[token] = true
	}
	if len(authTokens) == 0 {
		util.SafePrint("⚠️  警告：未配置 AIPULSE_AUTH，摄取接口开放访问")
	}

	s := &Server{
		store:      store,
		engine:     engine.New(store, cat),
		cat:        cat,
		cfg:        cfg,
		anonymizer: util.NewAnonymizer(cfg.HashSalt),
		resp:       NewResponseHelper(),
		authTokens: authTokens,
		shutdownCh: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupOldEventsLoop()

	return s
}

// SetupRoutes 路由注册
func (s *Server) SetupRoutes(r *gin.Engine) {
	// 摄取入口（写路径）- 需要 API 认证
	ingest := r.Group("/ingest")
	ingest.Use(s.requireAPIAuth())
	{
		ingest.POST("/telemetry", s.handleIngestTelemetry)
		ingest.POST("/probe", s.handleIngestProbe)
		ingest.PUT("/status", s.handleIngestStatus)
	}

	// 查询入口（读路径）
	api := r.Group("/api")
	{
		api.GET("/lens", s.handleLens)
		api.GET("/matrix", s.handleMatrix)
		api.GET("/fallback", s.handleFallback)
		api.GET("/rate-limits", s.handleRateLimits)
		api.GET("/throughput-baseline", s.handleThroughputBaseline)
		api.GET("/behavior", s.handleBehavior)
		api.GET("/warnings", s.handleWarnings)
		api.GET("/staleness", s.handleStaleness)
		api.GET("/ask", s.handleAsk)
	}

	// 公开访问的API（基础统计）
	public := r.Group("/public")
	{
		public.GET("/summary", s.handlePublicSummary)
	}
}

// requireAPIAuth 摄取接口认证：Bearer令牌必须在配置集合内
// 未配置任何令牌时放行（开发/内网部署场景）
func (s *Server) requireAPIAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(s.authTokens) == 0 {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token == "" || !s.authTokens[token] {
			s.resp.Error(c, http.StatusUnauthorized, errors.UnauthorizedError("invalid or missing bearer token"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// cleanupOldEventsLoop 定期清理保留期之外的事件
func (s *Server) cleanupOldEventsLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdownCh:
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := s.store.CleanupEventsBefore(ctx, cutoff); err != nil {
				util.SafePrintf("[WARN] 事件清理失败: %v", err)
			}
			cancel()
		}
	}
}

// Shutdown 优雅关闭：停止后台循环并等待完成
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.shutdownCh)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
