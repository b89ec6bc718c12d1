package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"aipulse/internal/app"
	"aipulse/internal/catalog"
	"aipulse/internal/config"
	"aipulse/internal/storage"
	"aipulse/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// 优先读取.env文件
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	version.PrintBanner()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 设置Gin运行模式
	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode) // 生产模式
	}

	// 能力目录：缺少_default兜底条目属于配置错误，直接拒绝启动
	cat, err := catalog.Load(os.Getenv("AIPULSE_CATALOG_PATH"))
	if err != nil {
		log.Fatalf("能力目录加载失败: %v", err)
	}

	store, err := storage.NewStore(cfg)
	if err != nil {
		log.Fatalf("存储初始化失败: %v", err)
	}
	defer store.Close()

	srv := app.NewServer(store, cat, cfg)

	// 创建Gin引擎
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// 注册路由
	srv.SetupRoutes(r)

	httpSrv := &http.Server{
		Addr:    cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("listening on %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP服务异常退出: %v", err)
		}
	}()

	// 等待退出信号后优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Print("收到退出信号，开始优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("HTTP服务关闭超时: %v", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("后台任务关闭超时: %v", err)
	}
	log.Print("已退出")
}
