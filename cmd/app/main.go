package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github-achievement-miner/internal/adapter/gemini"
	"github-achievement-miner/internal/adapter/github"
	"github-achievement-miner/internal/adapter/repository"
	"github-achievement-miner/internal/adapter/social"
	"github-achievement-miner/internal/config"
	"github-achievement-miner/internal/port"
	"github-achievement-miner/internal/service"
	"github-achievement-miner/internal/transport"
	"github-achievement-miner/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 1. 命令行参数
	mode := flag.String("mode", "classify", "运行模式: classify (分类入库) / generate (生成并发布) / serve (HTTP 服务)")
	user := flag.String("user", "", "GitHub 用户名 (classify/generate 模式必填)")
	days := flag.Int("days", 30, "事件窗口天数 (classify 模式)")
	format := flag.String("format", "resume_bullet", "文案格式: resume_bullet / linkedin_post / twitter_thread")
	limit := flag.Int("limit", 5, "单次生成发布的成就条数上限")
	interval := flag.Int("interval", 0, "定时执行间隔（分钟），0表示只执行一次")
	flag.Parse()

	// 2. 配置 + 公共依赖
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}

	store, err := repository.NewAchievementRepo(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("❌ DB 初始化失败: %v", err)
	}

	ctx := context.Background()
	generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("❌ AI 初始化失败: %v", err)
	}

	source := github.NewFetcher(cfg.GitHubToken)
	publisher := social.NewPublisher(cfg.SocialWebhook)

	pipeline := service.NewPipelineService(source, store, generator, publisher)

	// 3. 根据模式分流
	switch *mode {
	case "serve":
		runServer(cfg, pipeline, store)
	case "classify":
		if *user == "" {
			fmt.Println("❌ classify 模式需要 -user=<github用户名>")
			os.Exit(1)
		}
		if *interval > 0 {
			runScheduledClassify(pipeline, *user, *days, *interval)
		} else {
			runClassifyOnce(pipeline, *user, *days)
		}
	case "generate":
		if *user == "" {
			fmt.Println("❌ generate 模式需要 -user=<github用户名>")
			os.Exit(1)
		}
		runGenerate(pipeline, *user, port.ContentFormat(*format), *limit)
	default:
		fmt.Println("❌ 未知模式，请使用 -mode=classify / generate / serve")
		os.Exit(1)
	}
}

// runClassifyOnce 执行一次分类周期
func runClassifyOnce(pipeline *service.PipelineService, user string, days int) {
	// 为整个分类周期设置超时时间(5分钟)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	since := time.Now().AddDate(0, 0, -days)
	if _, err := pipeline.Run(ctx, user, since); err != nil {
		log.Printf("❌ 分类周期执行失败: %v", err)
	}
}

// runScheduledClassify 定时执行分类任务，收到信号后优雅退出
func runScheduledClassify(pipeline *service.PipelineService, user string, days, interval int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(interval) * time.Minute)
	defer ticker.Stop()

	fmt.Printf("⏰ 定时执行模式已启动，每 %d 分钟执行一次\n", interval)
	fmt.Println("按下 Ctrl+C 可以优雅停止程序")

	// 立即执行一次
	runClassifyOnce(pipeline, user, days)

	for {
		select {
		case <-ticker.C:
			runClassifyOnce(pipeline, user, days)
		case <-sigChan:
			fmt.Println("\n👋 收到停止信号，正在退出...")
			return
		case <-ctx.Done():
			fmt.Println("👋 定时任务已停止")
			return
		}
	}
}

// runGenerate 为未发布的成就生成文案并推送
func runGenerate(pipeline *service.PipelineService, user string, format port.ContentFormat, limit int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	published, err := pipeline.GenerateAndPublish(ctx, user, format, limit)
	if err != nil {
		log.Printf("❌ 生成发布失败: %v", err)
	}
	fmt.Printf("✅ 共发布 %d 条成就文案\n", published)
}

// runServer 启动 HTTP 服务
func runServer(cfg *config.Config, pipeline *service.PipelineService, store port.AchievementStore) {
	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("❌ 日志初始化失败: %v", err)
	}
	defer zlog.Sync()

	handler := transport.NewHandler(pipeline, store, zlog)
	server := transport.NewServer(cfg.HTTPAddr, transport.NewRouter(handler, zlog), zlog)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zlog.Error("shutdown failed", zap.Error(err))
		}
	}()

	if err := server.Start(); err != nil {
		log.Fatalf("❌ HTTP 服务启动失败: %v", err)
	}
}
