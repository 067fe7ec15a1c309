package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"khatib-jumat/config"
	"khatib-jumat/internal/api/handler"
	"khatib-jumat/internal/api/middleware"
	"khatib-jumat/internal/api/router"
	"khatib-jumat/internal/repository"
	"khatib-jumat/internal/service"
	"khatib-jumat/pkg/database"
	applogger "khatib-jumat/pkg/logger"
	"khatib-jumat/pkg/metrics"
	"khatib-jumat/pkg/redis"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Jadwal khatib Jum'at",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（YAML）")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	})
	cmd.AddCommand(migrateCmd(&configPath))
	cmd.AddCommand(slotsCmd())

	return cmd
}

// bootstrap 加载配置并初始化日志
func bootstrap(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, logger, nil
}

func serve(configPath string) error {
	// 1. 加载配置 + 初始化日志
	cfg, logger, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Int("default_year", cfg.Schedule.Year),
	)

	// 2. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	defer sqlDB.Close()

	// 2.1 执行数据库迁移
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	// 3. 连接 Redis（可选：未启用或连接失败时不限流、不缓存）
	var (
		cache   service.RegistrationCache
		limiter middleware.RateLimiter
		pinger  handler.CachePinger
	)
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，限流与缓存将不可用", zap.Error(err))
		} else {
			defer rdb.Close()
			cache, limiter, pinger = rdb, rdb, rdb
		}
	}

	// 4. 依赖注入: Repository → Service → Handler
	m := metrics.New()
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, cache, m, logger)
	h := handler.NewHandler(svc, sqlDB, pinger)

	// 5. 初始化路由
	engine := router.Setup(cfg, h, limiter, m, logger)

	// 6. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 7. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP 服务器异常: %w", err)
	case sig := <-quit:
		logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
	return nil
}
