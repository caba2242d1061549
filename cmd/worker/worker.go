package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"HustleHeroes/config"
	"HustleHeroes/internal/queue"
	"HustleHeroes/internal/service"
	"HustleHeroes/pkg/logger"
	"HustleHeroes/pkg/metrics"
	"HustleHeroes/pkg/sms"
	"HustleHeroes/pkg/snowflake"
	"HustleHeroes/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := sms.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize SMS service", zap.Error(err))
		logger.Logger.Info("SMS service will be disabled, SMS notifications may not work")
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize domain metrics", zap.Error(err))
	}

	// 设置通知服务，所有消费者都需要这一环节
	queue.SetNotificationService(service.Notification())
	queue.SetNoShowChecker(service.Allocation())

	logger.Logger.Info("Worker service starting",
		zap.String("service", "hustleheroes-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	// 启动所有的消费者，阻塞到 ctx 取消
	queue.StartAllConsumers(ctx)

	logger.Logger.Info("Worker service shutting down gracefully")
}
