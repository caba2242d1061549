package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"HustleHeroes/config"
	"HustleHeroes/internal/schedule"
	"HustleHeroes/pkg/logger"
	"HustleHeroes/pkg/metrics"
	"HustleHeroes/pkg/snowflake"
	"HustleHeroes/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize domain metrics", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", "hustleheroes-scheduler"),
		zap.String("environment", config.Cfg.Environment),
	)

	go runNoShowSweepLoop(ctx)
	go runOccurrenceSeedLoop(ctx)

	<-ctx.Done()

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

// runNoShowSweepLoop 周期性扫描爽约申请
func runNoShowSweepLoop(ctx context.Context) {
	s := schedule.GetNoShowScheduler()

	interval := time.Duration(config.Cfg.NoShowSweepIntervalMin) * time.Minute
	if config.Cfg.Environment == "development" {
		interval = 1 * time.Minute
		logger.Logger.Info("No-show sweep loop running in development mode with 1m interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			if err := s.SweepNoShows(runCtx); err != nil {
				logger.Logger.Error("No-show sweep run failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// runOccurrenceSeedLoop 每天固定时间滚动生成开班实例
// 当前实现：每天本地时间 00:05 触发一次，启动时先补一轮
func runOccurrenceSeedLoop(ctx context.Context) {
	seeder := schedule.GetOccurrenceSeeder()

	// 启动时先补种一轮，避免新部署后当天没有可报名的实例
	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	if err := seeder.SeedOccurrences(startupCtx); err != nil {
		logger.Logger.Error("Startup occurrence seeding failed", zap.Error(err))
	}
	cancel()

	if config.Cfg.Environment == "development" {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		logger.Logger.Info("Occurrence seed loop running in development mode with 1m interval")

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
				if err := seeder.SeedOccurrences(runCtx); err != nil {
					logger.Logger.Error("Occurrence seeding run failed (development interval)", zap.Error(err))
				}
				cancel()
			}
		}
	}

	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 5, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		delay := time.Until(next)
		logger.Logger.Info("Scheduled next occurrence seeding run",
			zap.Time("now", now),
			zap.Time("next_run", next),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			if err := seeder.SeedOccurrences(runCtx); err != nil {
				logger.Logger.Error("Occurrence seeding run failed", zap.Error(err))
			}
			cancel()
		}
	}
}
