package schedule

// 爽约调度器：定期扫描已开班但未打卡的正选申请，标记 no-show 并计罚

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"HustleHeroes/internal/cache"
	"HustleHeroes/internal/service"
	"HustleHeroes/pkg/logger"
)

const noShowSweepLockKey = "noshow:sweep"

var (
	noShowOnce sync.Once
	noShowInst *NoShowScheduler
)

type NoShowScheduler struct {
	logger        *zap.Logger
	sweepRunning  bool
	sweepMu       sync.Mutex
	lastSweepTime time.Time
}

func GetNoShowScheduler() *NoShowScheduler {
	noShowOnce.Do(func() {
		noShowInst = &NoShowScheduler{
			logger: logger.Logger,
		}
	})
	return noShowInst
}

// SweepNoShows 扫描一轮爽约申请。
// 进程内用 running 标记防重入，多实例部署用 redis 锁互斥。
func (s *NoShowScheduler) SweepNoShows(ctx context.Context) error {
	s.sweepMu.Lock()
	if s.sweepRunning {
		s.sweepMu.Unlock()
		s.logger.Info("No-show sweep already running, skipping")
		return nil
	}
	s.sweepRunning = true
	s.sweepMu.Unlock()

	defer func() {
		s.sweepMu.Lock()
		s.sweepRunning = false
		s.sweepMu.Unlock()
	}()

	acquired, err := cache.TryLock(ctx, noShowSweepLockKey, 5*time.Minute)
	if err != nil {
		s.logger.Error("Failed to acquire no-show sweep lock", zap.Error(err))
		return err
	}
	if !acquired {
		s.logger.Info("No-show sweep lock held by another instance, skipping")
		return nil
	}
	defer func() {
		if err := cache.Unlock(context.Background(), noShowSweepLockKey); err != nil {
			s.logger.Warn("Failed to release no-show sweep lock", zap.Error(err))
		}
	}()

	startTime := time.Now()
	s.lastSweepTime = startTime

	marked, err := service.Allocation().SweepNoShows(ctx)
	if err != nil {
		s.logger.Error("No-show sweep failed", zap.Error(err))
		return err
	}

	s.logger.Info("No-show sweep completed",
		zap.Int("marked", marked),
		zap.Duration("duration", time.Since(startTime)),
	)
	return nil
}
