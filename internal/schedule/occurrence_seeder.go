package schedule

// 开班实例预生成：按班次模板向前滚动生成 (shift, date) 实例，
// 报名、打卡、爽约扫描都以实例行作为名额账本

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"HustleHeroes/config"
	"HustleHeroes/internal/cache"
	"HustleHeroes/internal/model"
	"HustleHeroes/pkg/logger"
	"HustleHeroes/storage/database"
)

const occurrenceSeedLockKey = "occurrence:seed"

var (
	seederOnce sync.Once
	seederInst *OccurrenceSeeder
)

type OccurrenceSeeder struct {
	logger      *zap.Logger
	seedRunning bool
	seedMu      sync.Mutex
}

func GetOccurrenceSeeder() *OccurrenceSeeder {
	seederOnce.Do(func() {
		seederInst = &OccurrenceSeeder{
			logger: logger.Logger,
		}
	})
	return seederInst
}

// SeedOccurrences 为所有在招岗位的班次生成未来 OCCURRENCE_SEED_DAYS 天的开班实例。
// 已存在的 (shift, date) 行跳过，不会覆盖已分配的名额计数。
func (s *OccurrenceSeeder) SeedOccurrences(ctx context.Context) error {
	s.seedMu.Lock()
	if s.seedRunning {
		s.seedMu.Unlock()
		s.logger.Info("Occurrence seeding already running, skipping")
		return nil
	}
	s.seedRunning = true
	s.seedMu.Unlock()

	defer func() {
		s.seedMu.Lock()
		s.seedRunning = false
		s.seedMu.Unlock()
	}()

	acquired, err := cache.TryLock(ctx, occurrenceSeedLockKey, 10*time.Minute)
	if err != nil {
		s.logger.Error("Failed to acquire occurrence seed lock", zap.Error(err))
		return err
	}
	if !acquired {
		s.logger.Info("Occurrence seed lock held by another instance, skipping")
		return nil
	}
	defer func() {
		if err := cache.Unlock(context.Background(), occurrenceSeedLockKey); err != nil {
			s.logger.Warn("Failed to release occurrence seed lock", zap.Error(err))
		}
	}()

	db := database.DB().WithContext(ctx)

	var shifts []*model.Shift
	err = db.
		Joins("JOIN jobs ON jobs.id = shifts.job_id").
		Where("jobs.status = ?", model.JobStatusActive).
		Find(&shifts).Error
	if err != nil {
		return fmt.Errorf("failed to load shifts: %w", err)
	}

	now := time.Now()
	seedDays := config.Cfg.OccurrenceSeedDays
	created := 0

	for _, shift := range shifts {
		for offset := 0; offset < seedDays; offset++ {
			date := now.AddDate(0, 0, offset).Format("2006-01-02")
			startAt, endAt, err := occurrenceWindow(date, shift.StartClock, shift.EndClock, now.Location())
			if err != nil {
				s.logger.Warn("Skipping shift with unparsable clock",
					zap.Int64("shift_id", shift.ID),
					zap.Error(err),
				)
				break
			}

			occ := &model.ShiftOccurrence{
				ShiftID:        shift.ID,
				JobID:          shift.JobID,
				Date:           date,
				StartAt:        startAt,
				EndAt:          endAt,
				Vacancy:        shift.Vacancy,
				StandbyVacancy: shift.StandbyVacancy,
			}

			result := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "shift_id"}, {Name: "date"}},
				DoNothing: true,
			}).Create(occ)
			if result.Error != nil {
				s.logger.Error("Failed to seed occurrence",
					zap.Int64("shift_id", shift.ID),
					zap.String("date", date),
					zap.Error(result.Error),
				)
				continue
			}
			created += int(result.RowsAffected)
		}
	}

	s.logger.Info("Occurrence seeding completed",
		zap.Int("shifts", len(shifts)),
		zap.Int("created", created),
	)
	return nil
}

// occurrenceWindow 由班次模板的挂钟时间推导某个日期的开班窗口。
// 结束时间不晚于开始时间视为跨夜班，结束日顺延一天。
func occurrenceWindow(date, startClock, endClock string, loc *time.Location) (time.Time, time.Time, error) {
	startAt, err := time.ParseInLocation("2006-01-02 15:04", date+" "+startClock, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start clock %q: %w", startClock, err)
	}
	endAt, err := time.ParseInLocation("2006-01-02 15:04", date+" "+endClock, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end clock %q: %w", endClock, err)
	}
	if !endAt.After(startAt) {
		endAt = endAt.AddDate(0, 0, 1)
	}
	return startAt, endAt, nil
}
