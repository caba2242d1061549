package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"HustleHeroes/config"
	"HustleHeroes/internal/cache"
	"HustleHeroes/internal/model"
	"HustleHeroes/internal/model/dto"
	"HustleHeroes/internal/repository"
	"HustleHeroes/pkg/logger"
)

// standbyDisclaimer 候补席位的展示告知文案，随岗位详情返回
const standbyDisclaimer = "Standby seats are not confirmed bookings. You will only be activated if a confirmed worker cancels, and an activation bonus is added when you complete an activated shift."

// CatalogService 岗位浏览只读投影。查询走只读副本，
// 详情带 redis 缓存，名额计数允许短暂滞后，下单仍以分配事务为准。
type CatalogService struct {
	store       repository.Store
	detailCache *cache.ProtectedCache
	now         func() time.Time
}

var (
	catalogService *CatalogService
	catalogOnce    sync.Once
)

// Catalog 获取岗位浏览服务单例
func Catalog() *CatalogService {
	catalogOnce.Do(func() {
		svc := NewCatalogService(repository.NewStore())
		svc.detailCache = cache.NewProtectedCache("job:detail",
			time.Duration(config.Cfg.JobDetailCacheTTLSec)*time.Second)
		catalogService = svc
	})
	return catalogService
}

func NewCatalogService(store repository.Store) *CatalogService {
	return &CatalogService{store: store, now: time.Now}
}

// ListJobs 返回可报名岗位列表
func (s *CatalogService) ListJobs(ctx context.Context, limit, offset int) ([]*dto.JobItem, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	jobs, total, err := s.store.ListActiveJobs(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	today := s.now().Format("2006-01-02")
	items := make([]*dto.JobItem, 0, len(jobs))
	for _, job := range jobs {
		occs, err := s.store.ListOpenOccurrences(ctx, job.ID, today)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, &dto.JobItem{
			JobID:        job.ID,
			Name:         job.Name,
			Industry:     job.Industry,
			ShortAddress: job.ShortAddress,
			SlotLabel:    jobSlotLabel(occs),
		})
	}
	return items, total, nil
}

// JobDetail 返回岗位详情与各开班日的剩余名额
func (s *CatalogService) JobDetail(ctx context.Context, jobID int64) (*dto.JobDetail, error) {
	cacheKey := fmt.Sprintf("%d", jobID)
	if s.detailCache != nil {
		var cached dto.JobDetail
		hit, err := s.detailCache.Get(ctx, cacheKey, &cached)
		if err != nil {
			logger.Logger.Warn("Failed to read job detail cache", zap.Int64("job_id", jobID), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	detail, err := s.buildJobDetail(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if s.detailCache != nil {
		if err := s.detailCache.Set(ctx, cacheKey, detail); err != nil {
			logger.Logger.Warn("Failed to cache job detail", zap.Int64("job_id", jobID), zap.Error(err))
		}
	}
	return detail, nil
}

func (s *CatalogService) buildJobDetail(ctx context.Context, jobID int64) (*dto.JobDetail, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	shifts, err := s.store.ListJobShifts(ctx, jobID)
	if err != nil {
		return nil, err
	}
	shiftByID := make(map[int64]*model.Shift, len(shifts))
	for _, shift := range shifts {
		shiftByID[shift.ID] = shift
	}

	occs, err := s.store.ListOpenOccurrences(ctx, jobID, s.now().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	slots := make([]dto.ShiftSlot, 0, len(occs))
	hasStandby := false
	for _, occ := range occs {
		shift, ok := shiftByID[occ.ShiftID]
		if !ok {
			continue
		}
		slot := dto.ShiftSlot{
			ShiftID:          occ.ShiftID,
			Date:             occ.Date,
			StartClock:       shift.StartClock,
			EndClock:         shift.EndClock,
			PayRate:          shift.PayRate,
			RateType:         string(shift.RateType),
			TotalWage:        shift.ComputeTotalWage(),
			RemainingPrimary: occ.RemainingPrimary(),
			RemainingStandby: occ.RemainingStandby(),
			StandbyAvailable: occ.RemainingPrimary() == 0 && occ.RemainingStandby() > 0,
			SlotLabel:        occSlotLabel(occ),
		}
		if slot.StandbyAvailable {
			hasStandby = true
		}
		slots = append(slots, slot)
	}

	detail := &dto.JobDetail{
		JobID:     job.ID,
		Name:      job.Name,
		Industry:  job.Industry,
		Address:   job.Address,
		Latitude:  job.Latitude,
		Longitude: job.Longitude,
		Slots:     slots,
	}
	if hasStandby {
		detail.StandbyDisclaimer = standbyDisclaimer
	}
	return detail, nil
}

// occSlotLabel 单个开班日的名额文案
func occSlotLabel(occ *model.ShiftOccurrence) string {
	switch {
	case occ.RemainingPrimary() > 0:
		return fmt.Sprintf("%d slots left", occ.RemainingPrimary())
	case occ.RemainingStandby() > 0:
		return "Standby only"
	default:
		return "Fully booked"
	}
}

// jobSlotLabel 岗位级别的名额聚合文案
func jobSlotLabel(occs []*model.ShiftOccurrence) string {
	if len(occs) == 0 {
		return "No upcoming shifts"
	}
	primary, standby := 0, 0
	for _, occ := range occs {
		primary += occ.RemainingPrimary()
		standby += occ.RemainingStandby()
	}
	switch {
	case primary > 0:
		return fmt.Sprintf("%d open seats", primary)
	case standby > 0:
		return "Standby only"
	default:
		return "Fully booked"
	}
}
