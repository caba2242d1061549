package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"HustleHeroes/config"
	"HustleHeroes/internal/attendance"
	"HustleHeroes/internal/capacity"
	"HustleHeroes/internal/lifecycle"
	"HustleHeroes/internal/model"
	"HustleHeroes/internal/model/dto"
	"HustleHeroes/internal/policy"
	"HustleHeroes/internal/queue"
	"HustleHeroes/internal/repository"
	"HustleHeroes/pkg/errors"
	"HustleHeroes/pkg/geo"
	"HustleHeroes/pkg/logger"
	"HustleHeroes/pkg/metrics"
	"HustleHeroes/pkg/qrcode"
	"HustleHeroes/pkg/snowflake"
)

const dateLayout = "2006-01-02"

// AllocationService 班次分配核心：报名、取消、打卡、完成、爽约。
// 所有写路径都经由 guard + InOccurrence 的双层串行区，
// 名额计数器的每次读改写因此在单个开班实例上全序执行。
type AllocationService struct {
	store     repository.Store
	publisher EventPublisher
	guard     *capacity.Guard

	maxRetries int
	retryDelay time.Duration

	newID func() (int64, error)
	now   func() time.Time
}

var (
	allocationService *AllocationService
	allocationOnce    sync.Once
)

// Allocation 获取分配服务单例
func Allocation() *AllocationService {
	allocationOnce.Do(func() {
		allocationService = NewAllocationService(repository.NewStore(), queue.NewProducer())
	})
	return allocationService
}

func NewAllocationService(store repository.Store, publisher EventPublisher) *AllocationService {
	return &AllocationService{
		store:      store,
		publisher:  publisher,
		guard:      capacity.NewGuard(),
		maxRetries: config.Cfg.AllocationMaxRetries,
		retryDelay: time.Duration(config.Cfg.AllocationRetryDelayMs) * time.Millisecond,
		newID:      snowflake.NextID,
		now:        time.Now,
	}
}

// withOccurrence 在一个开班实例的串行区内执行 fn。
// 数据库侧的行锁竞争以 ConcurrencyConflict 透出，这里做有限次重试。
func (s *AllocationService) withOccurrence(ctx context.Context, shiftID int64, date string, fn func(tx repository.OccurrenceTx) error) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}

		unlock := s.guard.Lock(shiftID, date)
		err = s.store.InOccurrence(ctx, shiftID, date, fn)
		unlock()

		if err != errors.ConcurrencyConflict {
			return err
		}
		metrics.RecordAllocationRetry(ctx)
		logger.Logger.Warn("occurrence transaction conflict, retrying",
			zap.Int64("shift_id", shiftID),
			zap.String("date", date),
			zap.Int("attempt", attempt+1))
	}
	return err
}

// Apply 报名班次。非候补请求正选满员时自动回落候补；
// 显式候补请求只在正选满员时成立。
func (s *AllocationService) Apply(ctx context.Context, workerID int64, req *dto.ApplyRequest) (*dto.ApplyData, error) {
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return nil, errors.InvalidRequest
	}

	worker, err := s.store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if worker.Status != model.WorkerStatusActive {
		return nil, errors.Unauthorized
	}
	if !worker.ProfileCompleted {
		return nil, errors.ProfileIncomplete
	}

	shift, err := s.store.GetShift(ctx, req.ShiftID)
	if err != nil {
		return nil, err
	}

	var (
		created  *model.Application
		occStart time.Time
	)
	err = s.withOccurrence(ctx, req.ShiftID, req.Date, func(tx repository.OccurrenceTx) error {
		occ := tx.Occurrence()
		occStart = occ.StartAt
		now := s.now()
		if !now.Before(occ.StartAt) {
			return errors.ShiftAlreadyStarted
		}

		existing, err := tx.ActiveApplication(workerID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.DuplicateApplication
		}

		seat, err := capacity.Reserve(occ, req.IsStandby)
		if err != nil {
			return err
		}

		publicID, err := s.newID()
		if err != nil {
			return fmt.Errorf("failed to generate application id: %w", err)
		}

		app := lifecycle.New(publicID, workerID, shift, req.Date, seat, now)
		if err := tx.CreateApplication(app); err != nil {
			return err
		}
		if err := capacity.CheckInvariant(occ); err != nil {
			return err
		}
		if err := tx.SaveOccurrence(occ); err != nil {
			return err
		}

		created = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishApplicationEvent(ctx, model.ApplicationEventApplied, created, 0)
	if created.SeatKind == model.SeatKindPrimary {
		s.scheduleNoShowCheck(ctx, created, occStart)
	}

	data := &dto.ApplyData{
		ApplicationID: strconv.FormatInt(created.PublicID, 10),
		SeatKind:      string(created.SeatKind),
	}
	if created.SeatKind == model.SeatKindStandby {
		data.StandbyBonus = config.Cfg.StandbyActivationBonus
	}
	return data, nil
}

// Cancel 取消申请。罚金按取消时刻距开班的提前量分档，
// 释放的正选座位在同一事务内转给等待最久的候补。
func (s *AllocationService) Cancel(ctx context.Context, workerID, applicationID int64, req *dto.CancelRequest) (*dto.CancelData, error) {
	reason := model.CancelReason(req.Reason)
	if !model.ValidCancelReason(reason) {
		return nil, errors.InvalidCancelReason
	}

	head, err := s.ownedApplication(ctx, workerID, applicationID)
	if err != nil {
		return nil, err
	}

	var (
		cancelled *model.Application
		promoted  *model.Application
		count     int
		occStart  time.Time
	)
	err = s.withOccurrence(ctx, head.ShiftID, head.Date, func(tx repository.OccurrenceTx) error {
		app, err := tx.FindApplication(applicationID)
		if err != nil {
			return err
		}
		if app.Status.IsTerminal() {
			return errors.AlreadyTerminal
		}

		occ := tx.Occurrence()
		occStart = occ.StartAt
		now := s.now()

		c, err := tx.BumpWorkerCancellation(app.WorkerID)
		if err != nil {
			return err
		}
		penalty, label := policy.PenaltyFor(occ.StartAt, now, c-1)

		seat := app.SeatKind
		if err := lifecycle.Cancel(app, reason, req.Detail, req.EvidenceRef, penalty, label, c, now); err != nil {
			return err
		}
		if err := capacity.Release(occ, seat); err != nil {
			return err
		}

		// 空出的正选座位转给等待最久的候补
		var next *model.Application
		if seat == model.SeatKindPrimary {
			next, err = tx.OldestWaitingStandby()
			if err != nil {
				return err
			}
			if next != nil {
				if err := capacity.Promote(occ); err != nil {
					return err
				}
				if err := lifecycle.Activate(next, now); err != nil {
					return err
				}
				if err := tx.SaveApplication(next); err != nil {
					return err
				}
			}
		}

		if err := capacity.CheckInvariant(occ); err != nil {
			return err
		}
		if err := tx.SaveApplication(app); err != nil {
			return err
		}
		if err := tx.SaveOccurrence(occ); err != nil {
			return err
		}

		cancelled, promoted, count = app, next, c
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPenalty(ctx, cancelled.Penalty, cancelled.PenaltyLabel)
	s.publishApplicationEvent(ctx, model.ApplicationEventCancelled, cancelled, 0)
	s.publishWorkerCancellation(ctx, cancelled, count)
	if promoted != nil {
		metrics.RecordStandbyPromotion(ctx)
		s.publishApplicationEvent(ctx, model.ApplicationEventPromoted, promoted, config.Cfg.StandbyActivationBonus)
		s.scheduleNoShowCheck(ctx, promoted, occStart)
	}

	return &dto.CancelData{
		Penalty:      cancelled.Penalty,
		PenaltyLabel: cancelled.PenaltyLabel,
		CancelledAt:  *cancelled.CancelledAt,
	}, nil
}

// ClockIn 扫码打卡上班。二维码、地理围栏、席位状态三重校验。
func (s *AllocationService) ClockIn(ctx context.Context, workerID, applicationID int64, req *dto.ClockInRequest) (*dto.ClockInData, error) {
	claims, err := qrcode.Validate(req.QRToken)
	if err != nil {
		return nil, err
	}

	head, err := s.ownedApplication(ctx, workerID, applicationID)
	if err != nil {
		return nil, err
	}
	job, err := s.store.GetJob(ctx, head.JobID)
	if err != nil {
		return nil, err
	}

	var event *model.AttendanceEvent
	err = s.withOccurrence(ctx, head.ShiftID, head.Date, func(tx repository.OccurrenceTx) error {
		app, err := tx.FindApplication(applicationID)
		if err != nil {
			return err
		}

		ev, err := attendance.ClockIn(app, attendance.ClockInParams{
			Job:     job,
			Occ:     tx.Occurrence(),
			QR:      claims,
			Point:   geo.Point{Latitude: req.Latitude, Longitude: req.Longitude},
			RadiusM: config.Cfg.GeofenceRadiusM,
			Now:     s.now(),
		})
		if err != nil {
			return err
		}

		if err := tx.SaveApplication(app); err != nil {
			return err
		}
		if err := tx.AppendAttendance(ev); err != nil {
			return err
		}
		event = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.ClockInData{
		ClockInTime: event.OccurredAt,
		IsLate:      event.IsLate,
	}, nil
}

// ClockOut 下班打卡。不迁移申请状态，完成由单独的 Complete 动作确认。
func (s *AllocationService) ClockOut(ctx context.Context, workerID, applicationID int64) (*dto.ClockOutData, error) {
	head, err := s.ownedApplication(ctx, workerID, applicationID)
	if err != nil {
		return nil, err
	}

	var event *model.AttendanceEvent
	err = s.withOccurrence(ctx, head.ShiftID, head.Date, func(tx repository.OccurrenceTx) error {
		app, err := tx.FindApplication(applicationID)
		if err != nil {
			return err
		}

		ev, err := attendance.ClockOut(app, tx.Occurrence(), s.now())
		if err != nil {
			return err
		}

		if err := tx.SaveApplication(app); err != nil {
			return err
		}
		if err := tx.AppendAttendance(ev); err != nil {
			return err
		}
		event = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.ClockOutData{
		ClockOutTime: event.OccurredAt,
		IsEarlyLeave: event.IsEarlyLeave,
	}, nil
}

// Complete 确认完成。要求已下班打卡；名额计数器保持不动，
// 已完成的座位计入当日上座率。
func (s *AllocationService) Complete(ctx context.Context, workerID, applicationID int64) (*dto.CompleteData, error) {
	head, err := s.ownedApplication(ctx, workerID, applicationID)
	if err != nil {
		return nil, err
	}

	var completed *model.Application
	err = s.withOccurrence(ctx, head.ShiftID, head.Date, func(tx repository.OccurrenceTx) error {
		app, err := tx.FindApplication(applicationID)
		if err != nil {
			return err
		}
		if err := lifecycle.Complete(app, s.now()); err != nil {
			return err
		}
		if err := tx.SaveApplication(app); err != nil {
			return err
		}
		completed = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	bonus := 0
	if completed.ActivatedAt != nil {
		bonus = config.Cfg.StandbyActivationBonus
	}
	s.publishApplicationEvent(ctx, model.ApplicationEventCompleted, completed, bonus)

	return &dto.CompleteData{
		CompletedAt:  *completed.CompletedAt,
		StandbyBonus: bonus,
	}, nil
}

// SweepNoShows 扫描开班已超过宽限期仍无上班打卡的申请并标记爽约。
// 由 scheduler 周期调用，单条失败不中断整轮。
func (s *AllocationService) SweepNoShows(ctx context.Context) (int, error) {
	grace := time.Duration(config.Cfg.NoShowGraceMinutes) * time.Minute
	candidates, err := s.store.NoShowCandidates(ctx, s.now().Add(-grace))
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, candidate := range candidates {
		if err := s.markNoShow(ctx, candidate); err != nil {
			logger.Logger.Error("failed to mark no-show",
				zap.Int64("application_id", candidate.PublicID),
				zap.Error(err))
			continue
		}
		marked++
	}
	metrics.RecordNoShowMarked(ctx, marked)
	return marked, nil
}

// CheckNoShow 单个申请的定点爽约检查，由延迟消息驱动，和周期扫描互补。
// 已打卡、已终态或消息早到都直接跳过。
func (s *AllocationService) CheckNoShow(ctx context.Context, applicationID int64) error {
	app, err := s.store.GetApplicationByPublicID(ctx, applicationID)
	if err != nil {
		if err == errors.ApplicationNotFound {
			return nil
		}
		return err
	}

	occ, err := s.store.GetOccurrence(ctx, app.ShiftID, app.Date)
	if err != nil {
		return err
	}

	grace := time.Duration(config.Cfg.NoShowGraceMinutes) * time.Minute
	if s.now().Before(occ.StartAt.Add(grace)) {
		// 消息早到，留给周期扫描兜底
		return nil
	}

	return s.markNoShow(ctx, app)
}

// scheduleNoShowCheck 为确认的正选座位挂一条延迟检查消息，
// 开班加宽限期后触发，比周期扫描更及时
func (s *AllocationService) scheduleNoShowCheck(ctx context.Context, app *model.Application, startAt time.Time) {
	id, err := s.newID()
	if err != nil {
		logger.Logger.Error("failed to generate message id", zap.Error(err))
		return
	}

	due := startAt.Add(time.Duration(config.Cfg.NoShowGraceMinutes) * time.Minute)
	delay := due.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	msg := &model.NoShowCheckMessage{
		MessageID:     strconv.FormatInt(id, 10),
		ApplicationID: app.PublicID,
		WorkerID:      app.WorkerID,
		ShiftID:       app.ShiftID,
		Date:          app.Date,
		ScheduledFor:  due.Format(time.RFC3339),
	}
	if err := s.publisher.PublishNoShowCheck(ctx, msg, delay); err != nil {
		logger.Logger.Error("failed to schedule no-show check",
			zap.Int64("application_id", app.PublicID),
			zap.Error(err))
	}
}

func (s *AllocationService) markNoShow(ctx context.Context, head *model.Application) error {
	var marked *model.Application
	err := s.withOccurrence(ctx, head.ShiftID, head.Date, func(tx repository.OccurrenceTx) error {
		app, err := tx.FindApplication(head.PublicID)
		if err != nil {
			return err
		}
		// 扫描快照可能滞后，命中守卫直接跳过
		if err := lifecycle.MarkNoShow(app, policy.NoShowRule.Amount, policy.NoShowRule.Label, s.now()); err != nil {
			return err
		}
		if err := tx.SaveApplication(app); err != nil {
			return err
		}
		marked = app
		return nil
	})
	if err != nil {
		if err == errors.AlreadyTerminal || err == errors.NotUpcoming {
			return nil
		}
		return err
	}

	s.publishApplicationEvent(ctx, model.ApplicationEventNoShow, marked, 0)
	return nil
}

// ListApplications 查询工人的申请列表
func (s *AllocationService) ListApplications(ctx context.Context, workerID int64, query *dto.ApplicationQuery) ([]*dto.ApplicationItem, int64, error) {
	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	apps, total, err := s.store.ListWorkerApplications(ctx, workerID, query.Status, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ApplicationItem, 0, len(apps))
	for _, app := range apps {
		items = append(items, &dto.ApplicationItem{
			ApplicationID: strconv.FormatInt(app.PublicID, 10),
			JobID:         app.JobID,
			ShiftID:       app.ShiftID,
			Date:          app.Date,
			SeatKind:      string(app.SeatKind),
			Status:        string(app.Status),
			AppliedAt:     app.AppliedAt,
			ClockInTime:   app.ClockInTime,
			ClockOutTime:  app.ClockOutTime,
			Penalty:       app.Penalty,
			PenaltyLabel:  app.PenaltyLabel,
		})
	}
	return items, total, nil
}

// ownedApplication 校验申请归属，不泄露他人申请的存在性
func (s *AllocationService) ownedApplication(ctx context.Context, workerID, applicationID int64) (*model.Application, error) {
	app, err := s.store.GetApplicationByPublicID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.WorkerID != workerID {
		return nil, errors.ApplicationNotFound
	}
	return app, nil
}

func (s *AllocationService) publishApplicationEvent(ctx context.Context, eventType model.ApplicationEventType, app *model.Application, bonus int) {
	id, err := s.newID()
	if err != nil {
		logger.Logger.Error("failed to generate message id", zap.Error(err))
		return
	}

	msg := &model.ApplicationEventMessage{
		MessageID:     strconv.FormatInt(id, 10),
		EventType:     eventType,
		ApplicationID: app.PublicID,
		WorkerID:      app.WorkerID,
		JobID:         app.JobID,
		ShiftID:       app.ShiftID,
		Date:          app.Date,
		SeatKind:      app.SeatKind,
		Penalty:       app.Penalty,
		PenaltyLabel:  app.PenaltyLabel,
		StandbyBonus:  bonus,
		OccurredAt:    s.now().Format(time.RFC3339),
	}
	metrics.RecordApplicationEvent(ctx, string(eventType), string(app.SeatKind))
	if err := s.publisher.PublishApplicationEvent(ctx, msg); err != nil {
		logger.Logger.Error("failed to publish application event",
			zap.String("event_type", string(eventType)),
			zap.Int64("application_id", app.PublicID),
			zap.Error(err))
	}
}

func (s *AllocationService) publishWorkerCancellation(ctx context.Context, app *model.Application, count int) {
	id, err := s.newID()
	if err != nil {
		logger.Logger.Error("failed to generate message id", zap.Error(err))
		return
	}

	msg := &model.WorkerCancellationMessage{
		MessageID:         strconv.FormatInt(id, 10),
		WorkerID:          app.WorkerID,
		ApplicationID:     app.PublicID,
		ShiftID:           app.ShiftID,
		Date:              app.Date,
		Penalty:           app.Penalty,
		PenaltyLabel:      app.PenaltyLabel,
		CancellationCount: count,
		OccurredAt:        s.now().Format(time.RFC3339),
	}
	if err := s.publisher.PublishWorkerCancellation(ctx, msg); err != nil {
		logger.Logger.Error("failed to publish worker cancellation",
			zap.Int64("worker_id", app.WorkerID),
			zap.Error(err))
	}
}
