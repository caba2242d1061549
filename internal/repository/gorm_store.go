package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"HustleHeroes/internal/model"
	"HustleHeroes/pkg/errors"
	"HustleHeroes/storage/database"
)

// pgLockNotAvailable 行锁 NOWAIT 抢占失败的 SQLSTATE
const pgLockNotAvailable = "55P03"

type gormStore struct {
	db *gorm.DB
}

// NewStore 创建基于 GORM 的存储实现
func NewStore() Store {
	return &gormStore{db: database.DB()}
}

func (s *gormStore) GetWorker(ctx context.Context, id int64) (*model.Worker, error) {
	var worker model.Worker
	err := s.db.WithContext(ctx).Where("public_id = ?", id).First(&worker).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WorkerNotFound
		}
		return nil, err
	}
	return &worker, nil
}

func (s *gormStore) GetShift(ctx context.Context, id int64) (*model.Shift, error) {
	var shift model.Shift
	err := s.db.WithContext(ctx).First(&shift, id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ShiftNotFound
		}
		return nil, err
	}
	return &shift, nil
}

func (s *gormStore) GetJob(ctx context.Context, id int64) (*model.Job, error) {
	var job model.Job
	err := s.db.WithContext(ctx).First(&job, id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.JobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (s *gormStore) GetOccurrence(ctx context.Context, shiftID int64, date string) (*model.ShiftOccurrence, error) {
	var occ model.ShiftOccurrence
	err := s.db.WithContext(ctx).
		Where("shift_id = ? AND date = ?", shiftID, date).
		First(&occ).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.OccurrenceNotFound
		}
		return nil, err
	}
	return &occ, nil
}

func (s *gormStore) GetApplicationByPublicID(ctx context.Context, publicID int64) (*model.Application, error) {
	var app model.Application
	err := s.db.WithContext(ctx).Where("public_id = ?", publicID).First(&app).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (s *gormStore) ListWorkerApplications(ctx context.Context, workerID int64, status string, limit, offset int) ([]*model.Application, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Application{}).Where("worker_id = ?", workerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []*model.Application
	err := query.Order("applied_at DESC").Limit(limit).Offset(offset).Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (s *gormStore) ListActiveJobs(ctx context.Context, limit, offset int) ([]*model.Job, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Job{}).Where("status = ?", model.JobStatusActive)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []*model.Job
	err := query.Order("id ASC").Limit(limit).Offset(offset).Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (s *gormStore) ListJobShifts(ctx context.Context, jobID int64) ([]*model.Shift, error) {
	var shifts []*model.Shift
	err := s.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("start_clock ASC").
		Find(&shifts).Error
	if err != nil {
		return nil, err
	}
	return shifts, nil
}

func (s *gormStore) ListOpenOccurrences(ctx context.Context, jobID int64, fromDate string) ([]*model.ShiftOccurrence, error) {
	var occs []*model.ShiftOccurrence
	err := s.db.WithContext(ctx).
		Where("job_id = ? AND date >= ?", jobID, fromDate).
		Order("date ASC, shift_id ASC").
		Find(&occs).Error
	if err != nil {
		return nil, err
	}
	return occs, nil
}

func (s *gormStore) SaveQRCode(ctx context.Context, qr *model.ShiftQRCode) error {
	return s.db.WithContext(ctx).Create(qr).Error
}

// InOccurrence 锁定开班实例行后执行回调。NOWAIT 抢锁：
// 拿不到立即返回 ConcurrencyConflict，让上层带退避重试，
// 避免高峰期报名请求在数据库里排长队。
func (s *gormStore) InOccurrence(ctx context.Context, shiftID int64, date string, fn func(tx OccurrenceTx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var occ model.ShiftOccurrence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
			Where("shift_id = ? AND date = ?", shiftID, date).
			First(&occ).Error
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.OccurrenceNotFound
			}
			return err
		}

		return fn(&gormOccurrenceTx{tx: tx, occ: &occ})
	})

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
		return errors.ConcurrencyConflict
	}
	return err
}

func (s *gormStore) NoShowCandidates(ctx context.Context, startedBefore time.Time) ([]*model.Application, error) {
	var apps []*model.Application
	err := s.db.WithContext(ctx).
		Joins("JOIN shift_occurrences o ON o.shift_id = applications.shift_id AND o.date = applications.date").
		Where("applications.status = ?", model.ApplicationStatusUpcoming).
		Where("applications.clock_in_time IS NULL").
		Where("applications.is_standby = false").
		Where("o.start_at < ?", startedBefore).
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

type gormOccurrenceTx struct {
	tx  *gorm.DB
	occ *model.ShiftOccurrence
}

func (t *gormOccurrenceTx) Occurrence() *model.ShiftOccurrence {
	return t.occ
}

func (t *gormOccurrenceTx) FindApplication(publicID int64) (*model.Application, error) {
	var app model.Application
	err := t.tx.Where("public_id = ?", publicID).First(&app).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (t *gormOccurrenceTx) ActiveApplication(workerID int64) (*model.Application, error) {
	var app model.Application
	err := t.tx.
		Where("worker_id = ? AND shift_id = ? AND date = ?", workerID, t.occ.ShiftID, t.occ.Date).
		Where("status = ? AND applied_status = ?", model.ApplicationStatusUpcoming, model.AppliedStatusApplied).
		First(&app).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (t *gormOccurrenceTx) OldestWaitingStandby() (*model.Application, error) {
	var app model.Application
	err := t.tx.
		Where("shift_id = ? AND date = ?", t.occ.ShiftID, t.occ.Date).
		Where("status = ? AND is_standby = true", model.ApplicationStatusUpcoming).
		// id 兜底排序，applied_at 同一毫秒落库时提升顺序仍然确定
		Order("applied_at ASC, id ASC").
		First(&app).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (t *gormOccurrenceTx) CreateApplication(app *model.Application) error {
	return t.tx.Create(app).Error
}

func (t *gormOccurrenceTx) SaveApplication(app *model.Application) error {
	return t.tx.Save(app).Error
}

func (t *gormOccurrenceTx) SaveOccurrence(occ *model.ShiftOccurrence) error {
	return t.tx.Save(occ).Error
}

func (t *gormOccurrenceTx) AppendAttendance(ev *model.AttendanceEvent) error {
	return t.tx.Create(ev).Error
}

func (t *gormOccurrenceTx) BumpWorkerCancellation(workerID int64) (int, error) {
	result := t.tx.Model(&model.Worker{}).
		Where("public_id = ?", workerID).
		UpdateColumn("cancellation_count", gorm.Expr("cancellation_count + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, errors.WorkerNotFound
	}

	var worker model.Worker
	if err := t.tx.Where("public_id = ?", workerID).First(&worker).Error; err != nil {
		return 0, err
	}
	return worker.CancellationCount, nil
}
