package repository

import (
	"context"
	"time"

	"HustleHeroes/internal/model"
)

// Store 分配核心的持久化入口。GORM 实现在本包，
// service 层测试用内存实现替换。

// OccurrenceTx 一个开班实例内的事务视图。实现必须保证：
// 回调执行期间该实例的名额计数器被独占（行锁），回调返回错误则整体回滚。
type OccurrenceTx interface {
	// Occurrence 返回锁定中的开班实例，回调内对计数器的修改
	// 需经 SaveOccurrence 落库
	Occurrence() *model.ShiftOccurrence

	FindApplication(publicID int64) (*model.Application, error)
	// ActiveApplication 返回该工人在此实例上仍然有效的申请，没有返回 nil
	ActiveApplication(workerID int64) (*model.Application, error)
	// OldestWaitingStandby 返回报名最早、仍在等待的候补申请，没有返回 nil
	OldestWaitingStandby() (*model.Application, error)

	CreateApplication(app *model.Application) error
	SaveApplication(app *model.Application) error
	SaveOccurrence(occ *model.ShiftOccurrence) error
	AppendAttendance(ev *model.AttendanceEvent) error
	// BumpWorkerCancellation 累加工人取消次数并返回新值（仅审计用途）
	BumpWorkerCancellation(workerID int64) (int, error)
}

type Store interface {
	GetWorker(ctx context.Context, id int64) (*model.Worker, error)
	GetShift(ctx context.Context, id int64) (*model.Shift, error)
	GetJob(ctx context.Context, id int64) (*model.Job, error)
	GetOccurrence(ctx context.Context, shiftID int64, date string) (*model.ShiftOccurrence, error)
	GetApplicationByPublicID(ctx context.Context, publicID int64) (*model.Application, error)
	ListWorkerApplications(ctx context.Context, workerID int64, status string, limit, offset int) ([]*model.Application, int64, error)

	// 浏览侧只读投影，走只读副本
	ListActiveJobs(ctx context.Context, limit, offset int) ([]*model.Job, int64, error)
	ListJobShifts(ctx context.Context, jobID int64) ([]*model.Shift, error)
	// ListOpenOccurrences 返回岗位下 fromDate（含）起的开班实例，按日期升序
	ListOpenOccurrences(ctx context.Context, jobID int64, fromDate string) ([]*model.ShiftOccurrence, error)

	// SaveQRCode 落库一条打卡二维码签发记录（审计留痕）
	SaveQRCode(ctx context.Context, qr *model.ShiftQRCode) error

	// InOccurrence 在一个 (shift, date) 实例上开启串行事务。
	// 行锁拿不到时返回 ConcurrencyConflict，由调用方重试。
	InOccurrence(ctx context.Context, shiftID int64, date string, fn func(tx OccurrenceTx) error) error

	// NoShowCandidates 返回开班时间早于 startedBefore、仍未上班打卡、
	// 候补未转正除外的 upcoming 申请，供爽约扫描使用
	NoShowCandidates(ctx context.Context, startedBefore time.Time) ([]*model.Application, error)
}
