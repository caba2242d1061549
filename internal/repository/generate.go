package repository

import (
	"fmt"
	"os"

	"gorm.io/gen"

	"HustleHeroes/internal/model"
	"HustleHeroes/storage/database"
)

// 报表与后台侧的类型安全查询走 gorm.io/gen 生成的 query 包，
// 由 cmd/gen 按需重新生成。分配热路径不依赖生成代码。

// ========== Worker 相关查询接口 ==========

// WorkerQuerier 工人查询接口
type WorkerQuerier interface {
	// GetByPublicID 根据 PublicID 查询工人（API 中 workerID 是 public_id）
	//
	// SELECT * FROM @@table WHERE public_id = @publicID LIMIT 1
	GetByPublicID(publicID int64) (*gen.T, error)

	// ListByStatus 根据状态查询工人列表（管理后台）
	//
	// SELECT * FROM @@table
	// WHERE status = @status
	// ORDER BY created_at DESC
	// LIMIT @limit OFFSET @offset
	ListByStatus(status string, limit, offset int) ([]*gen.T, error)

	// ListFrequentCancellers 查询累计取消次数超过阈值的工人（报表）
	//
	// SELECT * FROM @@table
	// WHERE cancellation_count >= @threshold
	// ORDER BY cancellation_count DESC
	// LIMIT @limit
	ListFrequentCancellers(threshold, limit int) ([]*gen.T, error)
}

// ========== ShiftOccurrence 相关查询接口 ==========

// OccurrenceQuerier 开班实例查询接口
type OccurrenceQuerier interface {
	// GetByShiftAndDate 根据班次和日期查询开班实例
	//
	// SELECT * FROM @@table
	// WHERE shift_id = @shiftID AND date = @date::date
	// LIMIT 1
	GetByShiftAndDate(shiftID int64, date string) (*gen.T, error)

	// ListOpenByDateRange 查询日期范围内仍有正选名额的开班实例（浏览）
	//
	// SELECT * FROM @@table
	// WHERE date >= @fromDate::date AND date <= @toDate::date
	//   AND filled_primary < vacancy
	// ORDER BY start_at ASC
	// LIMIT @limit OFFSET @offset
	ListOpenByDateRange(fromDate, toDate string, limit, offset int) ([]*gen.T, error)

	// FillRateByDate 统计某日各开班实例的上座率（报表）
	//
	// SELECT shift_id,
	//   filled_primary, vacancy,
	//   CASE WHEN vacancy > 0 THEN filled_primary::float / vacancy ELSE 0 END as fill_rate
	// FROM @@table
	// WHERE date = @date::date
	// ORDER BY fill_rate DESC
	FillRateByDate(date string) ([]gen.M, error)
}

// ========== Application 相关查询接口 ==========

// ApplicationQuerier 申请查询接口
type ApplicationQuerier interface {
	// GetByPublicID 根据 PublicID 查询申请
	//
	// SELECT * FROM @@table WHERE public_id = @publicID LIMIT 1
	GetByPublicID(publicID int64) (*gen.T, error)

	// ListByWorkerAndStatus 按工人和状态查询申请（分页）
	//
	// SELECT * FROM @@table
	// WHERE worker_id = @workerID
	//   {{if status != ""}}
	//   AND status = @status
	//   {{end}}
	// ORDER BY applied_at DESC
	// LIMIT @limit OFFSET @offset
	ListByWorkerAndStatus(workerID int64, status string, limit, offset int) ([]*gen.T, error)

	// CountByStatusAndDate 统计某日各状态的申请数量（报表）
	//
	// SELECT status, COUNT(*) as count
	// FROM @@table
	// WHERE date = @date::date
	// GROUP BY status
	CountByStatusAndDate(date string) ([]gen.M, error)

	// SumPenaltiesByWorker 统计工人累计罚金（结算对账）
	//
	// SELECT COALESCE(SUM(penalty), 0) as total_penalty
	// FROM @@table
	// WHERE worker_id = @workerID
	//   AND status IN ('cancelled', 'no_show')
	SumPenaltiesByWorker(workerID int64) (int64, error)
}

// ========== AttendanceEvent 相关查询接口 ==========

// AttendanceQuerier 考勤流水查询接口
type AttendanceQuerier interface {
	// ListByApplicationID 根据申请查询考勤流水
	//
	// SELECT * FROM @@table
	// WHERE application_id = @applicationID
	// ORDER BY occurred_at ASC
	ListByApplicationID(applicationID int64) ([]*gen.T, error)

	// CountLateByShiftAndDate 统计某开班实例的迟到人数（雇主侧核对）
	//
	// SELECT COUNT(*) as count
	// FROM @@table
	// WHERE shift_id = @shiftID AND date = @date::date
	//   AND event_type = 'clock_in' AND is_late = true
	CountLateByShiftAndDate(shiftID int64, date string) (int64, error)
}

func Generate() error {
	if err := database.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	db := database.DB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./internal/repository/query", // 生成代码的输出路径
		ModelPkgPath:      "HustleHeroes/internal/model",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface | gen.WithoutContext,
		FieldNullable:     true,
		FieldCoverable:    false,
		FieldSignable:     false,
		FieldWithIndexTag: false,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)

	// 注册现有的 model，GORM Gen 会使用这些 model 而不是生成新的
	g.ApplyBasic(
		&model.Worker{},
		&model.Job{},
		&model.Shift{},
		&model.ShiftOccurrence{},
		&model.Application{},
		&model.AttendanceEvent{},
	)

	g.ApplyInterface(func(WorkerQuerier) {}, &model.Worker{})
	g.ApplyInterface(func(OccurrenceQuerier) {}, &model.ShiftOccurrence{})
	g.ApplyInterface(func(ApplicationQuerier) {}, &model.Application{})
	g.ApplyInterface(func(AttendanceQuerier) {}, &model.AttendanceEvent{})

	g.Execute()

	return nil
}

func RunGenerate() {
	if err := Generate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate code: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Code generation completed successfully!")
}
