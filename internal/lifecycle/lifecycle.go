package lifecycle

import (
	"time"

	"HustleHeroes/internal/model"
	"HustleHeroes/pkg/errors"
)

// 申请状态机。这里只做纯状态迁移与守卫，不碰存储：
// 名额增减由 capacity 负责，事务边界由 service 负责。
//
//	applied (正选) ─────────────┐
//	standby ── activated ──────┤→ clock-in → clock-out → completed
//	任意非终态 → cancelled / no_show（终态不可再变更）

// New 创建一条新的申请记录。座位类型由名额预占结果决定。
func New(publicID, workerID int64, shift *model.Shift, date string, seat model.SeatKind, now time.Time) *model.Application {
	return &model.Application{
		PublicID:      publicID,
		WorkerID:      workerID,
		JobID:         shift.JobID,
		ShiftID:       shift.ID,
		Date:          date,
		IsStandby:     seat == model.SeatKindStandby,
		SeatKind:      seat,
		AppliedStatus: model.AppliedStatusApplied,
		Status:        model.ApplicationStatusUpcoming,
		AppliedAt:     now,
	}
}

// Cancel 将申请置为已取消，罚金与原因由调用方先行计算。
func Cancel(app *model.Application, reason model.CancelReason, detail, evidenceRef string, penalty int, penaltyLabel string, cancellationCount int, now time.Time) error {
	if app.Status.IsTerminal() {
		return errors.AlreadyTerminal
	}

	app.Status = model.ApplicationStatusCancelled
	app.AppliedStatus = model.AppliedStatusCancelled
	app.CancelReason = reason
	app.CancelDetail = detail
	app.EvidenceRef = evidenceRef
	app.Penalty = penalty
	app.PenaltyLabel = penaltyLabel
	app.CancellationCount = cancellationCount
	app.CancelledAt = &now
	return nil
}

// Activate 候补转正。只有仍处于候补的非终态申请可以转正。
// ActivatedAt 留痕供完成时结算转正补贴。
func Activate(app *model.Application, now time.Time) error {
	if app.Status.IsTerminal() {
		return errors.AlreadyTerminal
	}
	if !app.IsStandby {
		return errors.NotUpcoming
	}

	app.IsStandby = false
	app.SeatKind = model.SeatKindPrimary
	app.ActivatedAt = &now
	return nil
}

// Complete 完成班次。要求已下班打卡，先于工资结算之外的任何变更。
// 名额计数器不回退：已完成的座位计入当日上座率。
func Complete(app *model.Application, now time.Time) error {
	if app.Status != model.ApplicationStatusUpcoming {
		if app.Status.IsTerminal() {
			return errors.AlreadyTerminal
		}
		return errors.NotUpcoming
	}
	if app.ClockOutTime == nil {
		return errors.NotUpcoming
	}

	app.Status = model.ApplicationStatusCompleted
	app.CompletedAt = &now
	return nil
}

// MarkNoShow 标记爽约。由外部定时扫描触发：开班超过宽限期仍无上班打卡。
// 候补席位未被激活不算爽约。
func MarkNoShow(app *model.Application, penalty int, penaltyLabel string, now time.Time) error {
	if app.Status.IsTerminal() {
		return errors.AlreadyTerminal
	}
	if app.ClockInTime != nil || app.IsStandby {
		return errors.NotUpcoming
	}

	app.Status = model.ApplicationStatusNoShow
	app.Penalty = penalty
	app.PenaltyLabel = penaltyLabel
	return nil
}
