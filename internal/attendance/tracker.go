package attendance

import (
	"time"

	"HustleHeroes/internal/model"
	"HustleHeroes/pkg/errors"
	"HustleHeroes/pkg/geo"
	"HustleHeroes/pkg/qrcode"
)

// 考勤守卫与打卡流水。打卡必须满足：申请仍然有效、二维码与班次匹配、
// 位置在岗位登记坐标的地理围栏内、事件顺序正确（先上班后下班）。
// 这里只改内存中的申请并产出流水记录，落库由 service 的事务完成。

// ClockInParams 上班打卡的校验输入
type ClockInParams struct {
	Job     *model.Job
	Occ     *model.ShiftOccurrence
	QR      *qrcode.Claims
	Point   geo.Point
	RadiusM float64
	Now     time.Time
}

// ClockIn 上班打卡。成功时在申请上盖时间戳并返回待落库的考勤流水。
func ClockIn(app *model.Application, p ClockInParams) (*model.AttendanceEvent, error) {
	if app == nil || app.Status != model.ApplicationStatusUpcoming ||
		app.AppliedStatus != model.AppliedStatusApplied {
		return nil, errors.NotApplied
	}
	// 候补席位未转正不能打卡
	if app.IsStandby {
		return nil, errors.NotApplied
	}
	if app.ClockInTime != nil {
		return nil, errors.AlreadyClockedIn
	}

	if p.QR == nil {
		return nil, errors.QRInvalid
	}
	if p.QR.JobID != app.JobID || p.QR.ShiftID != app.ShiftID || p.QR.Date != app.Date {
		return nil, errors.QRShiftMismatch
	}

	site := geo.Point{Latitude: p.Job.Latitude, Longitude: p.Job.Longitude}
	if !geo.WithinRadius(site, p.Point, p.RadiusM) {
		return nil, errors.OutsideGeofence
	}

	now := p.Now
	app.ClockInTime = &now
	app.CheckInLat = &p.Point.Latitude
	app.CheckInLng = &p.Point.Longitude

	return &model.AttendanceEvent{
		ApplicationID: app.ID,
		WorkerID:      app.WorkerID,
		JobID:         app.JobID,
		ShiftID:       app.ShiftID,
		Date:          app.Date,
		EventType:     model.AttendanceEventClockIn,
		OccurredAt:    now,
		Latitude:      &p.Point.Latitude,
		Longitude:     &p.Point.Longitude,
		IsLate:        now.After(p.Occ.StartAt),
	}, nil
}

// ClockOut 下班打卡。不迁移申请状态，完成是独立动作，
// 以便工资与罚金核对先行。
func ClockOut(app *model.Application, occ *model.ShiftOccurrence, now time.Time) (*model.AttendanceEvent, error) {
	if app == nil || app.Status != model.ApplicationStatusUpcoming {
		return nil, errors.NotApplied
	}
	if app.ClockInTime == nil {
		return nil, errors.NotClockedIn
	}
	if app.ClockOutTime != nil {
		return nil, errors.AlreadyClockedOut
	}

	app.ClockOutTime = &now

	return &model.AttendanceEvent{
		ApplicationID: app.ID,
		WorkerID:      app.WorkerID,
		JobID:         app.JobID,
		ShiftID:       app.ShiftID,
		Date:          app.Date,
		EventType:     model.AttendanceEventClockOut,
		OccurredAt:    now,
		IsEarlyLeave:  now.Before(occ.EndAt),
	}, nil
}
