package model

import "time"

// AttendanceEventType 考勤事件类型枚举
type AttendanceEventType string

const (
	AttendanceEventClockIn  AttendanceEventType = "clock_in"
	AttendanceEventClockOut AttendanceEventType = "clock_out"
)

// AttendanceEvent 考勤事件流水，随打卡追加，从不更新或删除。
// Application 上的 ClockInTime/ClockOutTime 是权威值，这里保留
// 每次事件的原始位置与迟到/早退标记供雇主侧核对。
type AttendanceEvent struct {
	BaseModel
	ApplicationID int64               `gorm:"not null;index" json:"application_id"`
	WorkerID      int64               `gorm:"not null;index" json:"worker_id"`
	JobID         int64               `gorm:"not null" json:"job_id"`
	ShiftID       int64               `gorm:"not null" json:"shift_id"`
	Date          string              `gorm:"type:date;not null" json:"date"`
	EventType     AttendanceEventType `gorm:"type:varchar(16);not null" json:"event_type"`
	OccurredAt    time.Time           `gorm:"type:timestamptz;not null" json:"occurred_at"`
	Latitude      *float64            `gorm:"type:double precision" json:"latitude,omitempty"`
	Longitude     *float64            `gorm:"type:double precision" json:"longitude,omitempty"`
	IsLate        bool                `gorm:"not null;default:false" json:"is_late"`
	IsEarlyLeave  bool                `gorm:"not null;default:false" json:"is_early_leave"`
}

// TableName 指定表名
func (AttendanceEvent) TableName() string {
	return "attendance_events"
}
