package model

import "time"

// SeatKind 座位类型枚举
type SeatKind string

const (
	SeatKindPrimary SeatKind = "primary"
	SeatKindStandby SeatKind = "standby"
)

// ShiftOccurrence 一个 (班次, 日期) 的开班实例，是名额账本的权威载体。
// FilledPrimary/FilledStandby 只允许经由分配事务修改，任何时刻满足
// 0 <= FilledPrimary <= Vacancy 且 0 <= FilledStandby <= StandbyVacancy。
type ShiftOccurrence struct {
	BaseModel
	ShiftID        int64     `gorm:"not null;uniqueIndex:uq_shift_occurrences_shift_date" json:"shift_id"`
	JobID          int64     `gorm:"not null;index" json:"job_id"`
	Date           string    `gorm:"type:date;not null;uniqueIndex:uq_shift_occurrences_shift_date" json:"date"` // "2006-01-02"
	StartAt        time.Time `gorm:"type:timestamptz;not null;index" json:"start_at"`
	EndAt          time.Time `gorm:"type:timestamptz;not null" json:"end_at"`
	Vacancy        int       `gorm:"not null" json:"vacancy"`
	StandbyVacancy int       `gorm:"not null" json:"standby_vacancy"`
	FilledPrimary  int       `gorm:"not null;default:0" json:"filled_primary"`
	FilledStandby  int       `gorm:"not null;default:0" json:"filled_standby"`
}

// TableName 指定表名
func (ShiftOccurrence) TableName() string {
	return "shift_occurrences"
}

// RemainingPrimary 剩余正选名额
func (o *ShiftOccurrence) RemainingPrimary() int {
	return o.Vacancy - o.FilledPrimary
}

// RemainingStandby 剩余候补名额
func (o *ShiftOccurrence) RemainingStandby() int {
	return o.StandbyVacancy - o.FilledStandby
}
