package model

// RateType 计薪方式枚举
type RateType string

const (
	RateTypeFlat   RateType = "flat"
	RateTypeHourly RateType = "hourly"
)

// BreakType 休息时间计薪枚举
type BreakType string

const (
	BreakTypePaid   BreakType = "paid"
	BreakTypeUnpaid BreakType = "unpaid"
)

// Shift 班次定义：岗位内一个可预订的时间窗口。
// 同一班次可在多个日期重复开班，具体日期的名额记在 ShiftOccurrence 上，
// 这里的 Vacancy/StandbyVacancy 只是每个开班日的容量模板。
type Shift struct {
	BaseModel
	JobID          int64     `gorm:"not null;index" json:"job_id"`
	StartClock     string    `gorm:"type:varchar(5);not null" json:"start_clock"` // "09:00"
	EndClock       string    `gorm:"type:varchar(5);not null" json:"end_clock"`   // "18:00"
	DurationHours  float64   `gorm:"not null" json:"duration_hours"`
	BreakHours     float64   `gorm:"not null;default:0" json:"break_hours"`
	BreakType      BreakType `gorm:"type:varchar(8);not null;default:'unpaid'" json:"break_type"`
	RateType       RateType  `gorm:"type:varchar(8);not null" json:"rate_type"`
	PayRate        float64   `gorm:"not null" json:"pay_rate"`
	TotalWage      float64   `json:"total_wage"`
	Vacancy        int       `gorm:"not null;default:0" json:"vacancy"`
	StandbyVacancy int       `gorm:"not null;default:0" json:"standby_vacancy"`
}

// TableName 指定表名
func (Shift) TableName() string {
	return "shifts"
}

// ComputeTotalWage 按计薪方式推导整班工资，不含休息扣减以外的调整
func (s *Shift) ComputeTotalWage() float64 {
	if s.RateType == RateTypeFlat {
		return s.PayRate
	}

	paidHours := s.DurationHours
	if s.BreakType == BreakTypeUnpaid {
		paidHours -= s.BreakHours
	}
	if paidHours < 0 {
		paidHours = 0
	}
	return s.PayRate * paidHours
}
