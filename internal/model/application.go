package model

import "time"

// ApplicationStatus 申请生命周期状态枚举，终态（completed/cancelled/no_show）不可再变更
type ApplicationStatus string

const (
	ApplicationStatusUpcoming  ApplicationStatus = "upcoming"
	ApplicationStatusCompleted ApplicationStatus = "completed"
	ApplicationStatusCancelled ApplicationStatus = "cancelled"
	ApplicationStatusNoShow    ApplicationStatus = "no_show"
)

// IsTerminal 终态判断
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case ApplicationStatusCompleted, ApplicationStatusCancelled, ApplicationStatusNoShow:
		return true
	}
	return false
}

// AppliedStatus 报名标记枚举
type AppliedStatus string

const (
	AppliedStatusApplied   AppliedStatus = "applied"
	AppliedStatusCancelled AppliedStatus = "cancelled"
)

// CancelReason 取消原因枚举
type CancelReason string

const (
	CancelReasonMedical   CancelReason = "medical"
	CancelReasonEmergency CancelReason = "emergency"
	CancelReasonPersonal  CancelReason = "personal"
	CancelReasonTransport CancelReason = "transport"
	CancelReasonOther     CancelReason = "other"
)

// ValidCancelReason 校验取消原因取值
func ValidCancelReason(r CancelReason) bool {
	switch r {
	case CancelReasonMedical, CancelReasonEmergency, CancelReasonPersonal,
		CancelReasonTransport, CancelReasonOther:
		return true
	}
	return false
}

// Application 一个工人对一个开班实例的申请记录。
// 只追加不删除：取消、爽约、罚金都留在原记录上供审计与报表使用。
type Application struct {
	BaseModel
	PublicID int64  `gorm:"uniqueIndex;not null" json:"public_id"`
	WorkerID int64  `gorm:"not null;index:idx_applications_worker_shift_date" json:"worker_id"`
	JobID    int64  `gorm:"not null;index" json:"job_id"`
	ShiftID  int64  `gorm:"not null;index:idx_applications_worker_shift_date" json:"shift_id"`
	Date     string `gorm:"type:date;not null;index:idx_applications_worker_shift_date" json:"date"`

	IsStandby     bool              `gorm:"not null;default:false" json:"is_standby"`
	SeatKind      SeatKind          `gorm:"type:varchar(8);not null" json:"seat_kind"`
	AppliedStatus AppliedStatus     `gorm:"type:varchar(16);not null;default:'applied'" json:"applied_status"`
	Status        ApplicationStatus `gorm:"type:varchar(16);not null;default:'upcoming';index" json:"status"`

	AppliedAt   time.Time  `gorm:"type:timestamptz;not null" json:"applied_at"`
	ActivatedAt *time.Time `gorm:"type:timestamptz" json:"activated_at,omitempty"` // 候补转正时间，用于结算转正补贴
	CancelledAt *time.Time `gorm:"type:timestamptz" json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `gorm:"type:timestamptz" json:"completed_at,omitempty"`

	ClockInTime  *time.Time `gorm:"type:timestamptz" json:"clock_in_time,omitempty"`
	ClockOutTime *time.Time `gorm:"type:timestamptz" json:"clock_out_time,omitempty"`
	CheckInLat   *float64   `gorm:"type:double precision" json:"check_in_lat,omitempty"`
	CheckInLng   *float64   `gorm:"type:double precision" json:"check_in_lng,omitempty"`

	// 取消相关字段
	CancelReason      CancelReason `gorm:"type:varchar(16)" json:"cancel_reason,omitempty"`
	CancelDetail      string       `gorm:"type:text" json:"cancel_detail,omitempty"`
	Penalty           int          `gorm:"not null;default:0" json:"penalty"`
	PenaltyLabel      string       `gorm:"type:varchar(64)" json:"penalty_label,omitempty"`
	EvidenceRef       string       `gorm:"type:varchar(255)" json:"evidence_ref,omitempty"` // 病假单等凭证引用
	CancellationCount int          `gorm:"not null;default:0" json:"cancellation_count"`    // 取消时工人的累计取消次数快照
}

// TableName 指定表名
func (Application) TableName() string {
	return "applications"
}
