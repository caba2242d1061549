package dto

import "time"

// ApplyRequest 表示报名班次的请求体。
type ApplyRequest struct {
	ShiftID   int64  `json:"shift_id"`
	Date      string `json:"date"` // "2006-01-02"
	IsStandby bool   `json:"is_standby"`
}

// ApplyData 表示报名成功的响应。
type ApplyData struct {
	ApplicationID string `json:"application_id"`
	SeatKind      string `json:"seat_kind"`
	StandbyBonus  int    `json:"standby_bonus,omitempty"` // 候补席位完成班次后的补贴
}

// CancelRequest 表示取消申请的请求体。
type CancelRequest struct {
	Reason      string `json:"reason"`
	Detail      string `json:"detail,omitempty"`
	EvidenceRef string `json:"evidence_ref,omitempty"` // 病假单等凭证引用
}

// CancelData 表示取消结果。
type CancelData struct {
	Penalty      int       `json:"penalty"`
	PenaltyLabel string    `json:"penalty_label"`
	CancelledAt  time.Time `json:"cancelled_at"`
}

// ApplicationItem 工人申请列表项。
type ApplicationItem struct {
	ApplicationID string     `json:"application_id"`
	JobID         int64      `json:"job_id"`
	ShiftID       int64      `json:"shift_id"`
	Date          string     `json:"date"`
	SeatKind      string     `json:"seat_kind"`
	Status        string     `json:"status"`
	AppliedAt     time.Time  `json:"applied_at"`
	ClockInTime   *time.Time `json:"clock_in_time,omitempty"`
	ClockOutTime  *time.Time `json:"clock_out_time,omitempty"`
	Penalty       int        `json:"penalty,omitempty"`
	PenaltyLabel  string     `json:"penalty_label,omitempty"`
}

// ApplicationQuery 申请列表查询参数。
type ApplicationQuery struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// CompleteData 表示完成班次的响应。
type CompleteData struct {
	CompletedAt  time.Time `json:"completed_at"`
	StandbyBonus int       `json:"standby_bonus,omitempty"`
}
