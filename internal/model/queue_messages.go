package model

// ApplicationEventType 申请事件类型（通知总线）
type ApplicationEventType string

const (
	ApplicationEventApplied   ApplicationEventType = "applied"
	ApplicationEventCancelled ApplicationEventType = "cancelled"
	ApplicationEventPromoted  ApplicationEventType = "promoted"
	ApplicationEventCompleted ApplicationEventType = "completed"
	ApplicationEventNoShow    ApplicationEventType = "no_show"
)

// ApplicationEventMessage 申请生命周期事件消息，投递给通知 worker（即发即忘）
type ApplicationEventMessage struct {
	MessageID     string               `json:"message_id"` // 消息唯一ID，用于幂等性检查
	EventType     ApplicationEventType `json:"event_type"`
	ApplicationID int64                `json:"application_id"`
	WorkerID      int64                `json:"worker_id"`
	JobID         int64                `json:"job_id"`
	ShiftID       int64                `json:"shift_id"`
	Date          string               `json:"date"`
	SeatKind      SeatKind             `json:"seat_kind"`
	Penalty       int                  `json:"penalty,omitempty"`
	PenaltyLabel  string               `json:"penalty_label,omitempty"`
	StandbyBonus  int                  `json:"standby_bonus,omitempty"` // 候补转正补贴，仅 promoted/completed 事件携带
	OccurredAt    string               `json:"occurred_at"`
}

// NoShowCheckMessage 单个正选申请的定点爽约检查，经延迟交换机在
// 开班加宽限期后投递；周期扫描仍兜底，重复检查由终态守卫吸收
type NoShowCheckMessage struct {
	MessageID     string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	ApplicationID int64  `json:"application_id"`
	WorkerID      int64  `json:"worker_id"`
	ShiftID       int64  `json:"shift_id"`
	Date          string `json:"date"`
	ScheduledFor  string `json:"scheduled_for"` // 预期触发时刻（开班 + 宽限期）
}

// WorkerCancellationMessage 工人取消记录事件，供外部信誉/报表服务消费
type WorkerCancellationMessage struct {
	MessageID         string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	WorkerID          int64  `json:"worker_id"`
	ApplicationID     int64  `json:"application_id"`
	ShiftID           int64  `json:"shift_id"`
	Date              string `json:"date"`
	Penalty           int    `json:"penalty"`
	PenaltyLabel      string `json:"penalty_label"`
	CancellationCount int    `json:"cancellation_count"`
	OccurredAt        string `json:"occurred_at"`
}
