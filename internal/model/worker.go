package model

// WorkerStatus 工人账号状态枚举
type WorkerStatus string

const (
	WorkerStatusActive    WorkerStatus = "active"
	WorkerStatusSuspended WorkerStatus = "suspended"
)

// Worker 工人读模型。资料审核与档案维护由外部 profile 服务负责，
// 分配核心只读取资料完整标记，并维护累计取消次数用于审计。
type Worker struct {
	BaseModel
	PublicID          int64        `gorm:"uniqueIndex;not null" json:"public_id"`
	Name              string       `gorm:"type:varchar(128)" json:"name"`
	Phone             string       `gorm:"type:varchar(32)" json:"phone"`
	ProfileCompleted  bool         `gorm:"not null;default:false" json:"profile_completed"`
	CancellationCount int          `gorm:"not null;default:0" json:"cancellation_count"`
	Status            WorkerStatus `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
}

// TableName 指定表名
func (Worker) TableName() string {
	return "workers"
}
