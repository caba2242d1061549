package model

// JobStatus 岗位状态枚举
type JobStatus string

const (
	JobStatusActive      JobStatus = "active"
	JobStatusDeactivated JobStatus = "deactivated"
	JobStatusCancelled   JobStatus = "cancelled"
)

// Job 岗位定义，由外部岗位目录服务维护，分配核心按只读方式消费。
// 登记坐标用于打卡地理围栏校验。
type Job struct {
	BaseModel
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	EmployerID   int64     `gorm:"not null;index" json:"employer_id"`
	OutletID     int64     `gorm:"index" json:"outlet_id"`
	Industry     string    `gorm:"type:varchar(64)" json:"industry"`
	Address      string    `gorm:"type:varchar(255)" json:"address"`
	ShortAddress string    `gorm:"type:varchar(128)" json:"short_address"`
	Latitude     float64   `gorm:"type:double precision" json:"latitude"`
	Longitude    float64   `gorm:"type:double precision" json:"longitude"`
	Status       JobStatus `gorm:"type:varchar(16);not null;default:'active'" json:"status"`

	Shifts []Shift `gorm:"foreignKey:JobID" json:"shifts,omitempty"`
}

// TableName 指定表名
func (Job) TableName() string {
	return "jobs"
}
