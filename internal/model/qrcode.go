package model

import "time"

// ShiftQRCode 雇主侧签发的打卡二维码记录。
// Token 为签名后的原始载荷，二维码图片由前端渲染。
type ShiftQRCode struct {
	BaseModel
	JobID      int64     `gorm:"not null;index" json:"job_id"`
	ShiftID    int64     `gorm:"not null;index" json:"shift_id"`
	Date       string    `gorm:"type:date;not null" json:"date"`
	Token      string    `gorm:"type:text;not null" json:"token"`
	ValidFrom  time.Time `gorm:"type:timestamptz;not null" json:"valid_from"`
	ValidUntil time.Time `gorm:"type:timestamptz;not null" json:"valid_until"`
}

// TableName 指定表名
func (ShiftQRCode) TableName() string {
	return "shift_qr_codes"
}
