package dto

import "time"

// IssueQRRequest 表示雇主侧签发打卡二维码的请求体。
type IssueQRRequest struct {
	JobID   int64  `json:"job_id"`
	ShiftID int64  `json:"shift_id"`
	Date    string `json:"date"`
}

// IssueQRData 表示签发结果，Token 由前端渲染为二维码图片。
type IssueQRData struct {
	Token      string    `json:"token"`
	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until"`
}
