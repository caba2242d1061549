package dto

import "time"

// ClockInRequest 表示扫码打卡上班的请求体。
type ClockInRequest struct {
	QRToken   string  `json:"qr_token"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ClockInData 表示上班打卡结果。
type ClockInData struct {
	ClockInTime time.Time `json:"clock_in_time"`
	IsLate      bool      `json:"is_late"`
}

// ClockOutData 表示下班打卡结果。
type ClockOutData struct {
	ClockOutTime time.Time `json:"clock_out_time"`
	IsEarlyLeave bool      `json:"is_early_leave"`
}
