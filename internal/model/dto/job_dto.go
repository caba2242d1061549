package dto

// ShiftSlot 岗位详情中的单个开班名额视图。
type ShiftSlot struct {
	ShiftID          int64   `json:"shift_id"`
	Date             string  `json:"date"`
	StartClock       string  `json:"start_clock"`
	EndClock         string  `json:"end_clock"`
	PayRate          float64 `json:"pay_rate"`
	RateType         string  `json:"rate_type"`
	TotalWage        float64 `json:"total_wage"`
	RemainingPrimary int     `json:"remaining_primary"`
	RemainingStandby int     `json:"remaining_standby"`
	StandbyAvailable bool    `json:"standby_available"`
	SlotLabel        string  `json:"slot_label"`
}

// JobItem 岗位浏览列表项。
type JobItem struct {
	JobID        int64  `json:"job_id"`
	Name         string `json:"name"`
	Industry     string `json:"industry"`
	ShortAddress string `json:"short_address"`
	SlotLabel    string `json:"slot_label"`
}

// JobDetail 岗位详情视图。
type JobDetail struct {
	JobID             int64       `json:"job_id"`
	Name              string      `json:"name"`
	Industry          string      `json:"industry"`
	Address           string      `json:"address"`
	Latitude          float64     `json:"latitude"`
	Longitude         float64     `json:"longitude"`
	Slots             []ShiftSlot `json:"slots"`
	StandbyDisclaimer string      `json:"standby_disclaimer,omitempty"`
}
