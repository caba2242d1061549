package policy

import "time"

// 取消罚金规则：按取消时刻距开班时间的小时数分档。
// 规则表按阈值从高到低扫描，命中第一条即返回。
// 工人的累计取消次数只做审计记录，不参与罚金升档。

// PenaltyRule 一条罚金档位
type PenaltyRule struct {
	HoursBeforeStart float64 // 距开班 >= 该小时数时命中
	Amount           int
	Label            string
}

// DefaultRules 罚金档位表，末行是兜底档（含已开班未打卡的场景）
var DefaultRules = []PenaltyRule{
	{HoursBeforeStart: 48, Amount: 0, Label: "> 48 Hours (No Penalty)"},
	{HoursBeforeStart: 24, Amount: 5, Label: "> 24 Hours"},
	{HoursBeforeStart: 12, Amount: 10, Label: "> 12 Hours"},
	{HoursBeforeStart: 6, Amount: 15, Label: "> 6 Hours"},
}

// NoShowRule 兜底档：不足 6 小时、已开班或爽约
var NoShowRule = PenaltyRule{HoursBeforeStart: 0, Amount: 50, Label: "< 6 Hours / No-show"}

// PenaltyFor 计算取消罚金。
// priorCancellations 为工人此前的累计取消次数，仅随结果透传给审计，
// 不改变罚金数额。
func PenaltyFor(shiftStart, cancelledAt time.Time, priorCancellations int) (int, string) {
	_ = priorCancellations

	hoursBefore := shiftStart.Sub(cancelledAt).Hours()

	for _, rule := range DefaultRules {
		if hoursBefore >= rule.HoursBeforeStart {
			return rule.Amount, rule.Label
		}
	}

	// 不足 6 小时、负数（已开班）都落到兜底档
	return NoShowRule.Amount, NoShowRule.Label
}
